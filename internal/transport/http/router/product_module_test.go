package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localmart-backend/internal/core/cache"
	"localmart-backend/internal/feature/product"
	"localmart-backend/internal/repo"
)

func registerDealerToken(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := postJSON(t, r, "/api/users/register", "", registerPayload(email, "dealer"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func seedProduct(t *testing.T, products *repo.ProductRepo, p product.Product) {
	t.Helper()
	if p.Title == "" {
		p.Title = "Seed"
	}
	if p.DealerID == 0 {
		p.DealerID = 1
	}
	p.Description = "seeded"
	p.Price = "10"
	p.ShopName = "Seed Shop"
	p.Category = "misc"
	require.NoError(t, products.Create(context.Background(), &p))
}

func productsOf(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	raw, ok := decode(t, w)["products"].([]any)
	require.True(t, ok)
	out := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(map[string]any))
	}
	return out
}

func TestProductResponses_AbsoluteImageURLs(t *testing.T) {
	t.Parallel()
	r, _, db := newTestAPI(t)
	token := registerDealerToken(t, r, "imgdealer@x.com")
	products := repo.NewProductRepo(db)

	seedProduct(t, products, product.Product{Title: "Apple", Image: "/uploads/a.png"})
	seedProduct(t, products, product.Product{Title: "Banana", Image: "https://cdn.example.com/b.png"})
	seedProduct(t, products, product.Product{Title: "Cherry"})

	w := getJSON(t, r, "/api/products/get-all-product", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	images := map[string]string{}
	for _, p := range productsOf(t, w) {
		images[p["title"].(string)], _ = p["image"].(string)
	}
	assert.Equal(t, testBaseURL+"/uploads/a.png", images["Apple"])
	assert.Equal(t, "https://cdn.example.com/b.png", images["Banana"])
	assert.Equal(t, "", images["Cherry"])

	// dealer listing takes the same shaping
	w = getJSON(t, r, "/api/products/get-all-product-by-id/1", token)
	require.Equal(t, http.StatusOK, w.Code)
	for _, p := range decode(t, w)["product"].([]any) {
		img, _ := p.(map[string]any)["image"].(string)
		if img != "" {
			assert.NotEqual(t, byte('/'), img[0])
		}
	}
}

func TestMostSearched_CacheDroppedOnProductWrite(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	r, _, db := newTestEngine(t, cache.New(mr.Addr(), "", 0))
	token := registerDealerToken(t, r, "cachedealer@x.com")
	products := repo.NewProductRepo(db)

	seedProduct(t, products, product.Product{Title: "Hot", SearchCount: 5})
	seedProduct(t, products, product.Product{Title: "Warm", SearchCount: 3})

	w := getJSON(t, r, "/api/products/most-searched-products", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, productsOf(t, w), 2)
	require.True(t, mr.Exists("products:most-searched"))

	req := httptest.NewRequest(http.MethodDelete, "/api/products/delete-product/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	dw := httptest.NewRecorder()
	r.ServeHTTP(dw, req)
	require.Equal(t, http.StatusOK, dw.Code, dw.Body.String())

	// the mutation must drop the cached ranking, not wait out the TTL
	assert.False(t, mr.Exists("products:most-searched"))

	w = getJSON(t, r, "/api/products/most-searched-products", token)
	require.Equal(t, http.StatusOK, w.Code)
	ps := productsOf(t, w)
	require.Len(t, ps, 1)
	assert.Equal(t, "Warm", ps[0]["title"])
}
