package router_test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	stripeapi "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signWebhook(payload []byte, at time.Time, secret string) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func postWebhook(r http.Handler, payload []byte, sigHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func succeededIntentEvent(userID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","object":"event","api_version":%q,"type":"payment_intent.succeeded",`+
			`"data":{"object":{"id":"pi_1","object":"payment_intent","metadata":{"userId":%q}}}}`,
		stripeapi.APIVersion, userID))
}

func isSubscribed(t *testing.T, r http.Handler, token string) bool {
	t.Helper()
	w := getJSON(t, r, "/api/users/profile", token)
	require.Equal(t, http.StatusOK, w.Code)
	u := decode(t, w)["user"].(map[string]any)
	return u["is_subscribed"].(bool)
}

func TestWebhook_PaymentSucceededMarksSubscribed(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("payer@x.com", "customer"))
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode(t, w)["token"].(string)
	require.False(t, isSubscribed(t, r, token))

	payload := succeededIntentEvent("1")
	w2 := postWebhook(r, payload, signWebhook(payload, time.Now(), testWebhookSecret))
	require.Equal(t, http.StatusOK, w2.Code, w2.Body.String())
	assert.Equal(t, true, decode(t, w2)["received"])

	assert.True(t, isSubscribed(t, r, token))
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("payer2@x.com", "customer"))
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode(t, w)["token"].(string)

	payload := succeededIntentEvent("1")

	w2 := postWebhook(r, payload, "")
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	w2 = postWebhook(r, payload, signWebhook(payload, time.Now(), "whsec_wrong_secret"))
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	// tampered body after signing
	sig := signWebhook(payload, time.Now(), testWebhookSecret)
	tampered := bytes.Replace(payload, []byte(`"userId":"1"`), []byte(`"userId":"2"`), 1)
	w2 = postWebhook(r, tampered, sig)
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	assert.False(t, isSubscribed(t, r, token))
}

func TestWebhook_IgnoresUnknownUserMetadata(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	// unknown user must still get a 200 or Stripe keeps redelivering
	payload := succeededIntentEvent("999")
	w := postWebhook(r, payload, signWebhook(payload, time.Now(), testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["received"])
}
