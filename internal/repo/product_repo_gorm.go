package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"localmart-backend/internal/feature/product"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepo) FindAll(ctx context.Context) ([]product.Product, error) {
	var ps []product.Product
	err := r.db.WithContext(ctx).Order("id").Find(&ps).Error
	return ps, err
}

func (r *ProductRepo) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByDealer 某个 dealer 名下的全部商品
func (r *ProductRepo) FindByDealer(ctx context.Context, dealerID int64) ([]product.Product, error) {
	var ps []product.Product
	err := r.db.WithContext(ctx).Where("dealer_id = ?", dealerID).Order("id").Find(&ps).Error
	return ps, err
}

// Update 部分更新，返回更新后的整条记录；记录不存在返回 (nil, nil)
func (r *ProductRepo) Update(ctx context.Context, id int64, fields map[string]any) (*product.Product, error) {
	res := r.db.WithContext(ctx).Model(&product.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) (*product.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&product.Product{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// SearchByTitle 标题模糊搜索，命中的商品搜索计数 +1（热榜靠它喂数据）
func (r *ProductRepo) SearchByTitle(ctx context.Context, title string) ([]product.Product, error) {
	like := "%" + strings.TrimSpace(title) + "%"
	var ps []product.Product
	if err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE LOWER(?)", like).
		Order("id").Find(&ps).Error; err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		ids := make([]int64, 0, len(ps))
		for _, p := range ps {
			ids = append(ids, p.ID)
		}
		if err := r.db.WithContext(ctx).Model(&product.Product{}).
			Where("id IN ?", ids).
			UpdateColumn("search_count", gorm.Expr("search_count + 1")).Error; err != nil {
			return nil, err
		}
	}
	return ps, nil
}

// Filter 州/市/区逐级过滤，传空的条件跳过
func (r *ProductRepo) Filter(ctx context.Context, state, city, area string) ([]product.Product, error) {
	tx := r.db.WithContext(ctx).Model(&product.Product{})
	if s := strings.TrimSpace(state); s != "" {
		tx = tx.Where("state = ?", s)
	}
	if c := strings.TrimSpace(city); c != "" {
		tx = tx.Where("city = ?", c)
	}
	if a := strings.TrimSpace(area); a != "" {
		tx = tx.Where("area = ?", a)
	}
	var ps []product.Product
	err := tx.Order("id").Find(&ps).Error
	return ps, err
}

// MostSearched 搜索次数最多的前 N 个
func (r *ProductRepo) MostSearched(ctx context.Context, limit int) ([]product.Product, error) {
	var ps []product.Product
	err := r.db.WithContext(ctx).
		Order("search_count DESC").Order("id").Limit(limit).Find(&ps).Error
	return ps, err
}
