package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"localmart-backend/internal/feature/shop"
)

type ShopRepo struct{ db *gorm.DB }

func NewShopRepo(db *gorm.DB) *ShopRepo { return &ShopRepo{db: db} }

func (r *ShopRepo) Create(ctx context.Context, s *shop.Shop) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ShopRepo) FindAll(ctx context.Context) ([]shop.Shop, error) {
	var shops []shop.Shop
	err := r.db.WithContext(ctx).Order("id").Find(&shops).Error
	return shops, err
}

func (r *ShopRepo) FindByID(ctx context.Context, id int64) (*shop.Shop, error) {
	var s shop.Shop
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update 部分更新，返回更新后的整条记录
func (r *ShopRepo) Update(ctx context.Context, id int64, fields map[string]any) (*shop.Shop, error) {
	res := r.db.WithContext(ctx).Model(&shop.Shop{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *ShopRepo) Delete(ctx context.Context, id int64) (*shop.Shop, error) {
	s, err := r.FindByID(ctx, id)
	if err != nil || s == nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&shop.Shop{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return s, nil
}
