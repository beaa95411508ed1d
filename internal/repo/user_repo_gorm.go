package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"localmart-backend/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// FindByID 查不到返回 (nil, nil)，调用方自己决定 404 还是 401
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile 只改传进来的字段
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, fields map[string]any) (*user.User, error) {
	if err := r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepo) SetSubscribed(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).
		Update("is_subscribed", true).Error
}

func (r *UserRepo) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	return r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).
		Updates(map[string]any{"reset_token": token, "reset_token_expiry": expiry}).Error
}

// FindByResetToken 只认还在有效期内的令牌
func (r *UserRepo) FindByResetToken(ctx context.Context, token string, now time.Time) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		First(&u, "reset_token = ? AND reset_token_expiry > ?", token, now).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ResetPassword 换口令的同时作废重置令牌
func (r *UserRepo) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":      passwordHash,
			"reset_token":        nil,
			"reset_token_expiry": nil,
		}).Error
}

// ExpiredTrialEmails 试用已到期且没转订阅的用户（每日巡检用）
func (r *UserRepo) ExpiredTrialEmails(ctx context.Context, now time.Time) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).Model(&user.User{}).
		Where("trial_end < ? AND is_subscribed = ?", now, false).
		Pluck("email", &emails).Error
	return emails, err
}

// List 管理端用户列表，q 按邮箱/姓名模糊搜
func (r *UserRepo) List(ctx context.Context, offset, limit int, q string, withDeleted bool) ([]user.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&user.User{})
	if withDeleted {
		tx = tx.Unscoped()
	}
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("email LIKE ? OR fullname LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var us []user.User
	if err := tx.Order("created_at DESC").Limit(limit).Offset(offset).Find(&us).Error; err != nil {
		return nil, 0, err
	}
	return us, total, nil
}

// SoftDelete 封禁。序号不回收，data 里永远能追溯到这个 id。
func (r *UserRepo) SoftDelete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&user.User{})
	return res.RowsAffected, res.Error
}
