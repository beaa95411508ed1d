package shop

import (
	"time"

	"gorm.io/gorm"

	"localmart-backend/internal/feature/seqid"
)

// Shop 商家店铺。约定一个 dealer 只开一家店，但数据层不做唯一约束。
type Shop struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID      int64     `gorm:"index;not null" json:"user_id"`
	ShopName    string    `gorm:"size:191" json:"shop_name"`
	ShopAddress string    `gorm:"size:255" json:"shop_address"`
	PhoneNo     string    `gorm:"size:32" json:"phone_no"`
	State       string    `gorm:"size:64" json:"state"`
	City        string    `gorm:"size:64" json:"city"`
	Area        string    `gorm:"size:64" json:"area"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Shop) TableName() string { return "shops" }

// BeforeCreate 分配序号失败直接放弃写入
func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID != 0 {
		return nil
	}
	id, err := seqid.Next(tx, s.TableName())
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}
