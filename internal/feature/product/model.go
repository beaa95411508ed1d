package product

import (
	"time"

	"gorm.io/gorm"

	"localmart-backend/internal/feature/seqid"
)

// Product 商品归属 dealer（dealerId 只是数字引用，不是外键）。
// price 历史原因是字符串，前端拿到直接展示，后端不参与运算。
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	DealerID    int64     `gorm:"index" json:"dealerId"`
	Title       string    `gorm:"size:191" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:255" json:"image"`
	Price       string    `gorm:"size:32" json:"price"`
	PerItem     string    `gorm:"size:32" json:"perItem"`
	ShopName    string    `gorm:"size:191" json:"shopName"`
	ShopAddress string    `gorm:"size:255" json:"shopAddress"`
	State       string    `gorm:"size:64" json:"state"`
	City        string    `gorm:"size:64" json:"city"`
	Area        string    `gorm:"size:64" json:"area"`
	Category    string    `gorm:"size:64;index" json:"category"`
	Phone       string    `gorm:"size:32" json:"phone"`
	SearchCount int64     `gorm:"default:0" json:"searchCount"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// BeforeCreate 序号读取失败时退回毫秒时间戳，宁可跳号也不阻塞上架
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID != 0 {
		return nil
	}
	id, err := seqid.Next(tx, p.TableName())
	if err != nil {
		p.ID = time.Now().UnixMilli()
		return nil
	}
	p.ID = id
	return nil
}
