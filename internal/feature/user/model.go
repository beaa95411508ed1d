package user

import (
	"time"

	"gorm.io/gorm"

	"localmart-backend/internal/feature/seqid"
)

// User 三类角色共用一张表：customer / dealer / admin。
// 口令散列和找回密码的临时令牌永远不出现在 JSON 里。
// 观测到的业务流程里用户从不硬删，封禁 = 软删。
type User struct {
	ID               int64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Fullname         string         `gorm:"size:191" json:"fullname"`
	Phone            string         `gorm:"size:32" json:"phone"`
	Email            string         `gorm:"index;size:191" json:"email"`
	City             string         `gorm:"size:64" json:"city"`
	UserType         string         `gorm:"size:16;default:customer" json:"user_type"`
	PasswordHash     string         `gorm:"size:100" json:"-"`
	TrialEnd         *time.Time     `json:"trial_end,omitempty"`
	IsSubscribed     bool           `json:"is_subscribed"`
	ResetToken       *string        `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time     `json:"-"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// BeforeCreate 分配序号失败直接放弃写入
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID != 0 {
		return nil
	}
	id, err := seqid.Next(tx, u.TableName())
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}
