package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCode 对应 qr_codes 表。同一企业任意时刻至多一条 active 记录。
type QRCode struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CompanyID string    `json:"companyId" gorm:"column:company_id;type:varchar(36);not null;index"`
	Active    bool      `json:"active" gorm:"column:active;not null;default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName 指定 QRCode 模型对应的数据库表名
func (QRCode) TableName() string {
	return "qr_codes"
}

// BeforeCreate GORM hook 为 QRCode 生成 UUID
func (q *QRCode) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
