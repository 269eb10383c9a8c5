package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisteredEmployee 对应 registered_employees 表
type RegisteredEmployee struct {
	ID               string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name             string    `json:"name" gorm:"column:name;not null;size:255"`
	Email            string    `json:"email" gorm:"column:email;not null;size:255;index"`
	CompanyID        string    `json:"companyId" gorm:"column:company_id;type:varchar(36);not null;index"`
	RegistrationTime time.Time `json:"registrationTime" gorm:"column:registration_time;not null"`
	InitialDeviceID  *string   `json:"initialDeviceId,omitempty" gorm:"column:initial_device_id;size:128;index"` // 注册时的设备指纹
	DeviceName       *string   `json:"deviceName,omitempty" gorm:"column:device_name;size:255"`
}

// TableName 指定 RegisteredEmployee 模型对应的数据库表名
func (RegisteredEmployee) TableName() string {
	return "registered_employees"
}

// BeforeCreate GORM hook 生成 UUID 并补齐注册时间
func (e *RegisteredEmployee) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RegistrationTime.IsZero() {
		e.RegistrationTime = time.Now().UTC()
	}
	return nil
}

// Fingerprint 返回注册指纹，未记录时为空串
func (e *RegisteredEmployee) Fingerprint() string {
	if e.InitialDeviceID == nil {
		return ""
	}
	return *e.InitialDeviceID
}
