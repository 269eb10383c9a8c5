package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FraudAlertStatus 欺诈告警状态，只能从 new 变为 resolved
type FraudAlertStatus string

const (
	FraudAlertStatusNew      FraudAlertStatus = "new"
	FraudAlertStatusResolved FraudAlertStatus = "resolved"
)

// UnidentifiedEmployeeName 无法归属时记录的名称
const UnidentifiedEmployeeName = "unidentified user"

// FraudAlert 对应 fraud_alerts 表
type FraudAlert struct {
	ID            string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	CompanyID     string           `json:"companyId" gorm:"column:company_id;type:varchar(36);not null;index"`
	QRID          string           `json:"qrId" gorm:"column:qr_id;size:255;not null"`
	Timestamp     time.Time        `json:"timestamp" gorm:"column:timestamp;not null;index"`
	Status        FraudAlertStatus `json:"status" gorm:"column:status;type:varchar(20);not null;default:'new';index"`
	EmployeeName  string           `json:"employeeName" gorm:"column:employee_name;size:255;not null"`
	EmployeeEmail *string          `json:"employeeEmail,omitempty" gorm:"column:employee_email;size:255"`
	EmployeeID    *string          `json:"employeeId,omitempty" gorm:"column:employee_id;type:varchar(36);index"`
	DeviceID      *string          `json:"deviceId,omitempty" gorm:"column:device_id;size:128"`
	ResolvedAt    *time.Time       `json:"resolvedAt,omitempty" gorm:"column:resolved_at"`
}

// TableName 指定 FraudAlert 模型对应的数据库表名
func (FraudAlert) TableName() string {
	return "fraud_alerts"
}

// BeforeCreate GORM hook 为 FraudAlert 生成 UUID
func (a *FraudAlert) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = FraudAlertStatusNew
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}
