package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeTrackingAction 打卡动作
type TimeTrackingAction string

const (
	ActionEntry TimeTrackingAction = "entry"
	ActionExit  TimeTrackingAction = "exit"
)

// Valid 判断是否为已知动作
func (a TimeTrackingAction) Valid() bool {
	return a == ActionEntry || a == ActionExit
}

// Toggle 返回相反的动作
func (a TimeTrackingAction) Toggle() TimeTrackingAction {
	if a == ActionEntry {
		return ActionExit
	}
	return ActionEntry
}

// TimeTrackingEvent 对应 time_tracking 表，只追加不修改
type TimeTrackingEvent struct {
	ID         string             `json:"id" gorm:"type:varchar(36);primaryKey"`
	EmployeeID string             `json:"employeeId" gorm:"column:employee_id;type:varchar(36);not null;index:idx_time_tracking_employee"`
	CompanyID  string             `json:"companyId" gorm:"column:company_id;type:varchar(36);not null;index:idx_time_tracking_employee"`
	Action     TimeTrackingAction `json:"action" gorm:"column:action;type:varchar(10);not null"`
	Timestamp  time.Time          `json:"timestamp" gorm:"column:timestamp;not null;index"`
}

// TableName 指定 TimeTrackingEvent 模型对应的数据库表名
func (TimeTrackingEvent) TableName() string {
	return "time_tracking"
}

// BeforeCreate GORM hook 为 TimeTrackingEvent 生成 UUID
func (e *TimeTrackingEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
