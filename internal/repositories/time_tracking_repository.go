package repositories

import (
	"context"
	"time"

	"github.com/qr_attendance/internal/models"
	"gorm.io/gorm"
)

// TimeTrackingRepository 定义了打卡记录的数据访问接口。记录只追加。
type TimeTrackingRepository interface {
	Create(ctx context.Context, event *models.TimeTrackingEvent) error
	// Latest 返回员工最近一次打卡，没有记录时返回 ErrRecordNotFound
	Latest(ctx context.Context, companyID, employeeID string) (*models.TimeTrackingEvent, error)
	// ListRange 返回 [from, to) 内的记录，employeeID 为空时返回整个企业
	ListRange(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]models.TimeTrackingEvent, error)
}

type gormTimeTrackingRepository struct {
	db *gorm.DB
}

// NewGormTimeTrackingRepository 创建一个新的 gormTimeTrackingRepository 实例
func NewGormTimeTrackingRepository(db *gorm.DB) TimeTrackingRepository {
	return &gormTimeTrackingRepository{db: db}
}

func (r *gormTimeTrackingRepository) Create(ctx context.Context, event *models.TimeTrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gormTimeTrackingRepository) Latest(ctx context.Context, companyID, employeeID string) (*models.TimeTrackingEvent, error) {
	var event models.TimeTrackingEvent
	if err := r.db.WithContext(ctx).
		Where("employee_id = ? AND company_id = ?", employeeID, companyID).
		Order("timestamp desc").
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormTimeTrackingRepository) ListRange(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]models.TimeTrackingEvent, error) {
	var events []models.TimeTrackingEvent
	tx := r.db.WithContext(ctx).
		Where("company_id = ? AND timestamp >= ? AND timestamp < ?", companyID, from, to)
	if employeeID != "" {
		tx = tx.Where("employee_id = ?", employeeID)
	}
	if err := tx.Order("timestamp asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
