package repositories

import (
	"context"
	"time"

	"github.com/qr_attendance/internal/models"
	"gorm.io/gorm"
)

// FraudAlertRepository 定义了欺诈告警的数据访问接口
type FraudAlertRepository interface {
	Create(ctx context.Context, alert *models.FraudAlert) error
	ListByCompany(ctx context.Context, companyID string, status models.FraudAlertStatus) ([]models.FraudAlert, error)
	FindByID(ctx context.Context, companyID, id string) (*models.FraudAlert, error)
	// MarkResolved 仅当告警仍为 new 时更新，返回是否有记录被修改
	MarkResolved(ctx context.Context, companyID, id string, at time.Time) (bool, error)
	CountByStatus(ctx context.Context, companyID string, status models.FraudAlertStatus) (int64, error)
}

type gormFraudAlertRepository struct {
	db *gorm.DB
}

// NewGormFraudAlertRepository 创建一个新的 gormFraudAlertRepository 实例
func NewGormFraudAlertRepository(db *gorm.DB) FraudAlertRepository {
	return &gormFraudAlertRepository{db: db}
}

func (r *gormFraudAlertRepository) Create(ctx context.Context, alert *models.FraudAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// ListByCompany 按时间倒序返回告警，status 为空时返回全部
func (r *gormFraudAlertRepository) ListByCompany(ctx context.Context, companyID string, status models.FraudAlertStatus) ([]models.FraudAlert, error) {
	var alerts []models.FraudAlert
	tx := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if err := tx.Order("timestamp desc, id asc").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *gormFraudAlertRepository) FindByID(ctx context.Context, companyID, id string) (*models.FraudAlert, error) {
	var alert models.FraudAlert
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *gormFraudAlertRepository) MarkResolved(ctx context.Context, companyID, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.FraudAlert{}).
		Where("id = ? AND company_id = ? AND status = ?", id, companyID, models.FraudAlertStatusNew).
		Updates(map[string]interface{}{
			"status":      models.FraudAlertStatusResolved,
			"resolved_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormFraudAlertRepository) CountByStatus(ctx context.Context, companyID string, status models.FraudAlertStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FraudAlert{}).
		Where("company_id = ? AND status = ?", companyID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
