package repositories

import (
	"context"

	"github.com/qr_attendance/internal/models"
	"gorm.io/gorm"
)

// UserRepository 定义了管理员账号的数据访问接口
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// NotifyEmails 返回企业管理员配置的告警通知邮箱
	NotifyEmails(ctx context.Context, companyID string) ([]string, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository 创建一个新的 gormUserRepository 实例
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) NotifyEmails(ctx context.Context, companyID string) ([]string, error) {
	var emails []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("company_id = ? AND notify_email IS NOT NULL AND notify_email <> ''", companyID).
		Pluck("notify_email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}
