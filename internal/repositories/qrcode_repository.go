package repositories

import (
	"context"

	"github.com/qr_attendance/internal/models"
	"gorm.io/gorm"
)

// QRCodeRepository 定义了二维码注册表的数据访问接口
type QRCodeRepository interface {
	// IssueActive 在一个事务中停用企业现有的有效二维码并插入 code (active=true)
	IssueActive(ctx context.Context, code *models.QRCode) error
	FindByID(ctx context.Context, qrID, companyID string) (*models.QRCode, error)
	FindActive(ctx context.Context, companyID string) (*models.QRCode, error)
}

type gormQRCodeRepository struct {
	db *gorm.DB
}

// NewGormQRCodeRepository 创建一个新的 gormQRCodeRepository 实例
func NewGormQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &gormQRCodeRepository{db: db}
}

func (r *gormQRCodeRepository) IssueActive(ctx context.Context, code *models.QRCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.QRCode{}).
			Where("company_id = ? AND active = ?", code.CompanyID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		code.Active = true
		return tx.Create(code).Error
	})
}

func (r *gormQRCodeRepository) FindByID(ctx context.Context, qrID, companyID string) (*models.QRCode, error) {
	var code models.QRCode
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", qrID, companyID).
		First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *gormQRCodeRepository) FindActive(ctx context.Context, companyID string) (*models.QRCode, error) {
	var code models.QRCode
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND active = ?", companyID, true).
		Order("created_at desc").
		First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}
