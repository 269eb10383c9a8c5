package repositories

import (
	"context"
	"strings"

	"github.com/qr_attendance/internal/models"
	"gorm.io/gorm"
)

// EmployeeRepository 定义了已注册员工的数据仓库接口
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee *models.RegisteredEmployee) (*models.RegisteredEmployee, error)
	FindByID(ctx context.Context, companyID, id string) (*models.RegisteredEmployee, error)
	// FindByEmail 在企业内按邮箱查找，忽略大小写
	FindByEmail(ctx context.Context, companyID, email string) (*models.RegisteredEmployee, error)
	// FindByDevice 按注册设备指纹查找，多个匹配时取 id 最小者
	FindByDevice(ctx context.Context, companyID, fingerprint string) (*models.RegisteredEmployee, error)
	ListByCompany(ctx context.Context, companyID, search string) ([]models.RegisteredEmployee, error)
	// DeleteEmployee 删除员工及其打卡记录和欺诈告警
	DeleteEmployee(ctx context.Context, companyID, id string) error
}

// gormEmployeeRepository 是 EmployeeRepository 的 GORM 实现
type gormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository 创建一个新的 gormEmployeeRepository 实例
func NewGormEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &gormEmployeeRepository{db: db}
}

// CreateEmployee 在数据库中创建一个新的员工记录
func (r *gormEmployeeRepository) CreateEmployee(ctx context.Context, employee *models.RegisteredEmployee) (*models.RegisteredEmployee, error) {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *gormEmployeeRepository) FindByID(ctx context.Context, companyID, id string) (*models.RegisteredEmployee, error) {
	var employee models.RegisteredEmployee
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *gormEmployeeRepository) FindByEmail(ctx context.Context, companyID, email string) (*models.RegisteredEmployee, error) {
	var employee models.RegisteredEmployee
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND LOWER(email) = ?", companyID, strings.ToLower(strings.TrimSpace(email))).
		Order("id asc").
		First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *gormEmployeeRepository) FindByDevice(ctx context.Context, companyID, fingerprint string) (*models.RegisteredEmployee, error) {
	var employee models.RegisteredEmployee
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND initial_device_id = ?", companyID, fingerprint).
		Order("id asc").
		First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *gormEmployeeRepository) ListByCompany(ctx context.Context, companyID, search string) ([]models.RegisteredEmployee, error) {
	var employees []models.RegisteredEmployee
	tx := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}
	if err := tx.Order("name asc, id asc").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *gormEmployeeRepository) DeleteEmployee(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employee models.RegisteredEmployee
		if err := tx.Where("id = ? AND company_id = ?", id, companyID).First(&employee).Error; err != nil {
			return err
		}

		if err := tx.Where("employee_id = ? AND company_id = ?", employee.ID, companyID).
			Delete(&models.TimeTrackingEvent{}).Error; err != nil {
			return err
		}

		// 告警可能只记录了邮箱
		if err := tx.Where("company_id = ? AND (employee_id = ? OR LOWER(employee_email) = ?)",
			companyID, employee.ID, strings.ToLower(employee.Email)).
			Delete(&models.FraudAlert{}).Error; err != nil {
			return err
		}

		return tx.Delete(&employee).Error
	})
}
