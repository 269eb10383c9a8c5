package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/repositories"
	"github.com/qr_attendance/pkg/utils"
)

// ErrEmployeeNotFound 表示员工未找到
var ErrEmployeeNotFound = errors.New("员工未找到")

// ErrEmployeeNameRequired 表示姓名为空
var ErrEmployeeNameRequired = errors.New("员工姓名不能为空")

// ErrEmailBoundToOtherDevice 表示邮箱已由其他设备注册
var ErrEmailBoundToOtherDevice = errors.New("该邮箱已在其他设备上注册")

// RegisterEmployeeInput 是员工自助注册的输入
type RegisterEmployeeInput struct {
	CompanyID   string
	Name        string
	Email       string
	DeviceName  string
	Fingerprint string
}

// EmployeeService 定义了员工服务的接口
type EmployeeService interface {
	// Register 创建员工；企业内邮箱已存在且为同一设备时返回已有员工，created 为 false
	Register(ctx context.Context, input RegisterEmployeeInput) (employee *models.RegisteredEmployee, created bool, err error)
	GetEmployee(ctx context.Context, companyID, id string) (*models.RegisteredEmployee, error)
	GetEmployees(ctx context.Context, companyID, search string) ([]models.RegisteredEmployee, error)
	// DeleteEmployee 删除员工及其打卡记录和告警
	DeleteEmployee(ctx context.Context, companyID, id string) error
}

// employeeService 是 EmployeeService 的实现
type employeeService struct {
	repo repositories.EmployeeRepository
}

// NewEmployeeService 创建一个新的 employeeService 实例
func NewEmployeeService(repo repositories.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) Register(ctx context.Context, input RegisterEmployeeInput) (*models.RegisteredEmployee, bool, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if input.CompanyID == "" {
		return nil, false, ErrCompanyRequired
	}
	if name == "" {
		return nil, false, ErrEmployeeNameRequired
	}
	if email == "" || !utils.ValidateEmailFormat(email) {
		return nil, false, utils.ErrInvalidEmailFormat
	}

	existing, err := s.repo.FindByEmail(ctx, input.CompanyID, email)
	if err == nil {
		if input.Fingerprint == "" || !strings.EqualFold(existing.Fingerprint(), input.Fingerprint) {
			log.Printf("警告: 邮箱 %s 已由员工 %s 的其他设备注册，拒绝绑定", email, existing.ID)
			return nil, false, ErrEmailBoundToOtherDevice
		}
		log.Printf("邮箱 %s 已在企业 %s 注册，返回已有员工 %s", email, input.CompanyID, existing.ID)
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, false, err
	}

	employee := &models.RegisteredEmployee{
		Name:      name,
		Email:     email,
		CompanyID: input.CompanyID,
	}
	if input.Fingerprint != "" {
		fp := input.Fingerprint
		employee.InitialDeviceID = &fp
	}
	if dn := strings.TrimSpace(input.DeviceName); dn != "" {
		employee.DeviceName = &dn
	}

	created, err := s.repo.CreateEmployee(ctx, employee)
	if err != nil {
		return nil, false, fmt.Errorf("create employee: %w", err)
	}
	return created, true, nil
}

// GetEmployee 返回企业内的员工
func (s *employeeService) GetEmployee(ctx context.Context, companyID, id string) (*models.RegisteredEmployee, error) {
	employee, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound // 转为服务层定义的错误
		}
		return nil, err
	}
	return employee, nil
}

// GetEmployees 处理获取员工列表的业务逻辑
func (s *employeeService) GetEmployees(ctx context.Context, companyID, search string) ([]models.RegisteredEmployee, error) {
	return s.repo.ListByCompany(ctx, companyID, strings.TrimSpace(search))
}

func (s *employeeService) DeleteEmployee(ctx context.Context, companyID, id string) error {
	if err := s.repo.DeleteEmployee(ctx, companyID, id); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}
	log.Printf("已删除企业 %s 的员工 %s 及其关联记录", companyID, id)
	return nil
}
