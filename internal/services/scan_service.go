package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/session"
	"github.com/qr_attendance/pkg/fingerprint"
)

var (
	// ErrRegistrationNotAllowed 表示会话未进入该企业的注册流程
	ErrRegistrationNotAllowed = errors.New("请先扫描该企业的有效二维码再注册")
	// ErrIdentityMismatch 表示请求的员工与会话中的身份不一致
	ErrIdentityMismatch = errors.New("员工身份与当前会话不一致")
	// ErrScanRequired 表示会话没有该企业有效的打卡授权，需要重新扫码
	ErrScanRequired = errors.New("请先扫描该企业当前的二维码再打卡")
)

// TimeTrackingGrantTTL 为一次有效扫码后允许打卡的时长
const TimeTrackingGrantTTL = 10 * time.Minute

// RegistrationRequest 是扫码后的注册请求
type RegistrationRequest struct {
	CompanyID  string
	Name       string
	Email      string
	DeviceName string
	Device     fingerprint.Attributes
}

// ScanService 在会话存储之上串联扫码校验、注册、打卡和登出
type ScanService interface {
	Validate(ctx context.Context, sessionID string, req ScanRequest) ScanResult
	Register(ctx context.Context, sessionID string, req RegistrationRequest) (*models.RegisteredEmployee, error)
	NextAction(ctx context.Context, sessionID, companyID, employeeID string) (models.TimeTrackingAction, error)
	// RecordTime action 为空时记录下一个动作
	RecordTime(ctx context.Context, sessionID, companyID, employeeID string, action models.TimeTrackingAction) (*models.TimeTrackingEvent, error)
	Logout(ctx context.Context, sessionID string) error
}

type scanService struct {
	store        session.Store
	validator    *ScanValidator
	employees    EmployeeService
	ledger       TimeTrackingService
	fingerprints *fingerprint.Generator
	grantTTL     time.Duration
	now          func() time.Time
}

// NewScanService 创建 ScanService
func NewScanService(store session.Store, validator *ScanValidator, employees EmployeeService, ledger TimeTrackingService, gen *fingerprint.Generator) ScanService {
	if gen == nil {
		gen = fingerprint.NewGenerator(nil)
	}
	return &scanService{
		store:        store,
		validator:    validator,
		employees:    employees,
		ledger:       ledger,
		fingerprints: gen,
		grantTTL:     TimeTrackingGrantTTL,
		now:          time.Now,
	}
}

// load 返回会话，不存在时返回空会话
func (s *scanService) load(ctx context.Context, sessionID string) (*session.State, error) {
	state, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return session.New(), nil
	}
	return state, err
}

func (s *scanService) Validate(ctx context.Context, sessionID string, req ScanRequest) ScanResult {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		log.Printf("加载扫码会话失败: %v", err)
		return invalid(MessageValidationError)
	}

	result := s.validator.Validate(ctx, state, req)
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		log.Printf("警告: 保存扫码会话失败: %v", err)
	}
	return result
}

func (s *scanService) Register(ctx context.Context, sessionID string, req RegistrationRequest) (*models.RegisteredEmployee, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if req.CompanyID == "" || state.PendingRegistrationCompanyID != req.CompanyID {
		return nil, ErrRegistrationNotAllowed
	}

	fp := s.fingerprints.Compute(req.Device)
	employee, created, err := s.employees.Register(ctx, RegisterEmployeeInput{
		CompanyID:   req.CompanyID,
		Name:        req.Name,
		Email:       req.Email,
		DeviceName:  req.DeviceName,
		Fingerprint: fp,
	})
	if err != nil {
		return nil, err
	}

	state.BindDevice(req.CompanyID, fp)
	state.Remember(session.Identity{
		ID:              employee.ID,
		Name:            employee.Name,
		Email:           employee.Email,
		InitialDeviceID: employee.Fingerprint(),
	})
	state.GrantTimeTracking(req.CompanyID, state.PendingRegistrationQRID, employee.ID, s.now())
	state.PendingRegistrationCompanyID = ""
	state.PendingRegistrationQRID = ""
	state.LoggedOut = false
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("save scan session: %w", err)
	}

	if created {
		log.Printf("员工 %s 已注册到企业 %s", employee.ID, req.CompanyID)
	}
	return employee, nil
}

// authorize 要求会话中缓存的身份就是 employeeID，且最近一次扫码为该企业授予了打卡
func (s *scanService) authorize(ctx context.Context, sessionID, companyID, employeeID string) error {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if state.LoggedOut || state.Identity == nil || state.Identity.ID != employeeID {
		return ErrIdentityMismatch
	}
	if !state.Grant.Allows(companyID, employeeID, s.now(), s.grantTTL) {
		return ErrScanRequired
	}
	return nil
}

func (s *scanService) NextAction(ctx context.Context, sessionID, companyID, employeeID string) (models.TimeTrackingAction, error) {
	if err := s.authorize(ctx, sessionID, companyID, employeeID); err != nil {
		return "", err
	}
	return s.ledger.NextAction(ctx, employeeID, companyID)
}

func (s *scanService) RecordTime(ctx context.Context, sessionID, companyID, employeeID string, action models.TimeTrackingAction) (*models.TimeTrackingEvent, error) {
	if err := s.authorize(ctx, sessionID, companyID, employeeID); err != nil {
		return nil, err
	}
	if action == "" {
		return s.ledger.RecordNext(ctx, employeeID, companyID)
	}
	return s.ledger.Record(ctx, employeeID, companyID, action)
}

// Logout 标记会话已登出，之后的扫码需带 forceNew 才能继续
func (s *scanService) Logout(ctx context.Context, sessionID string) error {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	state.LoggedOut = true
	state.RevokeGrant()
	return s.store.Save(ctx, sessionID, state)
}
