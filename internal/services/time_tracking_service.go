package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/repositories"
)

// ErrInvalidAction 表示打卡动作不是 entry 或 exit
var ErrInvalidAction = errors.New("无效的打卡动作")

// TimeTrackingService 定义了打卡台账服务接口
type TimeTrackingService interface {
	// Record 追加一条打卡记录，时间戳取服务器时间
	Record(ctx context.Context, employeeID, companyID string, action models.TimeTrackingAction) (*models.TimeTrackingEvent, error)
	// RecordNext 记录员工的下一个动作
	RecordNext(ctx context.Context, employeeID, companyID string) (*models.TimeTrackingEvent, error)
	// NextAction 无记录时返回 entry，否则返回最近一次动作的相反动作
	NextAction(ctx context.Context, employeeID, companyID string) (models.TimeTrackingAction, error)
}

type timeTrackingService struct {
	repo      repositories.TimeTrackingRepository
	employees repositories.EmployeeRepository
	now       func() time.Time
}

// NewTimeTrackingService 创建 TimeTrackingService
func NewTimeTrackingService(repo repositories.TimeTrackingRepository, employees repositories.EmployeeRepository) TimeTrackingService {
	return &timeTrackingService{
		repo:      repo,
		employees: employees,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *timeTrackingService) Record(ctx context.Context, employeeID, companyID string, action models.TimeTrackingAction) (*models.TimeTrackingEvent, error) {
	if !action.Valid() {
		return nil, ErrInvalidAction
	}
	if err := s.ensureEmployee(ctx, employeeID, companyID); err != nil {
		return nil, err
	}

	event := &models.TimeTrackingEvent{
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Action:     action,
		Timestamp:  s.now(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("record time tracking: %w", err)
	}
	log.Printf("员工 %s 在企业 %s 打卡: %s", employeeID, companyID, action)
	return event, nil
}

func (s *timeTrackingService) RecordNext(ctx context.Context, employeeID, companyID string) (*models.TimeTrackingEvent, error) {
	action, err := s.NextAction(ctx, employeeID, companyID)
	if err != nil {
		return nil, err
	}
	return s.Record(ctx, employeeID, companyID, action)
}

func (s *timeTrackingService) NextAction(ctx context.Context, employeeID, companyID string) (models.TimeTrackingAction, error) {
	last, err := s.repo.Latest(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return models.ActionEntry, nil
		}
		return "", err
	}
	return last.Action.Toggle(), nil
}

func (s *timeTrackingService) ensureEmployee(ctx context.Context, employeeID, companyID string) error {
	if _, err := s.employees.FindByID(ctx, companyID, employeeID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}
	return nil
}
