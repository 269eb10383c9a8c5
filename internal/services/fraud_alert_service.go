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

var (
	// ErrFraudAlertNotFound 表示告警不存在或不属于该企业
	ErrFraudAlertNotFound = errors.New("欺诈告警未找到")
	// ErrAlertAlreadyResolved 表示告警已处理，状态不可回退
	ErrAlertAlreadyResolved = errors.New("欺诈告警已处理")
	// ErrInvalidAlertStatus 表示状态筛选值无效
	ErrInvalidAlertStatus = errors.New("无效的告警状态")
)

// FraudNotifier 在告警写入后通知企业管理员
type FraudNotifier interface {
	NotifyFraud(ctx context.Context, recipients []string, alert models.FraudAlert) error
}

// FraudReporter 是扫码校验器依赖的告警写入能力
type FraudReporter interface {
	Report(ctx context.Context, companyID, qrID string, hints IdentityHints) (*models.FraudAlert, error)
}

// FraudAlertService 定义了欺诈告警服务接口
type FraudAlertService interface {
	FraudReporter
	List(ctx context.Context, companyID string, status models.FraudAlertStatus) ([]models.FraudAlert, error)
	Resolve(ctx context.Context, companyID, alertID string) (*models.FraudAlert, error)
	CountNew(ctx context.Context, companyID string) (int64, error)
	// PollNewCount 立即并在每个 interval 调用 emit，直到 ctx 结束
	PollNewCount(ctx context.Context, companyID string, interval time.Duration, emit func(int64)) error
}

type fraudAlertService struct {
	repo     repositories.FraudAlertRepository
	users    repositories.UserRepository
	matcher  *EmployeeMatcher
	notifier FraudNotifier
	now      func() time.Time
}

// NewFraudAlertService 创建 FraudAlertService。users 或 notifier 为 nil 时不发送通知。
func NewFraudAlertService(repo repositories.FraudAlertRepository, users repositories.UserRepository, matcher *EmployeeMatcher, notifier FraudNotifier) FraudAlertService {
	return &fraudAlertService{
		repo:     repo,
		users:    users,
		matcher:  matcher,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Report 归属并写入一条新告警。写入失败不重试，由调用方决定是否忽略。
func (s *fraudAlertService) Report(ctx context.Context, companyID, qrID string, hints IdentityHints) (*models.FraudAlert, error) {
	attribution, err := s.matcher.AttributeFraud(ctx, companyID, hints)
	if err != nil {
		log.Printf("警告: 欺诈归属查询失败，按未识别记录: %v", err)
	}

	alert := &models.FraudAlert{
		CompanyID:     companyID,
		QRID:          qrID,
		Timestamp:     s.now(),
		Status:        models.FraudAlertStatusNew,
		EmployeeName:  attribution.EmployeeName,
		EmployeeEmail: attribution.EmployeeEmail,
		EmployeeID:    attribution.EmployeeID,
	}
	if hints.Fingerprint != "" {
		fp := hints.Fingerprint
		alert.DeviceID = &fp
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("create fraud alert: %w", err)
	}
	log.Printf("已记录欺诈告警 %s: 企业 %s, 二维码 %s, 归属 %s (%s)", alert.ID, companyID, qrID, alert.EmployeeName, attribution.Kind)

	s.notifyAsync(*alert)
	return alert, nil
}

func (s *fraudAlertService) notifyAsync(alert models.FraudAlert) {
	if s.notifier == nil || s.users == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		recipients, err := s.users.NotifyEmails(ctx, alert.CompanyID)
		if err != nil {
			log.Printf("警告: 查询告警通知邮箱失败: %v", err)
			return
		}
		if len(recipients) == 0 {
			return
		}
		if err := s.notifier.NotifyFraud(ctx, recipients, alert); err != nil {
			log.Printf("警告: 发送欺诈告警邮件失败 (告警 %s): %v", alert.ID, err)
		}
	}()
}

// List 返回企业告警 (新的在前)，并用当前员工数据补全归属
func (s *fraudAlertService) List(ctx context.Context, companyID string, status models.FraudAlertStatus) ([]models.FraudAlert, error) {
	if status != "" && status != models.FraudAlertStatusNew && status != models.FraudAlertStatusResolved {
		return nil, ErrInvalidAlertStatus
	}
	alerts, err := s.repo.ListByCompany(ctx, companyID, status)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return alerts, nil
	}
	ix, err := s.matcher.Index(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return ix.EnrichAlerts(alerts), nil
}

func (s *fraudAlertService) Resolve(ctx context.Context, companyID, alertID string) (*models.FraudAlert, error) {
	changed, err := s.repo.MarkResolved(ctx, companyID, alertID, s.now())
	if err != nil {
		return nil, err
	}
	alert, err := s.repo.FindByID(ctx, companyID, alertID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, ErrFraudAlertNotFound
		}
		return nil, err
	}
	if !changed {
		return alert, ErrAlertAlreadyResolved
	}
	return alert, nil
}

func (s *fraudAlertService) CountNew(ctx context.Context, companyID string) (int64, error) {
	return s.repo.CountByStatus(ctx, companyID, models.FraudAlertStatusNew)
}

func (s *fraudAlertService) PollNewCount(ctx context.Context, companyID string, interval time.Duration, emit func(int64)) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if count, err := s.CountNew(ctx, companyID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("警告: 统计未处理告警失败: %v", err)
		} else {
			emit(count)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
