package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/repositories"
	"github.com/qr_attendance/internal/session"
	"github.com/qr_attendance/pkg/fingerprint"
	"github.com/qr_attendance/pkg/qrtoken"
)

// ScanState 是扫码页面的状态
type ScanState string

const (
	ScanStateLoading      ScanState = "LOADING"
	ScanStateInvalidQR    ScanState = "INVALID_QR"
	ScanStateTimeTracking ScanState = "TIME_TRACKING"
	ScanStateRegistration ScanState = "REGISTRATION"
)

// Outcome 区分到达终态的原因
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	// OutcomeAcceptedFlagged 仅在开发环境放行已停用二维码时出现，同时已记录告警
	OutcomeAcceptedFlagged Outcome = "accepted_flagged"
	OutcomeRejectedInvalid Outcome = "rejected_invalid"
	OutcomeRejectedFraud   Outcome = "rejected_fraud"
)

// 终态提示
const (
	MessageSessionEnded    = "session ended, rescan required"
	MessageInvalidCode     = "invalid or malformed QR code"
	MessageCodeNotFound    = "code not found: fraud reported"
	MessageCodeDeactivated = "fraud detected: deactivated code"
	MessageValidationError = "validation error, please rescan"
	MessageRegistration    = "device not recognized, registration required"
	MessageWelcomeBack     = "device recognized"
)

// ScanRequest 是一次扫码校验的输入
type ScanRequest struct {
	Data     string
	ForceNew bool
	Device   fingerprint.Attributes
}

// ScanResult 是校验终态
type ScanResult struct {
	State        ScanState         `json:"state"`
	Outcome      Outcome           `json:"outcome"`
	Message      string            `json:"message"`
	CompanyID    string            `json:"companyId,omitempty"`
	QRID         string            `json:"qrId,omitempty"`
	Employee     *session.Identity `json:"employee,omitempty"`
	FraudAlertID string            `json:"fraudAlertId,omitempty"`
}

// Accepted 是否进入了打卡或注册
func (r ScanResult) Accepted() bool {
	return r.Outcome == OutcomeAccepted || r.Outcome == OutcomeAcceptedFlagged
}

// ScanValidator 把一次扫码变为终态。会话状态由调用方加载并注入，校验器只修改传入的 State。
type ScanValidator struct {
	registry      CodeRegistry
	employees     repositories.EmployeeRepository
	fraud         FraudReporter
	fingerprints  *fingerprint.Generator
	allowInactive bool
	now           func() time.Time
}

// NewScanValidator 创建校验器。allowInactive 只应在开发环境开启。
func NewScanValidator(registry CodeRegistry, employees repositories.EmployeeRepository, fraud FraudReporter, gen *fingerprint.Generator, allowInactive bool) *ScanValidator {
	if gen == nil {
		gen = fingerprint.NewGenerator(nil)
	}
	return &ScanValidator{
		registry:      registry,
		employees:     employees,
		fraud:         fraud,
		fingerprints:  gen,
		allowInactive: allowInactive,
		now:           time.Now,
	}
}

func invalid(message string) ScanResult {
	return ScanResult{State: ScanStateInvalidQR, Outcome: OutcomeRejectedInvalid, Message: message}
}

// Validate 依次执行：登出检查、令牌解析、指纹计算、注册表查询、设备识别。
// 任何意外错误都以 INVALID_QR 结束，不会向调用方抛出。
func (v *ScanValidator) Validate(ctx context.Context, state *session.State, req ScanRequest) (result ScanResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("扫码校验发生异常: %v", r)
			result = invalid(MessageValidationError)
		}
	}()
	if state == nil {
		state = session.New()
	}
	// 只有本次扫码到达打卡页才重新授权
	state.RevokeGrant()

	if state.LoggedOut && !req.ForceNew {
		return invalid(MessageSessionEnded)
	}

	token, err := qrtoken.DecodeValid(req.Data)
	if err != nil {
		log.Printf("二维码数据无效: %v", err)
		return invalid(MessageInvalidCode)
	}

	fp := v.fingerprints.Compute(req.Device)
	hints := IdentityHints{Fingerprint: fp}
	if state.Identity != nil {
		hints.EmployeeID = state.Identity.ID
		hints.Email = state.Identity.Email
		hints.InitialDeviceID = state.Identity.InitialDeviceID
	}

	base := ScanResult{CompanyID: token.CompanyID, QRID: token.QRID}
	flagged := false

	code, err := v.registry.Lookup(ctx, token.QRID, token.CompanyID)
	switch {
	case errors.Is(err, ErrQRCodeNotFound):
		base.FraudAlertID = v.reportFraud(ctx, token, hints)
		return rejectFraud(base, MessageCodeNotFound)
	case err != nil:
		log.Printf("查询二维码 %s 失败: %v", token.QRID, err)
		return invalid(MessageValidationError)
	case !code.Active:
		base.FraudAlertID = v.reportFraud(ctx, token, hints)
		if !v.allowInactive {
			return rejectFraud(base, MessageCodeDeactivated)
		}
		log.Printf("警告: 开发模式放行已停用二维码 %s", token.QRID)
		flagged = true
	}

	accept := func(r ScanResult) ScanResult {
		r.Outcome = OutcomeAccepted
		if flagged {
			r.Outcome = OutcomeAcceptedFlagged
		}
		return r
	}

	if !req.ForceNew && !state.LoggedOut {
		if bound, ok := state.DeviceFor(token.CompanyID); ok && bound == fp {
			employee, err := v.recognize(ctx, token.CompanyID, fp, state.Identity)
			if err != nil {
				log.Printf("识别员工失败: %v", err)
				return invalid(MessageValidationError)
			}
			if employee != nil {
				identity := session.Identity{
					ID:              employee.ID,
					Name:            employee.Name,
					Email:           employee.Email,
					InitialDeviceID: employee.Fingerprint(),
				}
				state.Remember(identity)
				state.GrantTimeTracking(token.CompanyID, token.QRID, employee.ID, v.now())
				if state.PendingRegistrationCompanyID == token.CompanyID {
					state.PendingRegistrationCompanyID = ""
					state.PendingRegistrationQRID = ""
				}
				base.State = ScanStateTimeTracking
				base.Message = MessageWelcomeBack
				base.Employee = &identity
				return accept(base)
			}
		}
	}

	state.LoggedOut = false
	state.PendingRegistrationCompanyID = token.CompanyID
	state.PendingRegistrationQRID = token.QRID
	base.State = ScanStateRegistration
	base.Message = MessageRegistration
	return accept(base)
}

// recognize 先按注册指纹查找，再回退到会话缓存的身份 (须属于该企业)。都未命中时返回 nil。
func (v *ScanValidator) recognize(ctx context.Context, companyID, fp string, cached *session.Identity) (*models.RegisteredEmployee, error) {
	employee, err := v.employees.FindByDevice(ctx, companyID, fp)
	if err == nil {
		return employee, nil
	}
	if !errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, err
	}
	if cached == nil || cached.ID == "" {
		return nil, nil
	}
	employee, err = v.employees.FindByID(ctx, companyID, cached.ID)
	if err == nil {
		return employee, nil
	}
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// reportFraud 同步写入告警，失败只记录日志
func (v *ScanValidator) reportFraud(ctx context.Context, token *qrtoken.Token, hints IdentityHints) string {
	if v.fraud == nil {
		return ""
	}
	alert, err := v.fraud.Report(ctx, token.CompanyID, token.QRID, hints)
	if err != nil {
		log.Printf("警告: 记录欺诈告警失败 (企业 %s, 二维码 %s): %v", token.CompanyID, token.QRID, err)
		return ""
	}
	return alert.ID
}

func rejectFraud(base ScanResult, message string) ScanResult {
	base.State = ScanStateInvalidQR
	base.Outcome = OutcomeRejectedFraud
	base.Message = message
	return base
}
