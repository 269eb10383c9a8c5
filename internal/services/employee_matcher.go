package services

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/repositories"
)

// DefaultPrefixLength 指纹前缀匹配默认比较的字符数
const DefaultPrefixLength = 10

// MatchKind 表示命中的匹配规则
type MatchKind string

const (
	MatchByID          MatchKind = "id"
	MatchByFingerprint MatchKind = "fingerprint"
	MatchByPrefix      MatchKind = "fingerprint_prefix"
	MatchByEmail       MatchKind = "email"
	MatchNone          MatchKind = "none"
)

// IdentityHints 是用于归属的线索，均可为空
type IdentityHints struct {
	EmployeeID      string
	Email           string
	Fingerprint     string // 当前设备指纹
	InitialDeviceID string // 会话缓存的注册指纹
}

// Attribution 是归属结果。未识别时 EmployeeID 和 EmployeeEmail 为 nil。
type Attribution struct {
	EmployeeID    *string
	EmployeeName  string
	EmployeeEmail *string
	Kind          MatchKind
}

var emailFolder = cases.Fold()

func foldEmail(email string) string {
	return emailFolder.String(strings.TrimSpace(email))
}

// EmployeeIndex 是一个企业员工的只读索引，同一批次的多次匹配共享
type EmployeeIndex struct {
	byID          map[string]*models.RegisteredEmployee
	byFingerprint map[string]*models.RegisteredEmployee
	byEmail       map[string]*models.RegisteredEmployee
	ordered       []*models.RegisteredEmployee // 按 id 升序
	prefixLength  int
}

// NewEmployeeIndex 构建索引。多个员工共享同一键时保留 id 最小者，结果与输入顺序无关。
func NewEmployeeIndex(employees []models.RegisteredEmployee, prefixLength int) *EmployeeIndex {
	if prefixLength <= 0 {
		prefixLength = DefaultPrefixLength
	}
	ordered := make([]*models.RegisteredEmployee, 0, len(employees))
	for i := range employees {
		ordered = append(ordered, &employees[i])
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	ix := &EmployeeIndex{
		byID:          make(map[string]*models.RegisteredEmployee, len(ordered)),
		byFingerprint: make(map[string]*models.RegisteredEmployee, len(ordered)),
		byEmail:       make(map[string]*models.RegisteredEmployee, len(ordered)),
		ordered:       ordered,
		prefixLength:  prefixLength,
	}
	for _, emp := range ordered {
		if _, ok := ix.byID[emp.ID]; !ok {
			ix.byID[emp.ID] = emp
		}
		if fp := emp.Fingerprint(); fp != "" {
			if _, ok := ix.byFingerprint[fp]; !ok {
				ix.byFingerprint[fp] = emp
			}
		}
		if email := foldEmail(emp.Email); email != "" {
			if _, ok := ix.byEmail[email]; !ok {
				ix.byEmail[email] = emp
			}
		}
	}
	return ix
}

// Match 按优先级匹配：id > 完整指纹 > 指纹前缀 > 邮箱
func (ix *EmployeeIndex) Match(hints IdentityHints) (*models.RegisteredEmployee, MatchKind) {
	if hints.EmployeeID != "" {
		if emp, ok := ix.byID[hints.EmployeeID]; ok {
			return emp, MatchByID
		}
	}

	fingerprints := candidateFingerprints(hints)
	for _, fp := range fingerprints {
		if emp, ok := ix.byFingerprint[fp]; ok {
			return emp, MatchByFingerprint
		}
	}

	for _, fp := range fingerprints {
		if emp := ix.matchPrefix(fp); emp != nil {
			return emp, MatchByPrefix
		}
	}

	if email := foldEmail(hints.Email); email != "" {
		if emp, ok := ix.byEmail[email]; ok {
			return emp, MatchByEmail
		}
	}
	return nil, MatchNone
}

// matchPrefix 比较前 prefixLength 个字符，任一方长度不足时不参与匹配
func (ix *EmployeeIndex) matchPrefix(fp string) *models.RegisteredEmployee {
	n := ix.prefixLength
	if len(fp) < n {
		return nil
	}
	prefix := strings.ToLower(fp[:n])
	for _, emp := range ix.ordered {
		stored := emp.Fingerprint()
		if len(stored) < n {
			continue
		}
		if strings.ToLower(stored[:n]) == prefix {
			return emp
		}
	}
	return nil
}

func candidateFingerprints(hints IdentityHints) []string {
	var out []string
	if hints.Fingerprint != "" {
		out = append(out, hints.Fingerprint)
	}
	if hints.InitialDeviceID != "" && hints.InitialDeviceID != hints.Fingerprint {
		out = append(out, hints.InitialDeviceID)
	}
	return out
}

// Attribute 返回线索对应的归属结果
func (ix *EmployeeIndex) Attribute(hints IdentityHints) Attribution {
	emp, kind := ix.Match(hints)
	if emp == nil {
		return Attribution{EmployeeName: models.UnidentifiedEmployeeName, Kind: MatchNone}
	}
	id, email := emp.ID, emp.Email
	return Attribution{EmployeeID: &id, EmployeeName: emp.Name, EmployeeEmail: &email, Kind: kind}
}

// EnrichAlerts 用员工信息补全告警，返回新切片，不修改入参
func (ix *EmployeeIndex) EnrichAlerts(alerts []models.FraudAlert) []models.FraudAlert {
	out := make([]models.FraudAlert, len(alerts))
	for i, alert := range alerts {
		hints := IdentityHints{}
		if alert.EmployeeID != nil {
			hints.EmployeeID = *alert.EmployeeID
		}
		if alert.DeviceID != nil {
			hints.Fingerprint = *alert.DeviceID
		}
		if alert.EmployeeEmail != nil {
			hints.Email = *alert.EmployeeEmail
		}

		if emp, _ := ix.Match(hints); emp != nil {
			id, email := emp.ID, emp.Email
			alert.EmployeeID = &id
			alert.EmployeeEmail = &email
			if emp.Name != "" {
				alert.EmployeeName = emp.Name
			}
		} else if alert.EmployeeName == "" {
			alert.EmployeeName = models.UnidentifiedEmployeeName
		}
		out[i] = alert
	}
	return out
}

// EmployeeMatcher 从仓库加载企业员工并进行归属
type EmployeeMatcher struct {
	repo         repositories.EmployeeRepository
	prefixLength int
}

// NewEmployeeMatcher 创建匹配器
func NewEmployeeMatcher(repo repositories.EmployeeRepository, prefixLength int) *EmployeeMatcher {
	if prefixLength <= 0 {
		prefixLength = DefaultPrefixLength
	}
	return &EmployeeMatcher{repo: repo, prefixLength: prefixLength}
}

// Index 加载企业员工并构建索引
func (m *EmployeeMatcher) Index(ctx context.Context, companyID string) (*EmployeeIndex, error) {
	employees, err := m.repo.ListByCompany(ctx, companyID, "")
	if err != nil {
		return nil, err
	}
	return NewEmployeeIndex(employees, m.prefixLength), nil
}

// AttributeFraud 在企业范围内为欺诈扫码寻找最可能的员工
func (m *EmployeeMatcher) AttributeFraud(ctx context.Context, companyID string, hints IdentityHints) (Attribution, error) {
	ix, err := m.Index(ctx, companyID)
	if err != nil {
		return Attribution{EmployeeName: models.UnidentifiedEmployeeName, Kind: MatchNone}, err
	}
	return ix.Attribute(hints), nil
}
