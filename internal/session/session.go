// Package session 保存扫码端的会话状态 (设备绑定、缓存身份、登出标记)。
// 状态由 HTTP 层按 cookie 加载后注入扫码校验器，校验器本身不接触存储。
package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound 表示会话不存在或已过期
var ErrSessionNotFound = errors.New("会话不存在")

// Identity 是上次成功识别的员工身份
type Identity struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	InitialDeviceID string `json:"initialDeviceId,omitempty"`
}

// State 是单个扫码会话的全部状态
type State struct {
	LoggedOut bool      `json:"loggedOut"`
	Identity  *Identity `json:"identity,omitempty"`
	// Devices 记录每个企业绑定的设备指纹
	Devices map[string]string `json:"devices,omitempty"`
	// PendingRegistrationCompanyID 为最近一次进入注册流程的企业
	PendingRegistrationCompanyID string `json:"pendingRegistrationCompanyId,omitempty"`
	// PendingRegistrationQRID 为进入注册流程时扫的二维码
	PendingRegistrationQRID string `json:"pendingRegistrationQrId,omitempty"`
	// Grant 为最近一次到达打卡页的授权，任何被拒绝的扫码都会清除它
	Grant *Grant `json:"grant,omitempty"`
}

// Grant 允许会话在一段时间内为某个员工打卡
type Grant struct {
	CompanyID  string    `json:"companyId"`
	QRID       string    `json:"qrId"`
	EmployeeID string    `json:"employeeId"`
	IssuedAt   time.Time `json:"issuedAt"`
}

// Allows 判断授权是否覆盖该企业的该员工且未过期
func (g *Grant) Allows(companyID, employeeID string, now time.Time, ttl time.Duration) bool {
	if g == nil || companyID == "" || employeeID == "" {
		return false
	}
	if g.CompanyID != companyID || g.EmployeeID != employeeID {
		return false
	}
	return ttl <= 0 || !now.After(g.IssuedAt.Add(ttl))
}

// New 返回空会话
func New() *State {
	return &State{Devices: map[string]string{}}
}

// DeviceFor 返回企业绑定的指纹
func (s *State) DeviceFor(companyID string) (string, bool) {
	if s == nil || s.Devices == nil {
		return "", false
	}
	fp, ok := s.Devices[companyID]
	return fp, ok && fp != ""
}

// BindDevice 记录企业绑定的指纹
func (s *State) BindDevice(companyID, fingerprint string) {
	if s.Devices == nil {
		s.Devices = map[string]string{}
	}
	s.Devices[companyID] = fingerprint
}

// Remember 缓存身份
func (s *State) Remember(identity Identity) {
	s.Identity = &identity
}

// GrantTimeTracking 记录打卡授权
func (s *State) GrantTimeTracking(companyID, qrID, employeeID string, now time.Time) {
	s.Grant = &Grant{CompanyID: companyID, QRID: qrID, EmployeeID: employeeID, IssuedAt: now}
}

// RevokeGrant 清除打卡授权
func (s *State) RevokeGrant() {
	s.Grant = nil
}

// Store 持久化会话状态
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, state *State) error
	Delete(ctx context.Context, id string) error
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 30 * 24 * time.Hour
	}
	return ttl
}
