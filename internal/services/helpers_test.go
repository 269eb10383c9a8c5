package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/repositories"
	"github.com/qr_attendance/internal/session"
	"github.com/qr_attendance/pkg/db"
	"github.com/qr_attendance/pkg/fingerprint"
	"github.com/qr_attendance/pkg/qrtoken"
)

type testEnv struct {
	db        *gorm.DB
	employees repositories.EmployeeRepository
	qrRepo    repositories.QRCodeRepository
	alertRepo repositories.FraudAlertRepository
	timeRepo  repositories.TimeTrackingRepository

	registry  QRCodeService
	matcher   *EmployeeMatcher
	alerts    FraudAlertService
	ledger    TimeTrackingService
	staff     EmployeeService
	validator *ScanValidator
	store     *session.MemoryStore
	scan      ScanService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.Open(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	env := &testEnv{
		db:        conn,
		employees: repositories.NewGormEmployeeRepository(conn),
		qrRepo:    repositories.NewGormQRCodeRepository(conn),
		alertRepo: repositories.NewGormFraudAlertRepository(conn),
		timeRepo:  repositories.NewGormTimeTrackingRepository(conn),
		store:     session.NewMemoryStore(0),
	}
	env.registry = NewQRCodeService(env.qrRepo, "http://localhost:3000", 0)
	env.matcher = NewEmployeeMatcher(env.employees, DefaultPrefixLength)
	env.alerts = NewFraudAlertService(env.alertRepo, nil, env.matcher, nil)
	env.ledger = NewTimeTrackingService(env.timeRepo, env.employees)
	env.staff = NewEmployeeService(env.employees)
	env.validator = NewScanValidator(env.registry, env.employees, env.alerts, nil, false)
	env.scan = NewScanService(env.store, env.validator, env.staff, env.ledger, nil)
	return env
}

func (e *testEnv) issue(t *testing.T, companyID string) *models.QRCode {
	t.Helper()
	code, err := e.registry.Issue(context.Background(), companyID)
	require.NoError(t, err)
	return code
}

func (e *testEnv) alertCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.FraudAlert{}).Count(&n).Error)
	return n
}

func tokenData(t *testing.T, companyID, qrID string) string {
	t.Helper()
	raw, err := qrtoken.Token{CompanyID: companyID, QRID: qrID, Timestamp: 1, Nonce: "n"}.Marshal()
	require.NoError(t, err)
	return raw
}

func deviceA() fingerprint.Attributes {
	return fingerprint.Attributes{
		UserAgent: "Mozilla/5.0 (Android 14)", Language: "fr-FR", Platform: "Linux armv8l",
		ScreenWidth: 412, ScreenHeight: 915, ColorDepth: 24, Timezone: "Europe/Paris", PixelRatio: 2.625,
	}
}

func deviceB() fingerprint.Attributes {
	d := deviceA()
	d.UserAgent = "Mozilla/5.0 (iPad)"
	d.PixelRatio = 2
	return d
}

func strPtr(s string) *string { return &s }
