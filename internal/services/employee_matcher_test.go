package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qr_attendance/internal/models"
)

func matcherFixture() []models.RegisteredEmployee {
	return []models.RegisteredEmployee{
		{ID: "E2", Name: "Bob", Email: "Bob@Example.com", CompanyID: "C1", InitialDeviceID: strPtr("bbbbbbbbbb0000000000")},
		{ID: "E1", Name: "Alice", Email: "alice@example.com", CompanyID: "C1", InitialDeviceID: strPtr("aaaaaaaaaa1111111111")},
		{ID: "E3", Name: "Carol", Email: "carol@example.com", CompanyID: "C1", InitialDeviceID: strPtr("aaaaaaaaaa2222222222")},
		{ID: "E4", Name: "Dan", Email: "dan@example.com", CompanyID: "C1"},
	}
}

func TestEmployeeIndex_Priority(t *testing.T) {
	ix := NewEmployeeIndex(matcherFixture(), 10)

	tests := []struct {
		name     string
		hints    IdentityHints
		wantID   string
		wantKind MatchKind
	}{
		{
			name:     "id beats fingerprint of another employee",
			hints:    IdentityHints{EmployeeID: "E2", Fingerprint: "aaaaaaaaaa1111111111"},
			wantID:   "E2",
			wantKind: MatchByID,
		},
		{
			name:     "unknown id falls through to exact fingerprint",
			hints:    IdentityHints{EmployeeID: "E-gone", Fingerprint: "aaaaaaaaaa2222222222"},
			wantID:   "E3",
			wantKind: MatchByFingerprint,
		},
		{
			name:     "cached initial device counts as exact fingerprint",
			hints:    IdentityHints{Fingerprint: "zzzz", InitialDeviceID: "bbbbbbbbbb0000000000"},
			wantID:   "E2",
			wantKind: MatchByFingerprint,
		},
		{
			name:     "exact fingerprint beats email",
			hints:    IdentityHints{Fingerprint: "bbbbbbbbbb0000000000", Email: "alice@example.com"},
			wantID:   "E2",
			wantKind: MatchByFingerprint,
		},
		{
			name:     "prefix tie resolves to smallest id",
			hints:    IdentityHints{Fingerprint: "AAAAAAAAAA9999999999"},
			wantID:   "E1",
			wantKind: MatchByPrefix,
		},
		{
			name:     "prefix beats email",
			hints:    IdentityHints{Fingerprint: "bbbbbbbbbbffff", Email: "dan@example.com"},
			wantID:   "E2",
			wantKind: MatchByPrefix,
		},
		{
			name:     "short fingerprint skips prefix match",
			hints:    IdentityHints{Fingerprint: "aaaa", Email: "DAN@example.com"},
			wantID:   "E4",
			wantKind: MatchByEmail,
		},
		{
			name:     "email is case insensitive",
			hints:    IdentityHints{Email: "  bob@EXAMPLE.com "},
			wantID:   "E2",
			wantKind: MatchByEmail,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emp, kind := ix.Match(tt.hints)
			require.NotNil(t, emp)
			assert.Equal(t, tt.wantID, emp.ID)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestEmployeeIndex_Unidentified(t *testing.T) {
	ix := NewEmployeeIndex(matcherFixture(), 10)
	attr := ix.Attribute(IdentityHints{Fingerprint: "cccccccccc", Email: "nobody@example.com"})

	assert.Equal(t, models.UnidentifiedEmployeeName, attr.EmployeeName)
	assert.Nil(t, attr.EmployeeID)
	assert.Nil(t, attr.EmployeeEmail)
	assert.Equal(t, MatchNone, attr.Kind)
}

func TestEmployeeIndex_DeterministicAcrossInputOrder(t *testing.T) {
	employees := matcherFixture()
	reversed := make([]models.RegisteredEmployee, len(employees))
	for i := range employees {
		reversed[len(employees)-1-i] = employees[i]
	}
	hints := IdentityHints{Fingerprint: "aaaaaaaaaa0000"}

	a, _ := NewEmployeeIndex(employees, 10).Match(hints)
	b, _ := NewEmployeeIndex(reversed, 10).Match(hints)
	require.NotNil(t, a)
	assert.Equal(t, a.ID, b.ID)
}

func TestEmployeeIndex_TunablePrefixLength(t *testing.T) {
	hints := IdentityHints{Fingerprint: "aaaaaaaaaa2xxxxxxxxx"}

	emp, kind := NewEmployeeIndex(matcherFixture(), 11).Match(hints)
	require.NotNil(t, emp)
	assert.Equal(t, "E3", emp.ID)
	assert.Equal(t, MatchByPrefix, kind)

	emp, _ = NewEmployeeIndex(matcherFixture(), 0).Match(IdentityHints{Fingerprint: "aaaaaaaaa"})
	assert.Nil(t, emp, "默认长度为 10")
}

func TestEmployeeIndex_EnrichAlerts(t *testing.T) {
	ix := NewEmployeeIndex(matcherFixture(), 10)
	alerts := []models.FraudAlert{
		{ID: "A1", EmployeeName: "stale", EmployeeID: strPtr("E1")},
		{ID: "A2", EmployeeName: models.UnidentifiedEmployeeName, DeviceID: strPtr("bbbbbbbbbb0000000000")},
		{ID: "A3", EmployeeName: "x", EmployeeEmail: strPtr("CAROL@example.com")},
		{ID: "A4", DeviceID: strPtr("ffffffffffffffff")},
	}

	out := ix.EnrichAlerts(alerts)
	require.Len(t, out, 4)
	assert.Equal(t, "Alice", out[0].EmployeeName)
	assert.Equal(t, "Bob", out[1].EmployeeName)
	assert.Equal(t, "E2", *out[1].EmployeeID)
	assert.Equal(t, "E3", *out[2].EmployeeID)
	assert.Equal(t, models.UnidentifiedEmployeeName, out[3].EmployeeName)
	assert.Nil(t, out[3].EmployeeID)

	assert.Equal(t, "stale", alerts[0].EmployeeName, "入参不被修改")
}

func TestEmployeeMatcher_AttributeFraudScopesToCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.employees.CreateEmployee(ctx, &models.RegisteredEmployee{ID: "E9", Name: "Eve", Email: "eve@example.com", CompanyID: "C2", InitialDeviceID: strPtr("eeeeeeeeeeeeeeee")})
	require.NoError(t, err)

	attr, err := env.matcher.AttributeFraud(ctx, "C1", IdentityHints{EmployeeID: "E9", Fingerprint: "eeeeeeeeeeeeeeee"})
	require.NoError(t, err)
	assert.Nil(t, attr.EmployeeID)

	attr, err = env.matcher.AttributeFraud(ctx, "C2", IdentityHints{Fingerprint: "eeeeeeeeeeeeeeee"})
	require.NoError(t, err)
	require.NotNil(t, attr.EmployeeID)
	assert.Equal(t, "E9", *attr.EmployeeID)
	assert.Equal(t, "eve@example.com", *attr.EmployeeEmail)
}
