package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"

	"github.com/qr_attendance/internal/models"
)

func TestMigrateEnforcesSingleActiveCode(t *testing.T) {
	conn, err := Open(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))

	require.NoError(t, conn.Create(&models.QRCode{ID: "Q1", CompanyID: "C1", Active: true}).Error)
	require.NoError(t, conn.Create(&models.QRCode{ID: "Q0", CompanyID: "C1", Active: false}).Error)
	require.NoError(t, conn.Create(&models.QRCode{ID: "Q9", CompanyID: "C2", Active: true}).Error)

	err = conn.Create(&models.QRCode{ID: "Q2", CompanyID: "C1", Active: true}).Error
	assert.Error(t, err, "同一企业不允许两个有效二维码")
}

func TestSeedAdmin(t *testing.T) {
	conn, err := Open(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))

	require.NoError(t, SeedAdmin(conn, "admin", "secret", "C1", "boss@example.com"))
	require.NoError(t, SeedAdmin(conn, "admin", "other", "C2", ""))

	var users []models.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "C1", users[0].CompanyID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("secret")))
	require.NotNil(t, users[0].NotifyEmail)
	assert.Equal(t, "boss@example.com", *users[0].NotifyEmail)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, ParseLogLevel("SILENT"))
	assert.Equal(t, logger.Info, ParseLogLevel("info"))
	assert.Equal(t, logger.Warn, ParseLogLevel(""))
}
