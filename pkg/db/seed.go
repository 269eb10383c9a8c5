package db

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qr_attendance/internal/models"
)

// SeedAdmin 在用户名不存在时创建管理员。已存在则不做任何修改。
func SeedAdmin(conn *gorm.DB, username, password, companyID, notifyEmail string) error {
	if username == "" || password == "" || companyID == "" {
		return nil
	}

	var existing models.User
	err := conn.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         "admin",
		CompanyID:    companyID,
	}
	if notifyEmail != "" {
		user.NotifyEmail = &notifyEmail
	}
	if err := conn.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("已创建管理员账号 %s (企业 %s)", username, companyID)
	return nil
}
