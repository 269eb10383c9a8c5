package main

import (
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// 生成管理员密码哈希以及对应的 users 插入语句
func main() {
	username := flag.String("username", "admin", "管理员用户名")
	password := flag.String("password", "admin", "要设置的密码")
	companyID := flag.String("company", "", "管理员所属企业ID")
	flag.Parse()

	if *companyID == "" {
		log.Fatal("-company is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Printf("Username: %s\n", *username)
	fmt.Printf("Hashed Password: %s\n", string(hashedPassword))
	fmt.Printf("INSERT INTO users (username, password_hash, role, company_id, created_at, updated_at)\n")
	fmt.Printf("VALUES ('%s', '%s', 'admin', '%s', strftime('%%Y-%%m-%%d %%H:%%M:%%S', 'now'), strftime('%%Y-%%m-%%d %%H:%%M:%%S', 'now'));\n",
		*username, string(hashedPassword), *companyID)
}
