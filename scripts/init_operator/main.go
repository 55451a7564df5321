package main

import (
	"fmt"
	"log"

	"github.com/molelog/internal/config"
	"github.com/molelog/internal/db"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	// 检查是否已存在运营者账号
	var count int64
	db.DB.Model(&db.Operator{}).Count(&count)
	if count > 0 {
		fmt.Println("运营者账号已存在，无需初始化")
		return
	}

	username := cfg.SuperRootUserName
	password := cfg.SuperRootPassword
	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("密码加密失败:", err)
	}

	operator := db.Operator{
		Username: username,
		Password: string(hashedPassword),
	}

	if err := db.DB.Create(&operator).Error; err != nil {
		log.Fatal("创建运营者失败:", err)
	}

	fmt.Println("默认运营者账号创建成功")
	fmt.Println("用户名:", username)
	fmt.Println("密码:", password)
}
