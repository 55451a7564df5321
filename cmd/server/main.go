package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/molelog/internal/config"
	"github.com/molelog/internal/db"
	"github.com/molelog/internal/handler"
	"github.com/molelog/internal/logger"
	"github.com/molelog/internal/mailer"
	"github.com/molelog/internal/router"
	"github.com/molelog/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// .env 存在时加载，缺失不是错误
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	defer logger.Sync()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	// 按需创建初始运营者账号
	if err := db.EnsureOperator(cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		logger.Fatal("failed to ensure operator account", zap.Error(err))
	}

	var mailTo []string
	if cfg.NotifyEmail != "" {
		mailTo = []string{cfg.NotifyEmail}
	}

	// SMTP 未配置时 mail 保持 nil，通知功能自动关闭
	var mail mailer.Sender
	if smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword); smtpMailer != nil {
		mail = smtpMailer
	}

	api := handler.NewAPI(db.DB, handler.Options{
		Images:         storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath),
		Mail:           mail,
		MailFrom:       cfg.SMTPUsername,
		MailTo:         mailTo,
		MaxUploadBytes: cfg.MaxImageUploadSize,
	})

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}
