package app

import (
	"fmt"
	"strings"

	"go-leave/internal/auth"
	"go-leave/internal/config"
	"go-leave/internal/leave"
	"go-leave/internal/mail"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/notification"
	"go-leave/internal/rbac"
	"go-leave/internal/reminder"
	"go-leave/internal/shared/cryptoutil"
	"go-leave/internal/shared/token"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MailBackendLog   = "log"
	MailBackendSMTP  = "smtp"
	MailBackendKafka = "kafka"
)

// Modules is the service graph shared by the api, worker and leavectl.
type Modules struct {
	Users         user.Service
	UserRepo      user.Repository
	Leaves        leave.Service
	LeaveRepo     leave.Repository
	Notifications notification.Service
	RBAC          rbac.Service
	Auth          auth.Service
	Tokens        *token.Manager
	Mailer        *mail.Dispatcher
	Sweeper       *reminder.Sweeper
	Outbox        kafka.OutboxRepository
}

// NewMailSender picks the delivery backend named by the config.
func NewMailSender(cfg *config.Config, outbox kafka.OutboxRepository) (mail.Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mail.Backend)) {
	case MailBackendSMTP:
		return NewSMTPSender(cfg), nil
	case MailBackendKafka, "outbox":
		return mail.NewOutboxSender(outbox, cfg.Kafka.MailTopic), nil
	case MailBackendLog, "":
		return mail.NewLogSender(zap.L()), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}
}

func NewSMTPSender(cfg *config.Config) *mail.SMTPSender {
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.SMTP.Host,
		Port:     cfg.Mail.SMTP.Port,
		Username: cfg.Mail.SMTP.Username,
		Password: cfg.Mail.SMTP.Password,
	})
}

func NewModules(infra *Infra) (*Modules, error) {
	cfg := infra.Config
	logger := infra.Logger

	// --- Repositories ---
	userRepo := user.NewRepository(infra.DB)
	leaveRepo := leave.NewRepository(infra.DB)
	notificationRepo := notification.NewRepository(infra.DB)
	outboxRepo := kafka.NewOutboxRepository(infra.SQL)

	// --- Mail ---
	sender, err := NewMailSender(cfg, outboxRepo)
	if err != nil {
		return nil, err
	}
	dispatcher := mail.NewDispatcher(sender, cfg.Mail.From, cfg.Mail.SendTimeout, logger)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("build enforcer: %w", err)
	}
	rbacService := rbac.NewService(enforcer, logger)

	proofCipher, err := cryptoutil.NewCipher(cfg.Proof.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("proof cipher: %w", err)
	}

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// --- Services ---
	userService := user.NewService(userRepo, infra.Redis, user.Options{
		DefaultBalance: user.NewLeaveBalance(cfg.LeaveDefaults.Annual, cfg.LeaveDefaults.Medical, cfg.LeaveDefaults.ShortLeave),
		AvatarDir:      cfg.Upload.AvatarDir,
		MaxAvatarBytes: cfg.Upload.MaxAvatarBytes,
	}, logger)
	notificationService := notification.NewService(notificationRepo, userRepo, dispatcher, logger)
	leaveService := leave.NewService(leaveRepo, userRepo, notificationService, proofCipher,
		leave.Options{MaxProofBytes: cfg.Proof.MaxBytes}, logger)
	authService := auth.NewService(userRepo, userService, tokens, logger)
	sweeper := reminder.NewSweeper(leaveRepo, userRepo, notificationService, logger)

	return &Modules{
		Users:         userService,
		UserRepo:      userRepo,
		Leaves:        leaveService,
		LeaveRepo:     leaveRepo,
		Notifications: notificationService,
		RBAC:          rbacService,
		Auth:          authService,
		Tokens:        tokens,
		Mailer:        dispatcher,
		Sweeper:       sweeper,
		Outbox:        outboxRepo,
	}, nil
}

func registerRoutes(router *gin.Engine, infra *Infra, m *Modules) {
	cfg := infra.Config
	logger := infra.Logger

	// --- Handlers ---
	authHandler := auth.NewHandler(m.Auth, auth.CookieOptions{
		Secure:     cfg.IsProduction(),
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, logger)
	userHandler := user.NewHandler(m.Users, user.Options{MaxAvatarBytes: cfg.Upload.MaxAvatarBytes}, logger)
	leaveHandler := leave.NewHandler(m.Leaves, leave.Options{MaxProofBytes: cfg.Proof.MaxBytes}, logger)
	notificationHandler := notification.NewHandler(m.Notifications, logger)
	rbacHandler := rbac.NewHandler(m.RBAC, logger)

	router.Use(middleware.RequestID())
	router.Static("/uploads/avatars", cfg.Upload.AvatarDir)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		user.RegisterRoutes(api, userHandler, m.RBAC, cfg.JWT.Secret, logger)
		leave.RegisterRoutes(api, leaveHandler, m.RBAC, infra.Redis, cfg.JWT.Secret, logger)
		notification.RegisterRoutes(api, notificationHandler, m.RBAC, cfg.JWT.Secret, logger)
		rbac.RegisterRoutes(api, rbacHandler, cfg.JWT.Secret)
	}
}
