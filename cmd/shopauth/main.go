package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shopauth/internal/config"
	"shopauth/internal/gate"
	"shopauth/internal/mailer"
	"shopauth/internal/observability/logging"
	"shopauth/internal/observability/metrics"
	"shopauth/internal/service/impl"
	"shopauth/internal/store"
	httpx "shopauth/internal/transport/http"
)

func main() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "shopauth",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()

	metrics.MustRegister("shopauth")

	gormCfg := &gorm.Config{TranslateError: true}
	if !cfg.LogSQL {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	ctx := context.Background()
	if cfg.Migrate {
		if err := st.Migrate(); err != nil {
			logger.Error("migrate", "error", err)
			os.Exit(1)
		}
	}

	hasher := impl.NewBcryptHasher()

	if cfg.Seed && cfg.Admin.Password != "" {
		hash, err := hasher.Hash(cfg.Admin.Password)
		if err != nil {
			logger.Error("hash admin password", "error", err)
			os.Exit(1)
		}
		if err := st.Seed(ctx, store.AdminSeed{
			Name:        cfg.Admin.Name,
			Email:       cfg.Admin.Email,
			Password:    hash,
			PhoneNumber: cfg.Admin.PhoneNumber,
		}); err != nil {
			logger.Error("seed", "error", err)
			os.Exit(1)
		}
	}

	tokens := impl.NewJWTTokenService(impl.TokenConfig{
		Issuer:        cfg.Issuer,
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		RefreshTTL:    cfg.RefreshTokenTTL,
	})

	totp := impl.NewTOTPGenerator(cfg.Issuer)

	smtp := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		UseTLS:   cfg.SMTP.UseTLS,
	})
	otp := impl.NewOTPDispatcher(st, smtp, cfg.OTPTTL)

	auth := impl.NewAuthOrchestrator(st, hasher, tokens, totp, otp)

	google := impl.NewGoogleService(impl.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURI:  cfg.Google.RedirectURI,
		StateSecret:  []byte(cfg.Google.StateSecret),
	}, st, hasher, auth)

	g := gate.New(gate.Config{
		Bearer:        gate.NewBearerStrategy(tokens, st.Roles()),
		APIKeySecret:  cfg.APIKeySecret,
		PaymentAPIKey: cfg.PaymentAPIKey,
	})

	h := httpx.NewHandler(auth, google, otp, cfg.Google.ClientRedirect)

	router := httpx.NewRouter(h, g, httpx.RouterConfig{
		CORSOrigins:            cfg.CORSOrigins,
		OTPRequestsPerMinute:   cfg.OTPRequestsPerMinute,
		LoginRequestsPerMinute: cfg.LoginRequestsPerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening", "addr", srv.Addr, "issuer", cfg.Issuer)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
