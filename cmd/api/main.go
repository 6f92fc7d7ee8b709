package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "empowerment-loans-api/internal/adapter/http"
	"empowerment-loans-api/internal/adapter/repository/mysql"
	"empowerment-loans-api/internal/config"
	"empowerment-loans-api/internal/gateway/daraja"
	"empowerment-loans-api/internal/infrastructure/cache"
	"empowerment-loans-api/internal/infrastructure/db"
	appUC "empowerment-loans-api/internal/usecase/application"
	paymentUC "empowerment-loans-api/internal/usecase/payment"
	reconcileUC "empowerment-loans-api/internal/usecase/reconcile"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}

	// Redis is only used as the gateway token cache; the service stays up
	// without it, each payment attempt just pays the token exchange.
	var tokens daraja.TokenCache
	if rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
		log.Printf("redis unavailable, gateway token caching disabled: %v", err)
	} else {
		tokens = cache.NewTokenStore(rdb, time.Duration(cfg.TokenTTLSecs)*time.Second)
	}

	gw := daraja.New(daraja.Config{
		ConsumerKey:        cfg.DarajaConsumerKey,
		ConsumerSecret:     cfg.DarajaConsumerSecret,
		ShortCode:          cfg.DarajaShortCode,
		Passkey:            cfg.DarajaPasskey,
		CallbackURL:        cfg.DarajaCallbackURL,
		Environment:        cfg.DarajaEnvironment,
		InitiatorName:      cfg.DarajaInitiatorName,
		SecurityCredential: cfg.DarajaSecurityCred,
		BaseURL:            cfg.BaseURL,
	}, tokens)

	repo := mysql.NewApplicationRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	appHandler := httpadp.NewApplicationHandler(appUC.NewUsecase(repo))
	payHandler := httpadp.NewPaymentHandler(
		paymentUC.NewUsecase(repo, uow, gw),
		reconcileUC.NewUsecase(uow),
	)
	gwHandler := httpadp.NewGatewayHandler(gw)
	h := httpadp.NewHandler(cfg.DarajaEnvironment)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	e.Validator = httpadp.NewValidator()
	e.HTTPErrorHandler = httpadp.NotFoundJSON

	// routes
	e.GET("/api/health", h.Health)
	e.POST("/api/submit-application", appHandler.SubmitApplication)
	e.GET("/api/applications/:application_id", appHandler.GetApplication)
	e.POST("/initiate-payment", payHandler.InitiatePayment)
	e.POST("/api/mpesa/callback", payHandler.MpesaCallback)

	// secondary gateway pass-throughs
	e.POST("/api/mpesa/b2c", gwHandler.B2CPayment)
	e.POST("/api/mpesa/b2c/result", gwHandler.B2CResult)
	e.POST("/api/mpesa/b2c/timeout", gwHandler.B2CTimeout)
	e.POST("/api/mpesa/transaction-status", gwHandler.TransactionStatus)
	e.POST("/api/mpesa/account-balance", gwHandler.AccountBalance)
	e.POST("/api/mpesa/reverse-transaction", gwHandler.ReverseTransaction)
	e.POST("/api/mpesa/standing-order", gwHandler.StandingOrder)
	e.POST("/api/mpesa/c2b/simulate", gwHandler.C2BSimulate)
	e.POST("/api/mpesa/c2b/register-urls", gwHandler.C2BRegisterURLs)
	e.POST("/api/mpesa/pull/register", gwHandler.PullRegister)
	e.POST("/api/mpesa/pull/query", gwHandler.PullQuery)
	e.POST("/api/mpesa/b2b", gwHandler.B2BPayment)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s (env=%s, shortcode=%s)", addr, cfg.DarajaEnvironment, cfg.DarajaShortCode)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
