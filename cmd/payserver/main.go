package main

import (
	stlog "log"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"solpay/chain"
	"solpay/config"
	"solpay/deeplink"
	"solpay/logger"
	"solpay/payment"
	"solpay/payment/db"
	"solpay/web/controllers"
	"solpay/web/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stlog.Fatalln("Error loading config:", err)
	}

	log := logger.NewZapLogger(cfg.App.LogLevel)

	conn, err := db.Connect(cfg.DSN())
	if err != nil {
		stlog.Fatalln("Error connecting to database:", err)
	}
	store := db.NewStore(conn)

	sol, err := chain.NewSolanaClient(cfg.Solana.RPCURL, cfg.Solana.Commitment)
	if err != nil {
		stlog.Fatalln("Error in solana config:", err)
	}
	chains := map[string]chain.Client{
		payment.ChainSolana: sol,
		"evm":               chain.NewEVMClient(),
	}

	assets := payment.NewAssetTable(cfg.Assets)
	svc := payment.NewService(assets, cfg.Payment.MemoMaxLen, store, chains, log)
	verifier := payment.NewVerifier(store, sol, log)

	flow := deeplink.NewFlow(deeplink.FlowConfig{
		AppURL:        cfg.Phantom.AppURL,
		WalletBaseURL: cfg.Phantom.BaseURL,
		ServiceURL:    cfg.App.BaseURL,
		StatusPageURL: cfg.App.StatusPageURL,
		TTL:           cfg.LinkTTL(),
	}, store, svc, store, log)

	tokens := middleware.NewPollToken(cfg.App.PollTokenKey, cfg.PollTokenTTL())
	controllers.Setup(svc, verifier, flow, tokens, log)

	limiter := middleware.NewRateLimiter(cfg.App.RateLimit)
	limiter.StartCleanup(10 * time.Minute)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.GET("/healthz", controllers.Healthz)
	r.GET("/readyz", controllers.Readyz)

	api := r.Group("/api/pay", limiter.Middleware())
	api.POST("/init", controllers.InitPayment)
	api.GET("/poll-token", controllers.PollToken)
	api.GET("/status", tokens.Gate(), controllers.Status)
	api.POST("/tx", controllers.UpdateTransaction)
	api.GET("/list", controllers.List)
	api.GET("/qrcode", controllers.QRCode)

	api.POST("/phantom/dapp-key", controllers.DappKey)
	api.GET("/phantom/connect-callback", controllers.ConnectCallback)
	api.GET("/phantom/sign-callback", controllers.SignCallback)

	log.Info("payment service listening", map[string]any{"port": cfg.App.Port})
	if err := r.Run(":" + strconv.Itoa(cfg.App.Port)); err != nil {
		stlog.Fatalln(err)
	}
}
