package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "github.com/brianokumu/crowdfund-go/config"
	middleware "github.com/brianokumu/crowdfund-go/middleware"
	repository "github.com/brianokumu/crowdfund-go/repository"
	routes "github.com/brianokumu/crowdfund-go/routes"
	services "github.com/brianokumu/crowdfund-go/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := cfg.Logger
	defer log.Sync()

	db := cfg.MongoClient.Database(cfg.DBName)
	userRepo := repository.NewUserRepo(db)
	campaignRepo := repository.NewCampaignRepo(db)
	donationRepo := repository.NewDonationRepo(db)

	gateway := services.StubGateway{Delay: cfg.PaymentDelay}
	notifier := services.NewEmailReceiptNotifier(userRepo, campaignRepo, log)
	donationSvc := services.NewDonationService(campaignRepo, donationRepo, gateway, log).WithNotifier(notifier)
	lifecycleSvc := services.NewLifecycleService(campaignRepo, log)
	statsSvc := services.NewStatsService(campaignRepo, donationRepo, userRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"ETag", "Last-Modified"},
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, cfg, &routes.Deps{
		Users:        userRepo,
		Campaigns:    campaignRepo,
		Donations:    donationRepo,
		DonationSvc:  donationSvc,
		LifecycleSvc: lifecycleSvc,
		StatsSvc:     statsSvc,
	})

	// Flip expired active campaigns to completed once an hour.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(sweepCtx, 30*time.Second)
				if _, err := lifecycleSvc.CompleteExpired(ctx); err != nil {
					log.Error("complete-expired sweep failed", zap.Error(err))
				}
				cancel()
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	if err := cfg.MongoClient.Disconnect(ctx); err != nil {
		log.Error("mongo disconnect error", zap.Error(err))
	}
	_ = cfg.Redis.Close()
}
