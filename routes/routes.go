package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/brianokumu/crowdfund-go/config"
	controllers "github.com/brianokumu/crowdfund-go/controllers"
	middleware "github.com/brianokumu/crowdfund-go/middleware"
	repository "github.com/brianokumu/crowdfund-go/repository"
	services "github.com/brianokumu/crowdfund-go/services"
)

// Deps carries the repositories and services handlers are wired with.
type Deps struct {
	Users     *repository.UserRepo
	Campaigns *repository.CampaignRepo
	Donations *repository.DonationRepo

	DonationSvc  *services.DonationService
	LifecycleSvc *services.LifecycleService
	StatsSvc     *services.StatsService
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, deps *Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// public
	r.POST("/auth/register", controllers.Register(cfg, deps.Users))
	r.POST("/auth/login", controllers.Login(cfg, deps.Users))
	r.POST("/auth/refresh", controllers.RefreshToken(cfg, deps.Users))

	r.GET("/campaigns", controllers.ListCampaigns(cfg, deps.Campaigns))
	r.GET("/campaigns/:id", controllers.GetCampaign(cfg, deps.Campaigns, deps.Users))

	// protected
	auth := middleware.AuthMiddleware(cfg)

	r.GET("/auth/me", auth, controllers.Me(cfg, deps.Users))

	campaigns := r.Group("/campaigns")
	campaigns.Use(auth)
	{
		campaigns.POST("", controllers.CreateCampaign(cfg, deps.Campaigns))
		campaigns.GET("/mine", controllers.MyCampaigns(cfg, deps.Campaigns))
		campaigns.POST("/:id/comments", controllers.AddComment(cfg, deps.Campaigns, deps.Users))
		campaigns.POST("/:id/updates", controllers.AddCampaignUpdate(cfg, deps.Campaigns))
	}

	donations := r.Group("/donations")
	donations.Use(auth)
	{
		donations.POST("", controllers.CreateDonation(cfg, deps.DonationSvc))
		donations.GET("", controllers.ListMyDonations(cfg, deps.Donations, deps.Campaigns))
		donations.GET("/stats/summary", controllers.DonationSummary(cfg, deps.StatsSvc))
	}

	admin := r.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("/campaigns", controllers.AdminListCampaigns(cfg, deps.Campaigns))
		admin.PUT("/campaigns/:id/approve", controllers.ApproveCampaign(cfg, deps.LifecycleSvc))
		admin.PUT("/campaigns/:id/reject", controllers.RejectCampaign(cfg, deps.LifecycleSvc))
		admin.POST("/campaigns/:id/recount", controllers.RecountCampaign(cfg, deps.Campaigns, deps.Donations))
		admin.GET("/dashboard", controllers.AdminDashboard(cfg, deps.StatsSvc))
	}
}
