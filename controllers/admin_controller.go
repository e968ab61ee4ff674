package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	config "github.com/brianokumu/crowdfund-go/config"
	repository "github.com/brianokumu/crowdfund-go/repository"
	services "github.com/brianokumu/crowdfund-go/services"
	utils "github.com/brianokumu/crowdfund-go/utils"
)

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

// ---------------- LIST ALL ----------------
func AdminListCampaigns(cfg *config.Config, campaigns *repository.CampaignRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)

		ctx, cancel := reqContext()
		defer cancel()

		results, total, err := campaigns.Find(ctx, repository.CampaignFilter{
			Status: c.Query("status"),
			Search: c.Query("search"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not fetch campaigns")
			return
		}

		now := time.Now()
		for i := range results {
			results[i].Enrich(now)
		}

		utils.OKList(c, http.StatusOK, results, len(results), total, utils.Pagination{
			Page:       page,
			Limit:      limit,
			TotalPages: utils.TotalPages(total, limit),
		})
	}
}

// ---------------- APPROVE ----------------
func ApproveCampaign(cfg *config.Config, lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid campaign id")
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		campaign, err := lifecycle.Approve(ctx, id)
		if err != nil {
			failFromService(c, err)
			return
		}
		campaign.Enrich(time.Now())
		utils.OKMessage(c, http.StatusOK, "campaign approved", campaign)
	}
}

// ---------------- REJECT ----------------
func RejectCampaign(cfg *config.Config, lifecycle *services.LifecycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid campaign id")
			return
		}

		// A missing or empty body surfaces as a missing reason, not a bind
		// error, so bind failures are deliberately ignored here.
		var input struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&input)

		ctx, cancel := reqContext()
		defer cancel()

		campaign, err := lifecycle.Reject(ctx, id, input.Reason)
		if err != nil {
			failFromService(c, err)
			return
		}
		campaign.Enrich(time.Now())
		utils.OKMessage(c, http.StatusOK, "campaign rejected", campaign)
	}
}

// ---------------- DASHBOARD ----------------
func AdminDashboard(cfg *config.Config, stats *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Serve from the short-lived cache when possible; the dashboard is
		// read-only and tolerates 30s of staleness.
		if cached, err := cfg.Redis.Get(c.Request.Context(), dashboardCacheKey).Result(); err == nil {
			var payload services.DashboardStats
			if json.Unmarshal([]byte(cached), &payload) == nil {
				utils.OK(c, http.StatusOK, payload)
				return
			}
		}

		ctx, cancel := reqContext()
		defer cancel()

		payload, err := stats.Dashboard(ctx)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not compute dashboard")
			return
		}

		if raw, err := json.Marshal(payload); err == nil {
			if err := cfg.Redis.Set(c.Request.Context(), dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				cfg.Logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}

		utils.OK(c, http.StatusOK, payload)
	}
}

// ---------------- RECOUNT ----------------
// Recomputes a campaign's raised amount and backers from its completed
// donations, reconciling any drift left by a failed aggregate update.
func RecountCampaign(cfg *config.Config, campaigns *repository.CampaignRepo, donations *repository.DonationRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid campaign id")
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		raised, backers, err := donations.CampaignTotals(ctx, id)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not recompute totals")
			return
		}

		if err := campaigns.SetTotals(ctx, id, raised, backers); err != nil {
			failFromService(c, err)
			return
		}

		campaign, err := campaigns.FindByID(ctx, id)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not fetch campaign")
			return
		}
		campaign.Enrich(time.Now())
		utils.OKMessage(c, http.StatusOK, "totals recomputed", campaign)
	}
}
