package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/brianokumu/crowdfund-go/config"
	repository "github.com/brianokumu/crowdfund-go/repository"
	services "github.com/brianokumu/crowdfund-go/services"
	utils "github.com/brianokumu/crowdfund-go/utils"
)

// ---------------- CREATE ----------------
func CreateDonation(cfg *config.Config, donations *services.DonationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		donorID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user id")
			return
		}

		var input struct {
			CampaignID string  `json:"campaign_id" binding:"required"`
			Amount     float64 `json:"amount" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		campaignID, err := primitive.ObjectIDFromHex(input.CampaignID)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid campaign id")
			return
		}

		donation, err := donations.Create(c.Request.Context(), campaignID, donorID, input.Amount)
		if err != nil {
			failFromService(c, err)
			return
		}

		utils.OKMessage(c, http.StatusCreated, "donation completed", donation)
	}
}

// ---------------- LIST MINE ----------------
func ListMyDonations(cfg *config.Config, donations *repository.DonationRepo, campaigns *repository.CampaignRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		donorID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user id")
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		results, err := donations.FindByDonor(ctx, donorID)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not fetch donations")
			return
		}

		// Enrich with campaign titles in one lookup.
		ids := make([]primitive.ObjectID, 0, len(results))
		for _, d := range results {
			ids = append(ids, d.CampaignID)
		}
		if titles, err := campaigns.TitlesByIDs(ctx, ids); err == nil {
			for i := range results {
				results[i].CampaignTitle = titles[results[i].CampaignID]
			}
		}

		utils.OK(c, http.StatusOK, results)
	}
}

// ---------------- SUMMARY ----------------
func DonationSummary(cfg *config.Config, stats *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		donorID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user id")
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		summary, err := stats.DonorSummary(ctx, donorID)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not compute summary")
			return
		}
		utils.OK(c, http.StatusOK, summary)
	}
}
