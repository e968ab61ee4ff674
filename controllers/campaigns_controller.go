package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/brianokumu/crowdfund-go/config"
	models "github.com/brianokumu/crowdfund-go/models"
	repository "github.com/brianokumu/crowdfund-go/repository"
	utils "github.com/brianokumu/crowdfund-go/utils"
)

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// ---------------- CREATE ----------------
func CreateCampaign(cfg *config.Config, campaigns *repository.CampaignRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Authenticated user ---
		uid := c.GetString("user_id")
		creatorID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user id")
			return
		}

		// --- Bind form fields ---
		var input struct {
			Title       string  `form:"title" binding:"required"`
			Description string  `form:"description" binding:"required"`
			Story       string  `form:"story"`
			Category    string  `form:"category" binding:"required"`
			GoalAmount  float64 `form:"goal_amount" binding:"required"`
			Duration    int     `form:"duration" binding:"required"`
		}
		if err := c.ShouldBind(&input); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		if input.GoalAmount <= 0 {
			utils.Fail(c, http.StatusBadRequest, "goal_amount must be greater than 0")
			return
		}
		if input.Duration <= 0 {
			utils.Fail(c, http.StatusBadRequest, "duration must be a positive number of days")
			return
		}
		if !models.IsValidCategory(input.Category) {
			utils.Fail(c, http.StatusBadRequest, "unknown category")
			return
		}

		// --- Handle image upload ---
		var imageURL string
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			utils.Fail(c, http.StatusBadRequest, "invalid form data")
			return
		}
		if form != nil {
			if files := form.File["image"]; len(files) > 0 {
				fileHeader := files[0]
				file, err := fileHeader.Open()
				if err != nil {
					utils.Fail(c, http.StatusInternalServerError, "failed to open file")
					return
				}
				imageURL, err = utils.UploadCampaignImage(file, fileHeader)
				file.Close()
				if err != nil {
					utils.Fail(c, http.StatusInternalServerError, "image upload failed")
					return
				}
			}
		}

		// --- Save campaign ---
		now := time.Now()
		campaign := &models.Campaign{
			ID:          primitive.NewObjectID(),
			CreatorID:   creatorID,
			Title:       input.Title,
			Description: input.Description,
			Story:       input.Story,
			Category:    input.Category,
			GoalAmount:  input.GoalAmount,
			Duration:    input.Duration,
			ImageURL:    imageURL,
			Status:      models.CampaignPending,
			EndDate:     now.AddDate(0, 0, input.Duration),
			Updates:     []models.CampaignUpdate{},
			Comments:    []models.Comment{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := reqContext()
		defer cancel()

		if err := campaigns.Insert(ctx, campaign); err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not create campaign")
			return
		}

		campaign.Enrich(now)
		utils.OKMessage(c, http.StatusCreated, "campaign submitted for review", campaign)
	}
}

// ---------------- LIST (public, active only) ----------------
func ListCampaigns(cfg *config.Config, campaigns *repository.CampaignRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)

		ctx, cancel := reqContext()
		defer cancel()

		results, total, err := campaigns.Find(ctx, repository.CampaignFilter{
			Status:   models.CampaignActive,
			Category: c.Query("category"),
			Search:   c.Query("search"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not fetch campaigns")
			return
		}

		now := time.Now()
		for i := range results {
			results[i].Enrich(now)
		}

		// --- ETag from the most recently updated campaign ---
		if len(results) > 0 {
			latest := results[0]
			for _, cm := range results {
				if cm.UpdatedAt.After(latest.UpdatedAt) {
					latest = cm
				}
			}
			etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
			if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
				c.Status(http.StatusNotModified)
				return
			}
			c.Header("ETag", etag)
			c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))
		}

		utils.OKList(c, http.StatusOK, results, len(results), total, utils.Pagination{
			Page:       page,
			Limit:      limit,
			TotalPages: utils.TotalPages(total, limit),
		})
	}
}

// ---------------- GET ----------------
func GetCampaign(cfg *config.Config, campaigns *repository.CampaignRepo, users *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid campaign id")
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		campaign, err := campaigns.FindByID(ctx, id)
		if err != nil {
			utils.Fail(c, http.StatusNotFound, "campaign not found")
			return
		}

		campaign.Enrich(time.Now())
		if creator, err := users.FindByID(ctx, campaign.CreatorID); err == nil {
			campaign.Creator = creator.Summary()
		}

		etag := utils.GenerateETag(campaign.ID, campaign.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		utils.OK(c, http.StatusOK, campaign)
	}
}

// ---------------- MY CAMPAIGNS ----------------
func MyCampaigns(cfg *config.Config, campaigns *repository.CampaignRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		creatorID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user id")
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		results, err := campaigns.FindByCreator(ctx, creatorID)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not fetch campaigns")
			return
		}

		now := time.Now()
		for i := range results {
			results[i].Enrich(now)
		}
		utils.OK(c, http.StatusOK, results)
	}
}

// ---------------- ADD COMMENT ----------------
func AddComment(cfg *config.Config, campaigns *repository.CampaignRepo, users *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user id")
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid campaign id")
			return
		}

		var input struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		// Denormalize the commenter's name so reads don't need a join.
		userName := ""
		if user, err := users.FindByID(ctx, userID); err == nil {
			userName = user.Name
		}

		comment := models.Comment{
			UserID:    userID,
			UserName:  userName,
			Content:   strings.TrimSpace(input.Content),
			CreatedAt: time.Now(),
		}
		if comment.Content == "" {
			utils.Fail(c, http.StatusBadRequest, "content is required")
			return
		}

		if err := campaigns.AddComment(ctx, id, comment); err != nil {
			failFromService(c, err)
			return
		}
		utils.OKMessage(c, http.StatusCreated, "comment added", comment)
	}
}

// ---------------- ADD UPDATE (creator only) ----------------
func AddCampaignUpdate(cfg *config.Config, campaigns *repository.CampaignRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid campaign id")
			return
		}

		var input struct {
			Title   string `json:"title" binding:"required"`
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		campaign, err := campaigns.FindByID(ctx, id)
		if err != nil {
			utils.Fail(c, http.StatusNotFound, "campaign not found")
			return
		}
		if campaign.CreatorID.Hex() != userID && c.GetString("role") != models.RoleAdmin {
			utils.Fail(c, http.StatusForbidden, "only the campaign creator can post updates")
			return
		}

		update := models.CampaignUpdate{
			Title:     input.Title,
			Content:   input.Content,
			CreatedAt: time.Now(),
		}
		if err := campaigns.AddUpdate(ctx, id, update); err != nil {
			failFromService(c, err)
			return
		}
		utils.OKMessage(c, http.StatusCreated, "update posted", update)
	}
}
