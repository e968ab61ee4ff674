package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	config "github.com/brianokumu/crowdfund-go/config"
	models "github.com/brianokumu/crowdfund-go/models"
	repository "github.com/brianokumu/crowdfund-go/repository"
	utils "github.com/brianokumu/crowdfund-go/utils"
)

const refreshKeyPrefix = "refresh:"

// issueTokens signs an access/refresh pair and stores the refresh jti in
// Redis so it can be revoked and rotated.
func issueTokens(c *gin.Context, cfg *config.Config, user *models.User) (gin.H, error) {
	access, err := utils.GenerateAccessToken(cfg.JWTSecret, user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}
	refresh, jti, err := utils.GenerateRefreshToken(cfg.JWTSecret, user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}
	if err := cfg.Redis.Set(c.Request.Context(), refreshKeyPrefix+jti, user.ID.Hex(), utils.RefreshTokenTTL).Err(); err != nil {
		return nil, err
	}
	return gin.H{"access_token": access, "refresh_token": refresh}, nil
}

// ---------------- REGISTER ----------------
func Register(cfg *config.Config, users *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not create account")
			return
		}

		now := time.Now()
		user := &models.User{
			ID:        primitive.NewObjectID(),
			Name:      input.Name,
			Email:     strings.ToLower(strings.TrimSpace(input.Email)),
			Password:  hash,
			Role:      models.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := reqContext()
		defer cancel()

		if err := users.Insert(ctx, user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				utils.Fail(c, http.StatusBadRequest, "email already registered")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, "could not create account")
			return
		}

		tokens, err := issueTokens(c, cfg, user)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not issue tokens")
			return
		}
		tokens["user"] = user
		utils.OK(c, http.StatusCreated, tokens)
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config, users *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		user, err := users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
		if err != nil || !utils.CheckPassword(input.Password, user.Password) {
			utils.Fail(c, http.StatusUnauthorized, "invalid email or password")
			return
		}

		tokens, err := issueTokens(c, cfg, user)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not issue tokens")
			return
		}
		tokens["user"] = user
		utils.OK(c, http.StatusOK, tokens)
	}
}

// ---------------- REFRESH ----------------
func RefreshToken(cfg *config.Config, users *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		claims, err := utils.VerifyToken(cfg.JWTSecret, input.RefreshToken)
		if err != nil || claims.ID == "" {
			utils.Fail(c, http.StatusUnauthorized, "invalid refresh token")
			return
		}

		// A refresh token is single-use: it must still be present in Redis
		// and is deleted on rotation.
		key := refreshKeyPrefix + claims.ID
		if err := cfg.Redis.Get(c.Request.Context(), key).Err(); err != nil {
			utils.Fail(c, http.StatusUnauthorized, "refresh token revoked or expired")
			return
		}
		cfg.Redis.Del(c.Request.Context(), key)

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid refresh token")
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		user, err := users.FindByID(ctx, userID)
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "account no longer exists")
			return
		}

		tokens, err := issueTokens(c, cfg, user)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "could not issue tokens")
			return
		}
		utils.OK(c, http.StatusOK, tokens)
	}
}

// ---------------- ME ----------------
func Me(cfg *config.Config, users *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user id")
			return
		}

		ctx, cancel := reqContext()
		defer cancel()

		user, err := users.FindByID(ctx, userID)
		if err != nil {
			utils.Fail(c, http.StatusNotFound, "user not found")
			return
		}
		utils.OK(c, http.StatusOK, user)
	}
}
