package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	services "github.com/brianokumu/crowdfund-go/services"
	utils "github.com/brianokumu/crowdfund-go/utils"
)

const dbTimeout = 5 * time.Second

// reqContext returns the per-request DB context shared by all handlers.
func reqContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

// failFromService maps the service failure taxonomy onto HTTP statuses and
// the uniform envelope.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, mongo.ErrNoDocuments):
		utils.Fail(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, services.ErrInvalidAmount):
		utils.Fail(c, http.StatusBadRequest, services.ErrInvalidAmount.Error())
	case errors.Is(err, services.ErrCampaignNotActive):
		utils.Fail(c, http.StatusBadRequest, services.ErrCampaignNotActive.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.Fail(c, http.StatusBadRequest, services.ErrInvalidTransition.Error())
	case errors.Is(err, services.ErrMissingReason):
		utils.Fail(c, http.StatusBadRequest, services.ErrMissingReason.Error())
	case errors.Is(err, services.ErrPaymentFailed):
		utils.Fail(c, http.StatusBadRequest, services.ErrPaymentFailed.Error())
	default:
		utils.Fail(c, http.StatusInternalServerError, "something went wrong")
	}
}
