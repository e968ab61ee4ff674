package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	models "github.com/brianokumu/crowdfund-go/models"
	utils "github.com/brianokumu/crowdfund-go/utils"
)

// LifecycleStore is the slice of campaign persistence the status state
// machine needs.
type LifecycleStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to, reason string) error
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// LifecycleService drives the campaign status state machine:
// pending -> active | rejected, active -> completed. Rejected and completed
// are terminal; nothing moves back to pending.
type LifecycleService struct {
	campaigns LifecycleStore
	logger    *zap.Logger
}

func NewLifecycleService(campaigns LifecycleStore, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{campaigns: campaigns, logger: logger}
}

// Approve moves a pending campaign to active.
func (s *LifecycleService) Approve(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	if err := s.transition(ctx, id, models.CampaignPending, models.CampaignActive, ""); err != nil {
		return nil, err
	}
	utils.IncrementCampaignTransition(models.CampaignActive)
	return s.campaigns.FindByID(ctx, id)
}

// Reject moves a pending campaign to rejected, recording the reason.
func (s *LifecycleService) Reject(ctx context.Context, id primitive.ObjectID, reason string) (*models.Campaign, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}
	if err := s.transition(ctx, id, models.CampaignPending, models.CampaignRejected, reason); err != nil {
		return nil, err
	}
	utils.IncrementCampaignTransition(models.CampaignRejected)
	return s.campaigns.FindByID(ctx, id)
}

// CompleteExpired sweeps active campaigns whose end date has passed into the
// completed state. Run periodically from main.
func (s *LifecycleService) CompleteExpired(ctx context.Context) (int64, error) {
	n, err := s.campaigns.CompleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("completed expired campaigns", zap.Int64("count", n))
		for i := int64(0); i < n; i++ {
			utils.IncrementCampaignTransition(models.CampaignCompleted)
		}
	}
	return n, nil
}

// transition applies a conditional status update and, when it does not match,
// distinguishes a missing campaign from one in the wrong state.
func (s *LifecycleService) transition(ctx context.Context, id primitive.ObjectID, from, to, reason string) error {
	err := s.campaigns.TransitionStatus(ctx, id, from, to, reason)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if _, findErr := s.campaigns.FindByID(ctx, id); errors.Is(findErr, mongo.ErrNoDocuments) {
		return ErrNotFound
	} else if findErr != nil {
		return findErr
	}
	return ErrInvalidTransition
}
