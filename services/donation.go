package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	models "github.com/brianokumu/crowdfund-go/models"
	utils "github.com/brianokumu/crowdfund-go/utils"
)

// CampaignStore is the slice of campaign persistence the donation workflow
// needs. Absent documents surface as mongo.ErrNoDocuments.
type CampaignStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	ApplyDonation(ctx context.Context, id primitive.ObjectID, amount float64) error
}

// DonationStore persists donation records.
type DonationStore interface {
	Insert(ctx context.Context, donation *models.Donation) error
	MarkFailed(ctx context.Context, id primitive.ObjectID) error
}

const (
	paymentTimeout  = 30 * time.Second
	receiptAttempts = 3
)

type DonationService struct {
	campaigns CampaignStore
	donations DonationStore
	gateway   PaymentGateway
	notifier  ReceiptNotifier // optional
	logger    *zap.Logger
}

func NewDonationService(campaigns CampaignStore, donations DonationStore, gateway PaymentGateway, logger *zap.Logger) *DonationService {
	return &DonationService{
		campaigns: campaigns,
		donations: donations,
		gateway:   gateway,
		logger:    logger,
	}
}

// WithNotifier attaches a receipt notifier fired after each completed
// donation.
func (s *DonationService) WithNotifier(n ReceiptNotifier) *DonationService {
	s.notifier = n
	return s
}

// Create runs the donation workflow: validate, charge the gateway, persist
// the completed donation, then apply the campaign's aggregate increment.
// A donation record is only written for charges the gateway approved.
func (s *DonationService) Create(ctx context.Context, campaignID, donorID primitive.ObjectID, amount float64) (*models.Donation, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	campaign, err := s.campaigns.FindByID(ctx, campaignID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignActive {
		utils.IncrementDonationOutcome("rejected")
		return nil, ErrCampaignNotActive
	}

	payCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.gateway.Charge(payCtx, amount)
	utils.PaymentGatewayLatency.Observe(time.Since(start).Seconds())
	if err != nil || !result.Success {
		utils.IncrementDonationOutcome("payment_failed")
		s.logger.Warn("payment declined",
			zap.String("campaign_id", campaignID.Hex()),
			zap.Float64("amount", amount),
			zap.String("gateway_message", result.Message),
			zap.Error(err),
		)
		return nil, ErrPaymentFailed
	}

	donation := &models.Donation{
		ID:         primitive.NewObjectID(),
		CampaignID: campaignID,
		DonorID:    donorID,
		Amount:     amount,
		Status:     models.DonationCompleted,
		PaymentID:  result.TransactionID,
		Receipt:    utils.GenerateReceipt(),
		CreatedAt:  time.Now(),
	}

	// The receipt code space is small; regenerate on a duplicate-key insert.
	for attempt := 0; ; attempt++ {
		err = s.donations.Insert(ctx, donation)
		if err == nil {
			break
		}
		if mongo.IsDuplicateKeyError(err) && attempt < receiptAttempts {
			donation.Receipt = utils.GenerateReceipt()
			continue
		}
		return nil, err
	}

	if err := s.campaigns.ApplyDonation(ctx, campaignID, amount); err != nil {
		// The payment went through but the campaign no longer accepts it
		// (raced a lifecycle transition) or the write failed. Mark the
		// donation failed so the recount path stays consistent.
		s.logger.Error("applying donation to campaign failed",
			zap.String("donation_id", donation.ID.Hex()),
			zap.String("campaign_id", campaignID.Hex()),
			zap.Error(err),
		)
		if markErr := s.donations.MarkFailed(ctx, donation.ID); markErr != nil {
			s.logger.Error("marking donation failed errored",
				zap.String("donation_id", donation.ID.Hex()),
				zap.Error(markErr),
			)
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCampaignNotActive
		}
		return nil, err
	}

	utils.IncrementDonationOutcome("completed")

	if s.notifier != nil {
		// Best effort; must never block or fail the donation.
		go s.notifier.SendReceipt(*donation)
	}

	return donation, nil
}
