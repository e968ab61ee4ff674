package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/brianokumu/crowdfund-go/models"
	utils "github.com/brianokumu/crowdfund-go/utils"
)

// ReceiptNotifier is told about every completed donation.
type ReceiptNotifier interface {
	SendReceipt(donation models.Donation)
}

// UserFinder looks up a donor for notification purposes.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// EmailReceiptNotifier emails donors their receipt via the ZeptoMail util.
type EmailReceiptNotifier struct {
	users     UserFinder
	campaigns CampaignStore
	logger    *zap.Logger
}

func NewEmailReceiptNotifier(users UserFinder, campaigns CampaignStore, logger *zap.Logger) *EmailReceiptNotifier {
	return &EmailReceiptNotifier{users: users, campaigns: campaigns, logger: logger}
}

func (n *EmailReceiptNotifier) SendReceipt(donation models.Donation) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	donor, err := n.users.FindByID(ctx, donation.DonorID)
	if err != nil {
		n.logger.Warn("receipt email skipped, donor lookup failed",
			zap.String("donation_id", donation.ID.Hex()),
			zap.Error(err),
		)
		return
	}

	title := ""
	if campaign, err := n.campaigns.FindByID(ctx, donation.CampaignID); err == nil {
		title = campaign.Title
	}

	if err := utils.SendDonationReceipt(donor.Email, donor.Name, title, donation.Receipt, donation.Amount); err != nil {
		n.logger.Warn("receipt email failed",
			zap.String("donation_id", donation.ID.Hex()),
			zap.Error(err),
		)
	}
}
