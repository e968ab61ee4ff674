package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation statuses
const (
	DonationPending   = "pending"
	DonationCompleted = "completed"
	DonationFailed    = "failed"
)

type Donation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID primitive.ObjectID `bson:"campaign_id" json:"campaign_id"`
	DonorID    primitive.ObjectID `bson:"donor_id" json:"donor_id"`
	Amount     float64            `bson:"amount" json:"amount"`
	Status     string             `bson:"status" json:"status"`
	PaymentID  string             `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	Receipt    string             `bson:"receipt" json:"receipt"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`

	// Enriched fields
	CampaignTitle string `bson:"-" json:"campaign_title,omitempty"`
}

// DonorSummary aggregates a donor's completed donations.
type DonorSummary struct {
	TotalDonated       float64 `bson:"total_donated" json:"total_donated"`
	CampaignsSupported int64   `bson:"campaigns_supported" json:"campaigns_supported"`
}
