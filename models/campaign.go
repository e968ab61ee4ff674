package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign statuses
const (
	CampaignPending   = "pending"
	CampaignActive    = "active"
	CampaignCompleted = "completed"
	CampaignRejected  = "rejected"
)

// Campaign categories
var CampaignCategories = []string{
	"Education",
	"Medical",
	"Environment",
	"Community",
	"Technology",
	"Arts",
	"Sports",
	"Other",
}

func IsValidCategory(category string) bool {
	for _, c := range CampaignCategories {
		if c == category {
			return true
		}
	}
	return false
}

type Campaign struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID       primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Story           string             `bson:"story,omitempty" json:"story,omitempty"`
	Category        string             `bson:"category" json:"category"`
	GoalAmount      float64            `bson:"goal_amount" json:"goal_amount"`
	RaisedAmount    float64            `bson:"raised_amount" json:"raised_amount"`
	Duration        int                `bson:"duration" json:"duration"` // days
	ImageURL        string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Backers         int64              `bson:"backers" json:"backers"`
	Status          string             `bson:"status" json:"status"`
	RejectionReason string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	EndDate         time.Time          `bson:"end_date" json:"end_date"`
	Updates         []CampaignUpdate   `bson:"updates" json:"updates"`
	Comments        []Comment          `bson:"comments" json:"comments"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`

	// Enriched fields
	DaysLeft int          `bson:"-" json:"days_left"`
	Creator  *UserSummary `bson:"-" json:"creator,omitempty"`
}

// DaysLeftAt computes the whole days remaining until the campaign's end date,
// rounding partial days up. Never negative.
func (cm *Campaign) DaysLeftAt(now time.Time) int {
	remaining := cm.EndDate.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// Enrich fills the computed fields served to clients.
func (cm *Campaign) Enrich(now time.Time) {
	cm.DaysLeft = cm.DaysLeftAt(now)
}

type CampaignUpdate struct {
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Comment struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserName  string             `bson:"user_name" json:"user_name"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
