package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/brianokumu/crowdfund-go/models"
)

// CampaignCounter exposes the campaign counts the dashboard needs.
type CampaignCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// DonationAggregator exposes the donation aggregations the dashboard and
// donor summary need.
type DonationAggregator interface {
	CompletedTotal(ctx context.Context) (float64, error)
	MonthlyTotals(ctx context.Context, year int) (map[int]float64, error)
	DonorSummary(ctx context.Context, donorID primitive.ObjectID) (*models.DonorSummary, error)
}

// UserCounter counts registered users.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DashboardStats is the admin dashboard payload. MonthlyDonations covers
// Jan..Dec of the current year, zero-filled for empty months.
type DashboardStats struct {
	TotalCampaigns   int64       `json:"total_campaigns"`
	PendingCampaigns int64       `json:"pending_campaigns"`
	TotalUsers       int64       `json:"total_users"`
	TotalDonations   float64     `json:"total_donations"`
	MonthlyDonations [12]float64 `json:"monthly_donations"`
}

type StatsService struct {
	campaigns CampaignCounter
	donations DonationAggregator
	users     UserCounter
	now       func() time.Time
}

func NewStatsService(campaigns CampaignCounter, donations DonationAggregator, users UserCounter) *StatsService {
	return &StatsService{
		campaigns: campaigns,
		donations: donations,
		users:     users,
		now:       time.Now,
	}
}

// Dashboard computes the admin dashboard aggregates as of now. Read-only;
// zero donations yields zeros, not an error.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalCampaigns, err = s.campaigns.Count(ctx); err != nil {
		return nil, err
	}
	if stats.PendingCampaigns, err = s.campaigns.CountByStatus(ctx, models.CampaignPending); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalDonations, err = s.donations.CompletedTotal(ctx); err != nil {
		return nil, err
	}

	monthly, err := s.donations.MonthlyTotals(ctx, s.now().Year())
	if err != nil {
		return nil, err
	}
	stats.MonthlyDonations = FillMonths(monthly)

	return stats, nil
}

// DonorSummary reports a donor's total donated amount and distinct campaigns
// supported.
func (s *StatsService) DonorSummary(ctx context.Context, donorID primitive.ObjectID) (*models.DonorSummary, error) {
	return s.donations.DonorSummary(ctx, donorID)
}

// FillMonths spreads per-month totals (keyed 1..12) into a zero-filled
// Jan..Dec array; out-of-range keys are ignored.
func FillMonths(totals map[int]float64) [12]float64 {
	var months [12]float64
	for month, total := range totals {
		if month >= 1 && month <= 12 {
			months[month-1] = total
		}
	}
	return months
}
