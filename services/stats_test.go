package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/brianokumu/crowdfund-go/models"
)

type mockCampaignCounter struct {
	total   int64
	pending int64
}

func (m *mockCampaignCounter) Count(ctx context.Context) (int64, error) { return m.total, nil }
func (m *mockCampaignCounter) CountByStatus(ctx context.Context, status string) (int64, error) {
	return m.pending, nil
}

type mockDonationAggregator struct {
	total   float64
	monthly map[int]float64
	summary models.DonorSummary
}

func (m *mockDonationAggregator) CompletedTotal(ctx context.Context) (float64, error) {
	return m.total, nil
}
func (m *mockDonationAggregator) MonthlyTotals(ctx context.Context, year int) (map[int]float64, error) {
	return m.monthly, nil
}
func (m *mockDonationAggregator) DonorSummary(ctx context.Context, donorID primitive.ObjectID) (*models.DonorSummary, error) {
	s := m.summary
	return &s, nil
}

type mockUserCounter struct{ total int64 }

func (m *mockUserCounter) Count(ctx context.Context) (int64, error) { return m.total, nil }

func TestDashboard_ZeroDonations(t *testing.T) {
	svc := NewStatsService(
		&mockCampaignCounter{},
		&mockDonationAggregator{monthly: map[int]float64{}},
		&mockUserCounter{},
	)

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v, want nil", err)
	}
	if stats.TotalDonations != 0 {
		t.Errorf("total donations = %v, want 0", stats.TotalDonations)
	}
	for i, total := range stats.MonthlyDonations {
		if total != 0 {
			t.Errorf("month %d total = %v, want 0", i+1, total)
		}
	}
}

func TestDashboard_Counts(t *testing.T) {
	svc := NewStatsService(
		&mockCampaignCounter{total: 12, pending: 4},
		&mockDonationAggregator{total: 5500, monthly: map[int]float64{3: 1500, 11: 4000}},
		&mockUserCounter{total: 30},
	)
	svc.now = func() time.Time { return time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC) }

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v, want nil", err)
	}
	if stats.TotalCampaigns != 12 || stats.PendingCampaigns != 4 || stats.TotalUsers != 30 {
		t.Errorf("counts = %d/%d/%d, want 12/4/30",
			stats.TotalCampaigns, stats.PendingCampaigns, stats.TotalUsers)
	}
	if stats.TotalDonations != 5500 {
		t.Errorf("total donations = %v, want 5500", stats.TotalDonations)
	}
	if stats.MonthlyDonations[2] != 1500 {
		t.Errorf("march total = %v, want 1500", stats.MonthlyDonations[2])
	}
	if stats.MonthlyDonations[10] != 4000 {
		t.Errorf("november total = %v, want 4000", stats.MonthlyDonations[10])
	}
}

func TestFillMonths(t *testing.T) {
	months := FillMonths(map[int]float64{1: 10, 12: 20, 0: 99, 13: 99})
	if months[0] != 10 {
		t.Errorf("january = %v, want 10", months[0])
	}
	if months[11] != 20 {
		t.Errorf("december = %v, want 20", months[11])
	}
	for i := 1; i < 11; i++ {
		if months[i] != 0 {
			t.Errorf("month %d = %v, want 0", i+1, months[i])
		}
	}
}
