package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	models "github.com/brianokumu/crowdfund-go/models"
)

// mockCampaignStore implements CampaignStore for testing
type mockCampaignStore struct {
	FindByIDFunc      func(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	ApplyDonationFunc func(ctx context.Context, id primitive.ObjectID, amount float64) error

	applyCalls   int
	appliedTotal float64
}

func (m *mockCampaignStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockCampaignStore) ApplyDonation(ctx context.Context, id primitive.ObjectID, amount float64) error {
	m.applyCalls++
	m.appliedTotal += amount
	if m.ApplyDonationFunc != nil {
		return m.ApplyDonationFunc(ctx, id, amount)
	}
	return nil
}

// mockDonationStore implements DonationStore for testing
type mockDonationStore struct {
	InsertFunc     func(ctx context.Context, donation *models.Donation) error
	MarkFailedFunc func(ctx context.Context, id primitive.ObjectID) error

	inserted    []models.Donation
	markedFails []primitive.ObjectID
}

func (m *mockDonationStore) Insert(ctx context.Context, donation *models.Donation) error {
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, donation); err != nil {
			return err
		}
	}
	m.inserted = append(m.inserted, *donation)
	return nil
}

func (m *mockDonationStore) MarkFailed(ctx context.Context, id primitive.ObjectID) error {
	m.markedFails = append(m.markedFails, id)
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id)
	}
	return nil
}

// mockGateway implements PaymentGateway for testing
type mockGateway struct {
	ChargeFunc func(ctx context.Context, amount float64) (PaymentResult, error)
	charges    int
}

func (m *mockGateway) Charge(ctx context.Context, amount float64) (PaymentResult, error) {
	m.charges++
	if m.ChargeFunc != nil {
		return m.ChargeFunc(ctx, amount)
	}
	return PaymentResult{Success: true, TransactionID: "txn_test"}, nil
}

func activeCampaign(id primitive.ObjectID) *models.Campaign {
	return &models.Campaign{
		ID:         id,
		Title:      "Clean Water",
		GoalAmount: 1000,
		Status:     models.CampaignActive,
		EndDate:    time.Now().AddDate(0, 0, 10),
	}
}

func newTestService(campaigns *mockCampaignStore, donations *mockDonationStore, gateway *mockGateway) *DonationService {
	return NewDonationService(campaigns, donations, gateway, zap.NewNop())
}

func TestCreateDonation_Success(t *testing.T) {
	campaignID := primitive.NewObjectID()
	donorID := primitive.NewObjectID()

	campaigns := &mockCampaignStore{
		FindByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
			return activeCampaign(campaignID), nil
		},
	}
	donations := &mockDonationStore{}
	gateway := &mockGateway{}

	svc := newTestService(campaigns, donations, gateway)
	donation, err := svc.Create(context.Background(), campaignID, donorID, 250)
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}

	if donation.Status != models.DonationCompleted {
		t.Errorf("donation status = %q, want %q", donation.Status, models.DonationCompleted)
	}
	if donation.PaymentID == "" {
		t.Error("donation payment id is empty")
	}
	if ok, _ := regexp.MatchString(`^RCPT-\d{5}$`, donation.Receipt); !ok {
		t.Errorf("receipt %q does not match RCPT-XXXXX", donation.Receipt)
	}
	if len(donations.inserted) != 1 {
		t.Fatalf("inserted %d donations, want 1", len(donations.inserted))
	}
	if campaigns.applyCalls != 1 {
		t.Errorf("ApplyDonation called %d times, want 1", campaigns.applyCalls)
	}
	if campaigns.appliedTotal != 250 {
		t.Errorf("applied amount = %v, want 250", campaigns.appliedTotal)
	}
}

func TestCreateDonation_InvalidAmount(t *testing.T) {
	campaigns := &mockCampaignStore{}
	donations := &mockDonationStore{}
	gateway := &mockGateway{}
	svc := newTestService(campaigns, donations, gateway)

	for _, amount := range []float64{0, -1, -250.50} {
		_, err := svc.Create(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), amount)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Create(amount=%v) error = %v, want ErrInvalidAmount", amount, err)
		}
	}

	if gateway.charges != 0 {
		t.Errorf("gateway charged %d times, want 0", gateway.charges)
	}
	if len(donations.inserted) != 0 {
		t.Errorf("inserted %d donations, want 0", len(donations.inserted))
	}
	if campaigns.applyCalls != 0 {
		t.Errorf("ApplyDonation called %d times, want 0", campaigns.applyCalls)
	}
}

func TestCreateDonation_CampaignNotFound(t *testing.T) {
	campaigns := &mockCampaignStore{} // FindByID defaults to ErrNoDocuments
	donations := &mockDonationStore{}
	gateway := &mockGateway{}
	svc := newTestService(campaigns, donations, gateway)

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 100)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Create() error = %v, want ErrNotFound", err)
	}
	if gateway.charges != 0 {
		t.Errorf("gateway charged %d times, want 0", gateway.charges)
	}
}

func TestCreateDonation_CampaignNotActive(t *testing.T) {
	for _, status := range []string{models.CampaignPending, models.CampaignCompleted, models.CampaignRejected} {
		campaignID := primitive.NewObjectID()
		campaigns := &mockCampaignStore{
			FindByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
				cm := activeCampaign(campaignID)
				cm.Status = status
				return cm, nil
			},
		}
		donations := &mockDonationStore{}
		gateway := &mockGateway{}
		svc := newTestService(campaigns, donations, gateway)

		_, err := svc.Create(context.Background(), campaignID, primitive.NewObjectID(), 100)
		if !errors.Is(err, ErrCampaignNotActive) {
			t.Errorf("Create() on %s campaign error = %v, want ErrCampaignNotActive", status, err)
		}
		if gateway.charges != 0 {
			t.Errorf("gateway charged on %s campaign", status)
		}
		if len(donations.inserted) != 0 {
			t.Errorf("donation persisted on %s campaign", status)
		}
		if campaigns.applyCalls != 0 {
			t.Errorf("counters touched on %s campaign", status)
		}
	}
}

func TestCreateDonation_PaymentDeclined(t *testing.T) {
	campaignID := primitive.NewObjectID()
	campaigns := &mockCampaignStore{
		FindByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
			return activeCampaign(campaignID), nil
		},
	}
	donations := &mockDonationStore{}
	gateway := &mockGateway{
		ChargeFunc: func(ctx context.Context, amount float64) (PaymentResult, error) {
			return PaymentResult{Success: false, Message: "card declined"}, nil
		},
	}
	svc := newTestService(campaigns, donations, gateway)

	_, err := svc.Create(context.Background(), campaignID, primitive.NewObjectID(), 100)
	if !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("Create() error = %v, want ErrPaymentFailed", err)
	}
	if len(donations.inserted) != 0 {
		t.Error("donation persisted after declined payment")
	}
	if campaigns.applyCalls != 0 {
		t.Error("counters touched after declined payment")
	}
}

func TestCreateDonation_GatewayError(t *testing.T) {
	campaignID := primitive.NewObjectID()
	campaigns := &mockCampaignStore{
		FindByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
			return activeCampaign(campaignID), nil
		},
	}
	donations := &mockDonationStore{}
	gateway := &mockGateway{
		ChargeFunc: func(ctx context.Context, amount float64) (PaymentResult, error) {
			return PaymentResult{}, context.DeadlineExceeded
		},
	}
	svc := newTestService(campaigns, donations, gateway)

	_, err := svc.Create(context.Background(), campaignID, primitive.NewObjectID(), 100)
	if !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("Create() error = %v, want ErrPaymentFailed", err)
	}
	if len(donations.inserted) != 0 {
		t.Error("donation persisted after gateway error")
	}
}

func TestCreateDonation_ReceiptCollisionRetries(t *testing.T) {
	campaignID := primitive.NewObjectID()
	campaigns := &mockCampaignStore{
		FindByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
			return activeCampaign(campaignID), nil
		},
	}

	dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	attempts := 0
	donations := &mockDonationStore{
		InsertFunc: func(ctx context.Context, donation *models.Donation) error {
			attempts++
			if attempts == 1 {
				return dupErr
			}
			return nil
		},
	}
	gateway := &mockGateway{}
	svc := newTestService(campaigns, donations, gateway)

	donation, err := svc.Create(context.Background(), campaignID, primitive.NewObjectID(), 100)
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}
	if attempts != 2 {
		t.Errorf("insert attempts = %d, want 2", attempts)
	}
	if donation.Receipt == "" {
		t.Error("donation receipt is empty")
	}
}

func TestCreateDonation_ApplyFailureMarksDonationFailed(t *testing.T) {
	campaignID := primitive.NewObjectID()
	campaigns := &mockCampaignStore{
		FindByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
			return activeCampaign(campaignID), nil
		},
		ApplyDonationFunc: func(ctx context.Context, id primitive.ObjectID, amount float64) error {
			// Campaign left the active state between check and apply.
			return mongo.ErrNoDocuments
		},
	}
	donations := &mockDonationStore{}
	gateway := &mockGateway{}
	svc := newTestService(campaigns, donations, gateway)

	_, err := svc.Create(context.Background(), campaignID, primitive.NewObjectID(), 100)
	if !errors.Is(err, ErrCampaignNotActive) {
		t.Fatalf("Create() error = %v, want ErrCampaignNotActive", err)
	}
	if len(donations.markedFails) != 1 {
		t.Fatalf("marked %d donations failed, want 1", len(donations.markedFails))
	}
	if donations.markedFails[0] != donations.inserted[0].ID {
		t.Error("failed mark targets a different donation than the inserted one")
	}
}

func TestCreateDonation_SequentialTotals(t *testing.T) {
	// goal 1000, donate 250 then 750: counters get exactly those amounts once.
	campaignID := primitive.NewObjectID()
	campaigns := &mockCampaignStore{
		FindByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
			return activeCampaign(campaignID), nil
		},
	}
	donations := &mockDonationStore{}
	gateway := &mockGateway{}
	svc := newTestService(campaigns, donations, gateway)

	for _, amount := range []float64{250, 750} {
		if _, err := svc.Create(context.Background(), campaignID, primitive.NewObjectID(), amount); err != nil {
			t.Fatalf("Create(%v) error = %v", amount, err)
		}
	}

	if campaigns.applyCalls != 2 {
		t.Errorf("ApplyDonation called %d times, want 2", campaigns.applyCalls)
	}
	if campaigns.appliedTotal != 1000 {
		t.Errorf("applied total = %v, want 1000", campaigns.appliedTotal)
	}
}
