package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	config "github.com/brianokumu/crowdfund-go/config"
	models "github.com/brianokumu/crowdfund-go/models"
	services "github.com/brianokumu/crowdfund-go/services"
)

// stubLifecycleStore backs the lifecycle service with one in-memory campaign.
type stubLifecycleStore struct {
	campaign *models.Campaign
}

func (s *stubLifecycleStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	if s.campaign == nil || s.campaign.ID != id {
		return nil, mongo.ErrNoDocuments
	}
	cm := *s.campaign
	return &cm, nil
}

func (s *stubLifecycleStore) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to, reason string) error {
	if s.campaign == nil || s.campaign.ID != id || s.campaign.Status != from {
		return mongo.ErrNoDocuments
	}
	s.campaign.Status = to
	if reason != "" {
		s.campaign.RejectionReason = reason
	}
	return nil
}

func (s *stubLifecycleStore) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func newAdminRouter(store *stubLifecycleStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Logger: zap.NewNop()}
	lifecycle := services.NewLifecycleService(store, zap.NewNop())

	r := gin.New()
	admin := r.Group("/admin", fakeAuth(primitive.NewObjectID().Hex(), models.RoleAdmin))
	admin.PUT("/campaigns/:id/approve", ApproveCampaign(cfg, lifecycle))
	admin.PUT("/campaigns/:id/reject", RejectCampaign(cfg, lifecycle))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBufferString("{}")
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return w, env
}

func TestApproveHandler_Pending(t *testing.T) {
	store := &stubLifecycleStore{campaign: &models.Campaign{
		ID:     primitive.NewObjectID(),
		Status: models.CampaignPending,
	}}
	r := newAdminRouter(store)

	w, env := doJSON(t, r, http.MethodPut, "/admin/campaigns/"+store.campaign.ID.Hex()+"/approve", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if !env.Success {
		t.Error("success = false, want true")
	}
	if store.campaign.Status != models.CampaignActive {
		t.Errorf("campaign status = %q, want active", store.campaign.Status)
	}
}

func TestApproveHandler_AlreadyActive(t *testing.T) {
	store := &stubLifecycleStore{campaign: &models.Campaign{
		ID:     primitive.NewObjectID(),
		Status: models.CampaignActive,
	}}
	r := newAdminRouter(store)

	w, env := doJSON(t, r, http.MethodPut, "/admin/campaigns/"+store.campaign.ID.Hex()+"/approve", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if env.Success {
		t.Error("success = true, want false")
	}
	if store.campaign.Status != models.CampaignActive {
		t.Errorf("campaign status changed to %q", store.campaign.Status)
	}
}

func TestApproveHandler_Missing(t *testing.T) {
	r := newAdminRouter(&stubLifecycleStore{})

	w, _ := doJSON(t, r, http.MethodPut, "/admin/campaigns/"+primitive.NewObjectID().Hex()+"/approve", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRejectHandler_WithReason(t *testing.T) {
	store := &stubLifecycleStore{campaign: &models.Campaign{
		ID:     primitive.NewObjectID(),
		Status: models.CampaignPending,
	}}
	r := newAdminRouter(store)

	w, env := doJSON(t, r, http.MethodPut,
		"/admin/campaigns/"+store.campaign.ID.Hex()+"/reject",
		`{"reason":"insufficient detail"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if !env.Success {
		t.Error("success = false, want true")
	}
	if store.campaign.Status != models.CampaignRejected {
		t.Errorf("campaign status = %q, want rejected", store.campaign.Status)
	}
	if store.campaign.RejectionReason != "insufficient detail" {
		t.Errorf("rejection reason = %q, want the exact reason", store.campaign.RejectionReason)
	}
}

func TestRejectHandler_MissingReason(t *testing.T) {
	store := &stubLifecycleStore{campaign: &models.Campaign{
		ID:     primitive.NewObjectID(),
		Status: models.CampaignPending,
	}}
	r := newAdminRouter(store)

	w, env := doJSON(t, r, http.MethodPut,
		"/admin/campaigns/"+store.campaign.ID.Hex()+"/reject", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if env.Success {
		t.Error("success = true, want false")
	}
	if store.campaign.Status != models.CampaignPending {
		t.Errorf("campaign status changed to %q without a reason", store.campaign.Status)
	}
}
