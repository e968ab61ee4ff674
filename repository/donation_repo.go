package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/brianokumu/crowdfund-go/models"
)

type DonationRepo struct {
	col *mongo.Collection
}

func NewDonationRepo(db *mongo.Database) *DonationRepo {
	return &DonationRepo{col: db.Collection("donations")}
}

func (r *DonationRepo) Insert(ctx context.Context, donation *models.Donation) error {
	_, err := r.col.InsertOne(ctx, donation)
	return err
}

func (r *DonationRepo) MarkFailed(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.DonationFailed},
	})
	return err
}

func (r *DonationRepo) FindByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Donation, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.col.Find(ctx, bson.M{"donor_id": donorID}, opts)
	if err != nil {
		return nil, err
	}
	var donations []models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

// DonorSummary totals a donor's completed donations and counts the distinct
// campaigns they supported.
func (r *DonationRepo) DonorSummary(ctx context.Context, donorID primitive.ObjectID) (*models.DonorSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"donor_id": donorID, "status": models.DonationCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"total":     bson.M{"$sum": "$amount"},
			"campaigns": bson.M{"$addToSet": "$campaign_id"},
		}}},
		{{Key: "$project", Value: bson.M{
			"total_donated":       "$total",
			"campaigns_supported": bson.M{"$size": "$campaigns"},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []models.DonorSummary
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &models.DonorSummary{}, nil
	}
	return &rows[0], nil
}

// CompletedTotal sums the amount over every completed donation.
func (r *DonationRepo) CompletedTotal(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.DonationCompleted}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// MonthlyTotals sums completed donations per calendar month of the given
// year. Months with no donations are simply absent from the result.
func (r *DonationRepo) MonthlyTotals(ctx context.Context, year int) (map[int]float64, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":     models.DonationCompleted,
			"created_at": bson.M{"$gte": start, "$lt": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$month": "$created_at"},
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Month int     `bson:"_id"`
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	totals := make(map[int]float64, len(rows))
	for _, row := range rows {
		totals[row.Month] = row.Total
	}
	return totals, nil
}

// CampaignTotals recomputes a campaign's raised amount and backer count from
// its completed donations. Source of truth for the recount path.
func (r *DonationRepo) CampaignTotals(ctx context.Context, campaignID primitive.ObjectID) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"campaign_id": campaignID, "status": models.DonationCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"total":   bson.M{"$sum": "$amount"},
			"backers": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	var rows []struct {
		Total   float64 `bson:"total"`
		Backers int64   `bson:"backers"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Total, rows[0].Backers, nil
}
