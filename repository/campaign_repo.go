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

// CampaignFilter narrows campaign listings. Zero values mean "no filter".
type CampaignFilter struct {
	Status   string
	Category string
	Search   string // case-insensitive substring over title or description
	Page     int
	Limit    int
}

type CampaignRepo struct {
	col *mongo.Collection
}

func NewCampaignRepo(db *mongo.Database) *CampaignRepo {
	return &CampaignRepo{col: db.Collection("campaigns")}
}

func (r *CampaignRepo) Insert(ctx context.Context, campaign *models.Campaign) error {
	_, err := r.col.InsertOne(ctx, campaign)
	return err
}

func (r *CampaignRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Find returns a page of campaigns matching the filter, newest first, along
// with the total match count.
func (r *CampaignRepo) Find(ctx context.Context, f CampaignFilter) ([]models.Campaign, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	var campaigns []models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

func (r *CampaignRepo) FindByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Campaign, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.col.Find(ctx, bson.M{"creator_id": creatorID}, opts)
	if err != nil {
		return nil, err
	}
	var campaigns []models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// TransitionStatus moves a campaign from one status to another. The update is
// conditional on the current status so racing transitions cannot double
// apply; returns mongo.ErrNoDocuments when no document matched.
func (r *CampaignRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to, reason string) error {
	set := bson.M{"status": to, "updated_at": time.Now()}
	if reason != "" {
		set["rejection_reason"] = reason
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyDonation atomically adds a completed donation to the campaign's
// aggregate counters. The increment is a single document update conditioned
// on status=active, so concurrent donations never lose updates and a
// campaign that left the active state between check and apply is not
// mutated; returns mongo.ErrNoDocuments in that case.
func (r *CampaignRepo) ApplyDonation(ctx context.Context, id primitive.ObjectID, amount float64) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.CampaignActive},
		bson.M{
			"$inc": bson.M{"raised_amount": amount, "backers": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CampaignRepo) AddComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CampaignRepo) AddUpdate(ctx context.Context, id primitive.ObjectID, update models.CampaignUpdate) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"updates": update},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CompleteExpired flips every active campaign whose end date has passed to
// completed. Returns the number of campaigns transitioned.
func (r *CampaignRepo) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"status": models.CampaignActive, "end_date": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.CampaignCompleted, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetTotals overwrites the aggregate counters, used by the admin recount
// reconciliation path.
func (r *CampaignRepo) SetTotals(ctx context.Context, id primitive.ObjectID, raised float64, backers int64) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"raised_amount": raised, "backers": backers, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// TitlesByIDs fetches just the titles of the given campaigns, used to enrich
// donation listings without one query per row.
func (r *CampaignRepo) TitlesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]string{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"title": 1})
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Title string             `bson:"title"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	titles := make(map[primitive.ObjectID]string, len(rows))
	for _, row := range rows {
		titles[row.ID] = row.Title
	}
	return titles, nil
}

func (r *CampaignRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *CampaignRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"status": status})
}
