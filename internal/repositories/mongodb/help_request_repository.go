package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roadside-rescue/internal/models"
	"roadside-rescue/internal/repositories/interfaces"
	"roadside-rescue/pkg/database"
)

type helpRequestRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewHelpRequestRepository(db *mongo.Database) interfaces.HelpRequestRepository {
	return &helpRequestRepository{
		db:         db,
		collection: db.Collection(database.HelpRequestsCollection),
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *helpRequestRepository) Create(ctx context.Context, request *models.HelpRequest) error {
	id, err := database.NextID(ctx, r.db, database.HelpRequestsCollection)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	request.ID = id
	request.CreatedAt = now
	request.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("failed to create help request: %w", err)
	}
	return nil
}

func (r *helpRequestRepository) GetByID(ctx context.Context, id int64) (*models.HelpRequest, error) {
	var request models.HelpRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get help request: %w", err)
	}
	return &request, nil
}

func (r *helpRequestRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.HelpRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *helpRequestRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.HelpRequest, error) {
	return r.find(ctx, bson.M{"customer_id": customerID}, options.Find().SetSort(newestFirst))
}

func (r *helpRequestRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.HelpRequest, error) {
	return r.find(ctx, bson.M{"status": status}, options.Find().SetSort(newestFirst))
}

func (r *helpRequestRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.HelpRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list help requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.HelpRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode help requests: %w", err)
	}
	return requests, nil
}

func (r *helpRequestRepository) FindActiveByMechanic(ctx context.Context, mechanicID int64) (*models.HelpRequest, error) {
	var request models.HelpRequest
	err := r.collection.FindOne(ctx, bson.M{
		"mechanic_id": mechanicID,
		"status":      bson.M{"$in": []models.RequestStatus{models.RequestStatusAccepted, models.RequestStatusEnRoute}},
	}, options.FindOne().SetSort(newestFirst)).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active job: %w", err)
	}
	return &request, nil
}

func (r *helpRequestRepository) SetAddress(ctx context.Context, id int64, address string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"address": address}})
	if err != nil {
		return fmt.Errorf("failed to set address: %w", err)
	}
	return nil
}

func (r *helpRequestRepository) Apply(ctx context.Context, t interfaces.Transition) (*models.HelpRequest, error) {
	filter := bson.M{
		"_id":    t.ID,
		"status": bson.M{"$in": t.From},
	}
	if t.MechanicID != nil {
		filter["mechanic_id"] = *t.MechanicID
	}

	set := bson.M{"status": t.To, "updated_at": time.Now().UTC()}
	if t.Assign != nil {
		set["mechanic_id"] = *t.Assign
	}

	var request models.HelpRequest
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, interfaces.ErrStale
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update help request: %w", err)
	}
	return &request, nil
}

func (r *helpRequestRepository) Decline(ctx context.Context, id, mechanicID int64) error {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.RequestStatusPending},
		bson.M{
			"$addToSet": bson.M{"declined_by": mechanicID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to decline help request: %w", err)
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrStale
	}
	return nil
}
