package slotRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carebook/database"
	"carebook/models"
)

type mongoSlotRepo struct {
	coll    *mongo.Collection
	dayColl *mongo.Collection
}

// NewMongoSlotRepo returns a SlotRepository backed by the slots and slot_days collections.
func NewMongoSlotRepo() SlotRepository {
	db := database.DB()
	return &mongoSlotRepo{
		coll:    db.Collection("slots"),
		dayColl: db.Collection("slot_days"),
	}
}

func (r *mongoSlotRepo) GetByDate(ctx context.Context, providerID, date string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *mongoSlotRepo) GetByDateRange(ctx context.Context, providerID, from, to string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *mongoSlotRepo) GetBySlotKey(ctx context.Context, providerID, date string, start int) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "date": date, "start": start}
	var slot models.Slot
	err := r.coll.FindOne(ctx, filter).Decode(&slot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *mongoSlotRepo) InsertMany(ctx context.Context, slots []models.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	docs := make([]interface{}, len(slots))
	for i, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
			slot.UpdatedAt = now
		}
		docs[i] = slot
	}

	// Unordered so that a duplicate key (a concurrent materializer already
	// wrote the row) does not abort the remaining inserts.
	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

func (r *mongoSlotRepo) DeleteRegenerable(ctx context.Context, providerID, date string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"custom":     bson.M{"$ne": true},
		"everBooked": bson.M{"$ne": true},
	}
	_, err := r.coll.DeleteMany(ctx, filter)
	return err
}
