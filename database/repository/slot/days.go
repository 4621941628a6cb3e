package slotRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carebook/models"
)

func (r *mongoSlotRepo) HasDay(ctx context.Context, providerID, date string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "date": date}
	count, err := r.dayColl.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoSlotRepo) InsertDay(ctx context.Context, day models.SlotDay) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if day.MaterializedAt.IsZero() {
		day.MaterializedAt = time.Now().UTC()
	}
	_, err := r.dayColl.InsertOne(ctx, day)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDayExists
		}
		return err
	}
	return nil
}

func (r *mongoSlotRepo) DeleteDay(ctx context.Context, providerID, date string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.dayColl.DeleteOne(ctx, bson.M{"providerId": providerID, "date": date})
	return err
}

func (r *mongoSlotRepo) ListDays(ctx context.Context, providerID, from, to string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.dayColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var days []models.SlotDay
	if err := cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Date
	}
	return dates, nil
}
