// FILE: database/repository/slot/indexes.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the slots and slot_days collections.
func (r *mongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slotIndexes := []mongo.IndexModel{
		// The slot key. Uniqueness is what makes lock/insert races resolve to
		// a single winner.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_slot_key"),
		},
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Primary query pattern: a provider's day, filtered by status.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("provider_date_status_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, slotIndexes); err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}

	dayIndexes := []mongo.IndexModel{
		// First insert wins the materialization race.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_slot_day"),
		},
	}
	if _, err := r.dayColl.Indexes().CreateMany(ctx, dayIndexes); err != nil {
		return fmt.Errorf("failed to create slot day indexes: %w", err)
	}
	return nil
}
