package slotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"carebook/models"
)

// LockSlot books a slot with a single conditional update: the filter re-checks
// that the slot is still available, so exactly one of N concurrent callers
// matches the document and the rest see MatchedCount == 0.
func (r *mongoSlotRepo) LockSlot(ctx context.Context, providerID, date string, start int, appointmentID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"start":      start,
		"status":     models.SlotStatusAvailable,
	}
	update := bson.M{
		"$set": bson.M{
			"status":        models.SlotStatusBooked,
			"appointmentId": appointmentID,
			"everBooked":    true,
			"updatedAt":     time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to lock slot: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// ReleaseSlot frees a booked slot, but only for the occupant that holds it.
func (r *mongoSlotRepo) ReleaseSlot(ctx context.Context, providerID, date string, start int, appointmentID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId":    providerID,
		"date":          date,
		"start":         start,
		"status":        models.SlotStatusBooked,
		"appointmentId": appointmentID,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    models.SlotStatusAvailable,
			"updatedAt": time.Now().UTC(),
		},
		"$unset": bson.M{"appointmentId": ""},
		"$inc":   bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to release slot: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// CancelAvailable cancels a single slot iff it is still available.
func (r *mongoSlotRepo) CancelAvailable(ctx context.Context, providerID, date string, start int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"start":      start,
		"status":     models.SlotStatusAvailable,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    models.SlotStatusCancelled,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel slot: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// InsertCustomTx inserts an ad-hoc slot behind a transactional overlap check.
// The unique slot key only guards identical starts; two concurrent inserts
// with different, overlapping windows would both pass a check issued outside
// the transaction, so the re-check runs on the session context alongside the
// insert.
func (r *mongoSlotRepo) InsertCustomTx(ctx context.Context, slot models.Slot) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	txnFn := func(sc mongo.SessionContext) error {
		overlapFilter := bson.M{
			"providerId": slot.ProviderID,
			"date":       slot.Date,
			"status":     bson.M{"$ne": models.SlotStatusCancelled},
			"start":      bson.M{"$lt": slot.End},
			"end":        bson.M{"$gt": slot.Start},
		}
		count, err := r.coll.CountDocuments(sc, overlapFilter)
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if count > 0 {
			return ErrOverlappingSlot
		}
		if _, err := r.coll.InsertOne(sc, slot); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateSlot
			}
			return fmt.Errorf("insert failed: %w", err)
		}
		return nil
	}

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// CancelDayTx cancels a date's available slots all-or-nothing. The booked-slot
// check and the bulk cancellation run inside one session transaction so a
// concurrent lock cannot slip between them.
func (r *mongoSlotRepo) CancelDayTx(ctx context.Context, providerID, date string, windows [][2]int) ([]models.Slot, error) {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var conflicts []models.Slot

	txnFn := func(sc mongo.SessionContext) error {
		bookedFilter := r.dayFilter(providerID, date, windows)
		bookedFilter["status"] = models.SlotStatusBooked

		cursor, err := r.coll.Find(sc, bookedFilter)
		if err != nil {
			return fmt.Errorf("booked-slot check failed: %w", err)
		}
		if err := cursor.All(sc, &conflicts); err != nil {
			return fmt.Errorf("booked-slot decode failed: %w", err)
		}
		if len(conflicts) > 0 {
			// Leave everything untouched; the caller reports the conflicts.
			return nil
		}

		cancelFilter := r.dayFilter(providerID, date, windows)
		cancelFilter["status"] = models.SlotStatusAvailable
		update := bson.M{
			"$set": bson.M{
				"status":    models.SlotStatusCancelled,
				"updatedAt": time.Now().UTC(),
			},
			"$inc": bson.M{"version": 1},
		}
		if _, err := r.coll.UpdateMany(sc, cancelFilter, update); err != nil {
			return fmt.Errorf("bulk cancel failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return nil, fmt.Errorf("leave transaction failed: %w", err)
	}

	return conflicts, nil
}

func (r *mongoSlotRepo) dayFilter(providerID, date string, windows [][2]int) bson.M {
	filter := bson.M{"providerId": providerID, "date": date}
	if len(windows) == 0 {
		return filter
	}
	overlaps := make([]bson.M, 0, len(windows))
	for _, w := range windows {
		overlaps = append(overlaps, bson.M{
			"start": bson.M{"$lt": w[1]},
			"end":   bson.M{"$gt": w[0]},
		})
	}
	filter["$or"] = overlaps
	return filter
}
