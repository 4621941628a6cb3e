package ruleRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carebook/database"
	"carebook/models"
)

type mongoRuleRepo struct {
	coll *mongo.Collection
}

// NewMongoRuleRepo returns a RuleRepository backed by the availability_rules collection.
func NewMongoRuleRepo() RuleRepository {
	return &mongoRuleRepo{coll: database.DB().Collection("availability_rules")}
}

func (r *mongoRuleRepo) GetByProviderID(ctx context.Context, providerID string) (*models.AvailabilityRule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rule models.AvailabilityRule
	err := r.coll.FindOne(ctx, bson.M{"providerId": providerID}).Decode(&rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *mongoRuleRepo) Upsert(ctx context.Context, rule *models.AvailabilityRule) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rule.UpdatedAt = time.Now().UTC()
	filter := bson.M{"providerId": rule.ProviderID}
	update := bson.M{"$set": rule}
	opts := options.Update().SetUpsert(true)
	_, err := r.coll.UpdateOne(ctx, filter, update, opts)
	return err
}
