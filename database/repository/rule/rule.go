package ruleRepo

import (
	"context"

	"carebook/models"
)

// RuleRepository persists one availability rule per provider.
type RuleRepository interface {
	// GetByProviderID returns the provider's rule, or mongo.ErrNoDocuments.
	GetByProviderID(ctx context.Context, providerID string) (*models.AvailabilityRule, error)
	// Upsert stores the rule, replacing any existing one for the provider.
	Upsert(ctx context.Context, rule *models.AvailabilityRule) error
	// EnsureIndexes creates the necessary indexes on the rules collection.
	EnsureIndexes() error
}
