package models

import "context"

// Repository contains the methods needed to read the application store.
type Repository interface {
	// GetApplicationStats returns the application counts for every requested benefit id.
	// Benefits without applications are present with zero counts.
	GetApplicationStats(ctx context.Context, benefitIDs []string) (map[string]ApplicationStats, error)
}
