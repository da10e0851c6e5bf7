package domain

import "context"

// FoodSource fetches pages of raw food records from the upstream database.
// An empty page signals exhaustion.
type FoodSource interface {
	FetchPage(ctx context.Context, pageNumber int) (*SearchPage, error)
}

// ItemValidator checks a normalized item against the published schema
type ItemValidator interface {
	Validate(item *GroceryItem) error
}

// SnapshotStore reads and overwrites the persisted catalogue snapshot
type SnapshotStore interface {
	Load(ctx context.Context) ([]GroceryItem, error)
	Save(ctx context.Context, items []GroceryItem) error
}

// SnapshotMirror replicates a finished snapshot into a secondary store
type SnapshotMirror interface {
	Replace(ctx context.Context, runID string, items []GroceryItem) error
}

// CacheRepository defines the interface for caching operations.
// Entry lifetime is fixed by the implementation.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
