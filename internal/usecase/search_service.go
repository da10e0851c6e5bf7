package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/grocerlist/usdaimport/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultSearchLimit is used when the caller gives no usable limit
	DefaultSearchLimit = 12
	// MaxSearchLimit caps the number of results per query
	MaxSearchLimit = 50
	// MinQueryLength is the shortest query that is searched at all
	MinQueryLength = 2
	// maxResultNutrients truncates each result's nutrient list
	maxResultNutrients = 8

	snapshotCacheKey = "catalogue:snapshot"
)

// SnapshotLoader reads the persisted catalogue
type SnapshotLoader interface {
	Load(ctx context.Context) ([]domain.GroceryItem, error)
}

// SearchResult is a trimmed catalogue item returned by keyword search
type SearchResult struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Nutrients    []domain.Nutrient `json:"nutrients"`
	IsVegan      bool              `json:"isVegan"`
	IsGlutenFree bool              `json:"isGlutenFree"`
	Season       *domain.Season    `json:"season"`
	BrandOwner   *string           `json:"brandOwner"`
}

// SearchService answers keyword queries against the latest snapshot
type SearchService struct {
	snapshots SnapshotLoader
	cache     domain.CacheRepository
	logger    *zap.Logger
}

// NewSearchService creates a search service. The snapshot is re-read once
// the cache entry expires.
func NewSearchService(snapshots SnapshotLoader, cache domain.CacheRepository, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		snapshots: snapshots,
		cache:     cache,
		logger:    logger.Named("search"),
	}
}

// ClampLimit maps a requested limit onto [1, MaxSearchLimit]; non-positive
// values select DefaultSearchLimit
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}

// Search returns up to limit items whose name contains query, ignoring case,
// in snapshot order. Queries shorter than MinQueryLength return no results.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLength {
		return []SearchResult{}, nil
	}
	limit = ClampLimit(limit)

	items, err := s.catalogue(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, limit)
	for i := range items {
		if len(results) == limit {
			break
		}
		if strings.Contains(strings.ToLower(items[i].Name), q) {
			results = append(results, toSearchResult(&items[i]))
		}
	}
	return results, nil
}

// catalogue returns the cached snapshot, loading it on a miss
func (s *SearchService) catalogue(ctx context.Context) ([]domain.GroceryItem, error) {
	if cached, err := s.cache.Get(ctx, snapshotCacheKey); err == nil {
		if items, ok := cached.([]domain.GroceryItem); ok {
			return items, nil
		}
	}

	items, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}

	if err := s.cache.Set(ctx, snapshotCacheKey, items); err != nil {
		s.logger.Warn("failed to cache catalogue", zap.Error(err))
	}
	s.logger.Debug("catalogue loaded", zap.Int("items", len(items)))
	return items, nil
}

func toSearchResult(item *domain.GroceryItem) SearchResult {
	nutrients := item.Nutrients
	if len(nutrients) > maxResultNutrients {
		nutrients = nutrients[:maxResultNutrients]
	}
	if nutrients == nil {
		nutrients = []domain.Nutrient{}
	}
	return SearchResult{
		ID:           item.ID,
		Name:         item.Name,
		Category:     item.Category,
		Nutrients:    nutrients,
		IsVegan:      item.IsVegan,
		IsGlutenFree: item.IsGlutenFree,
		Season:       item.Season,
		BrandOwner:   item.BrandOwner,
	}
}
