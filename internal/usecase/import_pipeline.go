package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/grocerlist/usdaimport/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ImportConfig bounds the paging loop
type ImportConfig struct {
	// MaxPages stops paging after this many pages; 0 means no limit
	MaxPages int
	// MaxConsecutiveFailures stops paging once this many pages in a row
	// failed to fetch
	MaxConsecutiveFailures int
}

// ImportSummary reports the outcome of one import run
type ImportSummary struct {
	RunID        string
	PagesFetched int
	FailedPages  int
	TotalSeen    int
	Filtered     int
	Invalid      int
	Duplicates   int
	Replaced     int
	New          int
	Updated      int
	Unchanged    int
	Output       int
	Duration     time.Duration
	// MirrorError is set when the snapshot was saved but mirroring failed
	MirrorError string
}

// Print writes the human-readable run report
func (s *ImportSummary) Print(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Import Summary:")
	fmt.Fprintln(w, "==============")
	fmt.Fprintf(w, "Run ID: %s\n", s.RunID)
	fmt.Fprintf(w, "Pages fetched: %d (failed: %d)\n", s.PagesFetched, s.FailedPages)
	fmt.Fprintf(w, "Total items processed: %d\n", s.TotalSeen)
	fmt.Fprintf(w, "Filtered out: %d\n", s.Filtered)
	fmt.Fprintf(w, "Invalid items: %d\n", s.Invalid)
	fmt.Fprintf(w, "Duplicates collapsed: %d (branded replaced by generic: %d)\n", s.Duplicates, s.Replaced)
	fmt.Fprintf(w, "New items: %d\n", s.New)
	fmt.Fprintf(w, "Updated items: %d\n", s.Updated)
	fmt.Fprintf(w, "Unchanged items: %d\n", s.Unchanged)
	fmt.Fprintf(w, "Total valid items: %d\n", s.Output)
	fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(time.Millisecond))
	if s.MirrorError != "" {
		fmt.Fprintf(w, "Mirror: FAILED (%s)\n", s.MirrorError)
	}
}

// ImportPipeline pages through the upstream food database and rebuilds the
// catalogue snapshot. Pages are fetched and processed one at a time.
type ImportPipeline struct {
	source     domain.FoodSource
	classifier *Classifier
	validator  domain.ItemValidator
	store      domain.SnapshotStore
	mirror     domain.SnapshotMirror
	config     ImportConfig
	logger     *zap.Logger
}

// NewImportPipeline creates a pipeline with its dependencies
func NewImportPipeline(
	source domain.FoodSource,
	classifier *Classifier,
	validator domain.ItemValidator,
	store domain.SnapshotStore,
	config ImportConfig,
	logger *zap.Logger,
) *ImportPipeline {
	if config.MaxConsecutiveFailures < 1 {
		config.MaxConsecutiveFailures = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ImportPipeline{
		source:     source,
		classifier: classifier,
		validator:  validator,
		store:      store,
		config:     config,
		logger:     logger.Named("import"),
	}
}

// WithMirror replicates every saved snapshot into mirror
func (p *ImportPipeline) WithMirror(mirror domain.SnapshotMirror) *ImportPipeline {
	p.mirror = mirror
	return p
}

// Run executes one full import. A page that fails to fetch is logged and
// treated as empty; a failure to save the snapshot is returned as an error.
// Cancelling ctx aborts the run without writing anything.
func (p *ImportPipeline) Run(ctx context.Context) (*ImportSummary, error) {
	start := time.Now()
	summary := &ImportSummary{RunID: ulid.Make().String()}
	logger := p.logger.With(zap.String("run_id", summary.RunID))
	deduper := NewDeduper()

	logger.Info("starting USDA FoodData Central import")

	if err := p.fetchAll(ctx, logger, deduper, summary); err != nil {
		return nil, err
	}

	items := deduper.Items()
	summary.Output = len(items)

	p.tallyChanges(ctx, logger, items, summary)

	if err := p.store.Save(ctx, items); err != nil {
		return summary, fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info("snapshot saved", zap.Int("items", len(items)))

	if p.mirror != nil {
		if err := p.mirror.Replace(ctx, summary.RunID, items); err != nil {
			logger.Error("snapshot mirror failed", zap.Error(err))
			summary.MirrorError = err.Error()
		} else {
			logger.Info("snapshot mirrored", zap.Int("items", len(items)))
		}
	}

	summary.Duration = time.Since(start)
	logger.Info("import finished",
		zap.Int("total", summary.TotalSeen),
		zap.Int("new", summary.New),
		zap.Int("updated", summary.Updated),
		zap.Int("invalid", summary.Invalid),
		zap.Int("output", summary.Output),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// fetchAll walks the pages until an empty page, the upstream's last page,
// the page cap or the failure budget ends the listing
func (p *ImportPipeline) fetchAll(ctx context.Context, logger *zap.Logger, deduper *Deduper, summary *ImportSummary) error {
	consecutiveFailures := 0

	for pageNumber := 1; ; pageNumber++ {
		if p.config.MaxPages > 0 && pageNumber > p.config.MaxPages {
			logger.Info("page limit reached", zap.Int("max_pages", p.config.MaxPages))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Info("fetching page", zap.Int("page", pageNumber))
		page, err := p.source.FetchPage(ctx, pageNumber)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			summary.FailedPages++
			consecutiveFailures++
			logger.Error("error fetching page, treating it as empty",
				zap.Int("page", pageNumber), zap.Error(err))
			if consecutiveFailures >= p.config.MaxConsecutiveFailures {
				logger.Error("too many consecutive page failures, stopping",
					zap.Int("failures", consecutiveFailures))
				return nil
			}
			continue
		}
		consecutiveFailures = 0

		if page == nil || len(page.Foods) == 0 {
			logger.Info("empty page, listing exhausted", zap.Int("page", pageNumber))
			return nil
		}

		summary.PagesFetched++
		for i := range page.Foods {
			p.processRecord(logger, &page.Foods[i], deduper, summary)
		}

		if page.TotalPages > 0 && pageNumber >= page.TotalPages {
			logger.Info("last page reached", zap.Int("total_pages", page.TotalPages))
			return nil
		}
	}
}

// processRecord runs one record through filter, classification, validation
// and deduplication
func (p *ImportPipeline) processRecord(logger *zap.Logger, food *domain.RawFood, deduper *Deduper, summary *ImportSummary) {
	summary.TotalSeen++

	if !IsBeneficial(food) {
		summary.Filtered++
		return
	}

	// Items categorized as Other are kept; dropping them is a product decision
	item := Transform(food, p.classifier.Classify(food))

	if err := p.validator.Validate(&item); err != nil {
		summary.Invalid++
		logger.Debug("dropping invalid item", zap.String("id", item.ID), zap.Error(err))
		return
	}

	switch deduper.Offer(DedupeKey(food), item, IsBranded(food)) {
	case Replaced:
		summary.Duplicates++
		summary.Replaced++
	case Kept:
		summary.Duplicates++
	}
}

// tallyChanges compares the final items with the previous snapshot. The
// prior snapshot is only used for these counts.
func (p *ImportPipeline) tallyChanges(ctx context.Context, logger *zap.Logger, items []domain.GroceryItem, summary *ImportSummary) {
	previous, err := p.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			logger.Info("no existing snapshot found")
		} else {
			logger.Warn("existing snapshot unreadable, counting every item as new", zap.Error(err))
		}
		previous = nil
	}

	byID := make(map[string]domain.GroceryItem, len(previous))
	for _, item := range previous {
		byID[item.ID] = item
	}

	for _, item := range items {
		prior, ok := byID[item.ID]
		switch {
		case !ok:
			summary.New++
		case cmp.Equal(prior, item):
			summary.Unchanged++
		default:
			summary.Updated++
		}
	}
}
