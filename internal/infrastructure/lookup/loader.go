package lookup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/grocerlist/usdaimport/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Loader reads the externally maintained classification tables
type Loader struct {
	CategoryMapPath string
	SeasonMapPath   string
	Logger          *zap.Logger
}

// Load reads both tables. A missing or unreadable table degrades to an empty
// rule list so the classifier falls back to its defaults.
func (l *Loader) Load() domain.LookupTables {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var tables domain.LookupTables

	if err := decodeFile(l.CategoryMapPath, &tables.Categories); err != nil {
		logFallback(logger, "category map", l.CategoryMapPath, err)
		tables.Categories = nil
	}

	if err := decodeFile(l.SeasonMapPath, &tables.Seasons); err != nil {
		logFallback(logger, "season map", l.SeasonMapPath, err)
		tables.Seasons = nil
	}

	logger.Info("lookup tables loaded",
		zap.Int("category_rules", len(tables.Categories)),
		zap.Int("season_rules", len(tables.Seasons)))

	return tables
}

// decodeFile decodes a JSON or YAML document into out, chosen by extension
func decodeFile(path string, out any) error {
	if path == "" {
		return fs.ErrNotExist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

func logFallback(logger *zap.Logger, table, path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn(table+" not found, using empty rule list", zap.String("path", path))
		return
	}
	logger.Warn(table+" unreadable, using empty rule list", zap.String("path", path), zap.Error(err))
}
