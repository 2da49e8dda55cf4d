package services

import (
	"context"
	"encoding/gob"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"supermarket-dashboard/internal/models"
)

const cacheVersion = "v2"

var errStaleCache = stderrors.New("cache is stale")

type cachedTable struct {
	Records  []models.Transaction
	StoredAt time.Time
}

// TableCache persists parsed tables next to the process so restarts skip
// CSV parsing while the source file is unchanged.
type TableCache struct {
	dir string
}

func NewTableCache(dir string) *TableCache {
	return &TableCache{dir: dir}
}

func (c *TableCache) filename(csvPath string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.gob", replacer.Replace(csvPath), cacheVersion))
}

// Load returns the cached table for csvPath when it is newer than the CSV.
func (c *TableCache) Load(csvPath string) (*Table, error) {
	source, err := os.Stat(csvPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(c.filename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cached cachedTable
	if err := gob.NewDecoder(file).Decode(&cached); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}

	if !source.ModTime().Before(cached.StoredAt) {
		return nil, errStaleCache
	}

	return &Table{records: cached.Records}, nil
}

func (c *TableCache) Save(csvPath string, table *Table) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(c.filename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(cachedTable{
		Records:  table.records,
		StoredAt: time.Now(),
	})
}

// Loader reads the sales CSV, going through the cache when one is set.
type Loader struct {
	cache  *TableCache
	logger *slog.Logger
}

func NewLoader(cache *TableCache, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cache: cache, logger: logger}
}

func (l *Loader) Load(ctx context.Context, filename string) (*Table, error) {
	if l.cache != nil {
		table, err := l.cache.Load(filename)
		switch {
		case err == nil:
			l.logger.Info("loaded from cache", "records", table.Len())
			return table, nil
		case stderrors.Is(err, os.ErrNotExist), stderrors.Is(err, errStaleCache):
		default:
			l.logger.Warn("failed to read cache", "error", err)
		}
	}

	start := time.Now()
	l.logger.Info("processing CSV file", "filename", filename)

	table, err := LoadCSV(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("process csv: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.Save(filename, table); err != nil {
			l.logger.Warn("failed to save cache", "error", err)
		}
	}

	duration := time.Since(start)
	l.logger.Info("csv processing complete",
		"records", table.Len(),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(table.Len())/duration.Seconds()))

	return table, nil
}
