package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ImportSummary is the last import result kept per company.
type ImportSummary struct {
	CompanyID      string    `json:"companyId"`
	UserID         int       `json:"userId"`
	Source         string    `json:"source"`
	ArchiveKey     string    `json:"archiveKey,omitempty"`
	Rows           int       `json:"rows"`
	Created        int       `json:"created"`
	InvalidCount   int       `json:"invalidCount"`
	DuplicateCount int       `json:"duplicateCount"`
	NewCategories  []string  `json:"newCategories"`
	DurationMs     int64     `json:"durationMs"`
	FinishedAt     time.Time `json:"finishedAt"`
}

// ImportSummaryCache stores ImportSummary values in Redis.
type ImportSummaryCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewImportSummaryCache creates a new ImportSummaryCache.
func NewImportSummaryCache(redis *RedisClient, ttl time.Duration) *ImportSummaryCache {
	return &ImportSummaryCache{redis: redis, ttl: ttl}
}

func importSummaryKey(companyID string) string {
	return fmt.Sprintf("import:last:%s", companyID)
}

// Set replaces the company's last summary.
func (c *ImportSummaryCache) Set(ctx context.Context, summary *ImportSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal import summary: %w", err)
	}
	return c.redis.Set(ctx, importSummaryKey(summary.CompanyID), string(data), c.ttl)
}

// Get returns the company's last summary, or nil if there is none.
func (c *ImportSummaryCache) Get(ctx context.Context, companyID string) (*ImportSummary, error) {
	raw, err := c.redis.Get(ctx, importSummaryKey(companyID))
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary ImportSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import summary: %w", err)
	}
	return &summary, nil
}
