package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pedagogue-ai/pedagogue/internal/cache"
	"github.com/pedagogue-ai/pedagogue/internal/standards"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// StandardsCapability looks up the curriculum standards for a grade and
// subject. Optional: a missing or unreadable document degrades the plan
// instead of failing it. Lookups go through the cache; concurrent lookups
// for the same key are collapsed so the loader runs once per key.
type StandardsCapability struct {
	loader standards.Loader
	cache  *cache.LookupCache
	ttl    time.Duration
	group  singleflight.Group
}

// NewStandardsCapability wires the loader behind the cache with the given
// entry TTL.
func NewStandardsCapability(loader standards.Loader, c *cache.LookupCache, ttl time.Duration) *StandardsCapability {
	return &StandardsCapability{loader: loader, cache: c, ttl: ttl}
}

func (s *StandardsCapability) Name() string   { return models.ComponentStandards }
func (s *StandardsCapability) Optional() bool { return true }

// CacheKey is the lookup key for a grade/subject pair.
func CacheKey(grade int, subject string) string {
	return fmt.Sprintf("standards:%d:%s", grade, strings.ToLower(strings.TrimSpace(subject)))
}

// Invoke returns the standards summary for the request's grade and subject.
// A cache hit skips the loader entirely; any cache irregularity is treated
// as a miss and falls through to the loader.
func (s *StandardsCapability) Invoke(ctx context.Context, in Input) Result {
	key := CacheKey(in.Request.Grade, in.Request.Subject)

	if s.cache != nil {
		if payload, ok := s.cache.Get(key); ok {
			return Success(payload)
		}
	}
	if err := ctx.Err(); err != nil {
		return Failed(fmt.Errorf("standards lookup: %w", err))
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		doc, err := s.loader.Load(ctx, in.Request.Grade, in.Request.Subject)
		if err != nil {
			return nil, err
		}
		summary := doc.Summary()
		if s.cache != nil {
			s.cache.Put(key, summary, s.ttl)
		}
		return summary, nil
	})
	if err != nil {
		var notFound *standards.ErrNotFound
		if errors.As(err, &notFound) || errors.Is(err, standards.ErrNoText) {
			return Missing(err.Error())
		}
		return Failed(fmt.Errorf("loading standards: %w", err))
	}
	return Success(v.(string))
}
