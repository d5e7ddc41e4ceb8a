package eligibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/idhash"
	"coin-wallet-ledger/internal/logging"
	"coin-wallet-ledger/internal/observability"
	"coin-wallet-ledger/internal/storage"
)

// Snapshotter computes the exclusion set for the current classification data,
// reusing a cached set when the classification and policy are unchanged.
type Snapshotter struct {
	classifications storage.ClassificationStore
	cache           storage.ExclusionCache // optional
	ttl             time.Duration
	log             logrus.FieldLogger
	metrics         *observability.Metrics // optional
}

// NewSnapshotter creates a Snapshotter. cache may be nil.
func NewSnapshotter(classifications storage.ClassificationStore, cache storage.ExclusionCache, ttl time.Duration, log logrus.FieldLogger) *Snapshotter {
	return &Snapshotter{
		classifications: classifications,
		cache:           cache,
		ttl:             ttl,
		log:             logging.OrDiscard(log),
	}
}

// WithMetrics records cache hits and misses on m.
func (s *Snapshotter) WithMetrics(m *observability.Metrics) *Snapshotter {
	s.metrics = m
	return s
}

// Snapshot returns the exclusion set and the fingerprint it is keyed by.
func (s *Snapshotter) Snapshot(ctx context.Context, policy Policy) (*domain.ExclusionSet, string, error) {
	memberships, err := s.classifications.GetAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load classifications: %w", err)
	}

	fp := idhash.ComputeClassificationFingerprint(memberships, policy.DeniedCategories, policy.DeniedAssets)
	log := s.log.WithField("fingerprint", fp[:12])

	if s.cache != nil {
		set, err := s.cache.Get(ctx, fp)
		s.metrics.RecordCacheLookup(err == nil)
		switch {
		case err == nil:
			log.WithField("excluded", set.Len()).Debug("exclusion set cache hit")
			return set, fp, nil
		case errors.Is(err, storage.ErrNotFound):
		default:
			log.WithError(err).Warn("exclusion cache read failed, recomputing")
		}
	}

	set := ComputeExclusionSet(memberships, policy)
	log.WithField("excluded", set.Len()).Info("exclusion set computed")

	if s.cache != nil {
		if err := s.cache.Put(ctx, fp, set, s.ttl); err != nil {
			log.WithError(err).Warn("exclusion cache write failed")
		}
	}
	return set, fp, nil
}
