package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"git.home.luguber.info/inful/psalter/internal/cache"
	"git.home.luguber.info/inful/psalter/internal/corpus"
	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/logfields"
	"git.home.luguber.info/inful/psalter/internal/metrics"
	"git.home.luguber.info/inful/psalter/internal/store"
)

// Repository is the storage surface the catalog reads from.
type Repository interface {
	ListPsalms(ctx context.Context, opts store.ListOptions) ([]corpus.Document, error)
	GetPsalm(ctx context.Context, number int) (corpus.Document, bool, error)
	GetStanza(ctx context.Context, psalm, stanza int) (corpus.Section, bool, error)
	ListStanzas(ctx context.Context, psalm int) ([]corpus.Section, error)
}

// Service executes catalog queries.
type Service struct {
	repo     Repository
	cache    cache.Store
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewService builds a Service. A nil cache disables list caching.
func NewService(repo Repository, c cache.Store) *Service {
	return &Service{
		repo:     repo,
		cache:    c,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// ListDocuments returns the JSON array of psalms matching params. rawQuery is
// the request's raw query string and selects the cache entry.
func (s *Service) ListDocuments(ctx context.Context, rawQuery string, params ListParams) (json.RawMessage, error) {
	key := cache.Key(rawQuery)

	if payload, ok := s.cached(ctx, key); ok {
		return payload, nil
	}

	records, err := s.queryDocuments(ctx, params)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to encode psalm list").Build()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, payload); err != nil {
			s.logger.WarnContext(ctx, "Failed to store psalm list in cache",
				logfields.CacheKey(key), logfields.Error(err))
		}
	}
	return payload, nil
}

func (s *Service) cached(ctx context.Context, key string) (json.RawMessage, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.recorder.IncCacheResult(metrics.CacheError)
		s.logger.WarnContext(ctx, "Cache lookup failed, reading storage",
			logfields.CacheKey(key), logfields.Error(err))
		return nil, false
	case !ok:
		s.recorder.IncCacheResult(metrics.CacheMiss)
		s.logger.DebugContext(ctx, "Cache miss", logfields.CacheKey(key), logfields.CacheResult("miss"))
		return nil, false
	}
	s.recorder.IncCacheResult(metrics.CacheHit)
	s.logger.DebugContext(ctx, "Cache hit", logfields.CacheKey(key), logfields.CacheResult("hit"))
	return payload, true
}

func (s *Service) queryDocuments(ctx context.Context, params ListParams) ([]PsalmRecord, error) {
	opts := store.ListOptions{Stanzas: params.Stanzas}
	if params.paginated() {
		page, perPage := *params.Page, *params.PerPage
		// An offset that does not fit in an int is past any stored row.
		if page < 1 || perPage < 1 || page-1 > math.MaxInt/perPage {
			return []PsalmRecord{}, nil
		}
		opts.Paginate = true
		opts.Limit = perPage
		opts.Offset = (page - 1) * perPage
	}

	docs, err := s.repo.ListPsalms(ctx, opts)
	if err != nil {
		return nil, err
	}
	records := make([]PsalmRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, psalmRecord(d))
	}
	return records, nil
}

// GetDocument looks up one psalm. It is never cached.
func (s *Service) GetDocument(ctx context.Context, number int) (PsalmRecord, error) {
	doc, found, err := s.repo.GetPsalm(ctx, number)
	if err != nil {
		return PsalmRecord{}, err
	}
	if !found {
		return PsalmRecord{}, errors.NotFoundError("Psalm not found").
			WithContext(logfields.KeyPsalm, number).
			Build()
	}
	return psalmRecord(doc), nil
}

// GetSection looks up one stanza and adds its psalm's stanza count. A missing
// or unreadable parent yields a count of 0 rather than an error.
func (s *Service) GetSection(ctx context.Context, psalm, stanza int) (StanzaDetail, error) {
	sec, found, err := s.repo.GetStanza(ctx, psalm, stanza)
	if err != nil {
		return StanzaDetail{}, err
	}
	if !found {
		return StanzaDetail{}, errors.NotFoundError("Stanza not found").
			WithContext(logfields.KeyPsalm, psalm).
			WithContext(logfields.KeyStanza, stanza).
			Build()
	}

	detail := StanzaDetail{StanzaRecord: stanzaRecord(sec)}
	parent, found, err := s.repo.GetPsalm(ctx, psalm)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "Could not read psalm for stanza count",
			logfields.Psalm(psalm), logfields.Error(err))
	case found:
		detail.TotalStanzas = parent.Stanzas
	}
	return detail, nil
}

// ListSections returns a psalm's stanzas in order. An empty result is
// reported as not found.
func (s *Service) ListSections(ctx context.Context, psalm int) ([]StanzaRecord, error) {
	secs, err := s.repo.ListStanzas(ctx, psalm)
	if err != nil {
		return nil, err
	}
	if len(secs) == 0 {
		return nil, errors.NotFoundError("No stanzas found for this psalm").
			WithContext(logfields.KeyPsalm, psalm).
			Build()
	}
	records := make([]StanzaRecord, 0, len(secs))
	for _, sec := range secs {
		records = append(records, stanzaRecord(sec))
	}
	return records, nil
}
