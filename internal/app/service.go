// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/chartrec/internal/adapters/fetch"
	"github.com/okian/chartrec/internal/adapters/repository"
	"github.com/okian/chartrec/internal/domain/catalog"
	"github.com/okian/chartrec/internal/domain/entry"
	"github.com/okian/chartrec/internal/domain/importer"
	"github.com/okian/chartrec/internal/domain/merge"
	"github.com/okian/chartrec/internal/domain/model"
	"github.com/okian/chartrec/internal/domain/rate"
	"github.com/okian/chartrec/internal/domain/types"
	"github.com/okian/chartrec/pkg/logger"
	"github.com/okian/chartrec/pkg/metrics"
)

const defaultMaxImportBytes = 8 << 20

// Catalog is the song lookup the service depends on.
type Catalog interface {
	FindSong(id string) (model.Song, bool)
	Resolve(songID, level string) (model.Song, model.Chart, error)
	Songs() []model.Song
	Search(query string, opts catalog.SearchOptions) []catalog.Match
}

// Fetcher retrieves a raw capture payload. FetchTagged returns the request
// generation; Current reports whether no newer fetch has started since.
type Fetcher interface {
	FetchTagged(ctx context.Context) ([]byte, uint64, error)
	Current(gen uint64) bool
}

// Service owns the record collection. Every mutation is computed on a copy,
// saved, and only then made visible.
type Service struct {
	mu sync.RWMutex

	catalog Catalog
	store   repository.Store
	fetcher Fetcher

	dropUnplayed   bool
	searchOpts     catalog.SearchOptions
	maxImportBytes int

	records    model.Collection
	lastImport *types.ImportSummary
	started    bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dropUnplayed:   true,
		searchOpts:     catalog.DefaultSearchOptions(),
		maxImportBytes: defaultMaxImportBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the catalog (if none was given) and the stored records.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return fmt.Errorf("load bundled catalog: %w", err)
		}
		s.catalog = c
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	records, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	s.records = records
	s.started = true
	metrics.UpdateRecordsTotal(len(records))

	s.logger.Info(ctx, "chart record service started",
		logger.Int("records", len(records)),
		logger.Int("songs", len(s.catalog.Songs())),
		logger.Bool("dropUnplayed", s.dropUnplayed),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "close store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "chart record service stopped")
}

// Records returns a copy of the current collection.
func (s *Service) Records(ctx context.Context) (model.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.records.Clone(), nil
}

// RecordViews returns the collection enriched with catalog details.
func (s *Service) RecordViews(ctx context.Context) ([]types.RecordView, error) {
	recs, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.RecordView, len(recs))
	for i, r := range recs {
		song, chart, _ := s.catalog.Resolve(r.SongID, r.DifficultyLevel)
		out[i] = types.NewRecordView(r, song, chart)
	}
	return out, nil
}

// Add validates rec against the catalog and merges it into the collection.
func (s *Service) Add(ctx context.Context, rec model.Record) (types.SubmitResult, error) {
	return s.Submit(ctx, entry.Form{
		SongID:          rec.SongID,
		DifficultyLevel: rec.DifficultyLevel,
		AchievementRate: rec.AchievementRate,
	})
}

// Submit validates a manual entry and merges it into the collection, keeping
// the highest rate per chart.
func (s *Service) Submit(ctx context.Context, form entry.Form) (types.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return types.SubmitResult{}, ErrNotStarted
	}

	candidate, err := form.Candidate(s.catalog)
	if err != nil {
		metrics.RecordErrorByComponent("entry", "invalid")
		return types.SubmitResult{}, err
	}

	next, outcome := merge.AddOrUpdate(s.records, candidate)
	if outcome.Changed() {
		if err := s.commit(ctx, next); err != nil {
			return types.SubmitResult{}, err
		}
	}
	metrics.RecordSubmission(outcome.String())

	kept, _ := s.records.Find(candidate.Key())
	song, chart, _ := s.catalog.Resolve(kept.SongID, kept.DifficultyLevel)
	s.logger.Info(ctx, "record submitted",
		logger.String("songId", candidate.SongID),
		logger.String("difficulty", candidate.DifficultyLevel),
		logger.String("rate", rate.Format(candidate.AchievementRate)),
		logger.String("outcome", outcome.String()),
	)
	return types.SubmitResult{
		Outcome: outcome.String(),
		Record:  types.NewRecordView(kept, song, chart),
	}, nil
}

// Remove deletes the record for key.
func (s *Service) Remove(ctx context.Context, key model.ChartKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}

	next, ok := s.records.Without(key)
	if !ok {
		return fmt.Errorf("%w: record %s/%s", ErrNotFound, key.SongID, key.DifficultyLevel)
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.logger.Info(ctx, "record removed",
		logger.String("songId", key.SongID),
		logger.String("difficulty", key.DifficultyLevel),
	)
	return nil
}

// Import parses a capture payload and replaces the whole collection with its
// records. On any failure the collection is left as it was.
func (s *Service) Import(ctx context.Context, raw []byte) (types.ImportSummary, error) {
	return s.importPayload(ctx, raw, nil)
}

// importPayload is Import with an optional check run under the lock right
// before the collection is replaced. A false result aborts with
// fetch.ErrSuperseded.
func (s *Service) importPayload(ctx context.Context, raw []byte, current func() bool) (types.ImportSummary, error) {
	start := time.Now()
	if len(raw) > s.maxImportBytes {
		metrics.RecordImport("", 0, time.Since(start), ErrPayloadTooLarge)
		return types.ImportSummary{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(raw))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return types.ImportSummary{}, ErrNotStarted
	}

	res, err := importer.Parse(raw, s.catalog)
	if err != nil {
		var ie *importer.Error
		rejected := 0
		if errors.As(err, &ie) {
			rejected = len(ie.Rejected)
			metrics.RecordErrorByComponent("importer", ie.Kind.String())
			s.logRejections(ctx, ie.Rejected)
		}
		metrics.RecordImport("", rejected, time.Since(start), err)
		s.logger.Warn(ctx, "import rejected", logger.Error(err))
		return types.ImportSummary{}, err
	}
	s.logRejections(ctx, res.Rejected)

	next := res.Records
	unplayed := 0
	if s.dropUnplayed {
		next = importer.DropUnplayed(res.Records)
		unplayed = len(res.Records) - len(next)
	}

	if current != nil && !current() {
		metrics.RecordImport(string(res.Shape), len(res.Rejected), time.Since(start), fetch.ErrSuperseded)
		s.logger.Debug(ctx, "fetched capture superseded before import")
		return types.ImportSummary{}, fetch.ErrSuperseded
	}

	if err := s.commit(ctx, next); err != nil {
		metrics.RecordImport(string(res.Shape), len(res.Rejected), time.Since(start), err)
		return types.ImportSummary{}, err
	}

	summary := types.ImportSummary{
		BatchID:  uuid.NewString(),
		Shape:    string(res.Shape),
		Entries:  res.Entries,
		Imported: len(next),
		Unplayed: unplayed,
		Rejected: rejectionViews(res.Rejected),
		At:       time.Now().UTC(),
	}
	s.lastImport = &summary
	metrics.RecordImport(summary.Shape, len(res.Rejected), time.Since(start), nil)

	s.logger.Info(ctx, "records imported",
		logger.String("batchId", summary.BatchID),
		logger.String("shape", summary.Shape),
		logger.Int("entries", summary.Entries),
		logger.Int("imported", summary.Imported),
		logger.Int("unplayed", unplayed),
		logger.Int("rejected", len(res.Rejected)),
		logger.Duration("took", time.Since(start)),
	)
	return summary, nil
}

// FetchAndImport downloads the capture from the configured endpoint and
// imports it. A fetch replaced by a newer one, either in flight or while
// waiting for the lock, returns fetch.ErrSuperseded without touching the
// collection.
func (s *Service) FetchAndImport(ctx context.Context) (types.ImportSummary, error) {
	if s.fetcher == nil {
		return types.ImportSummary{}, ErrFetchUnavailable
	}
	body, gen, err := s.fetcher.FetchTagged(ctx)
	if err != nil {
		return types.ImportSummary{}, err
	}
	return s.importPayload(ctx, body, func() bool { return s.fetcher.Current(gen) })
}

// SearchSongs searches the catalog. limit <= 0 means no limit.
func (s *Service) SearchSongs(ctx context.Context, query string, limit int) ([]types.SongView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	opts := s.searchOpts
	opts.Limit = limit
	matches := s.catalog.Search(query, opts)
	metrics.RecordSearch()

	out := make([]types.SongView, len(matches))
	for i, m := range matches {
		out[i] = types.NewSongView(m.Song, m.Score)
	}
	s.logger.Debug(ctx, "catalog search", logger.String("query", query), logger.Int("results", len(out)))
	return out, nil
}

// Song returns one catalog song.
func (s *Service) Song(ctx context.Context, id string) (types.SongView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.SongView{}, ErrNotStarted
	}
	song, ok := s.catalog.FindSong(id)
	if !ok {
		return types.SongView{}, fmt.Errorf("%w: song %q", ErrNotFound, id)
	}
	return types.NewSongView(song, 0), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{Started: s.started}
	if !s.started {
		return st
	}

	st.Records = len(s.records)
	songs := s.catalog.Songs()
	st.Songs = len(songs)
	for _, song := range songs {
		st.Charts += len(song.Charts)
	}
	best := -1
	for _, r := range s.records {
		best = max(best, r.AchievementRate)
	}
	if best >= 0 {
		st.BestRate = rate.Format(best)
	}
	if s.lastImport != nil {
		li := *s.lastImport
		st.LastImport = &li
	}
	metrics.UpdateRecordsTotal(st.Records)
	return st
}

// commit saves next and makes it current. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, next model.Collection) error {
	if err := s.store.Save(ctx, next); err != nil {
		metrics.RecordErrorByComponent("store", "save")
		s.logger.Error(ctx, "save records failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.records = next
	metrics.UpdateRecordsTotal(len(next))
	return nil
}

func (s *Service) logRejections(ctx context.Context, rejected []importer.Rejection) {
	for _, r := range rejected {
		s.logger.Debug(ctx, "import entry rejected",
			logger.Int("index", r.Index),
			logger.String("songId", r.SongID),
			logger.String("difficulty", r.DifficultyLevel),
			logger.Error(r.Reason),
		)
	}
}

func rejectionViews(rs []importer.Rejection) []types.Rejection {
	out := make([]types.Rejection, len(rs))
	for i, r := range rs {
		out[i] = types.Rejection{
			Index:           r.Index,
			SongID:          r.SongID,
			DifficultyLevel: r.DifficultyLevel,
			Reason:          r.Reason.Error(),
		}
	}
	return out
}
