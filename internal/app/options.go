package service

import (
	"github.com/okian/chartrec/internal/adapters/repository"
	"github.com/okian/chartrec/internal/domain/catalog"
	"github.com/okian/chartrec/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the song catalog. Without it the bundled catalog is used.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithStore sets the record store. Without it records live in memory only.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithFetcher sets the remote capture fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithDropUnplayed controls whether imports discard zero-rate entries.
func WithDropUnplayed(drop bool) Option {
	return func(s *Service) {
		s.dropUnplayed = drop
	}
}

// WithSearchOptions sets catalog search weights and threshold.
func WithSearchOptions(o catalog.SearchOptions) Option {
	return func(s *Service) {
		s.searchOpts = o
	}
}

// WithMaxImportBytes caps the size of an import payload.
func WithMaxImportBytes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxImportBytes = n
		}
	}
}
