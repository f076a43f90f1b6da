// Package repository persists the record collection.
package repository

import (
	"context"

	"github.com/okian/chartrec/internal/domain/model"
)

// Store loads and saves the whole record collection. Save replaces whatever
// was stored before; order is preserved.
type Store interface {
	Load(ctx context.Context) (model.Collection, error)
	Save(ctx context.Context, records model.Collection) error
	Close() error
}
