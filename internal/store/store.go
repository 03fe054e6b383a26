package store

import (
	"context"
	"errors"

	"github.com/norwind/bingwall/internal/model"
)

// ErrNotFound is returned by Read when no record exists for the key.
var ErrNotFound = errors.New("store: record not found")

// Store persists wallpaper metadata records keyed by (market, date).
//
// The write side is a gate: a key is written at most once, ever. Callers
// never update or delete records; re-collection of a stored key must be a
// silent skip, which WriteIfAbsent reports through its boolean.
type Store interface {
	// Exists reports whether a record is already stored for the key.
	Exists(ctx context.Context, key model.CollectionKey) (bool, error)

	// WriteIfAbsent stores the record unless its key is already present.
	// Returns true when this call performed the write, false when the key
	// already existed. Under concurrent writers of the same key exactly
	// one call returns true.
	WriteIfAbsent(ctx context.Context, wp *model.Wallpaper) (bool, error)

	// Read loads the record for the key, or ErrNotFound.
	Read(ctx context.Context, key model.CollectionKey) (*model.Wallpaper, error)

	// ListByMarket returns one page of a market's records, newest date
	// first, plus the market's total record count. Pages are 1-based.
	ListByMarket(ctx context.Context, market model.MarketCode, page, pageSize int) ([]*model.Wallpaper, int64, error)

	// ListLatest returns the market's n newest records, newest first.
	// A non-positive n yields no records.
	ListLatest(ctx context.Context, market model.MarketCode, n int) ([]*model.Wallpaper, error)
}
