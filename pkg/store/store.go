// Package store persists resolved layouts for the HTTP server so that a
// layout computed once can be fetched and re-rendered by ID.
//
// Two implementations are provided: [MemoryStore] for tests and single
// instance deployments, and [MongoStore] backed by MongoDB.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/beeswarm/pkg/cache"
	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/plot"
)

// Record is a stored layout.
type Record struct {
	ID          string              `json:"id" bson:"_id"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	DatasetHash string              `json:"dataset_hash" bson:"dataset_hash"`
	Options     cache.LayoutKeyOpts `json:"options" bson:"options"`
	Layout      plot.Layout         `json:"layout" bson:"layout"`
}

// Store saves and loads layout records.
type Store interface {
	// Save stores rec, assigning an ID and creation time when they are
	// empty.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record with the given ID or an ErrCodeNotFound error.
	Get(ctx context.Context, id string) (*Record, error)

	// Delete removes a record. Deleting a missing record is an
	// ErrCodeNotFound error.
	Delete(ctx context.Context, id string) error

	Close(ctx context.Context) error
}

// prepare fills the generated fields of rec.
func prepare(rec *Record, now time.Time) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now.UTC().Truncate(time.Millisecond)
	}
}

// checkID rejects IDs that cannot have been generated by [prepare], so that
// malformed input never reaches the backend.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeNotFound, "layout %q not found", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "layout %q not found", id)
}
