package records

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

type stubRecord struct {
	pk string
}

func (r *stubRecord) PK() string                { return r.pk }
func (r *stubRecord) SubjectIdentifier() string { return "S-1" }
func (r *stubRecord) ModelLabel() string        { return "app.stub" }

func TestStoreGetUnknownLabel(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.Get(context.Background(), "app.unknown", "pk"); err == nil {
		t.Fatal("expected error for unknown model label")
	}
}

func TestStoreGetDispatchesToFetcher(t *testing.T) {
	store := NewStore(nil)
	store.Register("app.stub", func(ctx context.Context, pool *pgxpool.Pool, pk string) (Record, error) {
		if pk == "known" {
			return &stubRecord{pk: pk}, nil
		}
		return nil, fmt.Errorf("record %s: %w", pk, ErrNotFound)
	})

	rec, err := store.Get(context.Background(), "app.stub", "known")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.PK() != "known" {
		t.Fatalf("unexpected record pk: %s", rec.PK())
	}

	_, err = store.Get(context.Background(), "app.stub", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
