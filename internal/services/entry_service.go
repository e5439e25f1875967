// Package services – EntryService
//
// This file implements EntryService, the application-level component in
// front of the entry store. It validates inputs (positive amount, timestamp
// present, note length), runs every store call on the owning event loop,
// paginates filter results and deduplicates retried creates through the
// idempotency ledger.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"io"
	"math"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/mainloop"
	"github.com/tbourn/go-hydration-backend/internal/repo"
	"github.com/tbourn/go-hydration-backend/internal/store"
	"github.com/tbourn/go-hydration-backend/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// IdempotencyScopeCreateEntry scopes idempotency keys of entry creation.
const IdempotencyScopeCreateEntry = "entries.create"

// EntryService coordinates validated access to the entry store.
type EntryService struct {
	Store *store.Store
	Loop  mainloop.Executor

	// DB holds the idempotency ledger; nil disables deduplication.
	DB      *gorm.DB
	IdemTTL time.Duration

	// MaxNoteRunes caps notes by rune length; <= 0 disables the check.
	MaxNoteRunes int
}

// NewEntryService constructs an EntryService with defaults.
func NewEntryService(st *store.Store, loop mainloop.Executor, db *gorm.DB) *EntryService {
	return &EntryService{
		Store:        st,
		Loop:         loop,
		DB:           db,
		IdemTTL:      24 * time.Hour,
		MaxNoteRunes: 1000,
	}
}

// Location is the calendar used for day filtering.
func (s *EntryService) Location() *time.Location { return s.Store.Location() }

// validAmount accepts finite amounts above zero.
func validAmount(ml float64) bool {
	return !math.IsNaN(ml) && !math.IsInf(ml, 0) && ml > 0
}

// CreateInput is a new entry as submitted by a client.
type CreateInput struct {
	ID        string
	Timestamp time.Time
	AmountML  float64
	Note      string
}

func (s *EntryService) validate(ts time.Time, amount float64, note string) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	if ts.IsZero() {
		return ErrMissingTimestamp
	}
	if s.MaxNoteRunes > 0 && utf8.RuneCountInString(note) > s.MaxNoteRunes {
		return ErrNoteTooLong
	}
	return nil
}

// Create validates in and adds it to the store. With a non-empty idemKey a
// retried request returns the originally created entry and replayed=true
// instead of adding a duplicate.
func (s *EntryService) Create(ctx context.Context, in CreateInput, idemKey string) (entry domain.Entry, replayed bool, err error) {
	tr := otel.Tracer("services/EntryService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.Float64("entry.amount_ml", in.AmountML),
			attribute.Bool("idempotency.key_present", idemKey != ""),
		),
	)
	defer span.End()

	if err := s.validate(in.Timestamp, in.AmountML, in.Note); err != nil {
		return domain.Entry{}, false, err
	}

	// orphaned is set when the key is live but its entry was removed.
	var orphaned bool
	if idemKey != "" && s.DB != nil {
		rec, lerr := repo.GetIdempotency(ctx, s.DB, IdempotencyScopeCreateEntry, idemKey, time.Now().UTC())
		if lerr == nil {
			e, ok, gerr := s.Get(ctx, rec.EntryID)
			if gerr != nil {
				return domain.Entry{}, false, gerr
			}
			if ok {
				span.SetAttributes(attribute.Bool("idempotency.replayed", true))
				return e, true, nil
			}
			orphaned = true
		}
	}

	e := domain.Entry{
		ID:        in.ID,
		Timestamp: in.Timestamp,
		AmountML:  in.AmountML,
		Note:      in.Note,
	}
	var dup bool
	if err := s.Loop.Do(ctx, func() {
		if e.ID != "" {
			if _, exists := s.Store.Get(e.ID); exists {
				dup = true
				return
			}
		}
		e = s.Store.Add(e)
	}); err != nil {
		return domain.Entry{}, false, err
	}
	if dup {
		return domain.Entry{}, false, ErrDuplicateEntry
	}
	span.SetAttributes(attribute.String("entry.id", e.ID))

	if idemKey != "" && s.DB != nil {
		s.recordKey(ctx, span, idemKey, e.ID, orphaned)
	}
	return e, false, nil
}

// recordKey stores idemKey -> entryID. The entry already exists, so ledger
// failures are logged and traced but never fail the request. A lost insert
// race leaves the winner's record in place.
func (s *EntryService) recordKey(ctx context.Context, span trace.Span, idemKey, entryID string, rebind bool) {
	record := repo.CreateIdempotency
	if rebind {
		record = repo.BindIdempotency
	}
	_, err := record(ctx, s.DB, IdempotencyScopeCreateEntry, idemKey, entryID, 201, s.IdemTTL)
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrDuplicate):
		log.Debug().Str("component", "services").Str("entry_id", entryID).Msg("idempotency key recorded concurrently")
	default:
		span.RecordError(err)
		log.Warn().Err(err).Str("component", "services").Str("entry_id", entryID).Msg("record idempotency key")
	}
}

// Get returns the entry with id.
func (s *EntryService) Get(ctx context.Context, id string) (domain.Entry, bool, error) {
	var (
		e  domain.Entry
		ok bool
	)
	err := s.Loop.Do(ctx, func() { e, ok = s.Store.Get(id) })
	return e, ok, err
}

// Update replaces the entry with the same id. A miss is not an error: it
// changes nothing and reports updated=false.
func (s *EntryService) Update(ctx context.Context, e domain.Entry) (updated bool, err error) {
	tr := otel.Tracer("services/EntryService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("entry.id", e.ID)),
	)
	defer span.End()

	if err := s.validate(e.Timestamp, e.AmountML, e.Note); err != nil {
		return false, err
	}
	err = s.Loop.Do(ctx, func() { updated = s.Store.Update(e) })
	span.SetAttributes(attribute.Bool("entry.updated", updated))
	return updated, err
}

// Remove deletes the entry with id and reports how many were removed.
// Removing an unknown id is a no-op.
func (s *EntryService) Remove(ctx context.Context, id string) (int, error) {
	tr := otel.Tracer("services/EntryService")
	ctx, span := tr.Start(ctx, "Remove",
		trace.WithAttributes(attribute.String("entry.id", id)),
	)
	defer span.End()

	var n int
	err := s.Loop.Do(ctx, func() { n = s.Store.Remove(id) })
	return n, err
}

// ListPage returns one page of q's result and the total match count.
func (s *EntryService) ListPage(ctx context.Context, q store.Query, page, pageSize int) ([]domain.Entry, int, error) {
	tr := otel.Tracer("services/EntryService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Bool("filter.keyword", q.Keyword != ""),
			attribute.Bool("filter.day", q.Day != nil),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	var all []domain.Entry
	if err := s.Loop.Do(ctx, func() { all = s.Store.Filter(q) }); err != nil {
		return nil, 0, err
	}
	total := len(all)
	start, end := utils.Window(total, page, pageSize)
	if start == end {
		return []domain.Entry{}, total, nil
	}
	return all[start:end], total, nil
}

// Export copies the entries file to dest, an absolute path.
func (s *EntryService) Export(ctx context.Context, dest string) error {
	tr := otel.Tracer("services/EntryService")
	ctx, span := tr.Start(ctx, "Export")
	defer span.End()

	if dest == "" || !filepath.IsAbs(dest) {
		return ErrInvalidDestination
	}
	var ok bool
	// On the loop so the copy never races a persist.
	if err := s.Loop.Do(ctx, func() { ok = s.Store.Export(filepath.Clean(dest)) }); err != nil {
		return err
	}
	if !ok {
		return ErrExportFailed
	}
	return nil
}

// Download streams the entries file to w.
func (s *EntryService) Download(ctx context.Context, w io.Writer) (int64, error) {
	var (
		n   int64
		err error
	)
	if lerr := s.Loop.Do(ctx, func() { n, err = s.Store.Exporter().WriteTo(w) }); lerr != nil {
		return 0, lerr
	}
	if err != nil {
		return n, errors.Join(ErrExportFailed, err)
	}
	return n, nil
}
