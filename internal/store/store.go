// Package store holds the authoritative list of water-intake entries and
// persists it as an XML property list after every mutation.
//
// The file layout (an array of dicts with id, date, amount and note) is the
// one the mobile client writes, so an existing waterEntries.xml loads as is.
//
// A Store has no internal locking. It must be owned by one goroutine; in the
// server that owner is the mainloop.Loop, and every call goes through
// Loop.Do.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"howett.net/plist"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/export"
	"github.com/tbourn/go-hydration-backend/internal/metrics"
	"github.com/tbourn/go-hydration-backend/internal/search"
)

// DefaultFilename is the fixed name of the backing file inside the data dir.
const DefaultFilename = "waterEntries.xml"

// Query selects entries. A non-empty Keyword wins over Day; the two filters
// are never combined. A zero Query selects everything.
type Query struct {
	Keyword string
	Day     *time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the calendar used for day filtering (default time.Local).
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLocale sets the locale used for keyword case-insensitivity.
func WithLocale(tag language.Tag) Option {
	return func(s *Store) { s.locale = tag }
}

// Store is the in-memory entry list backed by one file.
type Store struct {
	path     string
	entries  []domain.Entry
	loc      *time.Location
	locale   language.Tag
	exporter *export.Service
	log      zerolog.Logger
}

// Open hydrates a Store from path. A missing or undecodable file yields an
// empty list; the failure is logged and never returned.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		loc:    time.Local,
		locale: language.Und,
		log:    log.With().Str("component", "store").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	s.exporter = export.New(path)
	s.entries = s.load()
	return s
}

// Path is the backing file location.
func (s *Store) Path() string { return s.path }

// Location is the calendar used by FilterByDay.
func (s *Store) Location() *time.Location { return s.loc }

// List returns a copy of all entries, newest first.
func (s *Store) List() []domain.Entry {
	return append([]domain.Entry(nil), s.entries...)
}

// Get looks an entry up by id.
func (s *Store) Get(id string) (domain.Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Entry{}, false
}

// Add stores e (assigning an id when empty), re-sorts newest first and
// persists. An entry already holding e's id is replaced, so ids stay unique.
// Timestamps are cut to whole seconds, the precision of the file format.
// It returns the stored entry.
func (s *Store) Add(e domain.Entry) domain.Entry {
	if e.ID == "" {
		e.ID = domain.NewEntryID()
	}
	e.Timestamp = e.Timestamp.Truncate(time.Second)
	if i := s.index(e.ID); i >= 0 {
		s.entries[i] = e
	} else {
		s.entries = append(s.entries, e)
	}
	sortNewestFirst(s.entries)
	s.persist()
	return e
}

// Update replaces the entry with the same id in place and persists. A miss
// changes nothing and reports false. The timestamp is cut to whole seconds.
func (s *Store) Update(e domain.Entry) bool {
	i := s.index(e.ID)
	if i < 0 {
		return false
	}
	e.Timestamp = e.Timestamp.Truncate(time.Second)
	s.entries[i] = e
	s.persist()
	return true
}

func (s *Store) index(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes every entry with id and persists, even when none matched.
// It returns the number removed.
func (s *Store) Remove(id string) int {
	kept := s.entries[:0]
	n := 0
	for _, e := range s.entries {
		if e.ID == id {
			n++
			continue
		}
		kept = append(kept, e)
	}
	// clear the tail so removed values are not retained by the backing array
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = domain.Entry{}
	}
	s.entries = kept
	s.persist()
	return n
}

// FilterByDay returns entries on the same calendar day as day, in list order.
func (s *Store) FilterByDay(day time.Time) []domain.Entry {
	y, m, d := day.In(s.loc).Date()
	var out []domain.Entry
	for _, e := range s.entries {
		ey, em, ed := e.Timestamp.In(s.loc).Date()
		if ey == y && em == m && ed == d {
			out = append(out, e)
		}
	}
	return out
}

// FilterByKeyword returns entries whose note contains kw, ignoring case, in
// list order.
func (s *Store) FilterByKeyword(kw string) []domain.Entry {
	m := search.NewMatcher(kw, search.WithLocale(s.locale))
	var out []domain.Entry
	for _, e := range s.entries {
		if m.Match(e.Note) {
			out = append(out, e)
		}
	}
	return out
}

// Filter applies q: keyword when non-empty, else day, else everything.
func (s *Store) Filter(q Query) []domain.Entry {
	switch {
	case q.Keyword != "":
		return s.FilterByKeyword(q.Keyword)
	case q.Day != nil:
		return s.FilterByDay(*q.Day)
	default:
		return s.List()
	}
}

// Export copies the backing file to dest; see export.Service.Export.
func (s *Store) Export(dest string) bool {
	return s.exporter.Export(dest)
}

// Exporter exposes the export service bound to the backing file.
func (s *Store) Exporter() *export.Service { return s.exporter }

func sortNewestFirst(es []domain.Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		return es[i].Timestamp.After(es[j].Timestamp)
	})
}

func (s *Store) load() []domain.Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug().Str("path", s.path).Msg("no entries file yet")
		} else {
			metrics.LoadFailures.Inc()
			s.log.Error().Err(err).Str("path", s.path).Msg("read entries file")
		}
		return nil
	}
	var entries []domain.Entry
	if _, err := plist.Unmarshal(data, &entries); err != nil {
		metrics.LoadFailures.Inc()
		s.log.Error().Err(err).Str("path", s.path).Msg("decode entries file; starting empty")
		return nil
	}
	sortNewestFirst(entries)
	s.log.Info().Int("entries", len(entries)).Str("path", s.path).Msg("entries loaded")
	return entries
}

// persist rewrites the whole file. Failures are logged and counted; the
// in-memory list stays authoritative until the next successful write.
func (s *Store) persist() {
	if err := s.write(); err != nil {
		metrics.PersistFailures.Inc()
		s.log.Error().Err(err).Str("path", s.path).Msg("persist entries")
	}
}

func (s *Store) write() error {
	entries := s.entries
	if entries == nil {
		entries = []domain.Entry{}
	}
	data, err := plist.MarshalIndent(entries, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".entries-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
