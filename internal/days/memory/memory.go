// Package memory is an in-process day store used for local development and
// tests. Data lives for the life of the process.
package memory

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"daylog/internal/core"
	"daylog/internal/days"
)

type partition struct {
	user string
	day  core.Day
}

type Store struct {
	mu         sync.Mutex
	items      map[partition][]days.Record
	categories []string
	lastMarker time.Time
	now        func() time.Time
	logger     *slog.Logger
}

var (
	_ days.Store          = (*Store)(nil)
	_ days.CategoryLister = (*Store)(nil)
)

func New(categories []string) *Store {
	cats := dedupe(categories)
	if len(cats) == 0 {
		cats = append([]string(nil), core.Categories...)
	}
	return &Store{
		items:      make(map[partition][]days.Record),
		categories: cats,
		now:        time.Now,
		logger:     slog.Default(),
	}
}

// NewFromFiles seeds the offered categories from base/seed_categories.txt,
// one per line. Blank lines and # comments are ignored.
func NewFromFiles(base string) *Store {
	return New(readLines(filepath.Join(base, "seed_categories.txt")))
}

// List skips rows that fail to decode with a warning.
func (s *Store) List(ctx context.Context, user string, day core.Day) ([]core.Activity, error) {
	if err := days.CheckPartition("list activities", user, day); err != nil {
		return nil, err
	}
	s.mu.Lock()
	rows := append([]days.Record(nil), s.items[partition{user, day}]...)
	s.mu.Unlock()

	out := make([]core.Activity, 0, len(rows))
	for _, r := range rows {
		a, err := days.Decode(r)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping malformed activity row", "id", r.ID, "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) Add(_ context.Context, user string, day core.Day, in core.NewActivity) (core.Activity, error) {
	if err := days.CheckPartition("add activity", user, day); err != nil {
		return core.Activity{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := days.Record{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Category:  in.Category,
		Minutes:   int64(in.Minutes),
		CreatedAt: s.nextMarker(),
	}
	a, err := days.Decode(rec)
	if err != nil {
		return core.Activity{}, err
	}
	key := partition{user, day}
	s.items[key] = append(s.items[key], rec)
	return a, nil
}

func (s *Store) Delete(_ context.Context, user string, day core.Day, id string) error {
	if err := days.CheckPartition("delete activity", user, day); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := partition{user, day}
	rows := s.items[key]
	for i, r := range rows {
		if r.ID == id {
			s.items[key] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return days.NotFound("delete activity", id)
}

// Categories returns the seeded category set.
func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories...), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// nextMarker returns a strictly increasing timestamp. Caller holds s.mu.
func (s *Store) nextMarker() time.Time {
	t := s.now()
	if !t.After(s.lastMarker) {
		t = s.lastMarker.Add(time.Nanosecond)
	}
	s.lastMarker = t
	return t
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// dedupe keeps first occurrences in their original order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
