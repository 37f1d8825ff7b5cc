// Package memstore is a process-local implementation of db.Query.
// Each call holds the store lock for its whole duration, so a filtered
// Update behaves like a single conditional UPDATE statement.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jakechorley/coffee-rota/pkg/db"
)

// Store holds tables of rows in memory
type Store struct {
	mu      sync.Mutex
	tables  map[string][]db.Row
	unique  map[string][][]string
	failErr error
}

// New creates an empty store with the unique constraints of the hosted schema
func New() *Store {
	return &Store{
		tables: make(map[string][]db.Row),
		unique: map[string][][]string{
			db.TableShifts:       {{db.ColID}},
			db.TableAvailability: {{db.ColID}, {db.ColUserID, db.ColDayOfWeek}},
			db.TableProfiles:     {{db.ColID}},
			db.TableStores:       {{db.ColID}},
		},
	}
}

// FailWith makes every subsequent call return err until cleared with nil
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Seed inserts rows directly, bypassing constraints. For fixtures.
func (s *Store) Seed(table string, rows ...db.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], copyRow(r))
	}
}

// Len returns the number of rows in a table
func (s *Store) Len(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

func (s *Store) Find(ctx context.Context, table string, filters []db.Filter, order ...db.Order) ([]db.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, filters); err != nil {
		return nil, err
	}

	result := make([]db.Row, 0)
	for _, r := range s.tables[table] {
		if matchesAll(r, filters) {
			result = append(result, copyRow(r))
		}
	}

	if len(order) > 0 {
		sort.SliceStable(result, func(i, j int) bool {
			for _, o := range order {
				c := compareForSort(result[i][o.Column], result[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	return result, nil
}

func (s *Store) FindOne(ctx context.Context, table string, filters []db.Filter) (db.Row, bool, error) {
	rows, err := s.Find(ctx, table, filters)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

func (s *Store) Insert(ctx context.Context, table string, rows []db.Row) ([]db.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, nil); err != nil {
		return nil, err
	}

	// Validate the whole batch first so a failed insert leaves the table untouched
	pending := append([]db.Row{}, s.tables[table]...)
	for _, r := range rows {
		if err := s.violatesUnique(table, pending, r); err != nil {
			return nil, err
		}
		pending = append(pending, copyRow(r))
	}

	inserted := make([]db.Row, len(rows))
	for i, r := range rows {
		inserted[i] = copyRow(r)
	}
	s.tables[table] = pending
	return inserted, nil
}

func (s *Store) Update(ctx context.Context, table string, filters []db.Filter, patch db.Row) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, filters); err != nil {
		return 0, err
	}

	rows := s.tables[table]
	updated := make([]db.Row, len(rows))
	var changed []int
	for i, r := range rows {
		if !matchesAll(r, filters) {
			updated[i] = r
			continue
		}
		next := copyRow(r)
		for k, v := range patch {
			next[k] = v
		}
		updated[i] = next
		changed = append(changed, i)
	}

	for _, i := range changed {
		r := updated[i]
		others := make([]db.Row, 0, len(updated)-1)
		others = append(others, updated[:i]...)
		others = append(others, updated[i+1:]...)
		if err := s.violatesUnique(table, others, r); err != nil {
			return 0, err
		}
	}

	s.tables[table] = updated
	return int64(len(changed)), nil
}

func (s *Store) Delete(ctx context.Context, table string, filters []db.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, filters); err != nil {
		return 0, err
	}

	kept := make([]db.Row, 0, len(s.tables[table]))
	var n int64
	for _, r := range s.tables[table] {
		if matchesAll(r, filters) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.tables[table] = kept
	return n, nil
}

func (s *Store) check(ctx context.Context, filters []db.Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failErr != nil {
		return s.failErr
	}
	for _, f := range filters {
		if !db.ValidOp(f.Op) {
			return fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	return nil
}

func (s *Store) violatesUnique(table string, existing []db.Row, r db.Row) error {
	for _, cols := range s.unique[table] {
		for _, other := range existing {
			if sameKey(cols, r, other) {
				return fmt.Errorf("duplicate key value violates unique constraint %s_%s_key",
					table, strings.Join(cols, "_"))
			}
		}
	}
	return nil
}

func sameKey(cols []string, a, b db.Row) bool {
	for _, c := range cols {
		av, bv := a[c], b[c]
		if av == nil || bv == nil {
			return false
		}
		if cmp, ok := compare(av, bv); !ok || cmp != 0 {
			return false
		}
	}
	return true
}

func matchesAll(r db.Row, filters []db.Filter) bool {
	for _, f := range filters {
		if !matches(r, f) {
			return false
		}
	}
	return true
}

// matches follows SQL semantics: any comparison against NULL is false
func matches(r db.Row, f db.Filter) bool {
	v := r[f.Column]
	switch f.Op {
	case db.OpIsNull:
		return v == nil
	case db.OpNotNull:
		return v != nil
	}
	if v == nil || f.Value == nil {
		return false
	}
	c, ok := compare(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case db.OpEq:
		return c == 0
	case db.OpNeq:
		return c != 0
	case db.OpLt:
		return c < 0
	case db.OpLte:
		return c <= 0
	case db.OpGt:
		return c > 0
	case db.OpGte:
		return c >= 0
	}
	return false
}

func compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compareForSort orders NULLs last, as Postgres does for ascending sorts
func compareForSort(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c, _ := compare(a, b)
	return c
}

func copyRow(r db.Row) db.Row {
	out := make(db.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
