package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jakechorley/coffee-rota/pkg/db"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

// Columns that may appear in queries, per table. Anything else is rejected
// before SQL is built, so identifiers never come from callers unchecked.
var tableColumns = map[string][]string{
	db.TableShifts: {
		db.ColID, db.ColStoreID, db.ColUserID, db.ColStartTime, db.ColEndTime,
		db.ColNote, db.ColSwapStatus, db.ColSwapCandidateID,
	},
	db.TableAvailability: {
		db.ColID, db.ColUserID, db.ColDayOfWeek, db.ColIsAvailable, db.ColStartTime, db.ColEndTime,
	},
	db.TableProfiles: {
		db.ColID, db.ColFullName, db.ColRole, db.ColPhone,
	},
	db.TableStores: {
		db.ColID, db.ColName, db.ColNotes, db.ColColor,
	},
}

var sqlOps = map[db.Op]string{
	db.OpEq:  "=",
	db.OpNeq: "<>",
	db.OpLt:  "<",
	db.OpLte: "<=",
	db.OpGt:  ">",
	db.OpGte: ">=",
}

// Find returns the rows of table matching every filter
func (d *DB) Find(ctx context.Context, table string, filters []db.Filter, order ...db.Order) ([]db.Row, error) {
	sql, args, err := buildSelect(table, filters, order, 0)
	if err != nil {
		return nil, err
	}
	return d.queryRows(ctx, sql, args)
}

// FindOne returns the first matching row
func (d *DB) FindOne(ctx context.Context, table string, filters []db.Filter) (db.Row, bool, error) {
	sql, args, err := buildSelect(table, filters, nil, 1)
	if err != nil {
		return nil, false, err
	}
	rows, err := d.queryRows(ctx, sql, args)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Insert adds rows in one statement and returns them as stored
func (d *DB) Insert(ctx context.Context, table string, rows []db.Row) ([]db.Row, error) {
	if len(rows) == 0 {
		return []db.Row{}, nil
	}
	sql, args, err := buildInsert(table, rows)
	if err != nil {
		return nil, err
	}
	return d.queryRows(ctx, sql, args)
}

// Update applies patch to every matching row and returns how many changed
func (d *DB) Update(ctx context.Context, table string, filters []db.Filter, patch db.Row) (int64, error) {
	sql, args, err := buildUpdate(table, filters, patch)
	if err != nil {
		return 0, err
	}
	tag, err := d.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", table, classify(err))
	}
	return tag.RowsAffected(), nil
}

// Delete removes every matching row and returns how many were removed
func (d *DB) Delete(ctx context.Context, table string, filters []db.Filter) (int64, error) {
	sql, args, err := buildDelete(table, filters)
	if err != nil {
		return 0, err
	}
	tag, err := d.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, classify(err))
	}
	return tag.RowsAffected(), nil
}

func (d *DB) queryRows(ctx context.Context, sql string, args []any) ([]db.Row, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", classify(err))
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows: %w", classify(err))
	}
	out := make([]db.Row, len(maps))
	for i, m := range maps {
		out[i] = db.Row(m)
	}
	return out, nil
}

// SQLSTATE codes caused by the caller's input rather than the store
const (
	sqlStateInvalidText      = "22P02"
	sqlStateCheckViolation   = "23514"
	sqlStateForeignKey       = "23503"
	sqlStateNotNullViolation = "23502"
	sqlStateExclusion        = "23P01"
)

// classify turns input errors reported by Postgres into validation errors and
// double bookings caught by shifts_no_double_booking into conflicts.
// Everything else stays a plain error and is reported as a store failure.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlStateInvalidText, sqlStateCheckViolation, sqlStateNotNullViolation:
		return apperr.Wrap(apperr.CodeValidation, err, pgErr.Message)
	case sqlStateForeignKey:
		return apperr.Wrap(apperr.CodeValidation, err, "referenced record does not exist: "+pgErr.ConstraintName)
	case sqlStateExclusion:
		return apperr.Wrap(apperr.CodeConflict, err, "person is already booked during this shift")
	}
	return err
}

// builder accumulates positional arguments while SQL is assembled
type builder struct {
	table string
	cols  map[string]bool
	args  []any
}

func newBuilder(table string) (*builder, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	allowed := make(map[string]bool, len(cols))
	for _, c := range cols {
		allowed[c] = true
	}
	return &builder{table: table, cols: allowed}, nil
}

func (b *builder) ident(col string) (string, error) {
	if !b.cols[col] {
		return "", fmt.Errorf("unknown column %q on %s", col, b.table)
	}
	return pgx.Identifier{col}.Sanitize(), nil
}

func (b *builder) tableIdent() string {
	return pgx.Identifier{b.table}.Sanitize()
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) where(filters []db.Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		col, err := b.ident(f.Column)
		if err != nil {
			return "", err
		}
		switch f.Op {
		case db.OpIsNull:
			clauses = append(clauses, col+" IS NULL")
		case db.OpNotNull:
			clauses = append(clauses, col+" IS NOT NULL")
		default:
			op, ok := sqlOps[f.Op]
			if !ok {
				return "", fmt.Errorf("unknown operator %q", f.Op)
			}
			if f.Value == nil {
				return "", fmt.Errorf("filter %s: nil value, use is_null", f.Column)
			}
			clauses = append(clauses, fmt.Sprintf("%s %s %s", col, op, b.arg(f.Value)))
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

func buildSelect(table string, filters []db.Filter, order []db.Order, limit int) (string, []any, error) {
	b, err := newBuilder(table)
	if err != nil {
		return "", nil, err
	}
	where, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(b.tableIdent())
	sb.WriteString(where)

	if len(order) > 0 {
		parts := make([]string, 0, len(order))
		for _, o := range order {
			col, err := b.ident(o.Column)
			if err != nil {
				return "", nil, err
			}
			if o.Desc {
				col += " DESC"
			}
			parts = append(parts, col)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}
	return sb.String(), b.args, nil
}

func buildInsert(table string, rows []db.Row) (string, []any, error) {
	b, err := newBuilder(table)
	if err != nil {
		return "", nil, err
	}

	// Column list comes from the first row; every row must carry the same set
	cols := sortedKeys(rows[0])
	idents := make([]string, len(cols))
	for i, c := range cols {
		if idents[i], err = b.ident(c); err != nil {
			return "", nil, err
		}
	}

	values := make([]string, 0, len(rows))
	for i, r := range rows {
		if len(r) != len(cols) {
			return "", nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), len(cols))
		}
		placeholders := make([]string, len(cols))
		for j, c := range cols {
			v, ok := r[c]
			if !ok {
				return "", nil, fmt.Errorf("row %d is missing column %s", i, c)
			}
			placeholders[j] = b.arg(v)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s RETURNING *",
		b.tableIdent(), strings.Join(idents, ", "), strings.Join(values, ", "))
	return sql, b.args, nil
}

func buildUpdate(table string, filters []db.Filter, patch db.Row) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("empty update for %s", table)
	}
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("refusing unfiltered update of %s", table)
	}
	b, err := newBuilder(table)
	if err != nil {
		return "", nil, err
	}

	cols := sortedKeys(patch)
	sets := make([]string, len(cols))
	for i, c := range cols {
		col, err := b.ident(c)
		if err != nil {
			return "", nil, err
		}
		sets[i] = fmt.Sprintf("%s = %s", col, b.arg(patch[c]))
	}

	where, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("UPDATE %s SET %s%s", b.tableIdent(), strings.Join(sets, ", "), where), b.args, nil
}

func buildDelete(table string, filters []db.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("refusing unfiltered delete from %s", table)
	}
	b, err := newBuilder(table)
	if err != nil {
		return "", nil, err
	}
	where, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + b.tableIdent() + where, b.args, nil
}

func sortedKeys(r db.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
