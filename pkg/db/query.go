package db

import (
	"context"
	"fmt"
)

// Table names in the hosted store
const (
	TableShifts       = "shifts"
	TableAvailability = "availability"
	TableProfiles     = "profiles"
	TableStores       = "stores"
)

// Row is a single record keyed by column name. NULL columns hold nil.
type Row map[string]any

// Op is a filter comparison operator
type Op string

const (
	OpEq      Op = "eq"
	OpNeq     Op = "neq"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpIsNull  Op = "is_null"
	OpNotNull Op = "not_null"
)

// Filter restricts a query to rows where Column Op Value holds
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func (f Filter) String() string {
	if f.Op == OpIsNull || f.Op == OpNotNull {
		return fmt.Sprintf("%s %s", f.Column, f.Op)
	}
	return fmt.Sprintf("%s %s %v", f.Column, f.Op, f.Value)
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }
func Lt(column string, value any) Filter  { return Filter{Column: column, Op: OpLt, Value: value} }
func Lte(column string, value any) Filter { return Filter{Column: column, Op: OpLte, Value: value} }
func Gt(column string, value any) Filter  { return Filter{Column: column, Op: OpGt, Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }
func IsNull(column string) Filter         { return Filter{Column: column, Op: OpIsNull} }
func NotNull(column string) Filter        { return Filter{Column: column, Op: OpNotNull} }

// EqOrNull matches column = *value, or column IS NULL when value is nil
func EqOrNull(column string, value *string) Filter {
	if value == nil {
		return IsNull(column)
	}
	return Eq(column, *value)
}

// Order sorts query results by a column
type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Query is the generic filtered table interface of the hosted data store.
// Update and Delete return the number of affected rows so callers can
// express conditional (compare-and-set) writes through their filters.
type Query interface {
	Find(ctx context.Context, table string, filters []Filter, order ...Order) ([]Row, error)
	FindOne(ctx context.Context, table string, filters []Filter) (Row, bool, error)
	Insert(ctx context.Context, table string, rows []Row) ([]Row, error)
	Update(ctx context.Context, table string, filters []Filter, patch Row) (int64, error)
	Delete(ctx context.Context, table string, filters []Filter) (int64, error)
}

// ValidOp reports whether op is a known operator
func ValidOp(op Op) bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpIsNull, OpNotNull:
		return true
	}
	return false
}
