// AngelaMos | 2026
// scope.go

package core

import (
	"fmt"
	"strings"
)

// Filter accumulates WHERE predicates for a tenant-owned table. The first
// predicate is always tenant_id = $1, so a query built from a Filter cannot
// read or write rows of another tenant.
type Filter struct {
	tenantID   string
	alias      string
	conditions []string
	args       []any
}

func Scope(tenantID string) (*Filter, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	return &Filter{
		tenantID:   tenantID,
		conditions: []string{"tenant_id = $1"},
		args:       []any{tenantID},
	}, nil
}

// ScopeAs is Scope for queries that alias the scoped table.
func ScopeAs(tenantID, alias string) (*Filter, error) {
	f, err := Scope(tenantID)
	if err != nil {
		return nil, err
	}
	f.alias = alias
	f.conditions[0] = alias + ".tenant_id = $1"
	return f, nil
}

func (f *Filter) TenantID() string {
	return f.tenantID
}

func (f *Filter) col(name string) string {
	if f.alias == "" || strings.Contains(name, ".") {
		return name
	}
	return f.alias + "." + name
}

func (f *Filter) Eq(column string, value any) *Filter {
	f.args = append(f.args, value)
	f.conditions = append(f.conditions, fmt.Sprintf("%s = $%d", f.col(column), len(f.args)))
	return f
}

// Where appends a raw predicate. Each ? in expr is bound to the next value.
func (f *Filter) Where(expr string, values ...any) *Filter {
	var b strings.Builder
	i := 0
	for _, r := range expr {
		if r == '?' && i < len(values) {
			f.args = append(f.args, values[i])
			fmt.Fprintf(&b, "$%d", len(f.args))
			i++
			continue
		}
		b.WriteRune(r)
	}
	f.conditions = append(f.conditions, b.String())
	return f
}

// ILike matches term as a substring of any of the columns.
func (f *Filter) ILike(term string, columns ...string) *Filter {
	if term == "" || len(columns) == 0 {
		return f
	}
	f.args = append(f.args, "%"+EscapeLike(term)+"%")
	n := len(f.args)

	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, fmt.Sprintf("%s ILIKE $%d", f.col(c), n))
	}
	f.conditions = append(f.conditions, "("+strings.Join(parts, " OR ")+")")
	return f
}

func (f *Filter) Clause() string {
	return strings.Join(f.conditions, " AND ")
}

func (f *Filter) Args() []any {
	return append([]any(nil), f.args...)
}

// Next is the placeholder index the next bound value would take.
func (f *Filter) Next() int {
	return len(f.args) + 1
}

// Bind returns the placeholder for an extra value (SET lists, RETURNING
// helpers) and records the value after the filter args.
func (f *Filter) Bind(value any) string {
	f.args = append(f.args, value)
	return fmt.Sprintf("$%d", len(f.args))
}

// Page returns LIMIT/OFFSET placeholders and the full argument list.
func (f *Filter) Page(limit, offset int) (string, []any) {
	n := f.Next()
	args := append(f.Args(), limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", n, n+1), args
}

func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
