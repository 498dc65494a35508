package query

import "strings"

// Statement is SQL text plus its bound arguments in placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

// Builder collects optional WHERE predicates. Each predicate carries its own
// arguments so placeholder order always matches argument order.
type Builder struct {
	preds []string
	args  []any
}

// Add appends a predicate fragment and its arguments.
func (b *Builder) Add(pred string, args ...any) *Builder {
	b.preds = append(b.preds, pred)
	b.args = append(b.args, args...)
	return b
}

// AddIf appends the predicate only when cond holds.
func (b *Builder) AddIf(cond bool, pred string, args ...any) *Builder {
	if cond {
		b.Add(pred, args...)
	}
	return b
}

// Where renders "WHERE a AND b ..." or "" when no predicate was added.
func (b *Builder) Where() string {
	if b == nil || len(b.preds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.preds, " AND ")
}

// Args returns a copy of the bound arguments.
func (b *Builder) Args() []any {
	if b == nil {
		return nil
	}
	out := make([]any, len(b.args))
	copy(out, b.args)
	return out
}

// Len is the number of predicates.
func (b *Builder) Len() int {
	if b == nil {
		return 0
	}
	return len(b.preds)
}

// Select is a paginated listing query. Count and Data share the same
// predicates; only Data is ordered and limited.
type Select struct {
	Columns string
	From    string
	// CountFrom is used by Count when the data joins are not needed to count rows.
	CountFrom string
	Where     *Builder
	OrderBy   string
	Limit     int
	Offset    int
}

// Count renders the COUNT(*) statement.
func (s Select) Count() Statement {
	from := s.CountFrom
	if from == "" {
		from = s.From
	}
	return Statement{
		SQL:  join("SELECT COUNT(*) AS count FROM", from, s.Where.Where()),
		Args: s.Where.Args(),
	}
}

// Data renders the row statement. LIMIT and OFFSET are bound after the
// predicate arguments.
func (s Select) Data() Statement {
	args := s.Where.Args()
	sql := join("SELECT", s.Columns, "FROM", s.From, s.Where.Where(), s.OrderBy)
	if s.Limit > 0 {
		sql += " LIMIT ? OFFSET ?"
		args = append(args, s.Limit, s.Offset)
	}
	return Statement{SQL: sql, Args: args}
}

// Placeholders returns "?, ?, ..." for n arguments.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func join(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
