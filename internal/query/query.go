// Package query turns list endpoint query strings into parameterised SQL.
//
// Recognised parameters:
//
//	searchTerm=foo        case-insensitive substring match over the searchable columns
//	brand=acme            equality filter on a whitelisted column
//	price__gte=10         comparison filter (also price[gte]=10); gte, gt, lte, lt
//	sort=-price,name      comma separated sort keys, "-" for descending
//	page=2&limit=20       pagination, limit capped at MaxLimit
//	fields=name,price     response projection, id is always kept
//
// Keys that are not whitelisted are ignored.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var reserved = map[string]bool{
	"searchTerm": true,
	"sort":       true,
	"limit":      true,
	"page":       true,
	"fields":     true,
}

// Kind controls how a filter value is parsed before it is bound.
type Kind int

const (
	Text Kind = iota
	Number
	Int
	Bool
	UUID
	Time
	// TextArray matches when the value is an element of the column.
	TextArray
)

// Column maps a public parameter name to a SQL expression.
type Column struct {
	Expr string
	Kind Kind
}

// Spec is the whitelist for one list endpoint. Column keys are the public
// (JSON) field names.
type Spec struct {
	Columns     map[string]Column
	Searchable  []string
	DefaultSort string
}

// Condition is a fixed predicate added by the caller, e.g. owner scoping.
// A single "?" in Expr is replaced by the bound Value.
type Condition struct {
	Expr  string
	Value any
}

// Eq is shorthand for an equality condition.
func Eq(expr string, value any) Condition {
	return Condition{Expr: expr + " = ?", Value: value}
}

// Raw is a condition without a bound value.
func Raw(expr string) Condition {
	return Condition{Expr: expr}
}

// Query is a parsed list request.
type Query struct {
	where  []string
	args   []any
	order  []string
	Page   int
	Limit  int
	Fields []string
}

var comparisons = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// Build parses params against spec. The only error it returns is a
// *model.DomainError for a filter value that does not parse.
func Build(spec Spec, params url.Values, conds ...Condition) (*Query, error) {
	q := &Query{
		Page:  positiveInt(params.Get("page"), DefaultPage),
		Limit: positiveInt(params.Get("limit"), DefaultLimit),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	// Keep OFFSET within PostgreSQL's integer range.
	if maxPage := math.MaxInt32/q.Limit + 1; q.Page > maxPage {
		q.Page = maxPage
	}

	for _, c := range conds {
		if strings.Contains(c.Expr, "?") {
			q.where = append(q.where, strings.Replace(c.Expr, "?", q.bind(c.Value), 1))
		} else {
			q.where = append(q.where, c.Expr)
		}
	}

	if term := strings.TrimSpace(params.Get("searchTerm")); term != "" && len(spec.Searchable) > 0 {
		ph := q.bind("%" + likeEscaper.Replace(term) + "%")
		parts := make([]string, len(spec.Searchable))
		for i, expr := range spec.Searchable {
			parts[i] = expr + " ILIKE " + ph
		}
		q.where = append(q.where, "("+strings.Join(parts, " OR ")+")")
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		name, op := splitOperator(key)
		col, ok := spec.Columns[name]
		if !ok {
			continue
		}
		raw := params.Get(key)
		value, err := parseValue(col.Kind, raw)
		if err != nil {
			return nil, model.ValidationError(model.ErrorSource{
				Path:    key,
				Message: fmt.Sprintf("Invalid value %q for %s", raw, name),
			})
		}

		switch {
		case op == "" && col.Kind == TextArray:
			q.where = append(q.where, q.bind(value)+" = ANY("+col.Expr+")")
		case op == "":
			q.where = append(q.where, col.Expr+" = "+q.bind(value))
		case col.Kind == Number || col.Kind == Int || col.Kind == Time:
			q.where = append(q.where, col.Expr+" "+comparisons[op]+" "+q.bind(value))
		}
	}

	q.order = orderBy(spec, params.Get("sort"))
	if len(q.order) == 0 && spec.DefaultSort != "" {
		q.order = orderBy(spec, spec.DefaultSort)
	}

	if raw := params.Get("fields"); raw != "" {
		q.Fields = []string{"id"}
		for _, f := range strings.Split(raw, ",") {
			f = strings.TrimSpace(f)
			if _, ok := spec.Columns[f]; ok && f != "id" {
				q.Fields = append(q.Fields, f)
			}
		}
	}

	return q, nil
}

func (q *Query) bind(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

// Where returns the WHERE clause, including the keyword, or "".
func (q *Query) Where() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// Args returns the bound values in placeholder order.
func (q *Query) Args() []any {
	return q.args
}

// Offset is the number of rows skipped for the current page.
func (q *Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// SelectSQL appends the filter, ordering and paging clauses to base, which
// must be a SELECT without a WHERE clause.
func (q *Query) SelectSQL(base string) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString(q.Where())
	if len(q.order) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.order, ", "))
	}
	fmt.Fprintf(&b, " LIMIT %d OFFSET %d", q.Limit, q.Offset())
	return b.String()
}

// CountSQL counts every row matching the filters over from, e.g. "products p".
func (q *Query) CountSQL(from string) string {
	return "SELECT COUNT(*) FROM " + from + q.Where()
}

// Meta builds the pagination metadata for a total row count.
func (q *Query) Meta(total int64) model.Meta {
	return model.Meta{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
	}
}

func orderBy(spec Spec, raw string) []string {
	var order []string
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		dir := "ASC"
		if strings.HasPrefix(key, "-") {
			dir = "DESC"
			key = key[1:]
		}
		col, ok := spec.Columns[key]
		if !ok || col.Kind == TextArray {
			continue
		}
		order = append(order, col.Expr+" "+dir)
	}
	return order
}

// splitOperator separates "price__gte" or "price[gte]" into name and operator.
func splitOperator(key string) (string, string) {
	if i := strings.IndexByte(key, '['); i > 0 && strings.HasSuffix(key, "]") {
		if op := key[i+1 : len(key)-1]; comparisons[op] != "" {
			return key[:i], op
		}
		return key, ""
	}
	if i := strings.LastIndex(key, "__"); i > 0 {
		if op := key[i+2:]; comparisons[op] != "" {
			return key[:i], op
		}
	}
	return key, ""
}

func parseValue(kind Kind, raw string) (any, error) {
	switch kind {
	case Number:
		return decimal.NewFromString(raw)
	case Int:
		return strconv.Atoi(raw)
	case Bool:
		return strconv.ParseBool(raw)
	case UUID:
		return uuid.Parse(raw)
	case Time:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse(time.DateOnly, raw)
	default:
		return raw, nil
	}
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
