// Package query turns list query strings such as
//
//	?duration[gte]=5&difficulty=easy&sort=-price,ratingsAverage&fields=name,price&page=2&limit=10
//
// into filtered, sorted, projected and paginated goqu datasets.
package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tours-backend/internal/shared/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpGte Operator = "gte"
	OpGt  Operator = "gt"
	OpLte Operator = "lte"
	OpLt  Operator = "lt"
)

var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// price[gte]
var bracketKey = regexp.MustCompile(`^([A-Za-z0-9_]+)\[([A-Za-z]+)\]$`)

type Filter struct {
	Field  string
	Op     Operator
	Values []string
}

type SortKey struct {
	Field string
	Desc  bool
}

// Options is the parsed, not yet validated, form of a list query string.
type Options struct {
	Filters []Filter
	Sort    []SortKey
	Fields  []string
	Page    int
	Limit   int
}

// Offset is the number of rows skipped before the current page. A page too
// far out to count saturates at math.MaxInt so it reads as past the end.
func (o *Options) Offset() int {
	if o.Page <= 1 || o.Limit <= 0 {
		return 0
	}
	if o.Page-1 > math.MaxInt/o.Limit {
		return math.MaxInt
	}
	return (o.Page - 1) * o.Limit
}

// Parse splits params into reserved controls and field filters.
// Malformed page/limit values fall back to the defaults and limit is capped
// at MaxLimit.
func Parse(params url.Values) (*Options, error) {
	opts := &Options{
		Page:  positiveInt(last(params["page"]), DefaultPage),
		Limit: min(positiveInt(last(params["limit"]), DefaultLimit), MaxLimit),
	}

	if raw := last(params["sort"]); raw != "" {
		for _, part := range splitList(raw) {
			key := SortKey{Field: part}
			if strings.HasPrefix(part, "-") {
				key = SortKey{Field: strings.TrimPrefix(part, "-"), Desc: true}
			}
			if key.Field != "" {
				opts.Sort = append(opts.Sort, key)
			}
		}
	}

	if raw := last(params["fields"]); raw != "" {
		opts.Fields = splitList(raw)
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		if !reserved[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		values := params[key]
		if len(values) == 0 {
			continue
		}

		field, op := key, OpEq
		if m := bracketKey.FindStringSubmatch(key); m != nil {
			field = m[1]
			op = Operator(m[2])
			switch op {
			case OpGte, OpGt, OpLte, OpLt:
			default:
				return nil, apperror.BadRequest(fmt.Sprintf("Invalid filter operator: %s", m[2]))
			}
		} else if strings.ContainsAny(key, "[]$") {
			return nil, apperror.BadRequest(fmt.Sprintf("Invalid filter: %s", key))
		}

		opts.Filters = append(opts.Filters, Filter{Field: field, Op: op, Values: values})
	}

	return opts, nil
}

// Preset overrides the given reserved keys, used by alias routes.
func Preset(params url.Values, preset map[string]string) url.Values {
	out := url.Values{}
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range preset {
		out.Set(k, v)
	}
	return out
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
