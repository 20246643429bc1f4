package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"tours-backend/internal/shared/apperror"
)

// Scope pre-restricts a listing, e.g. reviews of one tour.
type Scope map[string]interface{}

// Builder applies the four list stages to a base dataset. Each stage can be
// called in any order; execution is left to the caller.
type Builder struct {
	ds     *goqu.SelectDataset
	opts   *Options
	schema Schema
	errs   []error
}

func NewBuilder(base *goqu.SelectDataset, opts *Options, schema Schema) *Builder {
	if opts == nil {
		opts = &Options{Page: DefaultPage, Limit: DefaultLimit}
	}
	return &Builder{ds: base, opts: opts, schema: schema}
}

// Scoped adds equality constraints that do not come from the query string.
func (b *Builder) Scoped(scope Scope) *Builder {
	if len(scope) > 0 {
		b.ds = b.ds.Where(goqu.Ex(scope))
	}
	return b
}

func (b *Builder) Filter() *Builder {
	for _, f := range b.opts.Filters {
		field, ok := b.schema.lookup(f.Field)
		if !ok || field.ProjectOnly {
			b.fail(apperror.BadRequest(fmt.Sprintf("Invalid filter field: %s", f.Field)))
			continue
		}
		col := goqu.I(field.Column)

		if f.Op == OpEq && field.Multi && len(f.Values) > 1 {
			values := make([]interface{}, 0, len(f.Values))
			for _, raw := range f.Values {
				v, err := field.Parse(f.Field, raw)
				if err != nil {
					b.fail(err)
					continue
				}
				values = append(values, v)
			}
			b.ds = b.ds.Where(col.In(values...))
			continue
		}

		v, err := field.Parse(f.Field, f.Values[len(f.Values)-1])
		if err != nil {
			b.fail(err)
			continue
		}
		b.ds = b.ds.Where(compare(col, f.Op, v))
	}
	return b
}

func compare(col exp.IdentifierExpression, op Operator, v interface{}) exp.Expression {
	switch op {
	case OpGte:
		return col.Gte(v)
	case OpGt:
		return col.Gt(v)
	case OpLte:
		return col.Lte(v)
	case OpLt:
		return col.Lt(v)
	default:
		return col.Eq(v)
	}
}

func (b *Builder) Sort() *Builder {
	keys := b.opts.Sort
	if len(keys) == 0 {
		keys = b.schema.DefaultSort
	}

	idCol := b.schema.idColumn()
	orders := make([]exp.OrderedExpression, 0, len(keys)+1)
	hasID := false
	for _, key := range keys {
		field, ok := b.schema.lookup(key.Field)
		if !ok || field.ProjectOnly {
			b.fail(apperror.BadRequest(fmt.Sprintf("Invalid sort field: %s", key.Field)))
			continue
		}
		if field.Column == idCol {
			hasID = true
		}
		if key.Desc {
			orders = append(orders, goqu.I(field.Column).Desc())
		} else {
			orders = append(orders, goqu.I(field.Column).Asc())
		}
	}
	// stable pages when the sort key has ties
	if !hasID {
		orders = append(orders, goqu.I(idCol).Asc())
	}

	b.ds = b.ds.Order(orders...)
	return b
}

// LimitFields projects the requested fields, or every default field except
// the "-" prefixed ones. The id column is always kept.
func (b *Builder) LimitFields() *Builder {
	idCol := b.schema.idColumn()
	cols := []interface{}{goqu.I(idCol)}

	include, exclude, err := SplitFields(b.opts.Fields)
	if err != nil {
		b.fail(err)
	}

	if len(include) > 0 {
		seen := map[string]bool{idCol: true}
		for _, name := range include {
			field, ok := b.schema.lookup(name)
			if !ok {
				b.fail(apperror.BadRequest(fmt.Sprintf("Invalid field: %s", name)))
				continue
			}
			if !seen[field.Column] {
				seen[field.Column] = true
				cols = append(cols, goqu.I(field.Column))
			}
		}
	} else {
		skip := make(map[string]bool, len(exclude))
		for _, name := range exclude {
			if _, ok := b.schema.lookup(name); !ok {
				b.fail(apperror.BadRequest(fmt.Sprintf("Invalid field: %s", name)))
				continue
			}
			skip[name] = true
		}
		for _, name := range b.schema.Order {
			field := b.schema.Fields[name]
			if field.Hidden || field.Column == idCol || skip[name] {
				continue
			}
			cols = append(cols, goqu.I(field.Column))
		}
	}

	b.ds = b.ds.Select(cols...)
	return b
}

// SplitFields separates a fields list into inclusions and "-" prefixed
// exclusions. The two cannot be mixed.
func SplitFields(fields []string) (include, exclude []string, err error) {
	for _, name := range fields {
		if strings.HasPrefix(name, "-") {
			if name = strings.TrimPrefix(name, "-"); name != "" {
				exclude = append(exclude, name)
			}
			continue
		}
		include = append(include, name)
	}
	if len(include) > 0 && len(exclude) > 0 {
		return nil, nil, apperror.BadRequest("Cannot mix field inclusion and exclusion")
	}
	return include, exclude, nil
}

// Paginate never fails: a page past the end simply yields no rows.
func (b *Builder) Paginate() *Builder {
	b.ds = b.ds.Limit(uint(b.opts.Limit)).Offset(uint(b.opts.Offset()))
	return b
}

// Apply runs every stage in the canonical order.
func (b *Builder) Apply() *Builder {
	return b.Filter().Sort().LimitFields().Paginate()
}

func (b *Builder) Dataset() *goqu.SelectDataset {
	return b.ds
}

// Err returns the first invalid field or value met by any stage.
func (b *Builder) Err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return b.errs[0]
}

// ToSQL renders the dataset as a prepared postgres statement.
func (b *Builder) ToSQL() (string, []interface{}, error) {
	if err := b.Err(); err != nil {
		return "", nil, err
	}
	sql, args, err := b.ds.Prepared(true).ToSQL()
	if err != nil {
		return "", nil, errors.Join(errors.New("build list query"), err)
	}
	return sql, args, nil
}

func (b *Builder) fail(err error) {
	b.errs = append(b.errs, err)
}
