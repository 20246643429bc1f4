package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tours-backend/internal/shared/apperror"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInt
	KindBool
	KindTime
	KindUUID
)

// Field maps a public (JSON) field name to its column.
type Field struct {
	Column string
	Kind   Kind
	// Hidden fields are only projected when explicitly requested.
	Hidden bool
	// Multi fields turn repeated query values into IN (...) instead of
	// keeping the last one.
	Multi bool
	// ProjectOnly fields (arrays, nested documents) can be selected but not
	// filtered or sorted on.
	ProjectOnly bool
}

// Schema lists the fields a listing may filter, sort and project on.
type Schema struct {
	Fields      map[string]Field
	Order       []string // projection order
	IDField     string
	DefaultSort []SortKey
}

func (s Schema) lookup(name string) (Field, bool) {
	f, ok := s.Fields[name]
	return f, ok
}

func (s Schema) idColumn() string {
	if f, ok := s.Fields[s.IDField]; ok {
		return f.Column
	}
	return "id"
}

// Parse converts a raw query value into the column's Go type.
func (f Field) Parse(name, raw string) (interface{}, error) {
	invalid := func() error {
		return apperror.BadRequest(fmt.Sprintf("Invalid value for %s: %s", name, raw))
	}

	switch f.Kind {
	case KindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalid()
		}
		return v, nil
	case KindInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, invalid()
		}
		return v, nil
	case KindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid()
		}
		return v, nil
	case KindTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if v, err := time.Parse(layout, raw); err == nil {
				return v, nil
			}
		}
		return nil, invalid()
	case KindUUID:
		v, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalid()
		}
		return v, nil
	default:
		return strings.TrimSpace(raw), nil
	}
}
