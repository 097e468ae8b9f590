package request

import (
	"encoding/json"
	"math"

	"github.com/kailas-cloud/questsearch/internal/domain"
)

// Argument names shared by the HTTP body and the RPC tool.
const (
	ArgQuery    = "query"
	ArgPage     = "page"
	ArgPageSize = "pageSize"
	ArgType     = "type"
)

// maxExactInt bounds integer arguments. Every integer below it survives a
// round trip through float64, so JSON decoded either way agrees.
const maxExactInt = 1 << 53

// ParamsFromArgs reads decoded JSON arguments. Numbers may arrive as float64
// or json.Number; either way they must be integral and below 2^53 in
// magnitude. Absent or null values take the defaults.
func ParamsFromArgs(args map[string]any) (Params, error) {
	var p Params

	query, err := stringArg(args, ArgQuery)
	if err != nil {
		return p, err
	}
	if query != nil {
		p.Query = *query
	}

	if p.Page, err = IntArg(ArgPage, args[ArgPage]); err != nil {
		return p, err
	}
	if p.PageSize, err = IntArg(ArgPageSize, args[ArgPageSize]); err != nil {
		return p, err
	}
	if p.Type, err = stringArg(args, ArgType); err != nil {
		return p, err
	}
	return p, nil
}

// IntArg converts one decoded JSON value to an int. nil means absent.
func IntArg(name string, v any) (*int, error) {
	if v == nil {
		return nil, nil
	}

	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			if i >= maxExactInt || i <= -maxExactInt {
				return nil, domain.NewValidation(name, "must be an integer")
			}
			n := int(i)
			return &n, nil
		}
		parsed, err := x.Float64()
		if err != nil {
			return nil, domain.NewValidation(name, "must be an integer")
		}
		f = parsed
	default:
		return nil, domain.NewValidation(name, "must be an integer")
	}

	if math.IsNaN(f) || f != math.Trunc(f) || f >= maxExactInt || f <= -maxExactInt {
		return nil, domain.NewValidation(name, "must be an integer")
	}
	n := int(f)
	return &n, nil
}

func stringArg(args map[string]any, name string) (*string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return nil, domain.NewValidation(name, "must be a string")
	}
	return &s, nil
}
