package runcfg

import (
	"math"
	"strconv"
	"strings"
	"time"

	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/vocab"
)

// dateLayout accepts one- or two-digit months and days.
const dateLayout = "2006-1-2"

func asInt(section, field string, v any) (int, error) {
	switch x := v.(type) {
	case int64:
		if x < math.MinInt || x > math.MaxInt {
			return 0, mserr.TypeCoercion(section, field, "integer", v)
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, mserr.TypeCoercion(section, field, "integer", v).WithCause(err)
		}
		return n, nil
	}
	return 0, mserr.TypeCoercion(section, field, "integer", v)
}

// asFloat reads a finite number. NaN and infinities are rejected here so
// that range checks and equality see ordinary values only.
func asFloat(section, field string, v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int64:
		return float64(x), nil
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, mserr.TypeCoercion(section, field, "number", v).WithCause(err)
		}
	default:
		return 0, mserr.TypeCoercion(section, field, "number", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, mserr.Range(section, field, strconv.FormatFloat(f, 'g', -1, 64), "must be a finite number")
	}
	return f, nil
}

func asBool(section, field string, v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		switch strings.ToLower(s) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, mserr.TypeCoercion(section, field, "boolean", v)
		}
		return b, nil
	}
	return false, mserr.TypeCoercion(section, field, "boolean", v)
}

func asString(section, field string, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", mserr.TypeCoercion(section, field, "string", v)
}

func asDate(section, field string, v any) (Date, error) {
	switch x := v.(type) {
	case time.Time:
		return DateOf(x), nil
	case string:
		t, err := time.Parse(dateLayout, strings.TrimSpace(x))
		if err != nil {
			return Date{}, mserr.TypeCoercion(section, field, "date (YYYY-M-D)", v).WithCause(err)
		}
		return DateOf(t), nil
	}
	return Date{}, mserr.TypeCoercion(section, field, "date (YYYY-M-D)", v)
}

// asStringList reads a sequence of strings, or a comma separated string.
func asStringList(section, field string, v any) ([]string, error) {
	var items []string
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, mserr.TypeCoercion(section, field, "list of strings", v)
			}
			items = append(items, strings.TrimSpace(s))
		}
	case string:
		for _, s := range strings.Split(x, ",") {
			items = append(items, strings.TrimSpace(s))
		}
	default:
		return nil, mserr.TypeCoercion(section, field, "list of strings", v)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// asChoice reads a string and checks it against a closed set, returning the
// canonical spelling.
func asChoice(section, field string, v any, choice vocab.Choice) (string, error) {
	s, err := asString(section, field, v)
	if err != nil {
		return "", err
	}
	n, ok := choice.Normalize(s)
	if !ok {
		return "", mserr.Range(section, field, s, "must be "+choice.String())
	}
	return n, nil
}
