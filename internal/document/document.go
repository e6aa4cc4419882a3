// Package document reads and writes MetSim run documents.
//
// A document is decoded into an ordered tree of *Table values whose leaves
// are string, int64, float64, bool, time.Time, []any or nil. The tree carries
// no MetSim semantics; the runcfg package interprets it.
package document

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	mserr "github.com/HansKimDWR/MetSim/internal/errors"
)

// Format identifies a document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
	FormatHCL  Format = "hcl"
)

// Formats lists the supported formats.
var Formats = []Format{FormatYAML, FormatTOML, FormatINI, FormatHCL}

var extensions = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".conf": FormatINI,
	".ini":  FormatINI,
	".cfg":  FormatINI,
	".hcl":  FormatHCL,
}

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Formats, f) {
		return f, nil
	}
	return "", mserr.UnsupportedFormat("", s)
}

// DetectFormat infers the format of a document from its file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", mserr.UnsupportedFormat(path, strings.TrimPrefix(ext, "."))
}

// Table is an ordered mapping from keys to raw values.
type Table struct {
	keys   []string
	values map[string]any
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]any)}
}

// FromMap builds a table from a map, recursively, with keys in ascending order.
func FromMap(m map[string]any) *Table {
	t := NewTable()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		t.Set(k, normalize(m[k]))
	}
	return t
}

// Set stores a value. New keys are appended; existing keys keep their position.
func (t *Table) Set(key string, value any) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value stored under key.
func (t *Table) Get(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	return slices.Clone(t.keys)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.keys)
}

// ToMap converts the table, recursively, into plain maps.
func (t *Table) ToMap() map[string]any {
	out := make(map[string]any, len(t.keys))
	for _, k := range t.keys {
		out[k] = plain(t.values[k])
	}
	return out
}

// String renders the table's keys, for error messages.
func (t *Table) String() string {
	return "mapping{" + strings.Join(t.keys, ", ") + "}"
}

func plain(v any) any {
	switch x := v.(type) {
	case *Table:
		return x.ToMap()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}

// normalize converts decoder output into the raw value set of this package.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int64, float64, time.Time, *Table:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return float64(x)
		}
		return int64(x)
	case float32:
		return float64(x)
	case map[string]any:
		return FromMap(x)
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = FromMap(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return fmt.Sprint(x)
	}
}

// Decode parses data in the given format. name is used in error messages.
func Decode(data []byte, format Format, name string) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch format {
	case FormatYAML:
		t, err = decodeYAML(data)
	case FormatTOML:
		t, err = decodeTOML(data)
	case FormatINI:
		t, err = decodeINI(data)
	case FormatHCL:
		t, err = decodeHCL(data, name)
	default:
		return nil, mserr.UnsupportedFormat(name, string(format))
	}
	if err != nil {
		return nil, mserr.DocumentParse(name, string(format), err)
	}
	return t, nil
}

// Encode renders a table in the given format.
func Encode(t *Table, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return encodeYAML(t)
	case FormatTOML:
		return encodeTOML(t)
	case FormatINI:
		return encodeINI(t)
	case FormatHCL:
		return encodeHCL(t)
	default:
		return nil, mserr.UnsupportedFormat("", string(format))
	}
}

// FormatScalar renders a scalar for text-only formats.
func FormatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat renders f so that it reads back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}
