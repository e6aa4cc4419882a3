package document

import (
	"bytes"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// keySep joins TOML key paths into lookup keys.
const keySep = "\x00"

func decodeTOML(data []byte) (*Table, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	// Children of every table in document order.
	order := make(map[string][]string)
	for _, key := range md.Keys() {
		parent := strings.Join(key[:len(key)-1], keySep)
		leaf := key[len(key)-1]
		if !slices.Contains(order[parent], leaf) {
			order[parent] = append(order[parent], leaf)
		}
	}

	return fromTOMLTable(raw, "", order), nil
}

func fromTOMLTable(m map[string]any, path string, order map[string][]string) *Table {
	t := NewTable()
	keys := slices.Clone(order[path])
	// Keys the metadata did not report go last, sorted.
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		child := k
		if path != "" {
			child = path + keySep + k
		}
		if sub, ok := v.(map[string]any); ok {
			t.Set(k, fromTOMLTable(sub, child, order))
			continue
		}
		t.Set(k, normalize(v))
	}
	return t
}

func encodeTOML(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(t.ToMap()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
