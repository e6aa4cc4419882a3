package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-ini/ini"
)

// Sections named "<parent>.<child>" become nested tables, so
//
//	[out_vars.temp]
//	out_name = airtemp
//
// reads the same as a YAML out_vars entry. All values are strings.
func decodeINI(data []byte) (*Table, error) {
	f, err := ini.LoadSources(ini.LoadOptions{}, data)
	if err != nil {
		return nil, err
	}

	t := NewTable()
	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}

		target := NewTable()
		for _, k := range sec.Keys() {
			target.Set(k.Name(), k.String())
		}

		parent, child, nested := strings.Cut(name, ".")
		if !nested {
			if existing, ok := t.Get(name); ok {
				// A child section created the parent first.
				et, _ := existing.(*Table)
				for _, k := range target.keys {
					if et.Has(k) {
						return nil, fmt.Errorf("section [%s]: key %q also defined by [%s.%s]", name, k, name, k)
					}
					et.Set(k, target.values[k])
				}
				continue
			}
			t.Set(name, target)
			continue
		}

		pt, ok := t.Get(parent)
		if !ok {
			pt = NewTable()
			t.Set(parent, pt)
		}
		ptab := pt.(*Table)
		if existing, ok := ptab.Get(child); ok {
			if _, isTable := existing.(*Table); !isTable {
				return nil, fmt.Errorf("section [%s]: %q already set in [%s]", name, child, parent)
			}
			return nil, fmt.Errorf("section [%s] defined twice", name)
		}
		ptab.Set(child, target)
	}
	return t, nil
}

func encodeINI(t *Table) ([]byte, error) {
	f := ini.Empty()
	for _, name := range t.keys {
		sec, ok := t.values[name].(*Table)
		if !ok {
			return nil, fmt.Errorf("top-level key %q must be a section", name)
		}
		if err := writeINISection(f, name, sec); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeINISection(f *ini.File, name string, t *Table) error {
	sec, err := f.NewSection(name)
	if err != nil {
		return err
	}

	var children []string
	for _, k := range t.keys {
		switch v := t.values[k].(type) {
		case *Table:
			children = append(children, k)
		case []any:
			parts := make([]string, len(v))
			for i, e := range v {
				parts[i] = FormatScalar(e)
			}
			if _, err := sec.NewKey(k, strings.Join(parts, ", ")); err != nil {
				return err
			}
		default:
			if _, err := sec.NewKey(k, FormatScalar(v)); err != nil {
				return err
			}
		}
	}

	for _, k := range children {
		if err := writeINISection(f, name+"."+k, t.values[k].(*Table)); err != nil {
			return err
		}
	}
	return nil
}
