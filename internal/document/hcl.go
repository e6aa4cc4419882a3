package document

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Each section is a block without labels:
//
//	MetSim {
//	  time_step = 30
//	}
//	out_vars {
//	  temp = { out_name = "airtemp", units = "K" }
//	}
//
// Nested blocks are accepted wherever an object value is.
func decodeHCL(data []byte, name string) (*Table, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, diags
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.New("unexpected HCL body type")
	}
	if len(body.Attributes) > 0 {
		names := make([]string, 0, len(body.Attributes))
		for n := range body.Attributes {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("top-level attribute %q: sections must be blocks", names[0])
	}
	return fromHCLBody(body)
}

func fromHCLBody(body *hclsyntax.Body) (*Table, error) {
	t := NewTable()

	// hclsyntax keeps attributes in a map; restore source order.
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	for _, a := range attrs {
		val, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		v, err := ctyValueToRaw(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Name, err)
		}
		t.Set(a.Name, v)
	}

	for _, blk := range body.Blocks {
		if len(blk.Labels) > 0 {
			return nil, fmt.Errorf("%s: block labels are not supported", blk.Type)
		}
		if t.Has(blk.Type) {
			return nil, fmt.Errorf("%s: defined more than once", blk.Type)
		}
		sub, err := fromHCLBody(blk.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", blk.Type, err)
		}
		t.Set(blk.Type, sub)
	}
	return t, nil
}

// ctyValueToRaw converts a cty.Value to a raw document value.
func ctyValueToRaw(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, errors.New("value is not known")
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == big.Exact {
					return i, nil
				}
			}
			f, _ := bf.Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		}
		return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
	}

	if ty.IsObjectType() || ty.IsMapType() {
		m := make(map[string]any)
		var keys []string
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			raw, err := ctyValueToRaw(v)
			if err != nil {
				return nil, err
			}
			m[k.AsString()] = raw
			keys = append(keys, k.AsString())
		}
		t := NewTable()
		for _, k := range keys {
			t.Set(k, m[k])
		}
		return t, nil
	}

	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			raw, err := ctyValueToRaw(v)
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type: %s", ty.FriendlyName())
}

func encodeHCL(t *Table) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	for i, name := range t.keys {
		sec, ok := t.values[name].(*Table)
		if !ok {
			return nil, fmt.Errorf("top-level key %q must be a section", name)
		}
		if i > 0 {
			root.AppendNewline()
		}
		blk := root.AppendNewBlock(name, nil)
		if err := writeHCLBody(blk.Body(), sec); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return f.Bytes(), nil
}

func writeHCLBody(body *hclwrite.Body, t *Table) error {
	for _, k := range t.keys {
		if sub, ok := t.values[k].(*Table); ok {
			blk := body.AppendNewBlock(k, nil)
			if err := writeHCLBody(blk.Body(), sub); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			continue
		}
		val, err := rawToCtyValue(t.values[k])
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		body.SetAttributeValue(k, val)
	}
	return nil
}

func rawToCtyValue(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return cty.NilVal, fmt.Errorf("cannot write non-finite number %v", x)
		}
		return cty.NumberFloatVal(x), nil
	case time.Time:
		return cty.StringVal(x.Format(time.DateOnly)), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, len(x))
		for i, e := range x {
			cv, err := rawToCtyValue(e)
			if err != nil {
				return cty.NilVal, err
			}
			vals[i] = cv
		}
		return cty.TupleVal(vals), nil
	case *Table:
		attrs := make(map[string]cty.Value, len(x.keys))
		for _, k := range x.keys {
			cv, err := rawToCtyValue(x.values[k])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type %T", v)
	}
}
