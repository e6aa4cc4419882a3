package runcfg

import (
	"slices"

	"github.com/HansKimDWR/MetSim/internal/document"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/vocab"
)

// Section names of a run document, in schema order.
const (
	SectionMetSim       = "MetSim"
	SectionOutVars      = "out_vars"
	SectionChunks       = "chunks"
	SectionForcingVars  = "forcing_vars"
	SectionStateVars    = "state_vars"
	SectionDomainVars   = "domain_vars"
	SectionConstantVars = "constant_vars"
)

// Sections lists every section in schema order.
var Sections = []string{
	SectionMetSim, SectionOutVars, SectionChunks,
	SectionForcingVars, SectionStateVars, SectionDomainVars, SectionConstantVars,
}

// DefaultParams returns the MetSim section with every optional field at its
// default. Required fields are zero.
func DefaultParams() Params {
	return Params{
		OutPrefix:             "forcing",
		PrecType:              "uniform",
		Method:                "mtclim",
		Calendar:              "standard",
		OutPrecision:          "f8",
		LWType:                "prata",
		LWCloud:               "cloud_deardorff",
		TmaxDaylengthFraction: 0.67,
		RainScalar:            0.75,
		SWPrecThresh:          0.0,
		TdewTol:               1e-6,
		SnowCritTemp:          -6.0,
		SnowMeltTemp:          1.0,
		TBase:                 0.0,
		ThetaL:                0.0,
		ThetaS:                0.0,
		TmaxLapseRate:         0.0065,
		TminLapseRate:         0.0065,
		IterDims:              []string{"lat", "lon"},
	}
}

// paramField binds one MetSim key to its Params field.
type paramField struct {
	name     string
	required bool
	decode   func(p *Params, v any) error
	encode   func(p *Params) any
}

func intParam(name string, required bool, at func(*Params) *int) paramField {
	return paramField{
		name:     name,
		required: required,
		decode: func(p *Params, v any) error {
			n, err := asInt(SectionMetSim, name, v)
			if err != nil {
				return err
			}
			*at(p) = n
			return nil
		},
		encode: func(p *Params) any { return int64(*at(p)) },
	}
}

func floatParam(name string, at func(*Params) *float64) paramField {
	return paramField{
		name: name,
		decode: func(p *Params, v any) error {
			f, err := asFloat(SectionMetSim, name, v)
			if err != nil {
				return err
			}
			*at(p) = f
			return nil
		},
		encode: func(p *Params) any { return *at(p) },
	}
}

func boolParam(name string, at func(*Params) *bool) paramField {
	return paramField{
		name: name,
		decode: func(p *Params, v any) error {
			b, err := asBool(SectionMetSim, name, v)
			if err != nil {
				return err
			}
			*at(p) = b
			return nil
		},
		encode: func(p *Params) any { return *at(p) },
	}
}

func stringParam(name string, required bool, at func(*Params) *string) paramField {
	return paramField{
		name:     name,
		required: required,
		decode: func(p *Params, v any) error {
			s, err := asString(SectionMetSim, name, v)
			if err != nil {
				return err
			}
			*at(p) = s
			return nil
		},
		encode: func(p *Params) any { return *at(p) },
	}
}

func choiceParam(name string, choice vocab.Choice, at func(*Params) *string) paramField {
	return paramField{
		name: name,
		decode: func(p *Params, v any) error {
			s, err := asChoice(SectionMetSim, name, v, choice)
			if err != nil {
				return err
			}
			*at(p) = s
			return nil
		},
		encode: func(p *Params) any { return *at(p) },
	}
}

func dateParam(name string, at func(*Params) *Date) paramField {
	return paramField{
		name:     name,
		required: true,
		decode: func(p *Params, v any) error {
			d, err := asDate(SectionMetSim, name, v)
			if err != nil {
				return err
			}
			*at(p) = d
			return nil
		},
		encode: func(p *Params) any { return at(p).String() },
	}
}

// paramFields lists the MetSim keys in schema order.
var paramFields = []paramField{
	intParam("time_step", true, func(p *Params) *int { return &p.TimeStep }),
	dateParam("start", func(p *Params) *Date { return &p.Start }),
	dateParam("stop", func(p *Params) *Date { return &p.Stop }),
	stringParam("forcing", true, func(p *Params) *string { return &p.Forcing }),
	stringParam("domain", true, func(p *Params) *string { return &p.Domain }),
	stringParam("state", false, func(p *Params) *string { return &p.State }),
	choiceParam("forcing_fmt", vocab.Formats, func(p *Params) *string { return &p.ForcingFmt }),
	choiceParam("in_format", vocab.Formats, func(p *Params) *string { return &p.InFormat }),
	stringParam("out_dir", true, func(p *Params) *string { return &p.OutDir }),
	stringParam("out_prefix", false, func(p *Params) *string { return &p.OutPrefix }),
	choiceParam("prec_type", vocab.PrecTypes, func(p *Params) *string { return &p.PrecType }),
	boolParam("utc_offset", func(p *Params) *bool { return &p.UTCOffset }),

	choiceParam("method", vocab.Methods, func(p *Params) *string { return &p.Method }),
	choiceParam("calendar", vocab.Calendars, func(p *Params) *string { return &p.Calendar }),
	choiceParam("out_precision", vocab.OutPrecision, func(p *Params) *string { return &p.OutPrecision }),
	boolParam("period_ending", func(p *Params) *bool { return &p.PeriodEnding }),
	choiceParam("lw_type", vocab.LWTypes, func(p *Params) *string { return &p.LWType }),
	choiceParam("lw_cloud", vocab.LWClouds, func(p *Params) *string { return &p.LWCloud }),
	floatParam("tmax_daylength_fraction", func(p *Params) *float64 { return &p.TmaxDaylengthFraction }),
	floatParam("rain_scalar", func(p *Params) *float64 { return &p.RainScalar }),
	floatParam("sw_prec_thresh", func(p *Params) *float64 { return &p.SWPrecThresh }),
	floatParam("tdew_tol", func(p *Params) *float64 { return &p.TdewTol }),
	floatParam("snow_crit_temp", func(p *Params) *float64 { return &p.SnowCritTemp }),
	floatParam("snow_melt_temp", func(p *Params) *float64 { return &p.SnowMeltTemp }),
	floatParam("tbase", func(p *Params) *float64 { return &p.TBase }),
	floatParam("theta_l", func(p *Params) *float64 { return &p.ThetaL }),
	floatParam("theta_s", func(p *Params) *float64 { return &p.ThetaS }),
	floatParam("t_max_lr", func(p *Params) *float64 { return &p.TmaxLapseRate }),
	floatParam("t_min_lr", func(p *Params) *float64 { return &p.TminLapseRate }),
	{
		name: "iter_dims",
		decode: func(p *Params, v any) error {
			dims, err := asStringList(SectionMetSim, "iter_dims", v)
			if err != nil {
				return err
			}
			p.IterDims = dims
			return nil
		},
		encode: func(p *Params) any {
			out := make([]any, len(p.IterDims))
			for i, d := range p.IterDims {
				out[i] = d
			}
			return out
		},
	},
}

func lookupParam(name string) (paramField, bool) {
	for _, f := range paramFields {
		if f.name == name {
			return f, true
		}
	}
	return paramField{}, false
}

// decodeParams reads the MetSim section: unknown keys first, then missing
// required keys, then values in schema order. set records the keys present.
func decodeParams(t *document.Table) (Params, map[string]bool, error) {
	p := DefaultParams()
	set := make(map[string]bool)

	keys := t.Keys()
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := lookupParam(k); !ok {
			return Params{}, nil, mserr.UnknownField(SectionMetSim, k)
		}
	}

	for _, f := range paramFields {
		v, ok := t.Get(f.name)
		if ok && v == nil {
			// An explicit null is the same as leaving the key out.
			ok = false
		}
		if !ok {
			if f.required {
				return Params{}, nil, mserr.MissingField(SectionMetSim, f.name)
			}
			continue
		}
		set[f.name] = true
	}

	for _, f := range paramFields {
		if !set[f.name] {
			continue
		}
		v, _ := t.Get(f.name)
		if err := f.decode(&p, v); err != nil {
			return Params{}, nil, err
		}
	}
	return p, set, nil
}

// validateParams checks the cross-field constraints of the MetSim section.
func validateParams(p *Params, set map[string]bool) error {
	for _, req := range []struct {
		field string
		value string
	}{
		{"forcing", p.Forcing},
		{"domain", p.Domain},
		{"out_dir", p.OutDir},
	} {
		if req.value == "" {
			return mserr.MissingField(SectionMetSim, req.field)
		}
	}

	if p.TimeStep <= 0 {
		return mserr.Range(SectionMetSim, "time_step", p.TimeStep, "must be a positive number of minutes")
	}
	if MinutesPerDay%p.TimeStep != 0 {
		return mserr.Range(SectionMetSim, "time_step", p.TimeStep, "must evenly divide 1440 minutes per day")
	}
	if p.Start.Compare(p.Stop) > 0 {
		return mserr.Range(SectionMetSim, "start", p.Start.String(), "must not be after stop "+p.Stop.String())
	}

	switch {
	case set["forcing_fmt"] && set["in_format"]:
		if p.ForcingFmt != p.InFormat {
			return mserr.AmbiguousSource("input format", SectionMetSim+".forcing_fmt", SectionMetSim+".in_format")
		}
	case set["forcing_fmt"]:
		p.InFormat = p.ForcingFmt
	case set["in_format"]:
		p.ForcingFmt = p.InFormat
	default:
		p.ForcingFmt, p.InFormat = "netcdf", "netcdf"
	}

	for _, c := range []struct {
		field string
		value float64
	}{
		{"tmax_daylength_fraction", p.TmaxDaylengthFraction},
		{"rain_scalar", p.RainScalar},
	} {
		if !(c.value >= 0 && c.value <= 1) {
			return mserr.Range(SectionMetSim, c.field, c.value, "must be between 0 and 1")
		}
	}
	if !(p.SWPrecThresh >= 0) {
		return mserr.Range(SectionMetSim, "sw_prec_thresh", p.SWPrecThresh, "must not be negative")
	}
	if !(p.TdewTol > 0) {
		return mserr.Range(SectionMetSim, "tdew_tol", p.TdewTol, "must be positive")
	}

	if len(p.IterDims) == 0 {
		return mserr.Range(SectionMetSim, "iter_dims", p.IterDims, "must name at least one dimension")
	}
	seen := make(map[string]bool, len(p.IterDims))
	for _, d := range p.IterDims {
		if d == "" {
			return mserr.Range(SectionMetSim, "iter_dims", p.IterDims, "dimension names must not be empty")
		}
		if seen[d] {
			return mserr.Range(SectionMetSim, "iter_dims", p.IterDims, "dimension "+d+" is listed twice")
		}
		seen[d] = true
	}
	return nil
}
