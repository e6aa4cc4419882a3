package runcfg

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/HansKimDWR/MetSim/internal/document"
	"github.com/HansKimDWR/MetSim/internal/vocab"
)

// MinutesPerDay is the length of a simulation day in minutes.
const MinutesPerDay = 1440

const secondsPerDay = 60 * MinutesPerDay

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// OutVarSpec names an output variable in the written dataset.
type OutVarSpec struct {
	OutName string
	Units   string // empty when the document gives none
}

// entries is a read-only string-keyed mapping.
type entries[V any] struct {
	m map[string]V
}

func newEntries[V any](m map[string]V) entries[V] {
	if m == nil {
		m = make(map[string]V)
	}
	return entries[V]{m: m}
}

// Get returns the value for key.
func (e entries[V]) Get(key string) (V, bool) {
	v, ok := e.m[key]
	return v, ok
}

// Has reports whether key is present.
func (e entries[V]) Has(key string) bool {
	_, ok := e.m[key]
	return ok
}

// Keys returns the keys in ascending order.
func (e entries[V]) Keys() []string {
	return slices.Sorted(maps.Keys(e.m))
}

// Len returns the number of entries.
func (e entries[V]) Len() int {
	return len(e.m)
}

// Map returns a copy of the entries.
func (e entries[V]) Map() map[string]V {
	out := make(map[string]V, len(e.m))
	maps.Copy(out, e.m)
	return out
}

// OutVars maps output variable keys to their output names and units.
type OutVars struct {
	entries[OutVarSpec]
}

// ChunkSpec maps grid dimension names to chunk sizes.
type ChunkSpec struct {
	entries[int]
}

// VarNameMap maps internal variable keys to variable names in an external
// dataset. Its key set is drawn from the vocabulary of Role.
type VarNameMap struct {
	entries[string]
	role vocab.Role
}

// Role returns the vocabulary the map's keys belong to.
func (v VarNameMap) Role() vocab.Role {
	return v.role
}

// ConstantVars maps forcing variable keys to literal fallback values used
// when the forcing data lacks the variable.
type ConstantVars struct {
	entries[float64]
}

// Params holds the MetSim section.
type Params struct {
	TimeStep   int // minutes
	Start      Date
	Stop       Date
	Forcing    string // path or glob
	Domain     string
	State      string // empty when no state file is used
	ForcingFmt string
	InFormat   string
	OutDir     string
	OutPrefix  string
	PrecType   string
	UTCOffset  bool

	Method                string
	Calendar              string
	OutPrecision          string
	PeriodEnding          bool
	LWType                string
	LWCloud               string
	TmaxDaylengthFraction float64
	RainScalar            float64
	SWPrecThresh          float64
	TdewTol               float64
	SnowCritTemp          float64
	SnowMeltTemp          float64
	TBase                 float64
	ThetaL                float64
	ThetaS                float64
	TmaxLapseRate         float64
	TminLapseRate         float64
	IterDims              []string
}

func (p Params) clone() Params {
	p.IterDims = slices.Clone(p.IterDims)
	return p
}

// RunConfig is a validated MetSim run configuration. It is never modified
// after Load returns and may be shared between goroutines.
type RunConfig struct {
	params    Params
	outVars   OutVars
	chunks    ChunkSpec
	forcing   VarNameMap
	state     VarNameMap
	domain    VarNameMap
	constants ConstantVars

	source string
	format document.Format
}

// Params returns the MetSim section.
func (c *RunConfig) Params() Params { return c.params.clone() }

// OutVars returns the output variable specification.
func (c *RunConfig) OutVars() OutVars { return c.outVars }

// Chunks returns the chunk sizes per dimension.
func (c *RunConfig) Chunks() ChunkSpec { return c.chunks }

// ForcingVars returns the forcing dataset variable names.
func (c *RunConfig) ForcingVars() VarNameMap { return c.forcing }

// StateVars returns the state dataset variable names.
func (c *RunConfig) StateVars() VarNameMap { return c.state }

// DomainVars returns the domain dataset variable names.
func (c *RunConfig) DomainVars() VarNameMap { return c.domain }

// ConstantVars returns the constant forcing values.
func (c *RunConfig) ConstantVars() ConstantVars { return c.constants }

// Source returns the path of the document the configuration was loaded from.
func (c *RunConfig) Source() string { return c.source }

// Format returns the syntax of the source document.
func (c *RunConfig) Format() document.Format { return c.format }

// StepsPerDay returns the number of time steps in a day.
func (c *RunConfig) StepsPerDay() int {
	return MinutesPerDay / c.params.TimeStep
}

// SubDaily reports whether daily forcings are disaggregated to a finer step.
func (c *RunConfig) SubDaily() bool {
	return c.params.TimeStep < MinutesPerDay
}

// Days returns the number of simulated days, start and stop included.
func (c *RunConfig) Days() int {
	days := (c.params.Stop.Time().Unix() - c.params.Start.Time().Unix()) / secondsPerDay
	return int(days) + 1
}

// Equal reports whether two configurations describe the same run. The source
// path and document format are not compared.
func (c *RunConfig) Equal(o *RunConfig) bool {
	if c == nil || o == nil {
		return c == o
	}
	return reflect.DeepEqual(c.params, o.params) &&
		reflect.DeepEqual(c.outVars, o.outVars) &&
		reflect.DeepEqual(c.chunks, o.chunks) &&
		reflect.DeepEqual(c.forcing, o.forcing) &&
		reflect.DeepEqual(c.state, o.state) &&
		reflect.DeepEqual(c.domain, o.domain) &&
		reflect.DeepEqual(c.constants, o.constants)
}
