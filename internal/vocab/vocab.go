// Package vocab holds the closed vocabularies a MetSim run document may use:
// variable keys for each section role and the enumerated option values.
//
// New quantities are added by extending the tables below; the loader rejects
// every key that is not listed.
package vocab

import "strings"

// Role identifies which section a variable mapping serves.
type Role string

const (
	RoleOut     Role = "out"     // out_vars
	RoleForcing Role = "forcing" // forcing_vars and constant_vars
	RoleState   Role = "state"   // state_vars
	RoleDomain  Role = "domain"  // domain_vars
)

// Roles lists every role in display order.
var Roles = []Role{RoleOut, RoleForcing, RoleState, RoleDomain}

// Variable describes one physical quantity known to MetSim.
type Variable struct {
	Key         string
	Units       string
	Description string
}

var outputs = []Variable{
	{"temp", "C", "air temperature"},
	{"prec", "mm timestep-1", "precipitation"},
	{"shortwave", "W m-2", "incoming shortwave radiation"},
	{"longwave", "W m-2", "incoming longwave radiation"},
	{"vapor_pressure", "kPa", "vapor pressure"},
	{"air_pressure", "kPa", "air pressure"},
	{"rel_humid", "%", "relative humidity"},
	{"spec_humid", "g g-1", "specific humidity"},
	{"wind", "m s-1", "wind speed"},
	{"tskc", "fraction", "cloud cover fraction"},
	{"t_min", "C", "daily minimum temperature"},
	{"t_max", "C", "daily maximum temperature"},
	{"dayl", "s", "day length"},
	{"swe", "mm", "snow water equivalent"},
	{"tdew", "C", "dew point temperature"},
}

var forcings = []Variable{
	{"prec", "mm day-1", "daily precipitation"},
	{"t_max", "C", "daily maximum temperature"},
	{"t_min", "C", "daily minimum temperature"},
	{"wind", "m s-1", "daily mean wind speed"},
	{"shortwave", "W m-2", "daily mean shortwave radiation"},
	{"longwave", "W m-2", "daily mean longwave radiation"},
	{"tdew", "C", "daily dew point temperature"},
	{"vapor_pressure", "kPa", "daily vapor pressure"},
	{"rel_humid", "%", "daily relative humidity"},
	{"spec_humid", "g g-1", "daily specific humidity"},
	{"air_pressure", "kPa", "daily air pressure"},
	{"tskc", "fraction", "daily cloud cover fraction"},
}

var states = []Variable{
	{"prec", "mm day-1", "precipitation of the spin-up period"},
	{"t_max", "C", "maximum temperature of the spin-up period"},
	{"t_min", "C", "minimum temperature of the spin-up period"},
	{"swe", "mm", "initial snow water equivalent"},
}

var domains = []Variable{
	{"lat", "degrees_north", "latitude"},
	{"lon", "degrees_east", "longitude"},
	{"mask", "1", "active cell mask"},
	{"elev", "m", "elevation"},
	{"t_pk", "minutes", "time to storm peak by month"},
	{"dur", "minutes", "storm duration by month"},
}

var byRole = map[Role][]Variable{
	RoleOut:     outputs,
	RoleForcing: forcings,
	RoleState:   states,
	RoleDomain:  domains,
}

// Variables returns the vocabulary of a role in display order.
func Variables(role Role) []Variable {
	vars := byRole[role]
	out := make([]Variable, len(vars))
	copy(out, vars)
	return out
}

// Lookup returns the variable with the given key in a role's vocabulary.
func Lookup(role Role, key string) (Variable, bool) {
	for _, v := range byRole[role] {
		if v.Key == key {
			return v, true
		}
	}
	return Variable{}, false
}

// Known reports whether key is part of a role's vocabulary.
func Known(role Role, key string) bool {
	_, ok := Lookup(role, key)
	return ok
}

// ParseRole converts a role name to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := byRole[r]
	return r, ok
}

// Choice is a closed set of option values, compared case-insensitively.
type Choice struct {
	Name   string
	values []string
}

func newChoice(name string, values ...string) Choice {
	return Choice{Name: name, values: values}
}

// Normalize returns the canonical (lower case) spelling of v and whether v
// belongs to the set.
func (c Choice) Normalize(v string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(v))
	for _, allowed := range c.values {
		if n == allowed {
			return n, true
		}
	}
	return n, false
}

// Values returns the allowed values in declaration order.
func (c Choice) Values() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

// String renders the allowed values for error messages.
func (c Choice) String() string {
	return "one of " + strings.Join(c.values, ", ")
}

// Enumerated options of the MetSim section.
var (
	Formats      = newChoice("format", "netcdf", "binary", "ascii")
	PrecTypes    = newChoice("prec_type", "uniform", "triangle")
	LWTypes      = newChoice("lw_type", "default", "tva", "anderson", "brutsaert", "satterlund", "idso", "prata")
	LWClouds     = newChoice("lw_cloud", "default", "cloud_deardorff")
	Methods      = newChoice("method", "mtclim")
	OutPrecision = newChoice("out_precision", "f4", "f8")
	Calendars    = newChoice("calendar",
		"standard", "gregorian", "proleptic_gregorian", "noleap", "365_day",
		"all_leap", "366_day", "360_day", "julian")
)

// TriangleDomainVars are the domain variables triangle precipitation
// disaggregation reads.
var TriangleDomainVars = []string{"dur", "t_pk"}
