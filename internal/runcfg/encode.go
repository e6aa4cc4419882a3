package runcfg

import (
	"github.com/HansKimDWR/MetSim/internal/document"
)

// Document returns the canonical document for the configuration: every
// section in schema order, every MetSim option explicit, dates as
// YYYY-MM-DD and paths absolute. Loading it yields an Equal configuration.
func (c *RunConfig) Document() *document.Table {
	t := document.NewTable()

	params := document.NewTable()
	for _, f := range paramFields {
		if f.name == "state" && c.params.State == "" {
			continue
		}
		params.Set(f.name, f.encode(&c.params))
	}
	t.Set(SectionMetSim, params)

	outVars := document.NewTable()
	for _, k := range c.outVars.Keys() {
		spec, _ := c.outVars.Get(k)
		entry := document.NewTable()
		entry.Set("out_name", spec.OutName)
		if spec.Units != "" {
			entry.Set("units", spec.Units)
		}
		outVars.Set(k, entry)
	}
	t.Set(SectionOutVars, outVars)

	chunks := document.NewTable()
	for _, k := range c.chunks.Keys() {
		n, _ := c.chunks.Get(k)
		chunks.Set(k, int64(n))
	}
	t.Set(SectionChunks, chunks)

	for _, s := range []struct {
		name string
		vars VarNameMap
	}{
		{SectionForcingVars, c.forcing},
		{SectionStateVars, c.state},
		{SectionDomainVars, c.domain},
	} {
		names := document.NewTable()
		for _, k := range s.vars.Keys() {
			v, _ := s.vars.Get(k)
			names.Set(k, v)
		}
		t.Set(s.name, names)
	}

	constants := document.NewTable()
	for _, k := range c.constants.Keys() {
		v, _ := c.constants.Get(k)
		constants.Set(k, v)
	}
	t.Set(SectionConstantVars, constants)

	return t
}

// Marshal encodes the canonical document of cfg in the given format.
func Marshal(cfg *RunConfig, format document.Format) ([]byte, error) {
	return document.Encode(cfg.Document(), format)
}
