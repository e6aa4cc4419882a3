// Package runcfg loads and validates MetSim run documents.
//
// A document goes through three stages: it is decoded into a raw
// document.Table, validated section by section into typed values, and frozen
// into a *RunConfig that is never modified afterwards. The first violation
// found stops the load; nothing is defaulted after an error.
package runcfg

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/HansKimDWR/MetSim/internal/document"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/logging"
	"github.com/HansKimDWR/MetSim/internal/vocab"
)

// Loader reads run documents.
type Loader struct {
	// BaseDir resolves relative paths. Defaults to the document's directory.
	BaseDir string

	// Format forces the document syntax. Detected from the file extension
	// when empty.
	Format document.Format

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Load reads and validates the document at path with default options.
func Load(path string) (*RunConfig, error) {
	return (&Loader{}).Load(path)
}

// Parse validates an in-memory document. name is the document's path; it
// selects the format and the base directory for relative paths.
func Parse(data []byte, name string) (*RunConfig, error) {
	return (&Loader{}).Parse(data, name)
}

// Load reads and validates the document at path.
func (l *Loader) Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, mserr.IOFileNotFound(path)
		case os.IsPermission(err):
			return nil, mserr.IOPermissionDenied(path, err)
		default:
			return nil, mserr.IOReadError(path, err)
		}
	}
	return l.Parse(data, path)
}

// Parse validates an in-memory document.
func (l *Loader) Parse(data []byte, name string) (*RunConfig, error) {
	format := l.Format
	if format == "" {
		var err error
		if format, err = document.DetectFormat(name); err != nil {
			return nil, err
		}
	}

	raw, err := document.Decode(data, format, name)
	if err != nil {
		return nil, err
	}

	baseDir, err := l.baseDir(name)
	if err != nil {
		return nil, err
	}

	cfg, err := build(raw, baseDir)
	if err != nil {
		return nil, err
	}
	cfg.source = name
	cfg.format = format

	logging.WithDocument(l.logger(), name).Debug("loaded run config",
		"format", string(format),
		"time_step", cfg.params.TimeStep,
		"start", cfg.params.Start.String(),
		"stop", cfg.params.Stop.String(),
		"out_vars", cfg.outVars.Len(),
		"chunks", cfg.chunks.Len(),
	)
	return cfg, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return logging.NewDiscard()
}

func (l *Loader) baseDir(name string) (string, error) {
	dir := l.BaseDir
	if dir == "" {
		dir = filepath.Dir(name)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", mserr.PathResolution("base directory", dir, err)
	}
	return abs, nil
}

// builder carries a document through validation.
type builder struct {
	raw     *document.Table
	baseDir string

	params    Params
	outVars   map[string]OutVarSpec
	chunks    map[string]int
	forcing   map[string]string
	state     map[string]string
	domain    map[string]string
	constants map[string]float64
}

func build(raw *document.Table, baseDir string) (*RunConfig, error) {
	b := &builder{raw: raw, baseDir: baseDir}
	steps := []func() error{
		b.checkSections,
		b.readParams,
		b.readOutVars,
		b.readChunks,
		func() (err error) {
			b.forcing, err = b.readNameMap(SectionForcingVars, vocab.RoleForcing)
			return err
		},
		func() (err error) {
			b.state, err = b.readNameMap(SectionStateVars, vocab.RoleState)
			return err
		},
		func() (err error) {
			b.domain, err = b.readNameMap(SectionDomainVars, vocab.RoleDomain)
			return err
		},
		b.readConstants,
		b.crossCheck,
		b.resolvePaths,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return b.freeze(), nil
}

func (b *builder) checkSections() error {
	keys := b.raw.Keys()
	slices.Sort(keys)
	for _, k := range keys {
		if !slices.Contains(Sections, k) {
			return mserr.UnknownField("", k)
		}
	}
	if v, ok := b.raw.Get(SectionMetSim); !ok || v == nil {
		return mserr.MissingField(SectionMetSim, "")
	}
	return nil
}

// section returns a top-level section, or an empty table when it is absent.
func (b *builder) section(name string) (*document.Table, error) {
	v, ok := b.raw.Get(name)
	if !ok || v == nil {
		return document.NewTable(), nil
	}
	t, ok := v.(*document.Table)
	if !ok {
		return nil, mserr.TypeCoercion(name, "", "mapping", v)
	}
	return t, nil
}

// sortedKeys returns a section's keys in ascending order, so the first
// reported error does not depend on document order.
func sortedKeys(t *document.Table) []string {
	keys := t.Keys()
	slices.Sort(keys)
	return keys
}

func (b *builder) readParams() error {
	t, err := b.section(SectionMetSim)
	if err != nil {
		return err
	}
	p, set, err := decodeParams(t)
	if err != nil {
		return err
	}
	if err := validateParams(&p, set); err != nil {
		return err
	}
	b.params = p
	return nil
}

func (b *builder) readOutVars() error {
	t, err := b.section(SectionOutVars)
	if err != nil {
		return err
	}

	b.outVars = make(map[string]OutVarSpec, t.Len())
	for _, key := range sortedKeys(t) {
		if !vocab.Known(vocab.RoleOut, key) {
			return mserr.UnknownVariable(SectionOutVars, key)
		}
		v, _ := t.Get(key)
		spec, err := readOutVar(key, v)
		if err != nil {
			return err
		}
		b.outVars[key] = spec
	}
	return nil
}

func readOutVar(key string, v any) (OutVarSpec, error) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return OutVarSpec{}, mserr.Range(SectionOutVars, key, x, "out_name must not be empty")
		}
		return OutVarSpec{OutName: x}, nil
	case *document.Table:
		section := SectionOutVars + "." + key
		for _, sub := range sortedKeys(x) {
			if sub != "out_name" && sub != "units" {
				return OutVarSpec{}, mserr.UnknownField(section, sub)
			}
		}

		rawName, ok := x.Get("out_name")
		if !ok || rawName == nil {
			return OutVarSpec{}, mserr.MissingField(section, "out_name")
		}
		name, err := asString(section, "out_name", rawName)
		if err != nil {
			return OutVarSpec{}, err
		}
		if name == "" {
			return OutVarSpec{}, mserr.Range(section, "out_name", name, "must not be empty")
		}

		spec := OutVarSpec{OutName: name}
		if rawUnits, ok := x.Get("units"); ok && rawUnits != nil {
			if spec.Units, err = asString(section, "units", rawUnits); err != nil {
				return OutVarSpec{}, err
			}
		}
		return spec, nil
	default:
		return OutVarSpec{}, mserr.TypeCoercion(SectionOutVars, key, "mapping with out_name", v)
	}
}

func (b *builder) readChunks() error {
	t, err := b.section(SectionChunks)
	if err != nil {
		return err
	}

	b.chunks = make(map[string]int, t.Len())
	for _, dim := range sortedKeys(t) {
		if !slices.Contains(b.params.IterDims, dim) {
			return mserr.UnknownVariable(SectionChunks, dim)
		}
		v, _ := t.Get(dim)
		n, err := asInt(SectionChunks, dim, v)
		if err != nil {
			return err
		}
		if n <= 0 {
			return mserr.Range(SectionChunks, dim, n, "chunk size must be positive")
		}
		b.chunks[dim] = n
	}
	return nil
}

func (b *builder) readNameMap(section string, role vocab.Role) (map[string]string, error) {
	t, err := b.section(section)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, t.Len())
	for _, key := range sortedKeys(t) {
		if !vocab.Known(role, key) {
			return nil, mserr.UnknownVariable(section, key)
		}
		v, _ := t.Get(key)
		name, err := asString(section, key, v)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, mserr.Range(section, key, name, "dataset variable name must not be empty")
		}
		out[key] = name
	}
	return out, nil
}

func (b *builder) readConstants() error {
	t, err := b.section(SectionConstantVars)
	if err != nil {
		return err
	}

	b.constants = make(map[string]float64, t.Len())
	for _, key := range sortedKeys(t) {
		if !vocab.Known(vocab.RoleForcing, key) {
			return mserr.UnknownVariable(SectionConstantVars, key)
		}
		v, _ := t.Get(key)
		f, err := asFloat(SectionConstantVars, key, v)
		if err != nil {
			return err
		}
		b.constants[key] = f
	}
	return nil
}

// crossCheck enforces constraints spanning sections.
func (b *builder) crossCheck() error {
	keys := make([]string, 0, len(b.constants))
	for k := range b.constants {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := b.forcing[k]; ok {
			return mserr.AmbiguousSource(k, SectionForcingVars, SectionConstantVars)
		}
	}

	if b.params.PrecType == "triangle" {
		for _, k := range vocab.TriangleDomainVars {
			if _, ok := b.domain[k]; !ok {
				return mserr.MissingField(SectionDomainVars, k).
					WithDetail("required_by", "prec_type=triangle")
			}
		}
	}
	return nil
}

// resolvePaths makes the path fields absolute. The file system is not
// consulted.
func (b *builder) resolvePaths() error {
	for _, p := range []*string{&b.params.Forcing, &b.params.Domain, &b.params.State, &b.params.OutDir} {
		*p = resolvePath(b.baseDir, *p)
	}
	return nil
}

func resolvePath(baseDir, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}

func (b *builder) freeze() *RunConfig {
	return &RunConfig{
		params:    b.params.clone(),
		outVars:   OutVars{newEntries(b.outVars)},
		chunks:    ChunkSpec{newEntries(b.chunks)},
		forcing:   VarNameMap{entries: newEntries(b.forcing), role: vocab.RoleForcing},
		state:     VarNameMap{entries: newEntries(b.state), role: vocab.RoleState},
		domain:    VarNameMap{entries: newEntries(b.domain), role: vocab.RoleDomain},
		constants: ConstantVars{newEntries(b.constants)},
	}
}
