// Package preflight checks that the paths of a run configuration resolve to
// usable locations. The loader never touches the file system beyond the
// document itself; an engine runs these checks once before any work starts.
package preflight

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/logging"
	"github.com/HansKimDWR/MetSim/internal/runcfg"
)

var (
	// ErrNoMatch is the cause when the forcing pattern matches no file.
	ErrNoMatch = errors.New("no files match")
	// ErrIsDirectory is the cause when a data path names a directory.
	ErrIsDirectory = errors.New("is a directory")
	// ErrNotDirectory is the cause when out_dir, or its parent, is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

const defaultConcurrency = 8

// Options controls Check.
type Options struct {
	// CreateOutDir creates a missing output directory, parents included.
	CreateOutDir bool

	// Concurrency bounds how many forcing files are probed at once.
	// Zero means 8.
	Concurrency int

	Logger *slog.Logger
}

// Result describes a configuration that passed every check.
type Result struct {
	// ForcingFiles are the files the forcing pattern matched, sorted.
	ForcingFiles []string

	// CreatedOutDir reports whether Check created the output directory.
	CreatedOutDir bool
}

// Check verifies that forcing matches at least one readable file, that
// domain and state (when set) are readable files, and that out_dir is a
// directory or can be created in an existing parent. Every violation is
// reported; the returned error joins one PATH_001 error per violation.
func Check(ctx context.Context, cfg *runcfg.RunConfig, opts Options) (*Result, error) {
	c := &checker{
		params: cfg.Params(),
		opts:   opts,
		logger: opts.Logger,
		result: &Result{},
	}
	if c.logger == nil {
		c.logger = logging.NewDiscard()
	}
	c.logger = logging.WithDocument(c.logger, cfg.Source())

	checks := []struct {
		field string
		run   func(ctx context.Context) error
	}{
		{"forcing", c.forcing},
		{"domain", func(context.Context) error { return readableFile("domain", c.params.Domain) }},
		{"state", func(context.Context) error {
			if c.params.State == "" {
				return nil
			}
			return readableFile("state", c.params.State)
		}},
		{"out_dir", func(context.Context) error { return c.outDir() }},
	}

	var errs []error
	for _, chk := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := chk.run(ctx)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			c.logger.Debug("preflight check failed", "field", chk.field, "error", err)
			errs = append(errs, err)
			continue
		}
		c.logger.Debug("preflight check passed", "field", chk.field)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c.result, nil
}

type checker struct {
	params runcfg.Params
	opts   Options
	logger *slog.Logger
	result *Result
}

// forcing expands the forcing pattern and probes every match.
func (c *checker) forcing(ctx context.Context) error {
	pattern := c.params.Forcing
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return mserr.PathResolution("forcing", pattern, err)
	}
	if len(matches) == 0 {
		return mserr.PathResolution("forcing", pattern, ErrNoMatch)
	}

	limit := c.opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	problems := make([]error, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, m := range matches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			problems[i] = readableFile("forcing", m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	c.result.ForcingFiles = matches
	return nil
}

func (c *checker) outDir() error {
	dir := c.params.OutDir
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return mserr.PathResolution("out_dir", dir, ErrNotDirectory)
		}
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return mserr.PathResolution("out_dir", dir, err)
	}

	if c.opts.CreateOutDir {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return mserr.PathResolution("out_dir", dir, err)
		}
		c.result.CreatedOutDir = true
		c.logger.Info("created output directory", "path", dir)
		return nil
	}

	parent := filepath.Dir(dir)
	pinfo, err := os.Stat(parent)
	if err != nil {
		return mserr.PathResolution("out_dir", dir, err).WithDetail("parent", parent)
	}
	if !pinfo.IsDir() {
		return mserr.PathResolution("out_dir", dir, ErrNotDirectory).WithDetail("parent", parent)
	}
	return nil
}

// readableFile opens path to prove it is a readable regular file.
func readableFile(field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return mserr.PathResolution(field, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return mserr.PathResolution(field, path, err)
	}
	if info.IsDir() {
		return mserr.PathResolution(field, path, ErrIsDirectory)
	}
	return nil
}
