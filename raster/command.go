package raster

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/logger"
)

// DefaultCommands are the argument templates of the known external tools.
// {in}, {out} and {size} are substituted per argument after splitting.
var DefaultCommands = map[string]string{
	"rsvg-convert": "rsvg-convert {in} -o {out} -w {size} -h {size}",
	"inkscape":     "inkscape {in} --export-filename {out} --export-width {size} --export-height {size}",
	"magick":       "magick -background none {in} -resize {size}x{size} {out}",
}

// CommandConverter drives an external rasterizer.
type CommandConverter struct {
	name     string
	argv     []string
	runner   Runner
	lookPath func(string) (string, error)
}

// CommandOption configures a CommandConverter.
type CommandOption func(*CommandConverter)

// WithRunner replaces the process runner.
func WithRunner(r Runner) CommandOption {
	return func(c *CommandConverter) { c.runner = r }
}

// WithLookPath replaces the PATH lookup.
func WithLookPath(fn func(string) (string, error)) CommandOption {
	return func(c *CommandConverter) { c.lookPath = fn }
}

// NewCommandConverter parses template with shell quoting rules.
func NewCommandConverter(name, template string, opts ...CommandOption) (*CommandConverter, error) {
	argv, err := shellquote.Split(template)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "converter %s: %v", name, err)
	}
	if len(argv) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "converter %s: empty command", name)
	}
	c := &CommandConverter{
		name:     name,
		argv:     argv,
		runner:   ExecRunner{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements Converter.
func (c *CommandConverter) Name() string { return c.name }

// Available reports whether the executable is on PATH.
func (c *CommandConverter) Available() bool {
	_, err := c.lookPath(c.argv[0])
	return err == nil
}

// Args returns the command line for one conversion.
func (c *CommandConverter) Args(in, out string, size int) []string {
	r := strings.NewReplacer("{in}", in, "{out}", out, "{size}", strconv.Itoa(size))
	args := make([]string, len(c.argv))
	for i, a := range c.argv {
		args[i] = r.Replace(a)
	}
	return args
}

// Convert implements Converter.
func (c *CommandConverter) Convert(ctx context.Context, in, out string, size int) error {
	log := logger.LoggerFromContext(ctx, "raster")
	args := c.Args(in, out, size)

	// A converter that exits 0 without writing must not pass on a stale file.
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		return errors.Mark(errors.Wrapf(err, "cannot replace %s", out), errors.ErrConversion)
	}

	_, stderr, err := c.runner.Run(ctx, args[0], log, args[1:]...)
	if err != nil {
		wrapped := errors.Mark(errors.Wrapf(err, "%s failed on %s", c.name, in), errors.ErrConversion)
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			wrapped = errors.WithDetail(wrapped, truncate(msg, 500))
		}
		return wrapped
	}
	if _, err := os.Stat(out); err != nil {
		return errors.Mark(errors.Newf("%s produced no output for %s", c.name, in), errors.ErrConversion)
	}
	return nil
}

// Build returns converters for names in order. "oksvg" is the built-in
// renderer; any other name uses commands[name] or DefaultCommands[name].
func Build(names []string, commands map[string]string, opts ...CommandOption) ([]Converter, error) {
	out := make([]Converter, 0, len(names))
	for _, name := range names {
		if name == BuiltinName {
			out = append(out, OksvgConverter{})
			continue
		}
		tmpl, ok := commands[name]
		if !ok {
			tmpl, ok = DefaultCommands[name]
		}
		if !ok {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrInvalidConfig, "unknown converter %q", name),
				"define its template under raster.commands")
		}
		c, err := NewCommandConverter(name, tmpl, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
