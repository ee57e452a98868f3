package raster

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hazop-ai/pidsym/errors"
)

type fakeRunner struct {
	calls  [][]string
	stderr string
	err    error
	write  bool
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *zap.SugaredLogger, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, []byte(f.stderr), f.err
	}
	if f.write {
		// the output path follows -o in the rsvg-convert template
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				_ = os.WriteFile(args[i+1], []byte("png"), 0o644)
			}
		}
	}
	return nil, nil, nil
}

func lookPathFor(present ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, p := range present {
			if p == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.Newf("%s: not found", name)
	}
}

const gate = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20"><path d="M0 0 L40 20 L40 0 L0 20 Z" stroke="#000000" fill="white"/></svg>`

func TestCommandConverter_Args(t *testing.T) {
	c, err := NewCommandConverter("rsvg-convert", DefaultCommands["rsvg-convert"])
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"rsvg-convert", "/a b/in.svg", "-o", "/out.png", "-w", "128", "-h", "128"},
		c.Args("/a b/in.svg", "/out.png", 128))

	m, err := NewCommandConverter("magick", DefaultCommands["magick"])
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"magick", "-background", "none", "in.svg", "-resize", "64x64", "out.png"},
		m.Args("in.svg", "out.png", 64))
}

func TestNewCommandConverter_BadTemplate(t *testing.T) {
	_, err := NewCommandConverter("x", `tool "unterminated`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))

	_, err = NewCommandConverter("x", "   ")
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	convs, err := Build([]string{"rsvg-convert", "inkscape", "magick"}, nil,
		WithLookPath(lookPathFor("magick")))
	require.NoError(t, err)

	c, err := Select(convs)
	require.NoError(t, err)
	assert.Equal(t, "magick", c.Name())

	convs, err = Build([]string{"rsvg-convert", "inkscape"}, nil, WithLookPath(lookPathFor()))
	require.NoError(t, err)
	_, err = Select(convs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoConverter))
	assert.False(t, errors.IsFatal(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestBuild(t *testing.T) {
	convs, err := Build([]string{"oksvg", "custom"}, map[string]string{"custom": "tool {in} {out}"})
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, BuiltinName, convs[0].Name())
	assert.True(t, convs[0].Available())
	assert.Equal(t, "custom", convs[1].Name())

	_, err = Build([]string{"nope"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestCommandConverter_Convert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.svg")
	out := filepath.Join(dir, "a.png")

	runner := &fakeRunner{write: true}
	c, err := NewCommandConverter("rsvg-convert", DefaultCommands["rsvg-convert"], WithRunner(runner))
	require.NoError(t, err)

	require.NoError(t, c.Convert(context.Background(), in, out, 256))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "rsvg-convert", runner.calls[0][0])
	assert.FileExists(t, out)
}

func TestCommandConverter_ConvertFailures(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.svg")

	failing := &fakeRunner{err: errors.New("exit status 1"), stderr: "bad svg"}
	c, err := NewCommandConverter("rsvg-convert", DefaultCommands["rsvg-convert"], WithRunner(failing))
	require.NoError(t, err)
	err = c.Convert(context.Background(), in, filepath.Join(dir, "a.png"), 256)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConversion))
	assert.Contains(t, errors.FlattenDetails(err), "bad svg")

	silent := &fakeRunner{}
	c, err = NewCommandConverter("rsvg-convert", DefaultCommands["rsvg-convert"], WithRunner(silent))
	require.NoError(t, err)
	err = c.Convert(context.Background(), in, filepath.Join(dir, "b.png"), 256)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConversion))
}

func TestCommandConverter_StaleOutputRejected(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.svg")
	out := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(out, []byte("old png"), 0o644))

	silent := &fakeRunner{}
	c, err := NewCommandConverter("rsvg-convert", DefaultCommands["rsvg-convert"], WithRunner(silent))
	require.NoError(t, err)

	err = c.Convert(context.Background(), in, out, 256)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConversion))
	assert.NoFileExists(t, out)
}

func TestConvertAll_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.svg")
	bad := filepath.Join(dir, "bad.svg")
	require.NoError(t, os.WriteFile(good, []byte(gate), 0o644))

	jobs := []Job{
		{In: bad, Out: filepath.Join(dir, "bad.png")},
		{In: good, Out: filepath.Join(dir, "good.png")},
	}
	summary := ConvertAll(context.Background(), OksvgConverter{}, jobs, 32, time.Minute)

	assert.Equal(t, BuiltinName, summary.Converter)
	assert.Equal(t, 1, summary.Converted)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, bad, summary.Failures[0].In)
	assert.True(t, errors.Is(summary.Failures[0].Err, errors.ErrConversion))
}

func TestConvertAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := ConvertAll(ctx, OksvgConverter{}, []Job{{In: "a.svg", Out: "a.png"}}, 32, 0)
	assert.Zero(t, summary.Converted)
	assert.Len(t, summary.Failures, 1)
}

func TestOksvgConverter_Square(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "gate.svg")
	out := filepath.Join(dir, "gate.png")
	require.NoError(t, os.WriteFile(in, []byte(gate), 0o644))

	for _, ss := range []int{1, 3} {
		require.NoError(t, OksvgConverter{Supersample: ss}.Convert(context.Background(), in, out, 48))

		f, err := os.Open(out)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 48, img.Bounds().Dx())
		assert.Equal(t, 48, img.Bounds().Dy())
	}

	err := OksvgConverter{}.Convert(context.Background(), in, out, 0)
	require.Error(t, err)
}

func TestFitSquare(t *testing.T) {
	x, y, w, h := fitSquare(40, 20, 100)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 25, y, 1e-9)
	assert.InDelta(t, 100, w, 1e-9)
	assert.InDelta(t, 50, h, 1e-9)

	x, y, w, h = fitSquare(0, 0, 64)
	assert.Equal(t, []float64{0, 0, 64, 64}, []float64{x, y, w, h})
}
