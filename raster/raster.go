// Package raster converts emitted SVG files to PNG.
//
// Converters are interchangeable: the built-in oksvg renderer and external
// tools (rsvg-convert, inkscape, ImageMagick) driven by argument templates.
// They are probed in configured order and the first available one is used.
// No converter is not an error for the run: callers get errors.ErrNoConverter
// and skip PNG output.
package raster

import (
	"context"
	"time"

	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/logger"
)

// Converter renders one SVG file to a square PNG.
type Converter interface {
	Name() string
	Available() bool
	Convert(ctx context.Context, in, out string, size int) error
}

// Job is one SVG to PNG conversion.
type Job struct {
	In  string
	Out string
}

// Failure records a conversion that did not produce a PNG.
type Failure struct {
	In  string `json:"in"`
	Err error  `json:"-"`
}

// Summary is the outcome of a batch.
type Summary struct {
	Converter string    `json:"converter,omitempty"`
	Converted int       `json:"converted"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Select returns the first available converter.
func Select(converters []Converter) (Converter, error) {
	for _, c := range converters {
		if c.Available() {
			return c, nil
		}
	}
	names := make([]string, 0, len(converters))
	for _, c := range converters {
		names = append(names, c.Name())
	}
	return nil, errors.WithHint(
		errors.Wrapf(errors.ErrNoConverter, "probed %v", names),
		"install librsvg (rsvg-convert), inkscape or imagemagick, or add oksvg to raster.converters")
}

// ConvertAll runs jobs one after another with conv. Each call gets its own
// timeout when timeout > 0. A failed file is logged and counted; the batch
// continues. Cancelling ctx stops the batch.
func ConvertAll(ctx context.Context, conv Converter, jobs []Job, size int, timeout time.Duration) Summary {
	log := logger.LoggerFromContext(ctx, "raster")
	summary := Summary{Converter: conv.Name()}

	for _, job := range jobs {
		if ctx.Err() != nil {
			summary.Failures = append(summary.Failures, Failure{In: job.In, Err: ctx.Err()})
			continue
		}

		start := time.Now()
		err := convertOne(ctx, conv, job, size, timeout)
		if err != nil {
			log.Warnw("conversion failed",
				logger.FieldFile, job.In,
				logger.FieldConverter, conv.Name(),
				logger.FieldError, err)
			summary.Failures = append(summary.Failures, Failure{In: job.In, Err: err})
			continue
		}

		log.Debugw("converted",
			logger.FieldFile, job.Out,
			logger.FieldConverter, conv.Name(),
			logger.FieldDurationMS, time.Since(start).Milliseconds())
		summary.Converted++
	}
	return summary
}

func convertOne(ctx context.Context, conv Converter, job Job, size int, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := conv.Convert(ctx, job.In, job.Out, size); err != nil {
		if errors.Is(err, errors.ErrConversion) {
			return err
		}
		return errors.Mark(err, errors.ErrConversion)
	}
	return nil
}
