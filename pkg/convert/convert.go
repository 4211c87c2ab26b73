// Package convert abstracts the external audio converter. The transfer
// engine only knows this interface; the real implementation shells out to
// ffmpeg, tests substitute a Func.
package convert

import "context"

// Request describes one conversion: read Input, produce Output in the
// target format. The Output extension decides the container; Format names
// the target for logging and for converters that need it spelled out.
type Request struct {
	Input     string
	Output    string
	Format    string
	ExtraArgs []string
}

// Converter turns one audio file into another format. A failed conversion
// must not leave a partial file at req.Output.
type Converter interface {
	Convert(ctx context.Context, req Request) error
}

// Func adapts a function to the Converter interface, used for scripted
// conversions in tests.
type Func func(ctx context.Context, req Request) error

func (f Func) Convert(ctx context.Context, req Request) error {
	return f(ctx, req)
}
