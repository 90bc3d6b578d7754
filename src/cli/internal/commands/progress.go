package commands

import (
	"io"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
)

var _ batch.Progress = &barProgress{}

// barProgress draws one bar per batch. A stage that runs several batches,
// like postprocess with one pass per sample rate, gets a fresh bar each time.
type barProgress struct {
	output io.Writer

	container *mpb.Progress
	bar       *mpb.Bar
	failed    atomic.Int64
}

func newProgress(output io.Writer, noProgress bool) batch.Progress {
	if noProgress {
		return &batch.LogProgress{}
	}

	return &barProgress{output: output}
}

func (b *barProgress) Start(stage string, total int) {
	b.failed.Store(0)
	b.container = mpb.New(mpb.WithOutput(b.output), mpb.WithWidth(64))

	if total == 0 {
		b.bar = nil
		return
	}

	b.bar = b.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(stage+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Any(func(decor.Statistics) string {
				if failed := b.failed.Load(); failed > 0 {
					return " failed: " + itoa(failed)
				}
				return ""
			}),
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), " done"),
		),
	)
}

func (b *barProgress) Advance(_ discovery.File, err error) {
	if err != nil {
		b.failed.Add(1)
	}

	if b.bar != nil {
		b.bar.Increment()
	}
}

// Finish leaves an aborted bar behind when the batch stopped early
func (b *barProgress) Finish() {
	if b.container == nil {
		return
	}

	if b.bar != nil && !b.bar.Completed() {
		b.bar.Abort(false)
	}

	b.container.Wait()
	b.container = nil
	b.bar = nil
}
