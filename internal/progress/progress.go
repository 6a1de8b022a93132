// Package progress draws counters on the diagnostic stream in verbose runs.
package progress

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Bar is a single progress bar. A nil *Bar is a valid no-op.
type Bar struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

// New starts a bar counting towards total. It returns nil when w is nil.
func New(w io.Writer, name string, total int64) *Bar {
	if w == nil {
		return nil
	}
	p := mpb.New(mpb.WithWidth(40), mpb.WithOutput(w))
	bar := p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Elapsed(decor.ET_STYLE_GO),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)
	return &Bar{p: p, bar: bar}
}

// Add advances the bar by n.
func (b *Bar) Add(n int) {
	if b == nil {
		return
	}
	b.bar.IncrBy(n)
}

// Finish completes the bar, or aborts it when ok is false, and waits for the
// final render.
func (b *Bar) Finish(ok bool) {
	if b == nil {
		return
	}
	if ok {
		b.bar.SetTotal(-1, true)
	} else {
		b.bar.Abort(false)
	}
	b.p.Wait()
}
