package retint

import (
	"context"
	"image"
	"sync"
)

// DrawKind tells preview draws from full resolution exports.
type DrawKind int

const (
	// KindPreview renders at the display size and presents the frame.
	KindPreview DrawKind = iota

	// KindExport renders at the source image size.
	KindExport
)

func (k DrawKind) String() string {
	switch k {
	case KindPreview:
		return "preview"
	case KindExport:
		return "export"
	default:
		return "unknown"
	}
}

// Result is the outcome of a scheduled draw. Frame is set for previews,
// Export for exports.
type Result struct {
	Kind   DrawKind
	Frame  *image.NRGBA
	Export *Export
	Err    error
}

// Pending is a draw waiting for its frame. It resolves exactly once: with
// the draw's result, with ErrSuperseded when a later request replaced it,
// or with ErrClosed when the renderer closed first.
type Pending struct {
	kind   DrawKind
	done   chan struct{}
	once   sync.Once
	res    Result
	cancel func() bool
}

func newPending(kind DrawKind) *Pending {
	return &Pending{kind: kind, done: make(chan struct{})}
}

// Kind returns the kind of draw.
func (p *Pending) Kind() DrawKind { return p.kind }

// Done is closed once the draw resolved.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the draw resolved or ctx is done. The returned error
// is Result.Err, or ctx.Err() if ctx ended first.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.res, p.res.Err
	case <-ctx.Done():
		return Result{Kind: p.kind}, ctx.Err()
	}
}

func (p *Pending) resolve(res Result) {
	p.once.Do(func() {
		p.res = res
		close(p.done)
	})
}

// DrawPreview schedules a preview render for the next frame, replacing any
// draw still waiting. done, if non-nil, is called on the scheduler's
// goroutine after the draw; it is never called for a replaced draw.
func (r *Renderer) DrawPreview(done func(Result)) *Pending {
	return r.schedule(KindPreview, done)
}

// DrawFullResolution schedules an export for the next frame, replacing any
// draw still waiting. A replaced preview's callback is never called, so a
// preview callback fires before the export or not at all.
func (r *Renderer) DrawFullResolution(done func(Result)) *Pending {
	return r.schedule(KindExport, done)
}

func (r *Renderer) schedule(kind DrawKind, done func(Result)) *Pending {
	p := newPending(kind)

	r.pendMu.Lock()
	defer r.pendMu.Unlock()

	switch {
	case r.sched == nil:
		p.resolve(Result{Kind: kind, Err: ErrNotReady})
		return p
	case r.closing:
		p.resolve(Result{Kind: kind, Err: ErrClosed})
		return p
	}

	if prev := r.pending; prev != nil {
		prev.cancel()
		prev.resolve(Result{Kind: prev.kind, Err: ErrSuperseded})
		Logger().Debug("retint: draw superseded", "draw", prev.kind, "by", kind)
	}
	r.pending = p
	p.cancel = r.sched.Schedule(func() { r.runPending(p, done) })
	return p
}

// runPending performs p unless it was replaced or canceled meanwhile.
func (r *Renderer) runPending(p *Pending, done func(Result)) {
	r.pendMu.Lock()
	if r.pending != p {
		r.pendMu.Unlock()
		return
	}
	r.pending = nil
	r.pendMu.Unlock()

	res := r.draw(p.kind)
	if done != nil {
		done(res)
	}
	p.resolve(res)
}

func (r *Renderer) draw(kind DrawKind) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := Result{Kind: kind}
	if err := r.usableLocked(); err != nil {
		res.Err = err
		return res
	}
	ctx := context.Background()
	switch kind {
	case KindPreview:
		res.Frame, res.Err = r.previewLocked(ctx)
	case KindExport:
		res.Export, res.Err = r.exportLocked(ctx)
	}
	return res
}
