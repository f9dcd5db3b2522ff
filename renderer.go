package retint

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/retint/palette"
	"github.com/gogpu/retint/surface"
)

// State is the lifecycle state of a Renderer.
type State int32

const (
	// StateUninitialized is the zero value; only New yields a usable Renderer.
	StateUninitialized State = iota

	// StateReady accepts every operation.
	StateReady

	// StateDrawing marks a render in progress. Other callers block until
	// the draw's frame boundary passes.
	StateDrawing

	// StateLost follows a lost GPU context. Every operation returns the
	// *ContextLostError until Reinitialize succeeds.
	StateLost

	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDrawing:
		return "drawing"
	case StateLost:
		return "lost"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Renderer remaps a loaded image onto a fixed-size palette, previewing at
// the display size and exporting at the image size.
//
// All methods are safe for concurrent use. Requests that arrive during a
// draw wait for it to finish.
type Renderer struct {
	mu sync.Mutex // serializes backend access

	opts       options
	be         backend
	presenter  *surface.Presenter
	ownDisplay bool

	source *image.NRGBA
	target image.Point // preview render target size
	frame  *image.NRGBA
	lost   error

	state atomic.Int32

	pendMu   sync.Mutex
	pending  *Pending
	closing  bool
	sched    Scheduler
	ownSched *FrameScheduler
}

// New creates a renderer. Without options it opens the default GPU
// backend, falling back to the CPU renderer when no GPU is available, and
// previews into a DefaultDisplayWidth x DefaultDisplayHeight in-memory
// display.
//
// Shader failures return *CompileError or *LinkError; a palette of the
// wrong length returns *PaletteSizeError.
func New(opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	display, own := o.display, false
	if display == nil {
		display, own = surface.NewImageDisplay(o.displayWidth, o.displayHeight), true
	}
	w, h := displaySize(display)

	be, err := openBackend(&o, w, h)
	if err != nil {
		if own {
			_ = display.Close()
		}
		return nil, err
	}
	r, err := newRenderer(o, be, display, own)
	if err != nil {
		be.Close()
		if own {
			_ = display.Close()
		}
		return nil, err
	}
	Logger().Info("retint: renderer ready", "backend", be.Name(), "width", w, "height", h)
	return r, nil
}

func newRenderer(o options, be backend, display surface.Display, ownDisplay bool) (*Renderer, error) {
	if err := o.palette.Validate(be.PaletteLen()); err != nil {
		return nil, err
	}
	if err := be.SetPalette(o.palette); err != nil {
		return nil, err
	}
	w, h := be.Size()
	r := &Renderer{
		opts:       o,
		be:         be,
		presenter:  surface.NewPresenter(display, o.filter),
		ownDisplay: ownDisplay,
		target:     image.Pt(w, h),
		sched:      o.scheduler,
	}
	if r.sched == nil {
		fs := NewFrameScheduler(o.frameInterval)
		r.sched, r.ownSched = fs, fs
	}
	r.state.Store(int32(StateReady))
	return r, nil
}

// displaySize returns the display dimensions, at least 1x1.
func displaySize(d surface.Display) (int, int) {
	w, h := d.Size()
	return max(w, 1), max(h, 1)
}

// State returns the current lifecycle state.
func (r *Renderer) State() State { return State(r.state.Load()) }

// Backend names the pipeline in use: "software" or "gpu (adapter)".
func (r *Renderer) Backend() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.be == nil {
		return ""
	}
	return r.be.Name()
}

// Display returns the display previews are presented on.
func (r *Renderer) Display() surface.Display {
	if r.presenter == nil {
		return nil
	}
	return r.presenter.Display()
}

func (r *Renderer) usableLocked() error {
	switch r.State() {
	case StateUninitialized:
		return ErrNotReady
	case StateClosed:
		return ErrClosed
	case StateLost:
		return r.lost
	}
	return nil
}

// failLocked moves the renderer to StateLost when err is a lost context.
func (r *Renderer) failLocked(err error) error {
	if IsContextLost(err) && r.State() != StateLost {
		r.lost = err
		r.state.Store(int32(StateLost))
		Logger().Warn("retint: gpu context lost", "err", err)
	}
	return err
}

// LoadImage decodes data and makes it the current image, then schedules a
// preview. Undecodable bytes return *DecodeError and keep the previous
// image; a rejected upload returns *UploadError.
func (r *Renderer) LoadImage(data []byte) error {
	img, err := DecodeImage(data)
	if err != nil {
		return err
	}
	return r.setImage(img)
}

// SetImage makes img the current image, then schedules a preview. img is
// copied; the caller may reuse it.
func (r *Renderer) SetImage(img image.Image) error {
	if img.Bounds().Empty() {
		return &UploadError{Err: errNoPixels}
	}
	n := toNRGBA(img)
	if n == img {
		n = cloneNRGBA(n)
	}
	return r.setImage(n)
}

func (r *Renderer) setImage(img *image.NRGBA) error {
	r.mu.Lock()
	if err := r.usableLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	if err := r.be.SetImage(img); err != nil {
		err = r.failLocked(err)
		r.mu.Unlock()
		return err
	}
	r.source = img
	r.mu.Unlock()

	Logger().Debug("retint: image loaded", "width", img.Rect.Dx(), "height", img.Rect.Dy())
	r.DrawPreview(nil)
	return nil
}

// ImageSize returns the current image dimensions, or 0, 0 before the first
// load.
func (r *Renderer) ImageSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.source == nil {
		return 0, 0
	}
	return r.source.Rect.Dx(), r.source.Rect.Dy()
}

// SetPalette makes p the active palette, then schedules a preview. A
// palette whose length differs from what the pipeline was built for
// returns *PaletteSizeError and keeps the previous palette.
func (r *Renderer) SetPalette(p palette.Palette) error {
	r.mu.Lock()
	if err := r.usableLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	if err := p.Validate(r.be.PaletteLen()); err != nil {
		r.mu.Unlock()
		return err
	}
	if err := r.be.SetPalette(p); err != nil {
		err = r.failLocked(err)
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.DrawPreview(nil)
	return nil
}

// PaletteLen returns the palette length the pipeline accepts.
func (r *Renderer) PaletteLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.be == nil {
		return 0
	}
	return r.be.PaletteLen()
}

// Palette returns a copy of the active palette, or nil once the renderer
// is closed.
func (r *Renderer) Palette() palette.Palette {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.be == nil || r.State() == StateClosed {
		return nil
	}
	return r.be.Palette()
}

// RenderPreview renders at the display size and presents the frame. The
// offscreen target is reallocated only when the display size changed.
func (r *Renderer) RenderPreview(ctx context.Context) (*image.NRGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.usableLocked(); err != nil {
		return nil, err
	}
	return r.previewLocked(ctx)
}

func (r *Renderer) previewLocked(ctx context.Context) (*image.NRGBA, error) {
	w, h := displaySize(r.presenter.Display())
	changed, err := r.be.Resize(w, h)
	if err != nil {
		return nil, r.failLocked(err)
	}
	r.target = image.Pt(w, h)
	if changed {
		Logger().Debug("retint: preview surface resized", "width", w, "height", h)
	}
	frame, err := r.renderLocked(ctx)
	if err != nil {
		return nil, err
	}
	r.frame = frame
	if err := r.presenter.Present(frame); err != nil {
		return frame, fmt.Errorf("retint: present preview: %w", err)
	}
	return frame, nil
}

// RenderFullResolution renders the current image at its own size. The
// render target is resized for the draw and restored to its previous size
// afterwards, on success and on failure. Surface reports the preview size
// throughout, even when the restore failed; the next preview resizes the
// target again.
func (r *Renderer) RenderFullResolution(ctx context.Context) (*Export, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.usableLocked(); err != nil {
		return nil, err
	}
	return r.exportLocked(ctx)
}

func (r *Renderer) exportLocked(ctx context.Context) (exp *Export, err error) {
	if r.source == nil || !r.be.HasImage() {
		return nil, ErrNoImage
	}
	prevW, prevH := r.target.X, r.target.Y
	imgW, imgH := r.be.ImageSize()

	defer func() {
		_, rerr := r.be.Resize(prevW, prevH)
		if rerr == nil || r.State() == StateLost {
			return
		}
		rerr = r.failLocked(fmt.Errorf("retint: restore preview surface: %w", rerr))
		if err == nil {
			exp, err = nil, rerr
			return
		}
		err = errors.Join(err, rerr)
	}()

	if _, err := r.be.Resize(imgW, imgH); err != nil {
		return nil, r.failLocked(err)
	}
	img, err := r.renderLocked(ctx)
	if err != nil {
		return nil, err
	}
	Logger().Info("retint: export rendered", "width", imgW, "height", imgH)
	return &Export{img: img, name: r.opts.filename}, nil
}

func (r *Renderer) renderLocked(ctx context.Context) (*image.NRGBA, error) {
	r.state.Store(int32(StateDrawing))
	img, err := r.be.Render(ctx)
	r.state.Store(int32(StateReady))
	if err != nil {
		return nil, r.failLocked(err)
	}
	return img, nil
}

// ResizeDisplay resizes a resizable display and schedules a preview at the
// new size. Other displays return an error.
func (r *Renderer) ResizeDisplay(width, height int) error {
	r.mu.Lock()
	if err := r.usableLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	d, ok := r.Display().(surface.ResizableDisplay)
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("retint: display %T is not resizable", r.Display())
	}
	err := d.Resize(width, height)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.DrawPreview(nil)
	return nil
}

// Surface returns a handle to the preview render target.
func (r *Renderer) Surface() *Surface { return &Surface{r: r} }

// Surface exposes the preview render target as a surface.Source.
type Surface struct {
	r *Renderer
}

// Size returns the preview render target dimensions.
func (s *Surface) Size() (int, int) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	return s.r.target.X, s.r.target.Y
}

// Pixels returns the last preview frame, or nil before the first preview.
func (s *Surface) Pixels() *image.NRGBA {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	return s.r.frame
}

var _ surface.Source = (*Surface)(nil)

// Reinitialize rebuilds the pipeline, typically after a lost context, and
// re-uploads the current image and palette. On failure the renderer keeps
// its state.
func (r *Renderer) Reinitialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.State() {
	case StateUninitialized:
		return ErrNotReady
	case StateClosed:
		return ErrClosed
	}

	be, err := openBackend(&r.opts, r.target.X, r.target.Y)
	if err != nil {
		return err
	}
	if err := be.SetPalette(r.be.Palette()); err != nil {
		be.Close()
		return err
	}
	if r.source != nil {
		if err := be.SetImage(r.source); err != nil {
			be.Close()
			return err
		}
	}
	r.be.Close()
	r.be = be
	r.lost = nil
	r.state.Store(int32(StateReady))
	Logger().Info("retint: renderer reinitialized", "backend", be.Name())
	return nil
}

// Close releases the pipeline. A waiting draw resolves with ErrClosed.
// Close is idempotent.
func (r *Renderer) Close() error {
	r.pendMu.Lock()
	if r.closing || r.sched == nil {
		r.pendMu.Unlock()
		return nil
	}
	r.closing = true
	if p := r.pending; p != nil {
		p.cancel()
		p.resolve(Result{Kind: p.kind, Err: ErrClosed})
		r.pending = nil
	}
	r.pendMu.Unlock()

	// Close may run on the scheduler goroutine from a draw callback, so
	// the scheduler is only told to stop. A draw in progress holds r.mu.
	if r.ownSched != nil {
		r.ownSched.Stop()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Store(int32(StateClosed))
	r.be.Close()
	r.frame = nil
	if r.ownDisplay {
		return r.presenter.Display().Close()
	}
	return nil
}

func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	copy(out.Pix, img.Pix)
	return out
}
