//go:build !noebiten

package display

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
)

// ErrGameTerminated is returned from the ebiten loop when the window's
// context is cancelled.
var ErrGameTerminated = errors.New("window terminated")

// ErrorHandler receives errors raised while handling window events.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "window error: %v\n", err)
}

// WindowConfig holds the window options.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	Input  InputConfig
}

// DefaultWindowConfig returns an 800x600 window.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Title:  "threadpaint",
		Width:  800,
		Height: 600,
		Input:  DefaultInputConfig(),
	}
}

// Window is an ebiten window. It implements ebiten.Game for the ebiten
// loop and render.Surface for the render loop, which composes into a back
// buffer that Present swaps to the front for the next Draw.
type Window struct {
	cfg   WindowConfig
	ctrl  Controller
	input *Input

	mu           sync.Mutex
	width        int
	height       int
	back         *image.RGBA
	front        *image.RGBA
	fresh        bool
	ctx          context.Context
	errorHandler ErrorHandler
	running      bool

	img      *ebiten.Image
	touchIDs []ebiten.TouchID
	touches  []canvas.Point
}

// NewWindow creates a window driving ctrl.
func NewWindow(cfg WindowConfig, ctrl Controller) *Window {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultWindowConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	return &Window{
		cfg:          cfg,
		ctrl:         ctrl,
		input:        NewInput(ctrl, cfg.Input),
		errorHandler: DefaultErrorHandler,
	}
}

// Input returns the gesture state machine fed by the window.
func (w *Window) Input() *Input { return w.input }

// SetErrorHandler sets the handler for event errors. Nil drops them.
func (w *Window) SetErrorHandler(h ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errorHandler = h
}

// SetContext sets a context whose cancellation closes the window.
func (w *Window) SetContext(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctx = ctx
}

// Size returns the last size reported by Layout.
func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Lock implements render.Surface. It returns nil until the window has a size.
func (w *Window) Lock() (*image.RGBA, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.width <= 0 || w.height <= 0 {
		return nil, nil
	}
	r := image.Rect(0, 0, w.width, w.height)
	if w.back == nil || w.back.Bounds() != r {
		w.back = image.NewRGBA(r)
	}
	return w.back, nil
}

// Present implements render.Surface.
func (w *Window) Present(frame *image.RGBA) error {
	if frame == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.front, w.back = frame, w.front
	w.fresh = true
	return nil
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()

	if ctx != nil {
		select {
		case <-ctx.Done():
			return ErrGameTerminated
		default:
		}
	}

	w.pollTouches()
	w.pollMouse()
	w.pollKeys()
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	front := w.front
	if front == nil {
		w.mu.Unlock()
		return
	}
	size := front.Bounds().Size()
	if w.img == nil || w.img.Bounds().Size() != size {
		if w.img != nil {
			w.img.Deallocate()
		}
		w.img = ebiten.NewImage(size.X, size.Y)
		w.fresh = true
	}
	if w.fresh {
		w.img.WritePixels(front.Pix)
		w.fresh = false
	}
	w.mu.Unlock()

	screen.DrawImage(w.img, nil)
}

// Layout implements ebiten.Game. The window renders at its outside size,
// and every size change is forwarded to the controller.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.mu.Lock()
	changed := outsideWidth != w.width || outsideHeight != w.height
	w.width, w.height = outsideWidth, outsideHeight
	w.mu.Unlock()

	if changed {
		if err := w.ctrl.SetSurfaceSize(outsideWidth, outsideHeight); err != nil {
			w.handleError(fmt.Errorf("resize to %dx%d: %w", outsideWidth, outsideHeight, err))
		}
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed.
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.cfg.Width, w.cfg.Height)
	ebiten.SetWindowTitle(w.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	err := ebiten.RunGame(w)

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	if errors.Is(err, ErrGameTerminated) {
		return nil
	}
	return err
}

// IsRunning reports whether the ebiten loop is running.
func (w *Window) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Window) pollMouse() {
	x, y := ebiten.CursorPosition()
	fx, fy := float32(x), float32(y)

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		w.input.PointerDown(fx, fy)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		w.input.PointerUp(fx, fy)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		w.input.PointerMove(fx, fy)
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		w.input.Wheel(float32(dy))
	}
}

func (w *Window) pollTouches() {
	w.touchIDs = ebiten.AppendTouchIDs(w.touchIDs[:0])
	w.touches = w.touches[:0]
	for _, id := range w.touchIDs {
		x, y := ebiten.TouchPosition(id)
		w.touches = append(w.touches, canvas.Point{X: float32(x), Y: float32(y)})
	}
	w.input.Touches(w.touches)
}

func (w *Window) pollKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	for _, a := range matchKeys(inpututil.IsKeyJustPressed, ctrl, shift) {
		w.input.Do(a)
	}
}

func (w *Window) handleError(err error) {
	w.mu.Lock()
	h := w.errorHandler
	w.mu.Unlock()
	if h != nil {
		h(err)
	}
}
