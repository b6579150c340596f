package threadpaint

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/command"
	"github.com/opd-ai/go-threadpaint/internal/export"
	"github.com/opd-ai/go-threadpaint/internal/history"
	"github.com/opd-ai/go-threadpaint/internal/paint"
)

// SetSurfaceSize records the presentation size and resets the view to
// zoom 1 with no scroll. The first valid size creates the canvas from the
// configuration; later sizes keep the canvas and its history.
func (p *painterImpl) SetSurfaceSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, w, h)
	}

	p.state.Lock()
	p.surfaceW, p.surfaceH = w, h
	p.view.Reset()
	p.view.SetSurfaceSize(w, h)
	ready := p.log.Ready()
	p.state.Unlock()
	if ready {
		return nil
	}

	img := p.initialCanvas(w, h)

	p.state.Lock()
	if p.log.Ready() {
		p.state.Unlock()
		return nil
	}
	err := p.resetLocked(img)
	p.state.Unlock()
	if err != nil {
		return err
	}
	p.afterReset("Canvas created")
	return nil
}

// initialCanvas builds the first canvas: the configured image fitted to
// the canvas size, or a blank one. A configured image that cannot be read
// is reported and replaced by a blank canvas.
func (p *painterImpl) initialCanvas(w, h int) image.Image {
	p.mu.RLock()
	cc := p.cfg.Canvas
	p.mu.RUnlock()

	if cc.Width > 0 && cc.Height > 0 {
		w, h = cc.Width, cc.Height
	}
	if cc.Image != "" {
		img, err := export.LoadImage(cc.Image)
		if err == nil {
			return export.Fit(img, w, h)
		}
		p.notifyError(opError("load canvas image", ErrorCategoryIO, err))
	}
	return canvas.Blank(w, h, cc.Background)
}

// resetLocked makes img the new baseline. A changed history capacity takes
// effect here. The caller holds p.state.
func (p *painterImpl) resetLocked(img image.Image) error {
	if p.maxCommands > 0 && p.log.Cap() != p.maxCommands {
		p.log.Clear()
		p.log = history.NewLog(p.maxCommands)
	}
	if err := p.log.Reset(img); err != nil {
		return err
	}
	b := img.Bounds()
	p.view.Reset()
	p.view.SetBitmapSize(b.Dx(), b.Dy())
	p.path.Reset()
	p.drawing = false
	return nil
}

func (p *painterImpl) afterReset(msg string) {
	p.metrics.IncrementCanvasResets()
	p.logger.Debug("canvas reset", "reason", msg)
	p.emitEvent(Event{Type: EventCanvasReset, Message: msg})
}

// SetBitmap replaces the canvas with img scaled to fit the surface.
func (p *painterImpl) SetBitmap(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return opError("set bitmap", ErrorCategoryIO, history.ErrEmptyImage)
	}

	p.state.Lock()
	w, h := p.surfaceW, p.surfaceH
	p.state.Unlock()
	if w > 0 && h > 0 {
		img = export.Fit(img, w, h)
	}

	p.state.Lock()
	err := p.resetLocked(img)
	p.state.Unlock()
	if err != nil {
		return opError("set bitmap", ErrorCategoryIO, err)
	}
	p.afterReset("Canvas replaced")
	return nil
}

// LoadImage reads the image at path and makes it the canvas.
func (p *painterImpl) LoadImage(path string) error {
	img, err := export.LoadImage(path)
	if err != nil {
		return opError("load image", ErrorCategoryIO, err)
	}
	return p.SetBitmap(img)
}

// ResetCanvas replaces the canvas with a blank one of the same size.
func (p *painterImpl) ResetCanvas() {
	p.mu.RLock()
	bg := p.cfg.Canvas.Background
	p.mu.RUnlock()

	p.state.Lock()
	current := p.log.Canonical()
	if current == nil {
		p.state.Unlock()
		return
	}
	b := current.Bounds()
	err := p.resetLocked(canvas.Blank(b.Dx(), b.Dy(), bg))
	p.state.Unlock()
	if err != nil {
		p.notifyError(opError("reset canvas", ErrorCategoryUnknown, err))
		return
	}
	p.afterReset("Canvas cleared")
}

// Clear releases the canvas and its history. The next surface size
// creates a new canvas.
func (p *painterImpl) Clear() {
	p.state.Lock()
	defer p.state.Unlock()
	p.log.Clear()
	p.path.Reset()
	p.drawing = false
	p.view.Reset()
	p.view.SetBitmapSize(0, 0)
}

// StartPath begins a stroke at a screen position.
func (p *painterImpl) StartPath(x, y float32) {
	p.state.Lock()
	defer p.state.Unlock()

	if !p.log.Ready() {
		return
	}
	pt := p.view.ToCanvas(x, y)
	p.path.Reset()
	p.path.MoveTo(pt.X, pt.Y)
	p.drawing = true
}

// UpdatePath extends the stroke from the previous to the new screen
// position. The segment is a quadratic curve through the midpoint of the
// two, which smooths the polyline of pointer samples.
func (p *painterImpl) UpdatePath(x1, y1, x2, y2 float32) {
	p.state.Lock()
	defer p.state.Unlock()

	if !p.drawing {
		return
	}
	mid := p.view.ToCanvas((x1+x2)/2, (y1+y2)/2)
	end := p.view.ToCanvas(x2, y2)
	p.path.QuadTo(mid.X, mid.Y, end.X, end.Y)
}

// FinishPath commits the stroke in progress.
func (p *painterImpl) FinishPath() {
	p.state.Lock()
	if !p.drawing {
		p.state.Unlock()
		return
	}
	cmd := command.NewStroke(p.attrs, &p.path)
	p.path.Reset()
	p.drawing = false
	res := p.commitLocked(cmd)
	p.state.Unlock()

	p.afterCommit(res)
}

// CancelPath drops the stroke in progress.
func (p *painterImpl) CancelPath() {
	p.state.Lock()
	defer p.state.Unlock()
	p.path.Reset()
	p.drawing = false
}

// DrawPoint commits a point at a screen position.
func (p *painterImpl) DrawPoint(x, y float32) {
	p.state.Lock()
	if !p.log.Ready() {
		p.state.Unlock()
		return
	}
	cmd := command.NewPoint(p.attrs, p.view.ToCanvas(x, y))
	p.path.Reset()
	p.drawing = false
	res := p.commitLocked(cmd)
	p.state.Unlock()

	p.afterCommit(res)
}

// FillWithPaint covers the whole canvas with the current style.
func (p *painterImpl) FillWithPaint() {
	p.state.Lock()
	if !p.log.Ready() {
		p.state.Unlock()
		return
	}
	res := p.commitLocked(command.NewFill(p.attrs))
	p.state.Unlock()

	p.afterCommit(res)
}

type commitResult struct {
	cmd     command.Command
	evicted int
	took    time.Duration
	err     error
}

// commitLocked records cmd. The caller holds p.state.
func (p *painterImpl) commitLocked(cmd command.Command) commitResult {
	start := time.Now()
	before := p.log.Evicted()
	err := p.log.Commit(cmd)
	return commitResult{
		cmd:     cmd,
		evicted: p.log.Evicted() - before,
		took:    time.Since(start),
		err:     err,
	}
}

func (p *painterImpl) afterCommit(r commitResult) {
	if r.err != nil {
		p.logger.Debug("command dropped", "command", r.cmd.String(), "error", r.err)
		return
	}
	p.metrics.RecordCommit(r.took)
	if r.evicted > 0 {
		p.metrics.IncrementEvictions(r.evicted)
	}
	p.logger.Debug("command committed", "command", r.cmd.String(), "took", r.took)
	p.emitEvent(Event{Type: EventCommitted, Message: r.cmd.Kind().String(), CommandID: r.cmd.ID()})
}

// Undo reverts the last applied command by replaying the rest from the
// baseline. It reports false when there is nothing to undo.
func (p *painterImpl) Undo() bool {
	p.state.Lock()
	if !p.log.CanUndo() {
		p.state.Unlock()
		return false
	}
	id := p.log.At(p.log.Cursor() - 1).ID()
	start := time.Now()
	ok := p.log.Undo()
	took := time.Since(start)
	p.state.Unlock()

	if ok {
		p.metrics.RecordUndo(took)
		p.logger.Debug("command undone", "id", id, "took", took)
		p.emitEvent(Event{Type: EventUndone, Message: "Command undone", CommandID: id})
	}
	return ok
}

// Redo re-applies the next command of the redo branch. It reports false
// when the branch is empty.
func (p *painterImpl) Redo() bool {
	p.state.Lock()
	if !p.log.CanRedo() {
		p.state.Unlock()
		return false
	}
	id := p.log.At(p.log.Cursor()).ID()
	ok := p.log.Redo()
	p.state.Unlock()

	if ok {
		p.metrics.RecordRedo()
		p.logger.Debug("command redone", "id", id)
		p.emitEvent(Event{Type: EventRedone, Message: "Command redone", CommandID: id})
	}
	return ok
}

// ScrollBy moves the view by a screen distance.
func (p *painterImpl) ScrollBy(dx, dy float32) {
	p.state.Lock()
	defer p.state.Unlock()
	p.view.ScrollBy(dx, dy)
}

// SetZoom sets the zoom level. Levels below one become one.
func (p *painterImpl) SetZoom(scale float32) {
	p.state.Lock()
	defer p.state.Unlock()
	p.view.SetZoom(scale)
}

// Zoom returns the zoom level.
func (p *painterImpl) Zoom() float32 {
	p.state.Lock()
	defer p.state.Unlock()
	return p.view.Zoom()
}

// ResetPerspective returns to zoom one without scroll.
func (p *painterImpl) ResetPerspective() {
	p.state.Lock()
	defer p.state.Unlock()
	p.view.Reset()
}

// ToCanvas maps a screen position to canvas coordinates.
func (p *painterImpl) ToCanvas(x, y float32) (float32, float32) {
	p.state.Lock()
	defer p.state.Unlock()
	pt := p.view.ToCanvas(x, y)
	return pt.X, pt.Y
}

// SetColor sets the paint color for the next command. A fully
// transparent color erases.
func (p *painterImpl) SetColor(c color.RGBA) {
	p.state.Lock()
	defer p.state.Unlock()
	p.attrs = p.attrs.WithColor(c)
	if p.tool == ToolErase {
		p.attrs.Blend = paint.BlendErase
	}
}

// SetStrokeWidth sets the stroke width in canvas pixels.
func (p *painterImpl) SetStrokeWidth(w float32) {
	p.state.Lock()
	defer p.state.Unlock()
	p.attrs = p.attrs.WithWidth(w)
}

// SetCap sets the stroke cap.
func (p *painterImpl) SetCap(c Cap) {
	p.state.Lock()
	defer p.state.Unlock()
	p.attrs = p.attrs.WithCap(c)
}

// SetJoin sets the stroke join.
func (p *painterImpl) SetJoin(j Join) {
	p.state.Lock()
	defer p.state.Unlock()
	p.attrs = p.attrs.WithJoin(j)
}

// SetTool selects a tool. The erase tool keeps the color and switches the
// blend mode; leaving it restores normal blending for opaque colors.
func (p *painterImpl) SetTool(t Tool) {
	p.state.Lock()
	defer p.state.Unlock()
	p.tool = t
	switch {
	case t == ToolErase:
		p.attrs.Blend = paint.BlendErase
	case p.attrs.Color.A != 0:
		p.attrs.Blend = paint.BlendNormal
	}
}

// Tool returns the selected tool.
func (p *painterImpl) Tool() Tool {
	p.state.Lock()
	defer p.state.Unlock()
	return p.tool
}

// Attrs returns the style of the next command.
func (p *painterImpl) Attrs() Attrs {
	p.state.Lock()
	defer p.state.Unlock()
	return p.attrs
}

// CanonicalBitmap returns a copy of the canvas, or nil without one.
func (p *painterImpl) CanonicalBitmap() *image.RGBA {
	p.state.Lock()
	defer p.state.Unlock()
	return p.log.Snapshot()
}

// Digest returns the canvas digest, or "" without a canvas.
func (p *painterImpl) Digest() string {
	p.state.Lock()
	defer p.state.Unlock()
	img := p.log.Canonical()
	if img == nil {
		return ""
	}
	return canvas.Digest(img)
}

// History describes the command log.
func (p *painterImpl) History() HistoryInfo {
	p.state.Lock()
	defer p.state.Unlock()
	return HistoryInfo{
		Size:    p.log.Size(),
		Cursor:  p.log.Cursor(),
		Cap:     p.log.Cap(),
		Evicted: p.log.Evicted(),
	}
}

// Save writes the canvas to path, or to the configured export path when
// path is empty.
func (p *painterImpl) Save(path string) error {
	if path == "" {
		p.mu.RLock()
		path = p.cfg.Export.Path
		p.mu.RUnlock()
	}
	if path == "" {
		return ErrNoExportPath
	}
	img := p.CanonicalBitmap()
	if img == nil {
		return ErrNoCanvas
	}
	if err := export.Save(path, img); err != nil {
		wrapped := opError("save "+path, ErrorCategoryIO, err)
		p.notifyError(wrapped)
		return wrapped
	}
	p.logger.Info("canvas saved", "path", path)
	return nil
}
