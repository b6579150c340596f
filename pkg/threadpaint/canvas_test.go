package threadpaint

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/opd-ai/go-threadpaint/internal/canvas"
	"github.com/opd-ai/go-threadpaint/internal/export"
	"github.com/opd-ai/go-threadpaint/internal/history"
	"github.com/opd-ai/go-threadpaint/internal/render"
)

func TestSetSurfaceSizeRejectsInvalidGeometry(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -4, 5},
		{"both zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewDefault(testOptions())
			err := p.SetSurfaceSize(tt.w, tt.h)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Fatalf("SetSurfaceSize(%d, %d) = %v, want ErrInvalidGeometry", tt.w, tt.h, err)
			}
			if p.CanonicalBitmap() != nil {
				t.Error("invalid size created a canvas")
			}
		})
	}
}

func TestFirstSurfaceSizeCreatesCanvas(t *testing.T) {
	p := newCanvasPainter(t, 12, 8)

	img := p.CanonicalBitmap()
	if got := img.Bounds(); got != image.Rect(0, 0, 12, 8) {
		t.Fatalf("canvas bounds = %v, want 12x8", got)
	}
	if got := pixel(t, p, 11, 7); got != white {
		t.Errorf("fresh canvas pixel = %v, want white", got)
	}

	if err := p.SetSurfaceSize(30, 30); err != nil {
		t.Fatalf("second SetSurfaceSize failed: %v", err)
	}
	if got := p.CanonicalBitmap().Bounds(); got != image.Rect(0, 0, 12, 8) {
		t.Errorf("resize replaced the canvas: bounds = %v", got)
	}
}

func TestResizeResetsView(t *testing.T) {
	p := newCanvasPainter(t, 20, 20)
	p.DrawPoint(3, 3)
	p.SetZoom(3)
	p.ScrollBy(-6, -6)

	if err := p.SetSurfaceSize(24, 18); err != nil {
		t.Fatalf("SetSurfaceSize failed: %v", err)
	}
	if z := p.Zoom(); z != 1 {
		t.Errorf("zoom after resize = %v, want 1", z)
	}
	if x, y := p.ToCanvas(7, 9); x != 7 || y != 9 {
		t.Errorf("ToCanvas(7,9) after resize = (%v,%v), want identity", x, y)
	}
	if h := p.History(); h.Size != 1 || h.Cursor != 1 {
		t.Errorf("resize touched the history: %+v", h)
	}
}

func TestConfiguredCanvasSizeWins(t *testing.T) {
	p := newTOMLPainter(t, `
[canvas]
width = 5
height = 4
background = "#ff0000"
`, nil)
	if err := p.SetSurfaceSize(10, 10); err != nil {
		t.Fatalf("SetSurfaceSize failed: %v", err)
	}
	if got := p.CanonicalBitmap().Bounds(); got != image.Rect(0, 0, 5, 4) {
		t.Errorf("canvas bounds = %v, want 5x4", got)
	}
	if got := pixel(t, p, 0, 0); got != red {
		t.Errorf("canvas pixel = %v, want configured red", got)
	}
}

func TestMissingCanvasImageFallsBackToBlank(t *testing.T) {
	p := newTOMLPainter(t, `
[canvas]
image = "/nonexistent/threadpaint.png"
`, nil)
	errs := make(chan error, 4)
	p.SetErrorHandler(func(err error) { errs <- err })

	if err := p.SetSurfaceSize(6, 6); err != nil {
		t.Fatalf("SetSurfaceSize failed: %v", err)
	}
	if got := pixel(t, p, 3, 3); got != white {
		t.Errorf("fallback canvas pixel = %v, want white", got)
	}
	err := <-errs
	if CategoryOf(err) != ErrorCategoryIO {
		t.Errorf("error category = %v, want io", CategoryOf(err))
	}
}

func TestOperationsBeforeCanvasAreIgnored(t *testing.T) {
	p := NewDefault(testOptions())

	p.StartPath(1, 1)
	p.UpdatePath(1, 1, 5, 5)
	p.FinishPath()
	p.DrawPoint(2, 2)
	p.FillWithPaint()
	p.ResetCanvas()

	if p.Undo() || p.Redo() {
		t.Error("undo or redo reported a change without a canvas")
	}
	if h := p.History(); h.Size != 0 || h.Cursor != 0 {
		t.Errorf("history = %+v, want empty", h)
	}
	if p.Digest() != "" {
		t.Error("Digest without a canvas is not empty")
	}
}

func TestRedPointBluePoint(t *testing.T) {
	p := newCanvasPainter(t, 10, 10)

	p.SetColor(color.RGBA{R: 255, A: 255})
	p.DrawPoint(2, 2)
	p.SetColor(color.RGBA{B: 255, A: 255})
	p.DrawPoint(5, 5)

	if got := pixel(t, p, 2, 2); got != red {
		t.Errorf("(2,2) = %v, want red", got)
	}
	if got := pixel(t, p, 5, 5); got != blue {
		t.Errorf("(5,5) = %v, want blue", got)
	}

	if !p.Undo() {
		t.Fatal("Undo reported no change")
	}
	if got := pixel(t, p, 5, 5); got != white {
		t.Errorf("after undo (5,5) = %v, want white", got)
	}
	if got := pixel(t, p, 2, 2); got != red {
		t.Errorf("after undo (2,2) = %v, want red", got)
	}

	if !p.Redo() {
		t.Fatal("Redo reported no change")
	}
	if got := pixel(t, p, 5, 5); got != blue {
		t.Errorf("after redo (5,5) = %v, want blue", got)
	}
}

func TestStrokeCommitsOneCommand(t *testing.T) {
	p := newCanvasPainter(t, 20, 10)

	p.StartPath(2, 5)
	p.UpdatePath(2, 5, 10, 5)
	p.UpdatePath(10, 5, 18, 5)
	if h := p.History(); h.Size != 0 {
		t.Fatalf("stroke in progress was committed: %+v", h)
	}
	p.FinishPath()

	if h := p.History(); h.Size != 1 || h.Cursor != 1 {
		t.Fatalf("history = %+v, want one applied command", h)
	}
	if got := pixel(t, p, 10, 5); got != black {
		t.Errorf("stroke pixel = %v, want black", got)
	}
	if got := pixel(t, p, 10, 0); got != white {
		t.Errorf("pixel off the stroke = %v, want white", got)
	}

	p.FinishPath()
	if h := p.History(); h.Size != 1 {
		t.Errorf("FinishPath without a path committed again: %+v", h)
	}
}

func TestStrokeToFarOffPoint(t *testing.T) {
	p := newCanvasPainter(t, 10, 10)

	p.StartPath(5, 5)
	p.UpdatePath(5, 5, 1e8, 5)
	p.FinishPath()

	if h := p.History(); h.Size != 1 {
		t.Fatalf("history = %+v, want one command", h)
	}
	if got := pixel(t, p, 9, 5); got != black {
		t.Errorf("stroke pixel = %v, want black", got)
	}
	if got := pixel(t, p, 9, 0); got != white {
		t.Errorf("pixel off the stroke = %v, want white", got)
	}
	if !p.Undo() || pixel(t, p, 9, 5) != white {
		t.Error("undo of the far-off stroke did not restore the canvas")
	}
}

func TestCancelPathCommitsNothing(t *testing.T) {
	p := newCanvasPainter(t, 10, 10)
	before := p.Digest()

	p.StartPath(1, 1)
	p.UpdatePath(1, 1, 8, 8)
	p.CancelPath()
	p.FinishPath()

	if h := p.History(); h.Size != 0 {
		t.Errorf("history = %+v, want empty", h)
	}
	if p.Digest() != before {
		t.Error("cancelled stroke changed the canvas")
	}
}

func TestUndoRedoRestoreDigests(t *testing.T) {
	p := newCanvasPainter(t, 16, 16)
	d0 := p.Digest()
	p.DrawPoint(4, 4)
	d1 := p.Digest()
	p.FillWithPaint()
	d2 := p.Digest()

	if d0 == d1 || d1 == d2 {
		t.Fatal("commits did not change the canvas")
	}

	steps := []struct {
		op   func() bool
		ok   bool
		want string
	}{
		{p.Undo, true, d1},
		{p.Undo, true, d0},
		{p.Undo, false, d0},
		{p.Redo, true, d1},
		{p.Redo, true, d2},
		{p.Redo, false, d2},
	}
	for i, s := range steps {
		if ok := s.op(); ok != s.ok {
			t.Fatalf("step %d reported %v, want %v", i, ok, s.ok)
		}
		if got := p.Digest(); got != s.want {
			t.Fatalf("step %d digest mismatch", i)
		}
	}
}

func TestCommitTruncatesRedoBranch(t *testing.T) {
	p := newCanvasPainter(t, 10, 10)
	p.DrawPoint(1, 1)
	p.DrawPoint(2, 2)
	p.Undo()
	p.DrawPoint(3, 3)

	h := p.History()
	if h.Size != 2 || h.Cursor != 2 {
		t.Errorf("history = %+v, want size 2 cursor 2", h)
	}
	if p.Redo() {
		t.Error("redo branch survived a commit")
	}
}

func TestHistoryCapacity(t *testing.T) {
	p := newTOMLPainter(t, "[history]\nmax_commands = 3\n", nil)
	if err := p.SetSurfaceSize(10, 10); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		p.DrawPoint(float32(i*2), 1)
	}

	h := p.History()
	if h.Size != 3 || h.Cap != 3 || h.Evicted != 2 {
		t.Errorf("history = %+v, want size 3 cap 3 evicted 2", h)
	}
	if got := p.Metrics().Snapshot().Evictions; got != 2 {
		t.Errorf("evictions metric = %d, want 2", got)
	}
	for i := 0; i < 5; i++ {
		if got := pixel(t, p, i*2, 1); got != black {
			t.Errorf("evicted point %d lost: %v", i, got)
		}
	}
}

func TestZoomedInputMapsToCanvas(t *testing.T) {
	p := newCanvasPainter(t, 20, 20)
	p.SetZoom(2)

	if x, y := p.ToCanvas(10, 10); x != 10 || y != 10 {
		t.Errorf("pivot maps to (%v, %v), want (10, 10)", x, y)
	}
	if x, y := p.ToCanvas(20, 20); x != 15 || y != 15 {
		t.Errorf("(20, 20) maps to (%v, %v), want (15, 15)", x, y)
	}

	p.DrawPoint(20, 20)
	if got := pixel(t, p, 15, 15); got != black {
		t.Errorf("zoomed point landed elsewhere: (15,15) = %v", got)
	}

	p.SetZoom(0.25)
	if z := p.Zoom(); z != 1 {
		t.Errorf("zoom below one = %v, want 1", z)
	}
	p.SetZoom(3)
	p.ScrollBy(1000, 1000)
	p.ResetPerspective()
	if x, y := p.ToCanvas(3, 4); x != 3 || y != 4 {
		t.Errorf("after reset (3, 4) maps to (%v, %v)", x, y)
	}
}

func TestTransparentColorErases(t *testing.T) {
	p := newCanvasPainter(t, 10, 10)
	p.SetColor(color.RGBA{})
	if !p.Attrs().Erasing() {
		t.Fatal("transparent color does not erase")
	}
	p.DrawPoint(5, 5)

	if got := pixel(t, p, 5, 5); got[3] != 0 {
		t.Errorf("erased pixel alpha = %d, want 0", got[3])
	}
	if got := pixel(t, p, 0, 0); got != white {
		t.Errorf("pixel outside the eraser = %v, want white", got)
	}
}

func TestEraseToolKeepsColor(t *testing.T) {
	p := newCanvasPainter(t, 4, 4)
	c := color.RGBA{R: 255, A: 255}
	p.SetColor(c)

	p.SetTool(ToolErase)
	if a := p.Attrs(); !a.Erasing() || a.Color != c {
		t.Errorf("erase tool attrs = %v", a)
	}
	p.SetColor(color.RGBA{G: 255, A: 255})
	if !p.Attrs().Erasing() {
		t.Error("changing color left the erase tool")
	}

	p.SetTool(ToolBrush)
	if p.Attrs().Erasing() {
		t.Error("brush tool still erases")
	}
	if p.Tool() != ToolBrush {
		t.Errorf("Tool() = %v, want brush", p.Tool())
	}
}

func TestStyleSetters(t *testing.T) {
	p := NewDefault(testOptions())
	p.SetStrokeWidth(12)
	p.SetCap(CapSquare)
	p.SetJoin(JoinBevel)

	a := p.Attrs()
	if a.Width != 12 || a.Cap != CapSquare || a.Join != JoinBevel {
		t.Errorf("attrs = %v", a)
	}
	p.SetStrokeWidth(-1)
	if w := p.Attrs().Width; w != 0 {
		t.Errorf("negative width = %v, want 0", w)
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func TestSetBitmapFitsAndResets(t *testing.T) {
	p := newCanvasPainter(t, 10, 10)
	p.DrawPoint(1, 1)
	p.SetZoom(2)
	events := recordEvents(p)

	if err := p.SetBitmap(solid(40, 20, color.RGBA{B: 255, A: 255})); err != nil {
		t.Fatalf("SetBitmap failed: %v", err)
	}
	waitEvent(t, events, EventCanvasReset)

	if got := p.CanonicalBitmap().Bounds(); got != image.Rect(0, 0, 10, 5) {
		t.Errorf("fitted bounds = %v, want 10x5", got)
	}
	if h := p.History(); h.Size != 0 {
		t.Errorf("history survived SetBitmap: %+v", h)
	}
	if z := p.Zoom(); z != 1 {
		t.Errorf("zoom = %v, want reset to 1", z)
	}
	if got := pixel(t, p, 5, 2); got[2] < 250 || got[0] > 5 {
		t.Errorf("fitted pixel = %v, want blue", got)
	}
}

func TestSetBitmapRejectsEmpty(t *testing.T) {
	p := newCanvasPainter(t, 4, 4)
	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil", nil},
		{"empty", image.NewRGBA(image.Rectangle{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.SetBitmap(tt.img); !errors.Is(err, history.ErrEmptyImage) {
				t.Errorf("SetBitmap = %v, want ErrEmptyImage", err)
			}
		})
	}
}

func TestLoadImageAndSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	if err := export.SavePNG(src, solid(8, 6, color.RGBA{G: 200, A: 255})); err != nil {
		t.Fatal(err)
	}

	p := newCanvasPainter(t, 8, 6)
	if err := p.LoadImage(src); err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	p.SetColor(color.RGBA{R: 255, A: 255})
	p.DrawPoint(3, 3)

	out := filepath.Join(dir, "out.png")
	if err := p.Save(out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	saved, err := export.LoadImage(out)
	if err != nil {
		t.Fatal(err)
	}
	if !canvas.Equal(canvas.Clone(saved), p.CanonicalBitmap()) {
		t.Error("saved image differs from the canvas")
	}
}

func TestLoadImageMissing(t *testing.T) {
	p := newCanvasPainter(t, 4, 4)
	err := p.LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("LoadImage of a missing file succeeded")
	}
	if CategoryOf(err) != ErrorCategoryIO {
		t.Errorf("category = %v, want io", CategoryOf(err))
	}
}

func TestSaveErrors(t *testing.T) {
	p := NewDefault(testOptions())
	if err := p.Save(""); !errors.Is(err, ErrNoExportPath) {
		t.Errorf("Save(\"\") = %v, want ErrNoExportPath", err)
	}
	if err := p.Save(filepath.Join(t.TempDir(), "x.png")); !errors.Is(err, ErrNoCanvas) {
		t.Errorf("Save before canvas = %v, want ErrNoCanvas", err)
	}
}

func TestSaveUsesConfiguredPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sketch.pdf")
	p := newTOMLPainter(t, "[export]\npath = \""+filepath.ToSlash(out)+"\"\n", nil)
	if err := p.SetSurfaceSize(8, 8); err != nil {
		t.Fatal(err)
	}
	if err := p.Save(""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("export is not a PDF: %q", data[:min(len(data), 8)])
	}
}

func TestResetCanvas(t *testing.T) {
	p := newCanvasPainter(t, 6, 6)
	p.FillWithPaint()
	p.ResetCanvas()

	if h := p.History(); h.Size != 0 {
		t.Errorf("history = %+v, want empty", h)
	}
	if got := pixel(t, p, 3, 3); got != white {
		t.Errorf("reset pixel = %v, want white", got)
	}
	if got := p.CanonicalBitmap().Bounds().Dx(); got != 6 {
		t.Errorf("reset width = %d, want 6", got)
	}
}

func TestClearReleasesCanvas(t *testing.T) {
	p := newCanvasPainter(t, 6, 6)
	p.DrawPoint(1, 1)
	p.Clear()

	if p.CanonicalBitmap() != nil {
		t.Fatal("canvas survived Clear")
	}
	if err := p.SetSurfaceSize(6, 6); err != nil {
		t.Fatal(err)
	}
	if h := p.History(); h.Size != 0 {
		t.Errorf("history = %+v after Clear", h)
	}
	if got := pixel(t, p, 1, 1); got != white {
		t.Errorf("recreated canvas pixel = %v, want white", got)
	}
}

func TestCanvasEvents(t *testing.T) {
	p := newCanvasPainter(t, 6, 6)
	events := recordEvents(p)

	p.DrawPoint(2, 2)
	committed := waitEvent(t, events, EventCommitted)
	if committed.CommandID == "" {
		t.Fatal("committed event has no command id")
	}

	p.Undo()
	if ev := waitEvent(t, events, EventUndone); ev.CommandID != committed.CommandID {
		t.Errorf("undone id = %q, want %q", ev.CommandID, committed.CommandID)
	}
	p.Redo()
	if ev := waitEvent(t, events, EventRedone); ev.CommandID != committed.CommandID {
		t.Errorf("redone id = %q, want %q", ev.CommandID, committed.CommandID)
	}
}

func TestCanvasMetrics(t *testing.T) {
	p := newCanvasPainter(t, 6, 6)
	p.DrawPoint(1, 1)
	p.FillWithPaint()
	p.Undo()
	p.Redo()
	p.Undo()
	p.Undo()
	p.Undo()

	s := p.Metrics().Snapshot()
	if s.Commits != 2 || s.Undos != 3 || s.Redos != 1 {
		t.Errorf("metrics = commits %d undos %d redos %d, want 2 3 1", s.Commits, s.Undos, s.Redos)
	}
	if s.CanvasResets != 1 {
		t.Errorf("canvas resets = %d, want 1", s.CanvasResets)
	}
}

func TestConcurrentWritersAndRenderer(t *testing.T) {
	surface := render.NewMemorySurface(40, 30)
	opts := testOptions()
	opts.Surface = surface
	p := newTOMLPainter(t, headlessTOML, opts)
	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				switch i % 5 {
				case 3:
					p.Undo()
				case 4:
					p.Redo()
				default:
					p.StartPath(float32(w*8), float32(i%30))
					p.UpdatePath(float32(w*8), float32(i%30), float32(w*8+6), float32((i+3)%30))
					p.FinishPath()
				}
			}
		}(w)
	}
	wg.Wait()

	waitFor(t, "frames", func() bool { return surface.Presented() > 2 })
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	h := p.History()
	if h.Cursor > h.Size || h.Size > h.Cap {
		t.Errorf("inconsistent history %+v", h)
	}
}
