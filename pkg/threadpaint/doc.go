// Package threadpaint provides the public API of the threadpaint raster
// paint engine: a canvas edited through commands with bounded undo and
// redo, a zoomable and scrollable view of it, and a background render loop
// that presents the view on a window, an X11 surface or an offscreen
// buffer.
//
// # Basic Usage
//
//	p, err := threadpaint.New("/path/to/config.toml", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer p.Stop()
//
//	if err := p.Start(); err != nil {
//		log.Fatal(err)
//	}
//	<-p.Done()
//
// # Configuration Sources
//
//   - Disk file: [New] reads Lua or TOML and can watch the file for changes
//   - Embedded FS: [NewFromFS] reads from an [io/fs.FS]
//   - io.Reader: [NewFromReader] with [FormatLua] or [FormatTOML]
//   - Defaults: [NewDefault]
//
// # Drawing
//
// Canvas operations take screen coordinates and work whether or not the
// render loop runs. The canvas is created by the first valid
// [Painter.SetSurfaceSize]; windowed backends call it themselves.
//
//	p.SetSurfaceSize(640, 480)
//	p.SetColor(color.RGBA{R: 255, A: 255})
//	p.StartPath(10, 10)
//	p.UpdatePath(10, 10, 200, 120)
//	p.FinishPath()
//	p.Undo()
//	p.Redo()
//
// A fully transparent color, or the erase tool, removes paint instead of
// adding it.
//
// # Concurrency
//
// One lock guards the canvas, its history, the stroke in progress and the
// view. Commits, undos and redos hold it for their whole duration; the
// render loop holds it only while composing a frame, never while waiting
// on its surface. Stop joins the render loop before it returns, so the
// canvas may be released with Clear afterwards.
//
// # Errors and Events
//
// Runtime errors and events are delivered asynchronously:
//
//	p.SetErrorHandler(func(err error) {
//		log.Printf("threadpaint: %v", err)
//	})
//	p.SetEventHandler(func(ev threadpaint.Event) {
//		log.Printf("%s %s", ev.Type, ev.CommandID)
//	})
package threadpaint
