package threadpaint

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the default quiet period before a changed
// configuration file is reloaded.
const DefaultWatchDebounce = 500 * time.Millisecond

// fileWatcher calls onChange once a file has stopped changing for the
// debounce period. It watches the parent directory so that editors which
// save by renaming a temporary file are still noticed.
type fileWatcher struct {
	w        *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func() error
	onError  func(error)

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newFileWatcher(path string, debounce time.Duration, onChange func() error, onError func(error)) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	fw := &fileWatcher{
		w:        w,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		onError:  onError,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go fw.run()
	return fw, nil
}

// Close stops watching and waits for the event goroutine to exit. A reload
// already running is waited for.
func (fw *fileWatcher) Close() {
	fw.stopOnce.Do(func() { close(fw.stop) })
	<-fw.done
}

// relevant reports whether ev may have changed the watched file.
func (fw *fileWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		name = ev.Name
	}
	return name == fw.path
}

func (fw *fileWatcher) run() {
	defer close(fw.done)
	defer fw.w.Close()

	timer := time.NewTimer(fw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-fw.stop:
			return

		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if !fw.relevant(ev) {
				continue
			}
			timer.Reset(fw.debounce)

		case <-timer.C:
			if err := fw.onChange(); err != nil && fw.onError != nil {
				fw.onError(err)
			}

		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			if fw.onError != nil {
				fw.onError(fmt.Errorf("watch %s: %w", fw.path, err))
			}
		}
	}
}
