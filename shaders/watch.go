package shaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads WGSL sources from a directory as they change, so pipelines
// can be rebuilt without restarting. Development tool; the embedded sources
// remain the defaults.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching dir for .wgsl writes. onChange receives the base
// file name and the new source.
func Watch(dir string, onChange func(name, source string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	go w.run(onChange)
	return w, nil
}

func (w *Watcher) run(onChange func(name, source string)) {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".wgsl") {
				continue
			}
			data, err := os.ReadFile(ev.Name)
			if err != nil {
				continue
			}
			onChange(filepath.Base(ev.Name), string(data))
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
