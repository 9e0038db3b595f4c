package topology

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts a goroutine that reloads r whenever the topology file changes
// on disk, using fsnotify as the file-watch primitive spec §9 calls
// "equivalent and simpler" than mtime polling. onChange, if non-nil, is
// called after every successful reload with the new Document. The file's
// directory (not the file itself) is watched so that editors which replace
// the file via rename-into-place are still observed.
func Watch(r *Resolver, log *slog.Logger, onChange func(*Document)) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dirOf(r.path)); err != nil {
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		debounce := time.NewTimer(0)
		if !debounce.Stop() {
			<-debounce.C
		}
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !matchesFile(ev.Name, r.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				debounce.Reset(100 * time.Millisecond)
			case <-debounce.C:
				if err := r.Reload(); err != nil {
					log.Warn("topology reload failed, keeping previous topology", "path", r.path, "error", err)
					continue
				}
				log.Info("topology reloaded", "path", r.path)
				if onChange != nil {
					onChange(r.Document())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("topology watcher error", "error", err)
			}
		}
	}()

	stop = func() {
		close(done)
		w.Close()
	}
	return stop, nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

func matchesFile(eventPath, wantPath string) bool {
	return filepath.Clean(eventPath) == filepath.Clean(wantPath)
}
