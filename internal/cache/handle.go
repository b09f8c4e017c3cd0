package cache

import (
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Handle is the single mutable reference to the currently-loaded cache:
// the loader builds a fully-formed *Cache in isolation,
// then atomically swaps it in here. Readers call Current and hold the
// returned pointer for the lifetime of one request; it is never mutated
// after Load/Reload publishes it.
type Handle struct {
	ptr      atomic.Pointer[Cache]
	path     string
	onReload func(*Cache)
}

// NewHandle creates an empty handle. Until the first successful Reload,
// Current returns nil and callers should treat every id as NotFound.
// onReload, if non-nil, runs synchronously after each successful reload
// (e.g. to rebuild and publish a graph.Engine from the new cache); it may
// be nil.
func NewHandle(path string, onReload func(*Cache)) *Handle {
	return &Handle{path: path, onReload: onReload}
}

// Current returns the most recently loaded cache, or nil if none has
// loaded successfully yet.
func (h *Handle) Current() *Cache {
	return h.ptr.Load()
}

// Reload reads and decodes the handle's cache file and swaps it in. It
// never mutates the previous value; concurrent readers holding the old
// pointer are unaffected.
func (h *Handle) Reload() error {
	f, err := os.Open(h.path)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return err
	}
	h.ptr.Store(c)
	logrus.WithFields(logrus.Fields{
		"path":    h.path,
		"objects": len(c.Objects),
		"deps":    len(c.TableDeps) + len(c.ColumnDeps),
	}).Info("cache reloaded")
	if h.onReload != nil {
		h.onReload(c)
	}
	return nil
}

// Watch reloads the handle whenever its file changes, until stop is
// closed. Reload errors are logged and do not stop the watch: a bad write
// to the cache file must not take down an already-loaded engine.
func (h *Handle) Watch(stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(h.path); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := h.Reload(); err != nil {
					logrus.WithError(err).Warn("cache reload failed, keeping previous cache")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logrus.WithError(err).Warn("cache watcher error")
			case <-stop:
				return
			}
		}
	}()
	return nil
}
