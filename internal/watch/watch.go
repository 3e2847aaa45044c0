// Package watch logs files and directories created directly under the
// receiver's base directory using an fsnotify-backed event loop scoped
// to one watched root. It does not tell external creations apart from the
// receiver's own.
package watch

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher watches a single directory (non-recursively - matching
// fsnotify's own scope) for Create events, logging each one. It exists
// purely so the receiver's logs reflect out-of-band changes to its
// destination tree; nothing in the transfer protocol depends on it.
type DirWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New starts watching dir. Callers must call Close to release the
// underlying inotify/kqueue handle.
func New(dir string) (*DirWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &DirWatcher{watcher: fw, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *DirWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				log.Printf("[watch]: created %s", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watch]: error: %v", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *DirWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
