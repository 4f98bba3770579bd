package source

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// fileWatcher turns filesystem events on a database file (and its WAL and
// journal companions) into debounced change callbacks.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	names    map[string]struct{}
	debounce time.Duration
	onChange func()
	log      *zap.Logger

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func newFileWatcher(dbPath string, debounce time.Duration, onChange func(), log *zap.Logger) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		w.Close()
		return nil, err
	}

	// Watch the directory: SQLite creates and removes the -wal and -journal
	// files, which a file-level watch would miss.
	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	base := filepath.Base(abs)
	fw := &fileWatcher{
		watcher: w,
		names: map[string]struct{}{
			base:              {},
			base + "-wal":     {},
			base + "-journal": {},
		},
		debounce: debounce,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	log.Debug("watching contact database", zap.String("dir", dir), zap.String("file", base))

	go fw.run()
	return fw, nil
}

// Stop ends the event loop and releases the watcher. Safe to call twice.
func (fw *fileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopCh)
		<-fw.doneCh
		if err := fw.watcher.Close(); err != nil {
			fw.log.Warn("close database watcher", zap.Error(err))
		}
	})
}

func (fw *fileWatcher) run() {
	defer close(fw.doneCh)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			timerCh = timer.C

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("database watcher error", zap.Error(err))

		case <-timerCh:
			timerCh = nil
			fw.onChange()
		}
	}
}

func (fw *fileWatcher) relevant(event fsnotify.Event) bool {
	if _, ok := fw.names[filepath.Base(event.Name)]; !ok {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
