package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/runlens/internal/logger"
	"github.com/yildizm/runlens/internal/logview"
	"github.com/yildizm/runlens/internal/search"
)

// tailer reads what was appended to a file since the previous poll. A
// trailing line without a newline is held back until it is complete, and the
// classifier keeps level inheritance across polls.
type tailer struct {
	path       string
	offset     int64
	partial    string
	normalize  bool
	classifier *logview.Classifier
}

func newTailer(path string, normalize bool) *tailer {
	return &tailer{
		path:       path,
		normalize:  normalize,
		classifier: logview.NewClassifier(),
	}
}

func (t *tailer) reset() {
	t.offset = 0
	t.partial = ""
	t.classifier = logview.NewClassifier()
}

// poll returns the complete lines appended since the last call. truncated
// reports that the file shrank and was read again from the start.
func (t *tailer) poll() (lines []logview.Line, truncated bool, err error) {
	// #nosec G304 - path is validated by caller
	file, err := os.Open(t.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open file: %w", err)
	}
	defer cleanupFile(file)

	info, err := file.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() < t.offset {
		t.reset()
		truncated = true
	}

	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		return nil, truncated, fmt.Errorf("failed to seek: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, truncated, fmt.Errorf("failed to read file: %w", err)
	}
	t.offset += int64(len(data))

	text := t.partial + string(data)
	end := strings.LastIndexByte(text, '\n')
	if end < 0 {
		t.partial = text
		return nil, truncated, nil
	}
	t.partial = text[end+1:]

	chunk := text[:end]
	if t.normalize {
		chunk = logview.Normalize(chunk)
	}
	for _, content := range strings.Split(chunk, "\n") {
		lines = append(lines, t.classifier.Next(content))
	}
	return lines, truncated, nil
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// cleanupFile safely closes file with error logging
func cleanupFile(file *os.File) {
	if err := file.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close file: %v\n", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// watchEvent handles an event for the followed path. changed reports that the
// content may differ, replaced that a new file now lives at path. When the
// file is renamed or removed, as log rotation does, the parent directory is
// watched until a file appears at path again.
func watchEvent(watcher *fsnotify.Watcher, path string, event fsnotify.Event, log *logger.Logger) (changed, replaced bool) {
	if filepath.Clean(event.Name) != filepath.Clean(path) {
		return false, false
	}

	switch {
	case event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove):
		_ = watcher.Remove(path)
		if err := watcher.Add(path); err == nil {
			log.InfoWithFields("followed file was replaced", []logger.Field{logger.Path(path)})
			return true, true
		}
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			log.WarnWithFields("followed file is gone", []logger.Field{logger.Path(path), logger.Error(err)})
			return false, false
		}
		// the file may have reappeared before the directory was watched
		if _, err := os.Stat(path); err == nil {
			return watchEvent(watcher, path, fsnotify.Event{Name: path, Op: fsnotify.Create}, log)
		}
		log.InfoWithFields("followed file was moved, waiting for it to reappear", []logger.Field{logger.Path(path)})
		return false, false

	case event.Has(fsnotify.Create):
		if err := watcher.Add(path); err != nil {
			log.WarnWithFields("failed to watch recreated file", []logger.Field{logger.Path(path), logger.Error(err)})
		}
		_ = watcher.Remove(filepath.Dir(path))
		return true, true

	default:
		return event.Has(fsnotify.Write), false
	}
}

// settleSignal returns a channel that receives once writes have been quiet
// for the debounce delay, and the function that records a write.
func settleSignal(d *search.Debouncer) (<-chan struct{}, func()) {
	settled := make(chan struct{}, 1)
	return settled, func() {
		d.Trigger(func() {
			select {
			case settled <- struct{}{}:
			default:
			}
		})
	}
}

// followFile sends the whole file each time it settles after a write. The
// channel is closed when ctx ends.
func followFile(ctx context.Context, path string, delay time.Duration, log *logger.Logger) (<-chan string, error) {
	watcher, err := createWatcher(path)
	if err != nil {
		return nil, err
	}

	out := make(chan string, 1)
	debouncer := search.NewDebouncer(delay)
	settled, changed := settleSignal(debouncer)

	go func() {
		defer close(out)
		defer debouncer.Stop()
		defer cleanupWatcher(watcher)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if changedNow, _ := watchEvent(watcher, path, event, log); changedNow {
					changed()
				}

			case <-settled:
				// #nosec G304 - path is validated by caller
				data, err := os.ReadFile(path)
				if err != nil {
					log.WarnWithFields("failed to reload followed file", []logger.Field{logger.Path(path), logger.Error(err)})
					continue
				}
				select {
				case out <- string(data):
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WarnWithFields("watcher error", []logger.Field{logger.Error(err)})
			}
		}
	}()

	return out, nil
}
