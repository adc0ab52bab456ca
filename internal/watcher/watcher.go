// Package watcher extracts presentations dropped into a directory and writes
// the rendered result to an output directory.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tsawler/deckparse"
	"github.com/tsawler/deckparse/format"
	"github.com/tsawler/deckparse/internal/config"
	"github.com/tsawler/deckparse/internal/render"
)

// DefaultSettle is how long a file must stay quiet before it is processed.
const DefaultSettle = 2 * time.Second

// Watcher extracts presentations dropped into the configured directory.
type Watcher struct {
	cfg *config.Config

	// Settle is the quiet period after the last write event for a file.
	Settle  time.Duration
	LogChan chan string

	mu          sync.Mutex
	pending     map[string]*time.Timer
	activeTasks int
	wg          sync.WaitGroup
}

// New returns a Watcher for cfg. Log lines are also sent to logChan when it
// is non-nil, dropping them if the channel is full.
func New(cfg *config.Config, logChan chan string) *Watcher {
	return &Watcher{
		cfg:     cfg,
		Settle:  DefaultSettle,
		LogChan: logChan,
		pending: make(map[string]*time.Timer),
	}
}

func (w *Watcher) log(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	log.Println(msg)
	if w.LogChan != nil {
		select {
		case w.LogChan <- msg:
		default:
		}
	}
}

// ActiveTasks returns the number of files being extracted right now.
func (w *Watcher) ActiveTasks() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeTasks
}

// Start processes the presentations already in the watch directory, then
// every one created or rewritten there, until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	dir := w.cfg.Watch.Dir
	if dir == "" {
		return fmt.Errorf("watch directory not configured")
	}
	if w.cfg.Watch.OutputDir == "" {
		return fmt.Errorf("output directory not configured")
	}
	for _, d := range []string{dir, w.cfg.Watch.OutputDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return err
	}
	defer w.wait()

	w.log("Watching %s, writing %s output to %s", dir, w.cfg.Extract.Format, w.cfg.Watch.OutputDir)
	w.scanDirectory(ctx, dir)

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if accepts(event.Name) {
					w.schedule(ctx, event.Name)
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log("Watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// wait stops pending timers and blocks until in-flight extractions finish.
func (w *Watcher) wait() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return format.Detect(path).IsPresentation()
}

func (w *Watcher) scanDirectory(ctx context.Context, dir string) {
	files, err := os.ReadDir(dir)
	if err != nil {
		w.log("Failed to scan directory: %v", err)
		return
	}
	for _, f := range files {
		if !f.IsDir() && accepts(f.Name()) {
			w.schedule(ctx, filepath.Join(dir, f.Name()))
		}
	}
}

// schedule (re)arms the settle timer for path. Repeated events for the same
// file while it is still being written collapse into one extraction.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.Settle)
		return
	}
	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.Settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if _, err := w.ProcessFile(ctx, path); err != nil {
			w.log("Failed to process %s: %v", filepath.Base(path), err)
		}
	})
	w.pending[path] = timer
}

// ProcessFile extracts one presentation and writes the rendered document
// next to the other outputs. It returns the output path.
func (w *Watcher) ProcessFile(ctx context.Context, path string) (string, error) {
	w.mu.Lock()
	w.activeTasks++
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.activeTasks--
		w.mu.Unlock()
	}()

	name := filepath.Base(path)
	w.log("Processing file: %s", name)
	start := time.Now()

	ext := w.cfg.Extract
	e := deckparse.Open(path).Workers(ext.Workers)
	if ext.ProbeMedia {
		e = e.ProbeMedia()
	}
	if ext.OCR {
		e = e.WithOCR(ext.OCRLang)
	}
	doc, warnings, err := e.Extract(ctx)
	if err != nil {
		return "", err
	}
	for _, warn := range warnings {
		w.log("%s: skipped %s", name, warn)
	}

	out := filepath.Join(w.cfg.Watch.OutputDir,
		strings.TrimSuffix(name, filepath.Ext(name))+render.Extension(ext.Format))
	tmp, err := os.CreateTemp(w.cfg.Watch.OutputDir, ".deckparse-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if err := render.Write(tmp, doc, ext.Format); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return "", err
	}

	w.log("Finished %s: %d slides, %d skipped in %s", name, len(doc.Slides), len(warnings),
		time.Since(start).Round(time.Millisecond))
	return out, nil
}
