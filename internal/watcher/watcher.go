package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zheng/tsel/internal/analyzer"
	"github.com/zheng/tsel/internal/graph"
	"github.com/zheng/tsel/internal/storage"
)

// AnalyzeFunc produces a fresh snapshot of the watched project
type AnalyzeFunc func(ctx context.Context) (*graph.Snapshot, error)

// Watcher watches Go sources (tests included) and keeps the graph store in
// sync with them
type Watcher struct {
	projectPath string
	dbPath      string
	roots       []string
	repoRoot    string
	analyze     AnalyzeFunc
	fsWatcher   *fsnotify.Watcher

	// Debouncing
	debounceDelay time.Duration
	pendingFiles  map[string]struct{}
	pendingMu     sync.Mutex
	debounceTimer *time.Timer

	// serializes analyses fired by overlapping timers
	runMu sync.Mutex

	// Callbacks
	onAnalysisStart func(files []string)
	onAnalysisDone  func(stats storage.Stats, duration time.Duration)
	onError         func(error)

	ctx    context.Context
	cancel context.CancelFunc
}

// WatcherOption configures the watcher
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the debounce delay
func WithDebounceDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDelay = d
	}
}

// WithRoots sets the source roots to analyze. Defaults to the project path.
func WithRoots(roots ...string) WatcherOption {
	return func(w *Watcher) {
		w.roots = roots
	}
}

// WithRepoRoot sets the directory declaration paths are relative to
func WithRepoRoot(root string) WatcherOption {
	return func(w *Watcher) {
		w.repoRoot = root
	}
}

// WithAnalyzeFunc replaces the analysis run on every change
func WithAnalyzeFunc(fn AnalyzeFunc) WatcherOption {
	return func(w *Watcher) {
		w.analyze = fn
	}
}

// WithOnAnalysisStart sets the callback for when analysis starts
func WithOnAnalysisStart(fn func(files []string)) WatcherOption {
	return func(w *Watcher) {
		w.onAnalysisStart = fn
	}
}

// WithOnAnalysisDone sets the callback for when analysis completes
func WithOnAnalysisDone(fn func(stats storage.Stats, duration time.Duration)) WatcherOption {
	return func(w *Watcher) {
		w.onAnalysisDone = fn
	}
}

// WithOnError sets the callback for errors
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a new Watcher
func New(projectPath, dbPath string, opts ...WatcherOption) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		projectPath:   projectPath,
		dbPath:        dbPath,
		roots:         []string{projectPath},
		repoRoot:      projectPath,
		fsWatcher:     fsWatcher,
		debounceDelay: 500 * time.Millisecond,
		pendingFiles:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.analyze == nil {
		w.analyze = func(ctx context.Context) (*graph.Snapshot, error) {
			return analyzer.Analyze(ctx, w.roots, analyzer.Options{RepoRoot: w.repoRoot})
		}
	}

	for _, root := range w.roots {
		if err := w.addDirs(root); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to add directories to watch: %w", err)
		}
	}

	return w, nil
}

// addDirs recursively adds all directories under root to the watcher
func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// skipDir reports hidden directories and common non-source directories
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules" || name == "testdata"
}

// Start begins watching for changes until ctx is done or Stop is called
func (w *Watcher) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	go w.eventLoop()
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.pendingMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

// eventLoop handles file system events
func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// relevant reports whether event touches a Go source file, tests included
func relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".go") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// new directories are watched as they appear
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
			if err := w.addDirs(event.Name); err != nil {
				w.reportError(err)
			}
			return
		}
	}

	if !relevant(event) {
		return
	}
	slog.Debug("source changed", "file", event.Name, "op", event.Op.String())

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pendingFiles[event.Name] = struct{}{}

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerAnalysis)
}

// triggerAnalysis runs the analysis after debounce
func (w *Watcher) triggerAnalysis() {
	w.pendingMu.Lock()
	files := make([]string, 0, len(w.pendingFiles))
	for f := range w.pendingFiles {
		files = append(files, f)
	}
	w.pendingFiles = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(files) == 0 || w.ctx.Err() != nil {
		return
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()

	if w.onAnalysisStart != nil {
		w.onAnalysisStart(files)
	}

	startTime := time.Now()
	stats, err := w.runAnalysis(w.ctx)
	if err != nil {
		w.reportError(fmt.Errorf("analysis failed: %w", err))
		return
	}

	if w.onAnalysisDone != nil {
		w.onAnalysisDone(stats, time.Since(startTime))
	}
}

// runAnalysis re-analyzes the project and replaces the stored graph
func (w *Watcher) runAnalysis(ctx context.Context) (storage.Stats, error) {
	snap, err := w.analyze(ctx)
	if err != nil {
		return storage.Stats{}, err
	}

	db, err := storage.Open(w.dbPath)
	if err != nil {
		return storage.Stats{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.ReplaceSnapshot(snap); err != nil {
		return storage.Stats{}, fmt.Errorf("failed to store graph: %w", err)
	}

	stats, err := db.GetStats()
	if err != nil {
		return storage.Stats{}, err
	}

	module, _ := analyzer.ModulePath(w.projectPath)
	if _, err := db.RecordRun(w.repoRoot, module, stats); err != nil {
		return storage.Stats{}, fmt.Errorf("failed to record run: %w", err)
	}
	return stats, nil
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
		return
	}
	slog.Error("watcher error", "error", err)
}
