package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aurora-lang/aurora/internal/diagnostic"
	"github.com/aurora-lang/aurora/internal/position"
)

// Editors often save through several events; they are coalesced into one
// re-check.
const watchDebounce = 150 * time.Millisecond

func (s *session) cmdWatch(ctx context.Context, args []string) int {
	fs := s.subcommandFlags("watch")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return 2
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Close()

	// Directories are watched instead of files so renames done by editors on
	// save do not drop the watch.
	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fmt.Fprintf(s.stderr, "Error: %v\n", err)
			return 1
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			fmt.Fprintf(s.stderr, "Error: watch %s: %v\n", dir, err)
			return 1
		}
		dirs[dir] = true
	}

	s.recheck(ctx, files)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return 0
		case ev, ok := <-w.Events:
			if !ok {
				return 0
			}
			if !watched[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("%s: %s", ev.Name, ev.Op)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
			trigger = timer.C
		case <-trigger:
			trigger = nil
			s.recheck(ctx, files)
		case err, ok := <-w.Errors:
			if !ok {
				return 0
			}
			s.logger.Warn("watch: %v", err)
		}
	}
}

// recheck runs one check of files and prints a one-line status after the
// diagnostics.
func (s *session) recheck(ctx context.Context, files []string) {
	sources := position.NewSourceMap()
	engine := diagnostic.NewDiagnosticEngine(diagnostic.NewRenderer(sources, s.color))

	start := time.Now()
	checked := s.checkFiles(ctx, files, runtime.NumCPU(), sources, engine)
	failed := engine.Flush(s.stderr)

	fmt.Fprintf(s.stdout, "[%s] %d ok, %d failed (%s)\n",
		start.Format("15:04:05"), checked, failed, time.Since(start).Round(time.Millisecond))
}
