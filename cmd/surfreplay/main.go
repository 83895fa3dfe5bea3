// Command surfreplay replays a YAML scenario of client operations
// against a recording backend and prints the frames that result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"deedles.dev/surf/internal/debug"
	"github.com/fsnotify/fsnotify"
)

func replayFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scenario, err := parseScenario(file)
	if err != nil {
		return err
	}

	return replay(ctx, os.Stdout, scenario)
}

func watch(ctx context.Context, path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace files instead of writing to them, so watch
	// the directory.
	err = w.Add(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("watch %v: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			fmt.Printf("--- %v changed\n", path)
			err := replayFile(ctx, path)
			if err != nil {
				debug.Log().WithError(err).Error("replay")
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			debug.Log().WithError(err).Warn("watcher")
		}
	}
}

func main() {
	watchFlag := flag.Bool("watch", false, "replay again whenever the scenario changes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [options] <scenario.yaml>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := replayFile(ctx, path)
	if err != nil {
		debug.Log().WithError(err).Error("replay")
		if !*watchFlag {
			os.Exit(1)
		}
	}

	if *watchFlag {
		err := watch(ctx, path)
		if err != nil {
			debug.Log().Fatalf("watch: %v", err)
		}
	}
}
