package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the state again whenever the declaration files change",
		Long: `Print the initial store, then rebuild and print it every time the
modules or settings file is written. A declaration that fails to load is
reported on stderr and the previous instance is kept.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, rootOpts)
		},
	}
}

func runWatch(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	current, err := loadInstance(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = current.Destroy(context.Background())
	}()
	if err := printState(cmd, current, opts.Format); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched so editors that save by rename are noticed.
	watched := map[string]bool{}
	for _, path := range []string{opts.Modules, opts.Config} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", path, err)
		}
		watched[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch directory: %w", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !watched[name] || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			next, err := loadInstance(ctx, opts, cmd)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "reload %s: %v\n", event.Name, err)
				continue
			}
			_ = current.Destroy(ctx)
			current = next
			if err := printState(cmd, current, opts.Format); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
		}
	}
}
