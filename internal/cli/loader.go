package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	vuet "github.com/goliatone/go-vuet"
	"github.com/goliatone/go-vuet/pkg/config"
	"github.com/goliatone/go-vuet/pkg/reactive"
)

// loadInstance builds and binds an instance from the global flags. Fetch names
// in the declaration stay unbound.
func loadInstance(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*vuet.Vuet, error) {
	if opts.Modules == "" {
		return nil, fmt.Errorf("--modules is required")
	}
	settings, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if opts.Verbose {
		logger = settings.Logger(cmd.ErrOrStderr())
	}

	file, err := os.Open(opts.Modules)
	if err != nil {
		return nil, fmt.Errorf("open modules: %w", err)
	}
	defer file.Close()

	modules, err := config.LoadModules(file, nil)
	if err != nil {
		return nil, err
	}

	host := reactive.New(reactive.WithLogger(logger))
	host.Subscribe(func(change reactive.Change) {
		logger.Debug().Str("kind", string(change.Kind)).Str("path", change.Path).Msg("store change")
	})

	v := vuet.New(settings.Options(logger, vuet.WithModules(modules))...)
	if err := v.Init(ctx, host); err != nil {
		return nil, err
	}
	return v, nil
}
