package main

import (
	"context"
	"fmt"

	"github.com/gogotex/blogdraft/internal/bootstrap"
	"github.com/gogotex/blogdraft/internal/config"
	"github.com/gogotex/blogdraft/internal/export"
	"github.com/gogotex/blogdraft/internal/post/repository"
	"github.com/gogotex/blogdraft/internal/post/service"
	"github.com/gogotex/blogdraft/pkg/logger"
	"github.com/spf13/cobra"
)

// cli carries the collaborators shared by every subcommand. Tests fill
// svc and saver directly and skip backend setup.
type cli struct {
	svc      service.Service
	pipeline *export.Pipeline
	saver    export.BlobSaver
	backends *bootstrap.Backends
	debug    bool
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "blogctl",
		Short:        "Manage blog posts",
		Long:         `List, edit, delete and export blog posts stored by blogdraft.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			c.close()
		},
	}
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newListCmd(c),
		newShowCmd(c),
		newSaveCmd(c),
		newDeleteCmd(c),
		newExportCmd(c),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	if c.pipeline == nil {
		c.pipeline = export.NewPipeline()
	}
	if c.svc != nil {
		return nil
	}

	logger.Console()
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level := cfg.LogLevel
	if c.debug {
		level = "debug"
	}
	logger.Init(level)

	b, err := bootstrap.Open(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	c.backends = b
	c.saver = b.Saver
	c.pipeline = export.NewPipeline(export.WithPDFFont(cfg.Export.PDFFont))
	c.svc = service.New(repository.New(b.Store, cfg.Store.Key))
	logger.Debugf("using %s store", b.StoreBackend)
	return nil
}

func (c *cli) close() {
	if c.backends != nil {
		c.backends.Close()
		c.backends = nil
	}
}
