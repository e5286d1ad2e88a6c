package main

import (
	"fmt"
	"strings"

	"github.com/gogotex/blogdraft/internal/export"
	"github.com/gogotex/blogdraft/internal/storage"
	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a post as json, html, docx or pdf",
		Long: `Export a stored post. With --out the file is written to that directory,
otherwise it goes to the configured export backend.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("%w (want one of %s)", err, formatNames())
			}
			p, err := c.svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			saver := c.saver
			if out != "" {
				ds, err := storage.NewDirSaver(out)
				if err != nil {
					return err
				}
				saver = ds
			}
			if saver == nil {
				return fmt.Errorf("no export destination configured")
			}
			// the CLI waits for every format, fixed layout included
			a, err := c.pipeline.Deliver(cmd.Context(), export.FromPost(p), f, saver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", a.Filename, len(a.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "export format: "+formatNames())
	cmd.Flags().StringVarP(&out, "out", "o", "", "directory to write the file to")
	return cmd
}

func formatNames() string {
	names := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		names = append(names, strings.TrimPrefix(f.Extension(), "."))
	}
	return strings.Join(names, ", ")
}
