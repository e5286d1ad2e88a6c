package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogotex/blogdraft/internal/post"
	"github.com/gogotex/blogdraft/internal/post/repository"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts := c.svc.List(cmd.Context())
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Title", "Tags", "Status", "Images", "Updated"})
			for _, p := range posts {
				t.AppendRow(table.Row{
					p.ID,
					p.DisplayTitle(),
					strings.Join(p.Tags, ", "),
					status(p),
					len(post.ImageTags(p.ContentHTML)),
					p.UpdatedTime().Format("2006-01-02 15:04"),
				})
			}
			t.Render()
			return nil
		},
	}
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", p.DisplayTitle())
			fmt.Fprintf(out, "id:      %s\n", p.ID)
			fmt.Fprintf(out, "status:  %s\n", status(p))
			fmt.Fprintf(out, "tags:    %s\n", strings.Join(p.Tags, ", "))
			fmt.Fprintf(out, "updated: %s\n\n", p.UpdatedTime().Format("2006-01-02 15:04:05"))
			fmt.Fprintln(out, p.ContentHTML)
			return nil
		},
	}
}

func newSaveCmd(c *cli) *cobra.Command {
	var (
		id, title, tags, contentFile string
		publish                      bool
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a draft or publish a post",
		Long: `Create a post, or update one with --id. When updating, only the
fields given on the command line change. --content-file - reads stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := post.NewDraft()
			if id != "" {
				p, err := c.svc.Get(ctx, id)
				if err != nil {
					return err
				}
				d = post.DraftFromPost(p)
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				d.Title = title
			}
			if flags.Changed("tags") {
				d.TagsInput = tags
			}
			if contentFile != "" {
				content, err := readContent(cmd.InOrStdin(), contentFile)
				if err != nil {
					return err
				}
				d.Content = content
			}
			published := d.Published
			if flags.Changed("publish") {
				published = publish
			}

			p, err := c.svc.Save(ctx, d, published)
			if err != nil {
				if errors.Is(err, repository.ErrStorageWrite) || errors.Is(err, repository.ErrStorageRead) {
					return fmt.Errorf("post was not saved: %w", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", status(p), p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id of an existing post to update")
	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "file holding the HTML content")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish instead of saving as draft")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func status(p *post.Post) string {
	if p.Published {
		return "published"
	}
	return "draft"
}

func readContent(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(b), nil
}
