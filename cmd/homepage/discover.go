package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scubides/homepage/content"
	"github.com/scubides/homepage/model"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Print a metadata.yaml catalog for the content directory",
	Long: `discover probes content/blogs/post1.md, post2.md, ... and
content/projects/project1.md, ... (both languages) and prints the catalog the
site would list, ready to be saved as content/metadata.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := content.DirFetcher{FS: os.DirFS(v.GetString("content_dir"))}
		var cat content.Catalog
		var err error
		if cat.Blogs, err = content.Discover(cmd.Context(), f, model.Blog); err != nil {
			return fmt.Errorf("discover blogs: %w", err)
		}
		if cat.Projects, err = content.Discover(cmd.Context(), f, model.Project); err != nil {
			return fmt.Errorf("discover projects: %w", err)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cat); err != nil {
			return err
		}
		return enc.Close()
	},
}
