package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/phanxgames/projectmap"
	"github.com/spf13/cobra"
)

var (
	categoryStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	hexStyle      = lipgloss.NewStyle().Faint(true)
)

func newTagsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Print the tag catalog with resolved colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.TagsFile == "" {
				return errors.New("--tags is required")
			}
			catalog, err := loadCatalog(c.cfg.TagsFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, cat := range catalog.Categories {
				fmt.Fprintln(out, categoryStyle.Render(cat.Name))
				for _, t := range cat.Tags {
					fmt.Fprintf(out, "  %s %s\n", tagSwatch(catalog, t.Name), hexStyle.Render(catalog.ColorOf(t.Name)))
				}
			}
			return nil
		},
	}
}

// tagSwatch renders a tag name on its badge color with the contrast text
// color, as it appears on the map.
func tagSwatch(catalog *projectmap.TagCatalog, name string) string {
	bg := catalog.ColorOf(name)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(projectmap.ContrastOf(bg))).
		Padding(0, 1).
		Render(name)
}
