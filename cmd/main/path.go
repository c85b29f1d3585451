package main

import (
	"context"
	"fmt"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/container"
	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/service"
	"bricklink/cattree/internal/tree"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newPathCmd())
}

func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <id>",
		Short: "Print the root-to-node path of a category",
		Long: `The path command walks from a category up to the root and prints the
names along the way, joined by tree.path_delimiter.

Example:
  cattree path 332.124.316 --type B
  cattree path 4 --file menu.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runPath(cmd.Context(), cfg, args[0])
		},
	}
}

func runPath(ctx context.Context, cfg *config.Config, id string) error {
	records, err := fileRecords()
	if err != nil {
		return err
	}

	var breadcrumb *domain.Breadcrumb
	if records != nil {
		path, err := tree.PathArray(records, id, cfg.Tree.Options())
		if err != nil {
			return err
		}
		if len(path) == 0 {
			return fmt.Errorf("%w: %q", service.ErrCategoryNotFound, id)
		}
		breadcrumb = &domain.Breadcrumb{FullPath: tree.PathString(path, cfg.Tree.NameField, cfg.Tree.PathDelimiter)}
		ids := tree.PathIDs(path, cfg.Tree.PrimaryField)
		for i, rec := range path {
			breadcrumb.Steps = append(breadcrumb.Steps, domain.BreadcrumbStep{
				ID:   ids[i].String(),
				Name: tree.PathString([]tree.Record{rec}, cfg.Tree.NameField, cfg.Tree.PathDelimiter),
			})
		}
	} else {
		categoryType, err := parseTypeFlag()
		if err != nil {
			return err
		}
		err = withContainer(ctx, cfg, func(app *container.Container) error {
			breadcrumb, err = app.Service.Path(ctx, categoryType, id)
			return err
		})
		if err != nil {
			return err
		}
	}

	if jsonOut {
		return printJSON(breadcrumb)
	}
	fmt.Fprintln(stdout, breadcrumb.FullPath)
	return nil
}
