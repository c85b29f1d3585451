package main

import (
	"context"
	"fmt"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/container"
	"bricklink/cattree/internal/tree"

	"github.com/spf13/cobra"
)

var (
	treeDepth   int
	treeShowIDs bool
)

func init() {
	treeCmd := newTreeCmd()
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum depth to print (0 prints everything)")
	treeCmd.Flags().BoolVar(&treeShowIDs, "ids", true, "Show identifiers next to names")
	rootCmd.AddCommand(treeCmd, newDropdownCmd())
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Display a category tree",
		Long: `The tree command displays the nested tree of one catalog type, or of the
records in a JSON file.

Example:
  cattree tree --type B --depth 2
  cattree tree --file menu.json --select '$.items[*]' --root 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runTree(cmd.Context(), cfg)
		},
	}
}

func newDropdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dropdown",
		Short: "Print the indented dropdown labels of a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runDropdown(cmd.Context(), cfg)
		},
	}
}

// loadNodes materialises the tree from --file or from the database.
func loadNodes(ctx context.Context, cfg *config.Config) ([]*tree.Node, error) {
	records, err := fileRecords()
	if err != nil {
		return nil, err
	}
	if records != nil {
		opts := cfg.Tree.Options()
		return tree.BuildIndex(records, opts).Tree(opts.Root)
	}

	categoryType, err := parseTypeFlag()
	if err != nil {
		return nil, err
	}
	var nodes []*tree.Node
	err = withContainer(ctx, cfg, func(app *container.Container) error {
		nodes, err = app.Service.Nodes(ctx, categoryType)
		return err
	})
	return nodes, err
}

func runTree(ctx context.Context, cfg *config.Config) error {
	nodes, err := loadNodes(ctx, cfg)
	if err != nil {
		return err
	}

	nameField := cfg.Tree.NameField
	if jsonOut {
		menu, err := tree.Menu(nodes, nameField, cfg.Tree.MenuRoute)
		if err != nil {
			return err
		}
		return printJSON(menu)
	}

	opts := tree.DefaultRenderOptions()
	opts.NameField = nameField
	opts.MaxDepth = treeDepth
	opts.ShowIDs = treeShowIDs
	if err := tree.Render(stdout, nodes, opts); err != nil {
		return fmt.Errorf("failed to display tree: %w", err)
	}
	return nil
}

func runDropdown(ctx context.Context, cfg *config.Config) error {
	records, err := fileRecords()
	if err != nil {
		return err
	}

	var options []tree.Option
	if records != nil {
		opts := cfg.Tree.Options()
		entries, err := tree.BuildIndex(records, opts).PlaneTree(opts.Root)
		if err != nil {
			return err
		}
		options = tree.Dropdown(entries, cfg.Tree.NameField)
	} else {
		categoryType, err := parseTypeFlag()
		if err != nil {
			return err
		}
		err = withContainer(ctx, cfg, func(app *container.Container) error {
			snapshot, err := app.Service.BuildTree(ctx, categoryType)
			if err != nil {
				return err
			}
			options = snapshot.Dropdown
			return nil
		})
		if err != nil {
			return err
		}
	}

	if jsonOut {
		return printJSON(options)
	}
	for _, o := range options {
		fmt.Fprintln(stdout, o.Label)
	}
	return nil
}
