package main

import (
	"fmt"

	"bricklink/cattree/internal/container"
	"bricklink/cattree/internal/domain"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newBuildCmd())
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <type>",
		Short: "Build and cache the tree of one catalog type",
		Long: `The build command materialises the stored categories of one catalog
type and caches the dropdown and menu under the fingerprint of the categories.

Example:
  cattree build P
  cattree build books --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryType, err := domain.ParseCategoryType(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), cfg, func(app *container.Container) error {
				snapshot, err := app.Service.BuildTree(cmd.Context(), categoryType)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(snapshot)
				}
				fmt.Fprintf(stdout, "%s: %d categories, %d skipped, fingerprint %s\n",
					categoryType.GetCategoryName(), snapshot.Total, snapshot.Skipped, snapshot.Fingerprint)
				return nil
			})
		},
	}
}
