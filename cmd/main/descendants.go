package main

import (
	"context"
	"fmt"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/container"
	"bricklink/cattree/internal/service"
	"bricklink/cattree/internal/tree"

	"github.com/RoaringBitmap/roaring"
	"github.com/spf13/cobra"
)

var descendantsBitmap bool

func init() {
	cmd := newDescendantsCmd()
	cmd.Flags().BoolVar(&descendantsBitmap, "bitmap", false, "Print the identifiers as a roaring bitmap")
	rootCmd.AddCommand(cmd)
}

func newDescendantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "descendants <id>",
		Short: "List every category below a node",
		Long: `The descendants command lists the identifiers below a node in depth-first
order. With --bitmap the numeric identifiers are packed into a roaring bitmap;
for catalog categories these are the BrickLink category IDs.

Example:
  cattree descendants 332 --type B
  cattree descendants 0 --file menu.json --bitmap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runDescendants(cmd.Context(), cfg, args[0])
		},
	}
}

type descendantsOutput struct {
	IDs         []tree.ID `json:"ids"`
	Cardinality uint64    `json:"cardinality,omitempty"`
	Bitmap      []uint32  `json:"bitmap,omitempty"`
}

func runDescendants(ctx context.Context, cfg *config.Config, id string) error {
	records, err := fileRecords()
	if err != nil {
		return err
	}

	var (
		ids []tree.ID
		bm  *roaring.Bitmap
	)
	if records != nil {
		if ids, err = tree.BuildIndex(records, cfg.Tree.Options()).ChildrenIDs(tree.Key(id)); err != nil {
			return err
		}
		if descendantsBitmap {
			if bm, err = tree.Bitmap(ids); err != nil {
				return err
			}
		}
	} else {
		categoryType, err := parseTypeFlag()
		if err != nil {
			return err
		}
		var set *service.DescendantSet
		err = withContainer(ctx, cfg, func(app *container.Container) error {
			set, err = app.Service.Descendants(ctx, categoryType, id)
			return err
		})
		if err != nil {
			return err
		}
		ids, bm = set.Paths, set.CategoryIDs
	}

	if jsonOut {
		out := descendantsOutput{IDs: ids}
		if descendantsBitmap && bm != nil {
			out.Cardinality = bm.GetCardinality()
			out.Bitmap = bm.ToArray()
		}
		return printJSON(out)
	}

	if descendantsBitmap && bm != nil {
		fmt.Fprintf(stdout, "%s\n%d ids, %d bytes serialized\n", bm.String(), bm.GetCardinality(), bm.GetSerializedSizeInBytes())
		return nil
	}
	for _, childID := range ids {
		fmt.Fprintln(stdout, childID)
	}
	return nil
}
