package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/regions"
)

var regionsImportFile string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Manage stored geofence regions",
}

var regionsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import regions from a GeoJSON, shapefile, XLSX or YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		loaded, err := regions.Load(regionsImportFile)
		if err != nil {
			return eris.Wrap(err, "load regions")
		}

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, r := range loaded {
			if err := s.SaveRegion(ctx, r); err != nil {
				return eris.Wrapf(err, "save region %s", r.ID)
			}
		}

		zap.L().Info("regions imported",
			zap.Int("count", len(loaded)),
			zap.String("file", regionsImportFile),
		)
		return nil
	},
}

var regionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored regions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		stored, err := s.ListRegions(ctx)
		if err != nil {
			return err
		}

		if len(stored) == 0 {
			cmd.Println("no regions stored")
			return nil
		}
		for _, r := range stored {
			cmd.Println(fmt.Sprintf("%-24s %11.6f %12.6f %9.1fm",
				r.ID, r.Center.Latitude, r.Center.Longitude, r.Radius))
		}
		return nil
	},
}

var regionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored regions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeleteAllRegions(ctx); err != nil {
			return err
		}
		zap.L().Info("regions cleared")
		return nil
	},
}

func init() {
	regionsImportCmd.Flags().StringVar(&regionsImportFile, "file", "", "path to region file (required)")
	_ = regionsImportCmd.MarkFlagRequired("file")

	regionsCmd.AddCommand(regionsImportCmd)
	regionsCmd.AddCommand(regionsListCmd)
	regionsCmd.AddCommand(regionsClearCmd)
	rootCmd.AddCommand(regionsCmd)
}
