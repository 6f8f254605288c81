package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jiangrong2001/uom-proxy/internal/region"
	"github.com/jiangrong2001/uom-proxy/internal/resolve"
	"github.com/jiangrong2001/uom-proxy/internal/tile"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve z x y",
	Short: "Resolve a tile coordinate to its region codes without fetching",
	Long: `Resolve runs the tile-to-region resolution for a single z/x/y coordinate
against the configured geometry file and prints the resulting region codes.
Useful for verifying the geometry dataset and the fallback chain, e.g.:

  uom-proxy resolve 18 215204 163762`,
	Args: cobra.ExactArgs(3),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	var nums [3]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid tile coordinate %q", a)
		}
		nums[i] = n
	}

	coords := tile.NewCoords(nums[0], nums[1], nums[2])
	if !coords.Valid() {
		return fmt.Errorf("tile %s is outside the zoom-%d grid", coords, coords.Z)
	}

	index := loadIndex()
	resolver := resolve.New(index, resolve.Config{}, logger)
	codes := resolver.Resolve(coords)

	bbox := coords.BoundsMercator()
	lon, lat := coords.CenterLonLat()

	fmt.Printf("tile    %s\n", coords)
	fmt.Printf("bbox    %.2f,%.2f,%.2f,%.2f\n", bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY)
	fmt.Printf("center  %.5f,%.5f\n", lon, lat)
	fmt.Printf("regions %s\n", region.Join(codes, ","))
	return nil
}
