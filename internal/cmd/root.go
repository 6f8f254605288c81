package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jiangrong2001/uom-proxy/internal/region"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "uom-proxy",
	Short: "An XYZ tile proxy for the UOM airspace WMS service",
	Long: `uom-proxy answers standard z/x/y map tile requests by working out which
administrative regions a tile overlaps, requesting exactly those regions'
airspace layers from the upstream WMS server, and passing the rendered
image through.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("geometry-file", "./res/china_new.geojson", "GeoJSON file with province boundary geometries")
	rootCmd.PersistentFlags().String("wms-url", "", "Upstream WMS base URL")
	rootCmd.PersistentFlags().String("wms-token", "", "Upstream WMS auth token")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	for key, name := range map[string]string{
		"geometry_file": "geometry-file",
		"wms_url":       "wms-url",
		"wms_token":     "wms-token",
		"verbose":       "verbose",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("UOMPROXY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func initLogging() {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadIndex builds the region index from the configured geometry file.
// A missing or unparseable file is operational, not fatal: the proxy still
// runs with an empty index, every resolution degrading to the lon/lat
// heuristic, which the error log (and the resolution tier metric) surfaces.
func loadIndex() *region.Index {
	path := viper.GetString("geometry_file")

	f, err := os.Open(path)
	if err != nil {
		logger.Error("geometry file unavailable, resolution degrades to heuristic buckets",
			"path", path, "error", err)
		return region.NewIndex(nil)
	}
	defer f.Close()

	index, err := region.LoadIndex(f, logger)
	if err != nil {
		logger.Error("geometry load failed, resolution degrades to heuristic buckets",
			"path", path, "error", err)
		return region.NewIndex(nil)
	}

	logger.Info("loaded region geometries",
		"path", path, "count", index.Len(), "groups", region.GroupSummary())
	return index
}
