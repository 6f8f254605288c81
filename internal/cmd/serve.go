package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jiangrong2001/uom-proxy/internal/resolve"
	"github.com/jiangrong2001/uom-proxy/internal/server"
	"github.com/jiangrong2001/uom-proxy/internal/wms"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve XYZ tiles proxied from the upstream WMS service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "0.0.0.0:5000", "Listen address (host:port)")
	serveCmd.Flags().Int("sample-stride", resolve.DefaultStride, "Perimeter sampling stride of the dense fallback, in tile pixels")
	serveCmd.Flags().Duration("upstream-timeout", wms.DefaultTimeout, "Timeout per upstream WMS fetch")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.sample_stride", "sample-stride")
	mustBind("serve.upstream_timeout", "upstream-timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	// The index must be complete before the first request is served.
	index := loadIndex()

	resolver := resolve.New(index, resolve.Config{
		Stride: viper.GetInt("serve.sample_stride"),
	}, logger)

	client, err := wms.NewClient(wms.Config{
		BaseURL: viper.GetString("wms_url"),
		Token:   viper.GetString("wms_token"),
		Timeout: viper.GetDuration("serve.upstream_timeout"),
	}, logger)
	if err != nil {
		return err
	}

	tiles := server.NewTiles(resolver, client, logger)

	addr := viper.GetString("serve.addr")
	logger.Info("tile proxy listening", "addr", addr, "geometries", index.Len())

	srv := &http.Server{Addr: addr, Handler: tiles.Mux(), ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}
