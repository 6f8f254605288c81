package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jiangrong2001/uom-proxy/internal/metrics"
	"github.com/jiangrong2001/uom-proxy/internal/resolve"
	"github.com/jiangrong2001/uom-proxy/internal/tile"
	"github.com/jiangrong2001/uom-proxy/internal/wms"
)

// fallbackPNG is a 1x1 transparent PNG served whenever resolution or the
// upstream fetch fails. Tile clients get an empty tile instead of an error
// status; the endpoint never surfaces a non-200 for a well-formed tile path.
var fallbackPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// Tiles proxies XYZ tile requests to the upstream WMS service: resolve the
// tile to region codes, build the GetMap request, pass the image through.
type Tiles struct {
	resolver *resolve.Resolver
	client   *wms.Client
	logger   *slog.Logger
}

// NewTiles creates the tile proxy handler.
func NewTiles(resolver *resolve.Resolver, client *wms.Client, logger *slog.Logger) *Tiles {
	return &Tiles{
		resolver: resolver,
		client:   client,
		logger:   logger,
	}
}

// Handler returns the tile-serving handler for "/{z}/{x}/{y}.png" paths.
func (t *Tiles) Handler() http.Handler {
	return http.HandlerFunc(t.serveTile)
}

// Mux returns the full routing table: tiles at the root, health and metrics
// endpoints alongside.
func (t *Tiles) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", t.Handler())
	return mux
}

func (t *Tiles) serveTile(w http.ResponseWriter, r *http.Request) {
	// Allow browser map clients on other origins to request tiles.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	coords, ok := parseTilePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	codes := t.resolver.Resolve(coords)

	data, err := t.client.GetMap(r.Context(), codes, coords.BoundsMercator())
	if err != nil {
		t.logger.Error("upstream fetch failed, serving fallback tile",
			"coords", coords.String(), "error", err)
		metrics.TilesServedTotal.WithLabelValues("fallback").Inc()
		writePNG(w, fallbackPNG)
		return
	}

	metrics.TilesServedTotal.WithLabelValues("ok").Inc()
	writePNG(w, data)
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// parseTilePath parses "/{z}/{x}/{y}.png" into tile coordinates. Malformed
// paths are rejected here, before any resolution happens.
func parseTilePath(p string) (tile.Coords, bool) {
	p = strings.TrimPrefix(p, "/")
	rest, found := strings.CutSuffix(p, ".png")
	if !found {
		return tile.Coords{}, false
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return tile.Coords{}, false
	}

	var nums [3]int
	for i, s := range parts {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return tile.Coords{}, false
		}
		nums[i] = n
	}

	c := tile.NewCoords(nums[0], nums[1], nums[2])
	if !c.Valid() {
		return tile.Coords{}, false
	}
	return c, true
}
