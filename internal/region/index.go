package region

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/jiangrong2001/uom-proxy/internal/metrics"
)

// codeProperty is the GeoJSON feature property carrying the province-level
// division code ("省级码"); its first two characters are the province code.
const codeProperty = "省级码"

// Index maps province codes to their boundary geometry. Built once at
// startup and read-only afterwards, so lookups need no locking and are safe
// for concurrent use.
type Index struct {
	geoms map[Code]orb.Geometry
}

// NewIndex wraps a prebuilt code-to-geometry mapping. The mapping must not
// be mutated after the call.
func NewIndex(geoms map[Code]orb.Geometry) *Index {
	if geoms == nil {
		geoms = map[Code]orb.Geometry{}
	}
	return &Index{geoms: geoms}
}

// LoadIndex parses a GeoJSON feature collection and builds the geometry
// index. Features without a usable code property or with a non-area geometry
// are logged and skipped; they never fail the load. An empty result is legal
// and degrades every resolution to the heuristic fallback.
func LoadIndex(r io.Reader, logger *slog.Logger) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geometry data: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geometry data: %w", err)
	}

	geoms := make(map[Code]orb.Geometry, len(fc.Features))
	for _, f := range fc.Features {
		code := featureCode(f)
		if code == "" {
			logger.Warn("skipping feature without province code")
			metrics.GeometryFeaturesSkipped.Inc()
			continue
		}

		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			geoms[code] = f.Geometry
			logger.Debug("loaded geometry", "code", string(code), "type", f.Geometry.GeoJSONType())
		default:
			logger.Warn("skipping feature with unsupported geometry",
				"code", string(code), "type", f.Geometry.GeoJSONType())
			metrics.GeometryFeaturesSkipped.Inc()
		}
	}

	metrics.GeometryFeaturesLoaded.Set(float64(len(geoms)))
	return &Index{geoms: geoms}, nil
}

// featureCode extracts the two-digit province code from a feature's
// properties, tolerating numeric encodings of the division code.
func featureCode(f *geojson.Feature) Code {
	v, ok := f.Properties[codeProperty]
	if !ok {
		return ""
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}

	if len(s) < 2 {
		return ""
	}
	return Code(s[:2])
}

// Len returns the number of geometries in the index.
func (idx *Index) Len() int {
	return len(idx.geoms)
}

// ContainingRegions returns every code whose geometry contains the point.
// Overlapping geometries all match; an empty result is valid (open ocean,
// gaps between datasets). Result order is unspecified.
func (idx *Index) ContainingRegions(lon, lat float64) []Code {
	pt := orb.Point{lon, lat}

	var out []Code
	for code, g := range idx.geoms {
		if geometryContains(g, pt) {
			out = append(out, code)
		}
	}
	return out
}

func geometryContains(g orb.Geometry, pt orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	}
	return false
}
