package wms

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jiangrong2001/uom-proxy/internal/region"
	"github.com/jiangrong2001/uom-proxy/internal/tile"
)

// Layer naming convention of the upstream service: workspace prefix, the
// two-digit province code padded out to the full division code, one fixed
// style shared by every layer.
const (
	layerPrefix = "QGSFKYFW:sf"
	layerSuffix = "0000"
	styleName   = "QGSFKYFW:shifeikongyu"
)

// BuildParams assembles GetMap query parameters for the given region codes
// and tile bounding box. Layer i and style i correspond by position, as WMS
// requires, even though the style is currently identical for every layer.
// Pure data transformation; no I/O.
func BuildParams(codes []region.Code, bbox tile.BBox) url.Values {
	layers := make([]string, len(codes))
	styles := make([]string, len(codes))
	for i, code := range codes {
		layers[i] = layerPrefix + string(code) + layerSuffix
		styles[i] = styleName
	}

	v := url.Values{}
	v.Set("service", "WMS")
	v.Set("version", "1.1.0")
	v.Set("request", "GetMap")
	v.Set("layers", strings.Join(layers, ","))
	v.Set("styles", strings.Join(styles, ","))
	v.Set("bbox", formatBBox(bbox))
	v.Set("width", strconv.Itoa(tile.TileSize))
	v.Set("height", strconv.Itoa(tile.TileSize))
	v.Set("srs", "EPSG:3857")
	v.Set("format", "image/png8")
	v.Set("transparent", "true")
	return v
}

// formatBBox renders minx,miny,maxx,maxy at full float precision.
func formatBBox(b tile.BBox) string {
	parts := [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
	strs := make([]string, len(parts))
	for i, f := range parts {
		strs[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.Join(strs, ",")
}
