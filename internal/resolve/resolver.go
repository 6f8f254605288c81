package resolve

import (
	"log/slog"

	"github.com/jiangrong2001/uom-proxy/internal/metrics"
	"github.com/jiangrong2001/uom-proxy/internal/region"
	"github.com/jiangrong2001/uom-proxy/internal/tile"
)

// minPreciseZoom is the zoom below which a tile covers too much ground for
// region targeting to pay off; such tiles request every configured region.
const minPreciseZoom = 6

// DefaultStride is the perimeter sampling stride of the dense fallback, in
// tile pixels.
const DefaultStride = 10

// Strategy tiers, in evaluation order. The tier a resolution terminated at
// is exported as a metric label: a sustained rate of heuristic resolutions
// means the geometry dataset is missing or degraded.
const (
	tierLowZoom   = "low_zoom"
	tierCoarse    = "coarse"
	tierDense     = "dense"
	tierHeuristic = "heuristic"
)

// Config controls resolution behavior.
type Config struct {
	// Stride is the perimeter sampling step of the dense fallback, in tile
	// pixels. Defaults to DefaultStride.
	Stride int
}

// Resolver maps tile coordinates to the set of region codes whose layers are
// needed to render the tile. It holds no mutable state and is safe for
// concurrent use once constructed.
type Resolver struct {
	index  *region.Index
	stride int
	logger *slog.Logger
}

// New creates a Resolver over the given region index.
func New(index *region.Index, cfg Config, logger *slog.Logger) *Resolver {
	if cfg.Stride <= 0 {
		cfg.Stride = DefaultStride
	}
	return &Resolver{
		index:  index,
		stride: cfg.Stride,
		logger: logger,
	}
}

// Resolve returns the region codes whose layers must be requested for the
// tile. It never fails: a sampling tier that comes up empty hands off to the
// next, and the final heuristic tier always produces a whole group. The
// result is always a union of whole groups, in stable group order.
func (r *Resolver) Resolve(c tile.Coords) []region.Code {
	codes, tier := r.resolve(c)
	metrics.ResolutionsTotal.WithLabelValues(tier).Inc()
	r.logger.Debug("resolved tile", "coords", c.String(), "tier", tier, "codes", region.Join(codes, ","))
	return codes
}

// sampler attempts one resolution strategy against a tile bounding box,
// returning matched codes or nil to pass to the next strategy.
type sampler struct {
	tier   string
	sample func(tile.BBox) []region.Code
}

func (r *Resolver) resolve(c tile.Coords) ([]region.Code, string) {
	if c.Z < minPreciseZoom {
		return region.AllCodes(), tierLowZoom
	}

	bbox := c.BoundsMercator()

	chain := []sampler{
		{tierCoarse, r.coarseSample},
		{tierDense, r.denseSample},
	}
	for _, s := range chain {
		if matched := s.sample(bbox); len(matched) > 0 {
			return region.ExpandGroups(matched), s.tier
		}
	}

	return r.heuristicBucket(bbox), tierHeuristic
}

// coarseFractions are the nine probe positions of the coarse tier: center,
// four corners, four edge midpoints.
var coarseFractions = [9][2]float64{
	{0.5, 0.5},
	{0, 0}, {1, 0}, {0, 1}, {1, 1},
	{0.5, 0}, {0.5, 1}, {0, 0.5}, {1, 0.5},
}

// coarseSample probes the tile at nine fixed points and keeps every region
// matched by any point; overlapping geometries all count.
func (r *Resolver) coarseSample(b tile.BBox) []region.Code {
	seen := make(map[region.Code]bool)
	var matched []region.Code

	for _, f := range coarseFractions {
		mx, my := b.Interpolate(f[0], f[1])
		lon, lat := tile.MercatorToLonLat(mx, my)
		for _, code := range r.index.ContainingRegions(lon, lat) {
			if !seen[code] {
				seen[code] = true
				matched = append(matched, code)
			}
		}
	}
	return matched
}

// denseSample walks the tile perimeter at the configured pixel stride and
// stops at the first containing region. One match is enough: group expansion
// rounds it up to the whole group anyway.
func (r *Resolver) denseSample(b tile.BBox) []region.Code {
	for i := 0; i < tile.TileSize; i += r.stride {
		f := float64(i) / tile.TileSize
		for _, p := range [4][2]float64{
			{f, 0}, {f, 1}, // south and north edges
			{0, f}, {1, f}, // west and east edges
		} {
			mx, my := b.Interpolate(p[0], p[1])
			lon, lat := tile.MercatorToLonLat(mx, my)
			if matched := r.index.ContainingRegions(lon, lat); len(matched) > 0 {
				return matched
			}
		}
	}
	return nil
}

// heuristicBucket classifies the tile center into one of a few hand-tuned
// lon/lat rectangles, each mapped to a whole macro-region. This is a coarse
// approximation for gaps in the geometry dataset, not a geographic boundary.
func (r *Resolver) heuristicBucket(b tile.BBox) []region.Code {
	lon, lat := tile.MercatorToLonLat(b.Center())

	switch {
	case lat > 40 && lon < 125:
		return region.GroupCodes(region.Northeast)
	case lon < 105 && lat > 38:
		return region.GroupCodes(region.Northwest)
	case lon < 105:
		return region.GroupCodes(region.Southwest)
	case lon < 115:
		return region.GroupCodes(region.Central)
	case lon < 122:
		return region.GroupCodes(region.East)
	default:
		return region.GroupCodes(region.North)
	}
}
