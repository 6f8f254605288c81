package resolve

import (
	"io"
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiangrong2001/uom-proxy/internal/region"
	"github.com/jiangrong2001/uom-proxy/internal/tile"
)

func newResolver(geoms map[region.Code]orb.Geometry) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(region.NewIndex(geoms), Config{}, logger)
}

// rectAround builds a lon/lat rectangle spanning the given fractional
// positions of a tile's bounding box (fractions may exceed [0,1] to bleed
// past the tile edge).
func rectAround(c tile.Coords, fx1, fy1, fx2, fy2 float64) orb.Polygon {
	b := c.BoundsMercator()
	lo1, la1 := tile.MercatorToLonLat(b.Interpolate(fx1, fy1))
	lo2, la2 := tile.MercatorToLonLat(b.Interpolate(fx2, fy2))

	return orb.Polygon{{
		{lo1, la1}, {lo2, la1}, {lo2, la2}, {lo1, la2}, {lo1, la1},
	}}
}

func TestResolveLowZoom(t *testing.T) {
	// Below zoom 6 every configured region is requested, whatever x/y say
	// and whatever the geometry knows.
	r := newResolver(nil)

	for _, c := range []tile.Coords{
		tile.NewCoords(0, 0, 0),
		tile.NewCoords(3, 5, 2),
		tile.NewCoords(5, 31, 31),
	} {
		codes, tier := r.resolve(c)
		assert.Equal(t, region.AllCodes(), codes, "tile %s", c)
		assert.Equal(t, tierLowZoom, tier)
	}
}

func TestResolveCoarseMatch(t *testing.T) {
	// A geometry covering the whole tile is hit by the first 9-point
	// sampling pass; the dense and heuristic tiers must never run.
	c := tile.NewCoords(10, 843, 388)
	r := newResolver(map[region.Code]orb.Geometry{
		"13": rectAround(c, -0.5, -0.5, 1.5, 1.5),
	})

	codes, tier := r.resolve(c)
	assert.Equal(t, tierCoarse, tier)
	assert.Equal(t, region.GroupCodes(region.North), codes)
}

func TestResolveDenseFallback(t *testing.T) {
	// A sliver crossing the south edge between 15% and 35% of the tile
	// width dodges all nine coarse probes (corners, midpoints, center) but
	// sits on the perimeter walked by the dense tier.
	c := tile.NewCoords(10, 843, 388)
	r := newResolver(map[region.Code]orb.Geometry{
		"51": rectAround(c, 0.15, -0.2, 0.35, 0.2),
	})

	codes, tier := r.resolve(c)
	assert.Equal(t, tierDense, tier)
	assert.Equal(t, region.GroupCodes(region.Southwest), codes)
}

func TestResolveHeuristicBuckets(t *testing.T) {
	// With no geometry at all every resolution falls through to the
	// lon/lat buckets. Tiles are picked so their centers land in each
	// bucket; expected groups mirror the hand-tuned rectangles.
	r := newResolver(nil)

	tests := []struct {
		name     string
		lon, lat float64
		want     []region.Code
	}{
		{"high latitude goes northeast", 123, 44, region.GroupCodes(region.Northeast)},
		{"far west high latitude goes northeast too", 85, 44, region.GroupCodes(region.Northeast)},
		{"west mid latitude goes northwest", 95, 39, region.GroupCodes(region.Northwest)},
		{"west low latitude goes southwest", 100, 30, region.GroupCodes(region.Southwest)},
		{"mid longitude goes central", 112, 30, region.GroupCodes(region.Central)},
		{"coastal longitude goes east", 120, 30, region.GroupCodes(region.East)},
		{"far east below 40 goes north", 123, 35, region.GroupCodes(region.North)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tileAt(tt.lon, tt.lat, 10)
			codes, tier := r.resolve(c)
			assert.Equal(t, tierHeuristic, tier)
			assert.Equal(t, tt.want, codes)
		})
	}
}

// tileAt returns the zoom-z tile whose bounds contain the given point.
func tileAt(lon, lat float64, z int) tile.Coords {
	mx, my := tile.LonLatToMercator(lon, lat)
	world := tile.NewCoords(0, 0, 0).BoundsMercator()

	n := float64(int(1) << uint(z))
	fx := (mx - world.MinX) / (world.MaxX - world.MinX)
	fy := (world.MaxY - my) / (world.MaxY - world.MinY)
	return tile.NewCoords(z, int(fx*n), int(fy*n))
}

func TestResolveRegressionTiles(t *testing.T) {
	t.Run("18/215204/163762 southern ocean tile", func(t *testing.T) {
		// Center is near (115.54, -40.9), far outside any Chinese province
		// geometry: the heuristic bucket for lon in [115, 122) answers with
		// the east group.
		c := tile.NewCoords(18, 215204, 163762)

		lon, lat := c.CenterLonLat()
		require.InDelta(t, 115.54, lon, 0.01)
		require.InDelta(t, -40.90, lat, 0.01)

		codes := newResolver(nil).Resolve(c)
		assert.Equal(t, region.GroupCodes(region.East), codes)
	})

	t.Run("18/215207/98384 Hebei tile", func(t *testing.T) {
		// The mirrored northern tile sits around (115.54, 40.89); with a
		// geometry coded "13" covering it, coarse sampling matches and the
		// whole north group comes back.
		c := tile.NewCoords(18, 215207, 98384)

		lon, lat := c.CenterLonLat()
		require.InDelta(t, 115.54, lon, 0.01)
		require.InDelta(t, 40.89, lat, 0.01)

		r := newResolver(map[region.Code]orb.Geometry{
			"13": orb.Polygon{{{115, 40.5}, {116, 40.5}, {116, 41.2}, {115, 41.2}, {115, 40.5}}},
		})
		codes, tier := r.resolve(c)
		assert.Equal(t, tierCoarse, tier)
		assert.Equal(t, region.GroupCodes(region.North), codes)
	})
}

func TestResolveNeverEmptyAndIdempotent(t *testing.T) {
	// Even a mid-ocean tile against an empty index terminates with a
	// non-empty group, and resolving twice gives the same answer.
	r := newResolver(nil)
	c := tileAt(-150, 0, 12) // mid-Pacific

	first := r.Resolve(c)
	second := r.Resolve(c)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestResolveAlwaysWholeGroups(t *testing.T) {
	// A single matched code must round up to its entire group: the result
	// re-expands to itself.
	c := tile.NewCoords(12, 3363, 1537)
	r := newResolver(map[region.Code]orb.Geometry{
		"42": rectAround(c, -1, -1, 2, 2),
	})

	codes := r.Resolve(c)
	assert.Equal(t, region.GroupCodes(region.Central), codes)
	assert.Equal(t, codes, region.ExpandGroups(codes))
}

func TestResolveOverlappingGeometries(t *testing.T) {
	// Overlapping geometries from different groups both survive sampling
	// and both groups are unioned, in stable group order.
	c := tile.NewCoords(10, 843, 388)
	r := newResolver(map[region.Code]orb.Geometry{
		"13": rectAround(c, -0.5, -0.5, 1.5, 1.5),
		"21": rectAround(c, -0.5, -0.5, 1.5, 1.5),
	})

	codes, tier := r.resolve(c)
	assert.Equal(t, tierCoarse, tier)

	want := append(append([]region.Code{}, region.GroupCodes(region.North)...),
		region.GroupCodes(region.Northeast)...)
	assert.Equal(t, want, codes)
}

func TestDenseStrideConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := New(region.NewIndex(nil), Config{Stride: 64}, logger)
	assert.Equal(t, 64, r.stride)

	r = New(region.NewIndex(nil), Config{}, logger)
	assert.Equal(t, DefaultStride, r.stride)
}
