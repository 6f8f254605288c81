package tile

import (
	"fmt"
	"math"
)

const (
	// TileSize is the pixel size of a map tile.
	TileSize = 256

	// earthRadius is the WGS84 spherical radius used by EPSG:3857, in meters.
	earthRadius = 6378137.0

	// originShift is half the circumference of the Mercator world, in meters.
	// The world square spans [-originShift, originShift] on both axes.
	originShift = math.Pi * earthRadius
)

// Coords represents a tile coordinate in the Google/XYZ tile scheme
// (y counts down from the top of the world). This is not TMS; the two must
// not be mixed.
type Coords struct {
	Z int // Zoom level
	X int // X coordinate (column)
	Y int // Y coordinate (row, top-down)
}

// NewCoords creates a new Coords from zoom, x, y values.
func NewCoords(z, x, y int) Coords {
	return Coords{Z: z, X: x, Y: y}
}

// String returns the tile coordinate in "z/x/y" form.
func (c Coords) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Valid reports whether the coordinate addresses a real tile: zoom is
// non-negative and x, y fall inside the 2^z grid.
func (c Coords) Valid() bool {
	if c.Z < 0 || c.X < 0 || c.Y < 0 {
		return false
	}
	n := math.Exp2(float64(c.Z))
	return float64(c.X) < n && float64(c.Y) < n
}

// BBox is an axis-aligned bounding box in Web Mercator meters (EPSG:3857),
// with MinX < MaxX and MinY < MaxY.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Center returns the midpoint of the box in Mercator meters.
func (b BBox) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// Interpolate returns the point at fractional position (fx, fy) inside the
// box, with (0, 0) the minimum corner and (1, 1) the maximum corner.
func (b BBox) Interpolate(fx, fy float64) (float64, float64) {
	return b.MinX + (b.MaxX-b.MinX)*fx, b.MinY + (b.MaxY-b.MinY)*fy
}

// BoundsMercator returns the Web Mercator bounding box of the tile.
// Resolution is 2*pi*R / (256 * 2^z) meters per pixel; x grows eastward from
// the west edge of the world, y downward from the north edge.
func (c Coords) BoundsMercator() BBox {
	res := 2 * originShift / (TileSize * math.Exp2(float64(c.Z)))

	return BBox{
		MinX: float64(c.X)*TileSize*res - originShift,
		MaxX: float64(c.X+1)*TileSize*res - originShift,
		MinY: originShift - float64(c.Y+1)*TileSize*res,
		MaxY: originShift - float64(c.Y)*TileSize*res,
	}
}

// CenterLonLat returns the center point of the tile in WGS84 (lon, lat).
func (c Coords) CenterLonLat() (float64, float64) {
	return MercatorToLonLat(c.BoundsMercator().Center())
}

// MercatorToLonLat converts Web Mercator meters (EPSG:3857) to WGS84
// longitude/latitude degrees. For |my| beyond the projection's valid range
// the latitude saturates toward the poles rather than erroring.
func MercatorToLonLat(mx, my float64) (float64, float64) {
	lon := (mx / earthRadius) * 180.0 / math.Pi
	lat := (2.0*math.Atan(math.Exp(my/earthRadius)) - math.Pi/2.0) * 180.0 / math.Pi

	return lon, lat
}

// LonLatToMercator converts WGS84 longitude/latitude degrees to Web Mercator
// meters (EPSG:3857). Inverse of MercatorToLonLat.
func LonLatToMercator(lon, lat float64) (float64, float64) {
	mx := earthRadius * lon * math.Pi / 180.0

	latRad := lat * math.Pi / 180.0
	my := earthRadius * math.Log(math.Tan(math.Pi/4.0+latRad/2.0))

	return mx, my
}
