package terrain

import (
	gomath "math"

	"github.com/Faultbox/project-tails/pkg/math"
)

// probeDepth is how far below the query point a ground probe starts.
const probeDepth = 17

// Ground is the result of a ground sweep.
type Ground struct {
	SurfaceY float64
	Angle    uint8
}

// FindGround sweeps every pixel column of [pos.X-xRadius, pos.X+xRadius] for
// the nearest surface at or below pos on collision layer 0 and returns the
// highest one found (smallest y). Ties go to the leftmost column.
//
// The span ends are truncated to whole pixels with negative values clamped to
// zero. The bool is false when the span is empty or no column hits ground.
func (t *Terrain) FindGround(pos math.Vec2, xRadius float64) (Ground, bool) {
	start := pixelCoord(pos.X - xRadius)
	end := pixelCoord(pos.X + xRadius)
	y := int(clampInt32(pos.Y))

	var best Ground
	found := false
	for x := start; x <= end; x++ {
		g, ok := t.probeColumn(x, y)
		if !ok {
			continue
		}
		if !found || g.SurfaceY < best.SurfaceY {
			best = g
			found = true
		}
	}
	return best, found
}

// probeColumn scans column x upward from probeDepth pixels below y.
//
// The first step always runs so a probe starting in open air still samples its
// start row; after that the scan keeps climbing while the pixel above is solid,
// which walks it to the top of a contiguous run of ground. The surface is then
// offset by the height of the tile found at the last solid row.
//
// The height column is taken as x mod 8 rather than x mod 16.
// TODO: confirm against the authored collision maps whether x mod 16 was meant.
func (t *Terrain) probeColumn(x, y int) (Ground, bool) {
	cursor := y + probeDepth
	result := cursor
	hit := false
	for t.IsOccupied(x, cursor-1, 0) || (!hit && cursor >= y) {
		result = cursor
		hit = true
		cursor--
	}

	tile, ok := t.TileAt(x, result, 0)
	if !ok {
		return Ground{}, false
	}

	top := cursor + TileSize - int(tile.Heights[x%8])
	return Ground{SurfaceY: float64(top), Angle: tile.Angle}, true
}

// pixelCoord truncates v toward zero, clamping to [0, MaxUint32].
func pixelCoord(v float64) int {
	if gomath.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= gomath.MaxUint32 {
		return gomath.MaxUint32
	}
	return int(v)
}

// clampInt32 truncates v toward zero, saturating at the int32 range.
func clampInt32(v float64) int32 {
	switch {
	case gomath.IsNaN(v):
		return 0
	case v <= gomath.MinInt32:
		return gomath.MinInt32
	case v >= gomath.MaxInt32:
		return gomath.MaxInt32
	}
	return int32(v)
}
