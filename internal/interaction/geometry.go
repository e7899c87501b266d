package interaction

import "math"

// centerOf returns the center point of an axis-aligned box.
func centerOf(x, y, w, h float64) (float64, float64) {
	return x + w/2, y + h/2
}

// distanceAndAngle computes the centre-to-centre distance and the angle
// from (sx, sy, sw, sh) to (tx, ty, tw, th) (radians, atan2 convention),
// used by filters that reference `distance`/`angle`. Targets with no box
// extent (system entities) pass w=h=0 and are treated as a point.
func distanceAndAngle(sx, sy, sw, sh, tx, ty, tw, th float64) (float64, float64) {
	scx, scy := centerOf(sx, sy, sw, sh)
	tcx, tcy := centerOf(tx, ty, tw, th)
	dx, dy := tcx-scx, tcy-scy
	return math.Hypot(dx, dy), math.Atan2(dy, dx)
}
