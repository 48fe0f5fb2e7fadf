package game

import "void-arena/internal/vmath"

// RadarRange is the maximum distance at which enemies appear on radar.
const RadarRange = 200.0

// RadarContact is an enemy position in the ship's yaw frame: X to the
// right, Forward ahead, Y up.
type RadarContact struct {
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Forward  float64 `json:"forward" msgpack:"forward"`
	Distance float64 `json:"distance" msgpack:"distance"`
	Kind     string  `json:"kind" msgpack:"kind"`
}

// HUDStats are the derived values shown to the pilot every tick.
type HUDStats struct {
	EnemyCount    int            `json:"enemyCount" msgpack:"enemyCount"`
	EnemyCap      int            `json:"enemyCap" msgpack:"enemyCap"`
	Score         int            `json:"score" msgpack:"score"`
	Elapsed       float64        `json:"elapsed" msgpack:"elapsed"`
	Speed         float64        `json:"speed" msgpack:"speed"`
	ShieldPercent float64        `json:"shieldPercent" msgpack:"shieldPercent"`
	NearestEnemy  float64        `json:"nearestEnemy" msgpack:"nearestEnemy"` // -1 when none
	Radar         []RadarContact `json:"radar" msgpack:"radar"`
}

// RadarPoint projects target into the frame of a ship at origin with the
// given yaw. ok is false when the target is out of range.
func RadarPoint(origin vmath.Vec3, yaw float64, target vmath.Vec3) (c RadarContact, ok bool) {
	rel := target.Sub(origin)
	dist := rel.Len()
	if dist > RadarRange {
		return RadarContact{}, false
	}
	local := rel.RotateY(-yaw)
	return RadarContact{
		X:        local.X,
		Y:        local.Y,
		Forward:  -local.Z,
		Distance: dist,
	}, true
}
