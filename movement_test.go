package inp

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestTurnMovement(t *testing.T) {
	eastbound := orb.LineString{{-10, 0}, {0, 0}}
	cases := []struct {
		outgoing orb.LineString
		name     string
		movement MovementType
	}{
		{orb.LineString{{0, 0}, {10, 1}}, "EBT", MOVEMENT_THRU},
		{orb.LineString{{0, 0}, {0, -10}}, "EBR", MOVEMENT_RIGHT},
		{orb.LineString{{0, 0}, {0, 10}}, "EBL", MOVEMENT_LEFT},
		{orb.LineString{{0, 0}, {-10, 1}}, "EBU", MOVEMENT_U_TURN},
	}
	for _, tc := range cases {
		name, movement := turnMovement(eastbound, tc.outgoing)
		assert.Equal(t, tc.name, name)
		assert.Equal(t, tc.movement, movement, movement.String())
	}

	name, _ := turnMovement(orb.LineString{{5, 5}, {0, 10}, {0, 0}}, orb.LineString{{0, 0}, {0, -10}})
	assert.Equal(t, "SBT", name)
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "EB", heading(orb.Point{0, 0}, orb.Point{1, 0}))
	assert.Equal(t, "NB", heading(orb.Point{0, 0}, orb.Point{0, 1}))
	assert.Equal(t, "WB", heading(orb.Point{0, 0}, orb.Point{-1, 0}))
	assert.Equal(t, "SB", heading(orb.Point{0, 0}, orb.Point{0, -1}))
	assert.Equal(t, "undefined", MOVEMENT_UNDEFINED.String())
}

func TestAngleBetweenLines(t *testing.T) {
	east := orb.LineString{{0, 0}, {1, 0}}
	north := orb.LineString{{1, 0}, {1, 1}}
	west := orb.LineString{{1, 0}, {0, 0}}
	assert.InDelta(t, math.Pi/2, angleBetweenLines(east, north), 1e-9)
	assert.InDelta(t, -math.Pi/2, angleBetweenLines(north, east), 1e-9)
	assert.InDelta(t, math.Pi, math.Abs(angleBetweenLines(east, west)), 1e-9)
}
