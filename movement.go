package inp

import (
	"math"

	"github.com/paulmach/orb"
)

type MovementType uint16

const (
	MOVEMENT_THRU = MovementType(iota + 1)
	MOVEMENT_RIGHT
	MOVEMENT_LEFT
	MOVEMENT_U_TURN

	MOVEMENT_UNDEFINED = MovementType(0)
)

func (iotaIdx MovementType) String() string {
	return [...]string{"undefined", "thru", "right", "left", "uturn"}[iotaIdx]
}

// code returns single letter used in movement names
func (iotaIdx MovementType) code() string {
	return [...]string{"", "T", "R", "L", "U"}[iotaIdx]
}

// angleBetweenLines is the signed turn from the direction of l1 to the direction of l2, radians in [-Pi; Pi].
// Each direction runs from the first point of a line to its last one, so both lines need at least 2 points
func angleBetweenLines(l1 orb.LineString, l2 orb.LineString) float64 {
	angle := direction(l2) - direction(l1)
	if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

func direction(line orb.LineString) float64 {
	first, last := line[0], line[len(line)-1]
	return math.Atan2(last.Y()-first.Y(), last.X()-first.X())
}

// heading returns bound of the segment direction: SB, EB, NB or WB
func heading(from, to orb.Point) string {
	angle := math.Atan2(to.Y()-from.Y(), to.X()-from.X())
	switch {
	case -0.75*math.Pi <= angle && angle < -0.25*math.Pi:
		return "SB"
	case -0.25*math.Pi <= angle && angle < 0.25*math.Pi:
		return "EB"
	case 0.25*math.Pi <= angle && angle < 0.75*math.Pi:
		return "NB"
	}
	return "WB"
}

// turnMovement classifies turn from the last segment of incoming line to the first segment of outgoing line.
// Returned name is the incoming bound followed by the movement letter, e.g. "EBL".
//
// Note: panics if number of points in any line is less than 2
//
func turnMovement(incoming, outgoing orb.LineString) (string, MovementType) {
	last := orb.LineString{incoming[len(incoming)-2], incoming[len(incoming)-1]}
	first := orb.LineString{outgoing[0], outgoing[1]}
	angleDiff := angleBetweenLines(last, first)

	var movementType MovementType
	switch {
	case -0.25*math.Pi <= angleDiff && angleDiff <= 0.25*math.Pi:
		movementType = MOVEMENT_THRU
	case angleDiff < -0.25*math.Pi && angleDiff >= -0.75*math.Pi:
		movementType = MOVEMENT_RIGHT
	case angleDiff > 0.25*math.Pi && angleDiff <= 0.75*math.Pi:
		movementType = MOVEMENT_LEFT
	default:
		movementType = MOVEMENT_U_TURN
	}
	return heading(last[0], last[1]) + movementType.code(), movementType
}
