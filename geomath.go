package inp

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Check if two segments intersects and returns intersections Point
// p1, p2 - first segment
// p3, p4 - second segment
// Note: Euclidean space
func intersect(p1, p2, p3, p4 orb.Point) (orb.Point, error) {
	// Calculate the coefficients of the linear equations
	a1 := p2[1] - p1[1]
	b1 := p1[0] - p2[0]
	c1 := a1*p1[0] + b1*p1[1]
	a2 := p4[1] - p3[1]
	b2 := p3[0] - p4[0]
	c2 := a2*p3[0] + b2*p3[1]

	// Calculate the determinant
	det := a1*b2 - a2*b1
	if det == 0 {
		return orb.Point{}, errors.New("The lines are parallel")
	}

	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det
	return orb.Point{x, y}, nil
}

// offsetCurve shifts line by distance to the left side of its direction (to the right for negative distance).
// Joints are placed at intersections of neighbouring shifted segments. Line must not have repeated points
func offsetCurve(line orb.LineString, distance float64) orb.LineString {
	if len(line) < 2 {
		return line.Clone()
	}
	var result orb.LineString
	var segments [][2]orb.Point

	// Iterate over line segments and calculate offset segments
	for i := 1; i < len(line); i++ {
		p1 := line[i-1]
		p2 := line[i]

		vec := [2]float64{p2[0] - p1[0], p2[1] - p1[1]}
		vecLen := math.Sqrt(vec[0]*vec[0] + vec[1]*vec[1])
		vec = [2]float64{vec[0] / vecLen, vec[1] / vecLen}

		// Rotate the vector by 90 degrees
		rotated := [2]float64{-vec[1], vec[0]}
		offset := [2]float64{rotated[0] * distance, rotated[1] * distance}

		op1 := orb.Point{p1[0] + offset[0], p1[1] + offset[1]}
		op2 := orb.Point{p2[0] + offset[0], p2[1] + offset[1]}
		segments = append(segments, [2]orb.Point{op1, op2})
	}

	result = append(result, segments[0][0])
	for i := 1; i < len(segments); i++ {
		seg1 := segments[i-1]
		seg2 := segments[i]
		intersection, err := intersect(seg1[0], seg1[1], seg2[0], seg2[1])
		if err != nil {
			continue
		}
		result = append(result, intersection)
	}
	result = append(result, segments[len(segments)-1][1])
	return result
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(line orb.LineString) orb.LineString {
	inputLen := len(line)
	output := make(orb.LineString, inputLen)
	for i, pt := range line {
		output[inputLen-i-1] = pt
	}
	return output
}

// dedupLine drops points equal to the previous one. Returns new slice
func dedupLine(line orb.LineString) orb.LineString {
	output := make(orb.LineString, 0, len(line))
	for i, pt := range line {
		if i > 0 && pt.Equal(line[i-1]) {
			continue
		}
		output = append(output, pt)
	}
	return output
}

// roundLine rounds every coordinate to given number of digits. Returns new slice
func roundLine(line orb.LineString, digits int) orb.LineString {
	output := make(orb.LineString, len(line))
	for i, pt := range line {
		output[i] = orb.Point{roundTo(pt.X(), digits), roundTo(pt.Y(), digits)}
	}
	return output
}
