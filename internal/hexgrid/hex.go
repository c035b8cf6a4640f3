// Package hexgrid provides axial hex coordinate math for the world map.
// Flat-top orientation; pixel projection follows the Red Blob Games layout.
package hexgrid

import (
	"fmt"
	"math"
)

// Size is the distance from a hex centre to any corner, in pixels.
const Size = 20

// Coord is a position on the hex grid in axial coordinates.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Add returns the component-wise sum of two coordinates.
func Add(a, b Coord) Coord {
	return Coord{Q: a.Q + b.Q, R: a.R + b.R}
}

// Key returns the canonical "q,r" string form, suitable as a map key.
func Key(c Coord) string {
	return fmt.Sprintf("%d,%d", c.Q, c.R)
}

// Point is a Cartesian pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToPixel projects a flat-top axial coordinate to pixel space:
//
//	x = size * 3/2 * q
//	y = size * sqrt(3) * (r + q/2)
func ToPixel(c Coord) Point {
	return Point{
		X: Size * 1.5 * float64(c.Q),
		Y: Size * math.Sqrt(3) * (float64(c.R) + float64(c.Q)/2),
	}
}

// Directions lists the six unit neighbor offsets in fixed order:
// E, NE, NW, W, SW, SE. The order is load-bearing — biome voting and
// hex reveal walk neighbors in this sequence.
var Directions = [6]Coord{
	{Q: 1, R: 0},   // E
	{Q: 0, R: -1},  // NE
	{Q: -1, R: -1}, // NW
	{Q: -1, R: 0},  // W
	{Q: 0, R: 1},   // SW
	{Q: 1, R: 1},   // SE
}

// Neighbors returns the six adjacent coordinates in Directions order.
func (c Coord) Neighbors() [6]Coord {
	var result [6]Coord
	for i, dir := range Directions {
		result[i] = Add(c, dir)
	}
	return result
}
