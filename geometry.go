package driftsquares

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Point3 is a world-space coordinate.
type Point3 = mgl64.Vec3

// QuadVertexCount is the number of vertices a triangle-strip quad needs.
const QuadVertexCount = 4

// Vertex slots inside a Quad, in triangle-strip order.
const (
	UpperLeft = iota
	UpperRight
	BottomLeft
	BottomRight
)

// QuadTemplate holds the local corner offsets of every generated quad,
// a 0.25 unit square sitting at the bottom-left of clip space.
var QuadTemplate = [QuadVertexCount]Point3{
	UpperLeft:   {-1, -0.75, 0},
	UpperRight:  {-0.75, -0.75, 0},
	BottomLeft:  {-1, -1, 0},
	BottomRight: {-0.75, -1, 0},
}

// Quad is a square drawn as a 4 vertex triangle strip.
type Quad struct {
	ID       string
	Anchor   Point3
	Vertices [QuadVertexCount]Point3
}

// Translate shifts every vertex along X.
func (q *Quad) Translate(dx float64) {
	for i := range q.Vertices {
		q.Vertices[i][0] += dx
	}
}

// Origin recovers the translation applied to the template, using the
// bottom-left corner as reference.
func (q *Quad) Origin() Point3 {
	return q.Vertices[BottomLeft].Sub(QuadTemplate[BottomLeft])
}

// LocalOffsets returns each vertex relative to Origin.
func (q *Quad) LocalOffsets() [QuadVertexCount]Point3 {
	origin := q.Origin()
	var out [QuadVertexCount]Point3
	for i, v := range q.Vertices {
		out[i] = v.Sub(origin)
	}
	return out
}

// Scene is the ordered set of quads. Slice order is draw order.
type Scene struct {
	Quads []*Quad
}

func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Quads)
}
