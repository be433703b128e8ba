package entities

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Vector3 is a point or extent in world space. Y is up; the ground plane is y=0.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceXZ returns the Euclidean distance to other in the ground plane.
// Height is ignored because objects rest on the ground.
func (v Vector3) DistanceXZ(other Vector3) float64 {
	dx := v.X - other.X
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// ObjectState is a viewer's report of a single object in its scene.
type ObjectState struct {
	Position Vector3 `json:"position"`
}

// WorldSnapshot is one viewer's complete view of object positions, tagged with
// the correlation id and timestamp of the request it answers. A snapshot is
// installed wholesale; it is never merged with a previous one.
type WorldSnapshot struct {
	RequestID  string
	ReportedAt time.Time
	Objects    map[string]ObjectState
}

// Positions returns the object positions in the snapshot, in no particular order.
func (s WorldSnapshot) Positions() []Vector3 {
	positions := make([]Vector3, 0, len(s.Objects))
	for _, obj := range s.Objects {
		positions = append(positions, obj.Position)
	}
	return positions
}

// ObjectPlacement describes a newly generated asset and where it appears in
// the world. Immutable once built; it is broadcast exactly once.
type ObjectPlacement struct {
	ID       string
	Path     string
	Position Vector3
	Rotation Vector3
	Scale    Vector3
}

// NewObjectID builds a world-unique object identifier from the object type,
// a monotonic time component, and a random disambiguator. Uniqueness is
// practical, not cryptographic.
func NewObjectID(objectType string) string {
	return fmt.Sprintf("%s_%d_%04d", objectType, time.Now().UnixNano(), rand.Intn(9000)+1000)
}
