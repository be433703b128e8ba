package entities

import (
	"strings"
	"testing"
)

func TestVector3_DistanceXZ(t *testing.T) {
	a := Vector3{X: 0, Y: 0, Z: 0}
	b := Vector3{X: 3, Y: 100, Z: 4}

	if got := a.DistanceXZ(b); got != 5 {
		t.Errorf("Expected distance 5, got %f", got)
	}

	// Y must not contribute
	c := Vector3{X: 0, Y: 42, Z: 0}
	if got := a.DistanceXZ(c); got != 0 {
		t.Errorf("Expected distance 0 regardless of height, got %f", got)
	}
}

func TestWorldSnapshot_Positions(t *testing.T) {
	snapshot := WorldSnapshot{
		Objects: map[string]ObjectState{
			"tree_1": {Position: Vector3{X: 1, Z: 2}},
			"rock_1": {Position: Vector3{X: -4, Z: 7}},
		},
	}

	positions := snapshot.Positions()
	if len(positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(positions))
	}

	empty := WorldSnapshot{}
	if len(empty.Positions()) != 0 {
		t.Error("Expected no positions for an empty snapshot")
	}
}

func TestNewObjectID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewObjectID("tree")
		if seen[id] {
			t.Fatalf("Duplicate object ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewObjectID_Format(t *testing.T) {
	id := NewObjectID("mushroom")

	if !strings.HasPrefix(id, "mushroom_") {
		t.Errorf("Expected ID to start with object type, got %s", id)
	}

	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		t.Errorf("Expected type, time and disambiguator parts, got %s", id)
	}
	if len(parts[2]) != 4 {
		t.Errorf("Expected 4-digit disambiguator, got %s", parts[2])
	}
}
