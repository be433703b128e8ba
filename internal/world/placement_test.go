package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvanryn/worldweaver/domain/entities"
)

func testBounds() Bounds {
	return Bounds{MinX: -10, MaxX: 10, MinZ: -10, MaxZ: 10}
}

func TestPlacer_EmptyWorldReturnsUniformSamples(t *testing.T) {
	placer := NewPlacer(testBounds(), 3, 10, rand.New(rand.NewSource(1)))

	first := placer.ChoosePosition(nil)
	second := placer.ChoosePosition(nil)

	for _, pos := range []entities.Vector3{first, second} {
		require.GreaterOrEqual(t, pos.X, -10.0)
		require.LessOrEqual(t, pos.X, 10.0)
		require.GreaterOrEqual(t, pos.Z, -10.0)
		require.LessOrEqual(t, pos.Z, 10.0)
		require.Zero(t, pos.Y, "objects are placed on the ground")
	}

	require.NotEqual(t, first, second, "consecutive samples should be independent")
}

func TestPlacer_RespectsMinDistance(t *testing.T) {
	// Plenty of attempts and a single obstacle: rejection sampling should
	// always find a clear spot well before exhausting its budget.
	placer := NewPlacer(testBounds(), 3, 1000, rand.New(rand.NewSource(42)))
	obstacle := entities.Vector3{X: 2, Y: 0, Z: 2}

	for i := 0; i < 100; i++ {
		pos := placer.ChoosePosition([]entities.Vector3{obstacle})
		require.GreaterOrEqual(t, pos.DistanceXZ(obstacle), 3.0,
			"placement %d landed inside the exclusion radius", i)
	}
}

func TestPlacer_SequenceOfPlacementsStaysSeparated(t *testing.T) {
	placer := NewPlacer(Bounds{MinX: -20, MaxX: 20, MinZ: -20, MaxZ: 20}, 2, 500, rand.New(rand.NewSource(7)))

	var placed []entities.Vector3
	for i := 0; i < 10; i++ {
		placed = append(placed, placer.ChoosePosition(placed))
	}

	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			require.GreaterOrEqual(t, placed[i].DistanceXZ(placed[j]), 2.0,
				"placements %d and %d are too close", i, j)
		}
	}
}

func TestPlacer_ExhaustedAttemptsDegradesGracefully(t *testing.T) {
	// An impossible constraint: nothing in a 20x20 region can be 1000 units
	// from the center. The placer must still return an in-bounds candidate.
	placer := NewPlacer(testBounds(), 1000, 10, rand.New(rand.NewSource(3)))
	center := entities.Vector3{}

	pos := placer.ChoosePosition([]entities.Vector3{center})

	require.GreaterOrEqual(t, pos.X, -10.0)
	require.LessOrEqual(t, pos.X, 10.0)
	require.GreaterOrEqual(t, pos.Z, -10.0)
	require.LessOrEqual(t, pos.Z, 10.0)
}
