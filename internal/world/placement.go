package world

import (
	"math/rand"

	"github.com/mvanryn/worldweaver/domain/entities"
)

// Bounds is the rectangular region of the ground plane where objects may be placed
type Bounds struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// Placer chooses non-colliding ground positions for new objects by rejection
// sampling. It is not safe for concurrent use; the pipeline is its only caller.
type Placer struct {
	bounds      Bounds
	minDistance float64
	maxAttempts int
	rng         *rand.Rand
}

func NewPlacer(bounds Bounds, minDistance float64, maxAttempts int, rng *rand.Rand) *Placer {
	return &Placer{
		bounds:      bounds,
		minDistance: minDistance,
		maxAttempts: maxAttempts,
		rng:         rng,
	}
}

// ChoosePosition draws uniform candidates within the bounds until one is at
// least minDistance away from every existing position in the ground plane.
// If no candidate qualifies within maxAttempts the last-drawn candidate is
// returned anyway: placement degrades rather than blocks.
func (p *Placer) ChoosePosition(existing []entities.Vector3) entities.Vector3 {
	if len(existing) == 0 {
		return p.sample()
	}

	var candidate entities.Vector3
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		candidate = p.sample()
		if p.clearOf(candidate, existing) {
			return candidate
		}
	}
	return candidate
}

func (p *Placer) sample() entities.Vector3 {
	return entities.Vector3{
		X: p.bounds.MinX + p.rng.Float64()*(p.bounds.MaxX-p.bounds.MinX),
		Y: 0,
		Z: p.bounds.MinZ + p.rng.Float64()*(p.bounds.MaxZ-p.bounds.MinZ),
	}
}

func (p *Placer) clearOf(candidate entities.Vector3, existing []entities.Vector3) bool {
	for _, pos := range existing {
		if candidate.DistanceXZ(pos) < p.minDistance {
			return false
		}
	}
	return true
}
