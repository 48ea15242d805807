package combat

import (
	"github.com/udisondev/arena/internal/model"
)

// IsInEngageRange reports whether target is within the profile's engage
// distance of attacker on the movement plane.
func IsInEngageRange(attacker, target *model.WorldObject, profile model.AttackProfile) bool {
	if attacker == nil || target == nil {
		return false
	}
	return attacker.Location().PlanarDistance(target.Location()) <= profile.EngageDistance
}

// CanTarget reports whether target is a live entity matching the profile's
// target filter.
func CanTarget(target *model.WorldObject, profile model.AttackProfile) bool {
	if target == nil {
		return false
	}
	return target.Category().Has(profile.TargetFilter) && target.IsAlive()
}
