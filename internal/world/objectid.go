package world

import "sync/atomic"

// ObjectIDGenerator generates unique object IDs for arena entities.
//
// ID ranges (convention):
//
//	0x00000000:              invalid / event.AnySource
//	0x10000000 - 0x1FFFFFFF: players
//	0x20000000 - 0x2FFFFFFF: enemies
//	0x30000000 - 0x3FFFFFFF: props and extra hurtboxes
type ObjectIDGenerator struct {
	nextPlayerID atomic.Uint32
	nextEnemyID  atomic.Uint32
	nextPropID   atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
// One generator per session; IDs restart on session reload.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextPlayerID.Store(0x10000000)
	gen.nextEnemyID.Store(0x20000000)
	gen.nextPropID.Store(0x30000000)
	return gen
}

// NextPlayerID generates next unique player object ID.
func (g *ObjectIDGenerator) NextPlayerID() uint32 {
	return g.nextPlayerID.Add(1)
}

// NextEnemyID generates next unique enemy object ID.
func (g *ObjectIDGenerator) NextEnemyID() uint32 {
	return g.nextEnemyID.Add(1)
}

// NextPropID generates next unique prop/hurtbox object ID.
func (g *ObjectIDGenerator) NextPropID() uint32 {
	return g.nextPropID.Add(1)
}

// IsPlayerID reports whether id is in the player range.
func IsPlayerID(id uint32) bool {
	return id >= 0x10000000 && id < 0x20000000
}

// IsEnemyID reports whether id is in the enemy range.
func IsEnemyID(id uint32) bool {
	return id >= 0x20000000 && id < 0x30000000
}
