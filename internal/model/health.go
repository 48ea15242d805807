package model

import (
	"log/slog"
	"sync"

	"github.com/udisondev/arena/internal/event"
)

// Health — очки здоровья одного агента и переходы урон/лечение/смерть.
//
// Invariant: 0 <= current <= max, max >= 1. Died is published at most once
// per life; only SetMax with refill re-arms it.
type Health struct {
	ownerID uint32
	current int
	max     int

	// deathFired blocks repeated died notifications until the next refill.
	deathFired bool

	pub event.Publisher

	mu sync.RWMutex
}

// NewHealth создаёт Health с current = max (max clamp >= 1).
// pub may be nil; notifications are then dropped.
func NewHealth(ownerID uint32, maxHP int, pub event.Publisher) *Health {
	maxHP = max(maxHP, 1)
	return &Health{
		ownerID: ownerID,
		current: maxHP,
		max:     maxHP,
		pub:     pub,
	}
}

// OwnerID returns ID of the owning entity (event source).
func (h *Health) OwnerID() uint32 {
	return h.ownerID
}

// Current возвращает текущее HP.
func (h *Health) Current() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Max возвращает максимальное HP.
func (h *Health) Max() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.max
}

// IsAlive проверяет HP > 0.
func (h *Health) IsAlive() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current > 0
}

// Normalized возвращает долю текущего HP (0.0 - 1.0).
func (h *Health) Normalized() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return float64(h.current) / float64(h.max)
}

// TakeDamage reduces HP. Ignored when amount <= 0 or already dead.
func (h *Health) TakeDamage(amount int) {
	h.mu.Lock()
	if amount <= 0 || h.current <= 0 {
		h.mu.Unlock()
		slog.Debug("damage ignored",
			"owner", h.ownerID,
			"amount", amount)
		return
	}

	before := h.current
	h.current = max(0, h.current-amount)
	current, maxHP := h.current, h.max
	died := h.markDeath()
	h.mu.Unlock()

	slog.Debug("damage taken",
		"owner", h.ownerID,
		"amount", amount,
		"before", before,
		"after", current,
		"max", maxHP)

	h.publishChanged(current, maxHP)
	if died {
		h.publishDied()
	}
}

// Heal restores HP up to max. Ignored when amount <= 0 or dead.
func (h *Health) Heal(amount int) {
	h.mu.Lock()
	if amount <= 0 || h.current <= 0 {
		h.mu.Unlock()
		return
	}

	h.current = min(h.max, h.current+amount)
	current, maxHP := h.current, h.max
	h.mu.Unlock()

	h.publishChanged(current, maxHP)
}

// SetMax устанавливает максимальное HP (clamp >= 1).
// refill sets current to the new max and re-arms the death transition;
// otherwise current is clamped into [0, newMax].
func (h *Health) SetMax(newMax int, refill bool) {
	h.mu.Lock()
	h.max = max(1, newMax)
	if refill {
		h.current = h.max
		h.deathFired = false
	}
	h.current = min(max(h.current, 0), h.max)
	current, maxHP := h.current, h.max
	died := h.markDeath()
	h.mu.Unlock()

	slog.Debug("max HP set",
		"owner", h.ownerID,
		"max", maxHP,
		"current", current,
		"refill", refill)

	h.publishChanged(current, maxHP)
	if died {
		h.publishDied()
	}
}

// markDeath returns true exactly once per life when current is 0.
// Caller must hold h.mu.
func (h *Health) markDeath() bool {
	if h.current > 0 || h.deathFired {
		return false
	}
	h.deathFired = true
	return true
}

func (h *Health) publishChanged(current, maxHP int) {
	if h.pub == nil {
		return
	}
	h.pub.Publish(event.Event{
		Type:    event.TypeHealthChanged,
		Source:  h.ownerID,
		Current: current,
		Max:     maxHP,
	})
}

func (h *Health) publishDied() {
	slog.Debug("died", "owner", h.ownerID)
	if h.pub == nil {
		return
	}
	h.pub.Publish(event.Event{
		Type:   event.TypeDied,
		Source: h.ownerID,
	})
}
