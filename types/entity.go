package types

import "time"

// Entity is the base type for persisted Stipend records. It carries
// store-level bookkeeping timestamps, distinct from the domain clock
// readings (RegisteredAt, LastMetricsUpdate) that the reward rules use.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates a new Entity with current timestamps.
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp to now.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}
