// Package treasury defines the singleton reward-pool state.
package treasury

import (
	"github.com/xraph/stipend/types"
)

// Treasury is the singleton administrative record: the authority identity,
// the shared reward-pool balance that funds claims, and the global pause
// flag. It is created exactly once and never destroyed.
type Treasury struct {
	types.Entity
	Authority  types.Identity `json:"authority"`
	RewardPool types.Balance  `json:"reward_pool"`
	Paused     bool           `json:"paused"`
}

// AdministeredBy reports whether the given identity is the authority.
func (t *Treasury) AdministeredBy(who types.Identity) bool {
	return t.Authority.Equal(who)
}

// Clone returns a deep copy of the treasury state.
func (t *Treasury) Clone() *Treasury {
	cp := *t
	return &cp
}
