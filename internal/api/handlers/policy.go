package handlers

import (
	"net/http"

	"github.com/wonny/warroom/internal/policy"
)

// PolicyHandler exposes the active thresholds
type PolicyHandler struct {
	policy *policy.Policy
	hash   string
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(p *policy.Policy) *PolicyHandler {
	return &PolicyHandler{
		policy: p,
		hash:   policy.MustHash(p),
	}
}

// GetPolicy returns the policy and its hash
// GET /api/policy
func (h *PolicyHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"policy": h.policy,
		"hash":   h.hash,
	})
}
