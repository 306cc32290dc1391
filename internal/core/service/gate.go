package service

import (
	"fmt"

	"github.com/bandq/devconsole/internal/core/domain"
)

// Gate is the policy and allowlist check shared by every dev console operation.
// It is built once at startup and only read afterwards.
type Gate struct {
	Policy    domain.EnvironmentPolicy
	Allowlist domain.Allowlist
}

// NewGate returns a Gate for the given policy and allowlist.
func NewGate(policy domain.EnvironmentPolicy, allowlist domain.Allowlist) Gate {
	return Gate{Policy: policy, Allowlist: allowlist}
}

// Admit runs the environment check first so that nothing about the caller
// is evaluated on a disabled deployment.
func (g Gate) Admit(caller *domain.Caller) error {
	if !g.Policy.Enabled() {
		return fmt.Errorf("%w: dev console is disabled", domain.ErrForbidden)
	}
	if caller == nil || caller.ID == "" {
		return domain.ErrUnauthenticated
	}
	if !g.Allowlist.Authorizes(caller) {
		return fmt.Errorf("%w: caller %s is not allowlisted", domain.ErrForbidden, caller.ID)
	}
	return nil
}
