package domain

import "strings"

var productionEnvs = map[string]struct{}{
	"production": {},
	"prod":       {},
}

// EnvironmentPolicy is the process-wide switch for the dev gateway.
type EnvironmentPolicy struct {
	Env            string
	DevAuthEnabled bool
}

// Production reports whether Env names a production-like deployment.
func (p EnvironmentPolicy) Production() bool {
	_, ok := productionEnvs[strings.ToLower(strings.TrimSpace(p.Env))]
	return ok
}

// Enabled reports whether the gateway may serve requests at all.
func (p EnvironmentPolicy) Enabled() bool {
	return !p.Production() && p.DevAuthEnabled
}
