package permission

import "go.uber.org/zap"

// Resolver wraps the table lookups with a logger so roles that resolve to zero
// actions are visible in logs. The result is unchanged: a missing mapping is
// still the empty set.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a Resolver. logger may be nil.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// AllForTypedRole returns the actions for a typed role, logging empty resolutions.
func (r *Resolver) AllForTypedRole(tr TypedRole) []Action {
	actions := AllForTypedRole(tr)
	if len(actions) == 0 {
		r.logger.Warn("role resolves to no permissions",
			zap.String("role", string(tr.Role)),
			zap.String("scope", string(tr.Scope)),
		)
	}
	return actions
}

// AnyHas reports whether any typed role grants the action, logging the denial
// with enough context to spot unintentionally-empty role mappings.
func (r *Resolver) AnyHas(roles []TypedRole, action Action) bool {
	if AnyHas(roles, action) {
		return true
	}
	fields := make([]zap.Field, 0, 2)
	fields = append(fields, zap.String("action", string(action)))
	names := make([]string, 0, len(roles))
	for _, tr := range roles {
		names = append(names, string(tr.Scope)+"/"+string(tr.Role))
	}
	fields = append(fields, zap.Strings("roles", names))
	r.logger.Debug("permission denied", fields...)
	return false
}

// AllForTypedRoles returns the deduplicated union of actions across roles.
func (r *Resolver) AllForTypedRoles(roles []TypedRole) []Action {
	return AllForTypedRoles(roles)
}
