// Package permission persists per-document role grants as a hash keyed by user.
package permission

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/draftzero/draftzero/internal/domain"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
)

// store is the consumer interface for grants (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, key string) error
}

// grantDTO is the stored JSON shape of one typed role.
type grantDTO struct {
	Role  string `json:"role"`
	Scope string `json:"scope"`
}

// Repo stores role grants per document. One hash per document, one field per
// user, the field value a JSON array of typed roles.
type Repo struct {
	store store
}

// New creates a grants repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Grant replaces a user's typed roles on a document.
func (r *Repo) Grant(ctx context.Context, documentID, userID string, roles []domperm.TypedRole) error {
	dtos := make([]grantDTO, 0, len(roles))
	for _, tr := range roles {
		dtos = append(dtos, grantDTO{Role: string(tr.Role), Scope: string(tr.Scope)})
	}
	data, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("marshal grants: %w", err)
	}

	key := grantsKey(documentID)
	if err := r.store.HSet(ctx, key, map[string]string{userID: string(data)}); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// RolesForUser returns the typed roles a user holds on a document.
// A user with no grants gets an empty slice, not an error.
func (r *Repo) RolesForUser(ctx context.Context, documentID, userID string) ([]domperm.TypedRole, error) {
	all, err := r.allGrants(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return all[userID], nil
}

// ListGrants returns every user's typed roles on a document.
func (r *Repo) ListGrants(ctx context.Context, documentID string) (map[string][]domperm.TypedRole, error) {
	return r.allGrants(ctx, documentID)
}

// Revoke removes all of a user's roles on a document.
func (r *Repo) Revoke(ctx context.Context, documentID, userID string) error {
	key := grantsKey(documentID)
	if err := r.store.HDel(ctx, key, userID); err != nil {
		return fmt.Errorf("hdel %s: %w", key, err)
	}
	return nil
}

// DeleteAll drops every grant on a document. Used when the document is deleted.
func (r *Repo) DeleteAll(ctx context.Context, documentID string) error {
	key := grantsKey(documentID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) allGrants(ctx context.Context, documentID string) (map[string][]domperm.TypedRole, error) {
	key := grantsKey(documentID)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}

	out := make(map[string][]domperm.TypedRole, len(fields))
	for userID, raw := range fields {
		var dtos []grantDTO
		if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
			return nil, fmt.Errorf("unmarshal grants for %s: %w", userID, err)
		}
		roles := make([]domperm.TypedRole, 0, len(dtos))
		for _, dto := range dtos {
			roles = append(roles, domperm.TypedRole{
				Role:  domperm.Role(dto.Role),
				Scope: domperm.Scope(dto.Scope),
			})
		}
		out[userID] = roles
	}
	return out, nil
}

func grantsKey(documentID string) string {
	return fmt.Sprintf("%sperm:doc:%s", domain.KeyPrefix, documentID)
}
