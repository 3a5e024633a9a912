// Package permission answers "may this role perform that action" from static
// lookup tables. It is pure: no storage, no errors, no side effects. A missing
// mapping always resolves to the empty action set, so unknown or unmapped roles
// fail closed and the caller decides how to reject.
package permission

// Role is a stored permission level, shared across resource scopes.
type Role string

// Stored role values. The same literal can grant different capabilities
// depending on the scope it applies to.
const (
	RoleOwner        Role = "OWNER"
	RoleAdmin        Role = "ADMIN"
	RoleEditor       Role = "EDITOR"
	RoleLeadReviewer Role = "LEAD_REVIEWER"
	RoleReviewer     Role = "REVIEWER"
)

// Scope is the resource granularity a role applies to.
type Scope string

// Resource scopes.
const (
	ScopeDocument        Scope = "document"
	ScopeDocumentVersion Scope = "document_version"
	ScopeNote            Scope = "note"
)

// TypedRole pairs a stored role with the scope it was granted at.
type TypedRole struct {
	Role  Role
	Scope Scope
}

// permissionRole is the composite key bridging a (scope, role) pair to its
// concrete action set. Two levels of indirection keep ADMIN-at-document and
// ADMIN-at-version as distinct capability sets.
type permissionRole string

const (
	documentOwner        permissionRole = "document_owner"
	documentAdmin        permissionRole = "document_admin"
	documentEditor       permissionRole = "document_editor"
	documentLeadReviewer permissionRole = "document_lead_reviewer"
	documentReviewer     permissionRole = "document_reviewer"
	versionOwner         permissionRole = "version_owner"
	versionAdmin         permissionRole = "version_admin"
	versionEditor        permissionRole = "version_editor"
	versionLeadReviewer  permissionRole = "version_lead_reviewer"
	versionReviewer      permissionRole = "version_reviewer"
	noteOwner            permissionRole = "note_owner"
	noteAdmin            permissionRole = "note_admin"
	noteEditor           permissionRole = "note_editor"
)

// Action is an enumerated capability gated by the resolver.
type Action string

// Gated actions.
const (
	ActionRenameDocument        Action = "rename_document"
	ActionDeleteDocument        Action = "delete_document"
	ActionShareDocument         Action = "share_document"
	ActionCreateDocumentVersion Action = "create_document_version"
	ActionRenameDocumentVersion Action = "rename_document_version"
	ActionDeleteDocumentVersion Action = "delete_document_version"
	ActionPublishDocumentVersion Action = "publish_document_version"
	ActionEditDocumentVersion   Action = "edit_document_version"
	ActionEditNote              Action = "edit_note"
	ActionDeleteNote            Action = "delete_note"
)

// scopedRoles maps each scope to the roles it recognizes. Note scope only
// recognizes OWNER/ADMIN/EDITOR; granting REVIEWER on a note resolves to nothing.
var scopedRoles = map[Scope]map[Role]permissionRole{
	ScopeDocument: {
		RoleOwner:        documentOwner,
		RoleAdmin:        documentAdmin,
		RoleEditor:       documentEditor,
		RoleLeadReviewer: documentLeadReviewer,
		RoleReviewer:     documentReviewer,
	},
	ScopeDocumentVersion: {
		RoleOwner:        versionOwner,
		RoleAdmin:        versionAdmin,
		RoleEditor:       versionEditor,
		RoleLeadReviewer: versionLeadReviewer,
		RoleReviewer:     versionReviewer,
	},
	ScopeNote: {
		RoleOwner:  noteOwner,
		RoleAdmin:  noteAdmin,
		RoleEditor: noteEditor,
	},
}

// roleActions maps a permissionRole to the actions it grants.
// The reviewer permission roles deliberately have no entry here: they resolve
// through the first table but grant nothing. Kept as-is; the Resolver logs the
// miss so the omission stays visible.
var roleActions = map[permissionRole][]Action{
	documentOwner: {
		ActionRenameDocument, ActionDeleteDocument, ActionShareDocument,
		ActionCreateDocumentVersion, ActionRenameDocumentVersion,
		ActionDeleteDocumentVersion, ActionPublishDocumentVersion,
		ActionEditDocumentVersion, ActionEditNote, ActionDeleteNote,
	},
	documentAdmin: {
		ActionRenameDocument, ActionShareDocument,
		ActionCreateDocumentVersion, ActionRenameDocumentVersion,
		ActionDeleteDocumentVersion, ActionPublishDocumentVersion,
		ActionEditDocumentVersion, ActionEditNote, ActionDeleteNote,
	},
	documentEditor: {
		ActionCreateDocumentVersion, ActionEditDocumentVersion, ActionEditNote,
	},
	versionOwner: {
		ActionRenameDocumentVersion, ActionDeleteDocumentVersion,
		ActionPublishDocumentVersion, ActionEditDocumentVersion,
	},
	versionAdmin: {
		ActionRenameDocumentVersion, ActionPublishDocumentVersion,
		ActionEditDocumentVersion,
	},
	versionEditor: {
		ActionEditDocumentVersion,
	},
	noteOwner: {
		ActionEditNote, ActionDeleteNote,
	},
	noteAdmin: {
		ActionEditNote, ActionDeleteNote,
	},
	noteEditor: {
		ActionEditNote,
	},
}

// AllForTypedRole returns every action the typed role grants.
// Either lookup missing yields an empty slice, never an error.
func AllForTypedRole(tr TypedRole) []Action {
	pr, ok := scopedRoles[tr.Scope][tr.Role]
	if !ok {
		return nil
	}
	actions, ok := roleActions[pr]
	if !ok {
		return nil
	}
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// Has reports whether the typed role grants the action.
func Has(tr TypedRole, action Action) bool {
	for _, a := range AllForTypedRole(tr) {
		if a == action {
			return true
		}
	}
	return false
}

// AnyHas reports whether any of the typed roles grants the action.
// A user holding both a document-level and a version-level grant passes if
// either one suffices.
func AnyHas(roles []TypedRole, action Action) bool {
	for _, tr := range roles {
		if Has(tr, action) {
			return true
		}
	}
	return false
}

// AllForTypedRoles returns the deduplicated union of actions across roles.
func AllForTypedRoles(roles []TypedRole) []Action {
	seen := make(map[Action]struct{})
	var out []Action
	for _, tr := range roles {
		for _, a := range AllForTypedRole(tr) {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
