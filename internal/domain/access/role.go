package access

type Role string

const (
	// Platform
	RoleSuperAdmin  Role = "super_admin"
	RoleSystemAdmin Role = "system_admin"

	// Institution level
	RoleInstitutionAdmin Role = "institution_admin"
	RoleOfficer          Role = "officer"
	RoleStudent          Role = "student"

	// Meta staff (company level)
	RoleCEO        Role = "ceo"
	RoleMD         Role = "md"
	RoleAGM        Role = "agm"
	RoleGM         Role = "gm"
	RoleManager    Role = "manager"
	RoleAdminStaff Role = "admin_staff"
)

var knownRoles = map[Role]struct{}{
	RoleSuperAdmin: {}, RoleSystemAdmin: {}, RoleInstitutionAdmin: {}, RoleOfficer: {},
	RoleStudent: {}, RoleCEO: {}, RoleMD: {}, RoleAGM: {}, RoleGM: {}, RoleManager: {},
	RoleAdminStaff: {},
}

func (r Role) IsValid() bool {
	_, ok := knownRoles[r]
	return ok
}

// IsMetaStaff reports whether the role belongs to company-level staff.
func (r Role) IsMetaStaff() bool {
	switch r {
	case RoleCEO, RoleMD, RoleAGM, RoleGM, RoleManager, RoleAdminStaff:
		return true
	}
	return false
}

// Principal is the authenticated caller as read from the access token.
type Principal struct {
	UserID          string
	Email           string
	Role            Role
	InstitutionID   *string
	OfficerID       *string
	AllowedFeatures []Feature
}

// ActorID returns the officer id when the caller is an officer, otherwise the user id.
func (p Principal) ActorID() string {
	if p.OfficerID != nil && *p.OfficerID != "" {
		return *p.OfficerID
	}
	return p.UserID
}

// InInstitution reports whether the caller is scoped to the given institution.
func (p Principal) InInstitution(institutionID string) bool {
	return p.InstitutionID != nil && *p.InstitutionID == institutionID
}
