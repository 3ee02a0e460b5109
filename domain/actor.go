package domain

// Actor is the authenticated caller. It is built from a verified credential
// and never from client-supplied request fields.
type Actor struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id"`
}

func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
func (a Actor) IsOwner() bool  { return a.Role == RoleOwner }
func (a Actor) IsViewer() bool { return a.Role == RoleViewer }

// InOrganization reports whether orgID is the actor's own organization.
func (a Actor) InOrganization(orgID string) bool {
	return orgID != "" && orgID == a.OrganizationID
}
