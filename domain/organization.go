package domain

// Organization is a tenant node. Organizations form a forest through ParentID;
// the directory that owns them keeps the hierarchy acyclic.
type Organization struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

func (o *Organization) IsRoot() bool {
	return o != nil && o.ParentID == ""
}
