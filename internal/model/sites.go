package model

// UserSites lists the sites the logged-in user may access.
type UserSites struct {
	User     string     `json:"user"`
	Editable bool       `json:"editable"`
	Sites    []SiteInfo `json:"userSites"`
}

// SiteInfo is one site with the permissions granted on it.
type SiteInfo struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Permissions []string `json:"permissions"`
}

// IndexOf returns the position of the site with the given name, or -1.
func (u UserSites) IndexOf(name string) int {
	for i := range u.Sites {
		if u.Sites[i].Name == name {
			return i
		}
	}
	return -1
}
