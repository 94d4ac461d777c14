package model

const adminRole = "Admin"

// Identity is the cached "who am I" information of the logged-in user.
type Identity struct {
	Authenticated bool     `json:"authenticated"`
	UserID        string   `json:"userId"`
	UserName      string   `json:"userName"`
	DisplayName   string   `json:"displayName"`
	Email         string   `json:"email"`
	Roles         []string `json:"roles"`
}

// IsAdmin returns true if the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	for _, r := range i.Roles {
		if r == adminRole {
			return true
		}
	}
	return false
}

// AppInfo describes the backend version and the user it answered for.
type AppInfo struct {
	UserInfo    Identity    `json:"userInfo"`
	VersionInfo VersionInfo `json:"versionInfo"`
}

// VersionInfo is the build information reported by the backend.
type VersionInfo struct {
	Version     string `json:"version"`
	BuildNumber string `json:"buildNumber"`
}
