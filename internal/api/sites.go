package api

import (
	"context"
	"net/http"

	"github.com/nikbrunner/bmr/internal/model"
)

// UserSites returns the sites of the logged-in user.
func (c *Client) UserSites(ctx context.Context) (model.UserSites, error) {
	var sites model.UserSites
	err := c.do(ctx, request{method: http.MethodGet, url: c.sitesURL}, &sites)
	return sites, err
}

// SaveUserSites replaces the sites of the logged-in user. The backend only
// accepts it from users allowed to edit.
func (c *Client) SaveUserSites(ctx context.Context, sites []model.SiteInfo) error {
	if sites == nil {
		sites = []model.SiteInfo{}
	}
	return c.do(ctx, request{method: http.MethodPost, url: c.sitesURL, body: sites}, nil)
}
