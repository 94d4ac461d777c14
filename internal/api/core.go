package api

import (
	"context"
	"net/http"

	"github.com/nikbrunner/bmr/internal/model"
)

// AppInfo returns backend version information.
func (c *Client) AppInfo(ctx context.Context) (model.AppInfo, error) {
	var info model.AppInfo
	err := c.do(ctx, request{method: http.MethodGet, url: c.coreURL + "/appinfo"}, &info)
	return info, err
}

// WhoAmI returns the identity the backend associates with the credentials.
func (c *Client) WhoAmI(ctx context.Context) (model.Identity, error) {
	var id model.Identity
	err := c.do(ctx, request{method: http.MethodGet, url: c.coreURL + "/whoami"}, &id)
	return id, err
}
