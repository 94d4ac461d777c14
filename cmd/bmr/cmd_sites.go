package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/model"
)

var sitesPerms []string

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the sites you may access",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, err := env.client.UserSites(cmd.Context())
		if err != nil {
			return env.fail(err)
		}

		header := "Sites of " + sites.User
		if sites.Editable {
			header += " " + dimStyle.Render("(editable)")
		}
		fmt.Fprintln(env.out, titleStyle.Render(header))
		if len(sites.Sites) == 0 {
			fmt.Fprintln(env.out, dimStyle.Render("  (none)"))
			return nil
		}
		for _, s := range sites.Sites {
			fmt.Fprintf(env.out, "%s  %s  %s\n", s.Name, urlStyle.Render(s.URL),
				dimStyle.Render(strings.Join(s.Permissions, ", ")))
		}
		return nil
	},
}

var sitesAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add or replace a site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		site := model.SiteInfo{Name: args[0], URL: args[1], Permissions: sitesPerms}
		return editSites(cmd, func(sites []model.SiteInfo, i int) ([]model.SiteInfo, error) {
			if i >= 0 {
				sites[i] = site
				return sites, nil
			}
			return append(sites, site), nil
		}, args[0], "Saved site "+args[0])
	},
}

var sitesRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSites(cmd, func(sites []model.SiteInfo, i int) ([]model.SiteInfo, error) {
			if i < 0 {
				return nil, apperr.Validation("no site named %q", args[0])
			}
			return slices.Delete(sites, i, i+1), nil
		}, args[0], "Removed site "+args[0])
	},
}

// editSites loads the sites, applies change to the site named name (index -1
// when missing) and saves the result.
func editSites(cmd *cobra.Command, change func([]model.SiteInfo, int) ([]model.SiteInfo, error), name, done string) error {
	ctx := cmd.Context()
	current, err := env.client.UserSites(ctx)
	if err != nil {
		return env.fail(err)
	}
	if !current.Editable {
		return env.fail(apperr.Validation("%s may not edit sites", current.User))
	}

	sites, err := change(current.Sites, current.IndexOf(name))
	if err != nil {
		return env.fail(err)
	}
	if err := env.client.SaveUserSites(ctx, sites); err != nil {
		return env.fail(err)
	}
	env.reporter.Succeed(done)
	return nil
}

func init() {
	sitesAddCmd.Flags().StringSliceVar(&sitesPerms, "perm", nil, "Permission, repeatable")

	sitesCmd.AddCommand(sitesAddCmd, sitesRmCmd)
}
