package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nikbrunner/bmr/internal/culler"
	"github.com/nikbrunner/bmr/internal/exporter"
	"github.com/nikbrunner/bmr/internal/folderpath"
	"github.com/nikbrunner/bmr/internal/importer"
	"github.com/nikbrunner/bmr/internal/resolver"
)

var (
	checkAll bool

	exportOut         string
	exportConcurrency int
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check the links of a folder for dead targets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := folderpath.Root
		if len(args) == 1 {
			path = args[0]
		}
		ctx := cmd.Context()
		view, err := env.resolver.Resolve(ctx, resolver.PathParam(path))
		if err != nil {
			return reported(err)
		}

		results, err := culler.Check(ctx, view.Items, culler.Params{
			Concurrency:    env.cfg.CheckConcurrency,
			ExcludeDomains: env.cfg.CullExcludeDomains,
			OnProgress: func(completed, total int) {
				fmt.Fprintf(env.errOut, "\rChecking %d/%d", completed, total)
			},
		})
		if len(view.Items) > 0 {
			fmt.Fprintln(env.errOut)
		}
		if err != nil {
			return err
		}

		bad := 0
		for _, r := range results {
			if r.Status == culler.Healthy && !checkAll {
				continue
			}
			if r.Status != culler.Healthy {
				bad++
			}
			detail := r.Error
			if r.StatusCode != 0 {
				detail = fmt.Sprintf("%d", r.StatusCode)
			}
			fmt.Fprintf(env.out, "%3d %-11s %s  %s %s\n",
				r.Bookmark.Position, r.Status, r.Bookmark.DisplayName,
				urlStyle.Render(r.Bookmark.URL), dimStyle.Render(detail))
		}
		fmt.Fprintf(env.out, "%d of %d links need attention\n", bad, len(results))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file> [path]",
	Short: "Import bookmarks from an HTML file",
	Long: `Import bookmarks from a Netscape bookmark HTML file (as exported by
browsers) into the folder at [path], the root by default.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := folderpath.Root
		if len(args) == 2 {
			base = args[1]
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		items, err := importer.ParseHTML(f, base)
		if err != nil {
			return fmt.Errorf("failed to parse HTML: %w", err)
		}
		if len(items) == 0 {
			fmt.Fprintln(env.out, "No bookmarks found in file")
			return nil
		}

		res, err := importer.Push(cmd.Context(), env.client, items, logger.Named("import"))
		if err != nil {
			return env.fail(err)
		}
		fmt.Fprintf(env.out, "%s %d items", successStyle.Render("✓ Imported"), res.Created)
		if res.Skipped > 0 {
			fmt.Fprintf(env.out, ", %d skipped", res.Skipped)
		}
		fmt.Fprintln(env.out)
		if len(res.Failed) > 0 {
			for _, e := range res.Failed {
				fmt.Fprintln(env.errOut, errorStyle.Render("✗ "+e.Error()))
			}
			return reported(errors.Join(res.Failed...))
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export a folder tree to an HTML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := folderpath.Root
		if len(args) == 1 {
			root = args[0]
		}
		out := exportOut
		if out == "" {
			var err error
			if out, err = exporter.DefaultExportPath(); err != nil {
				return fmt.Errorf("failed to get export path: %w", err)
			}
		}

		tree, err := exporter.Walk(cmd.Context(), env.client, root, exportConcurrency)
		if err != nil {
			return env.fail(err)
		}
		if err := os.WriteFile(out, []byte(exporter.ExportHTML(tree)), 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}

		folders, links := tree.Count()
		logger.Debug("exported", zap.String("file", out), zap.Int("folders", folders), zap.Int("links", links))
		fmt.Fprintf(env.out, "%s %d folders and %d links to %s\n",
			successStyle.Render("✓ Exported"), folders, links, out)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user the backend associates with the token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := env.client.WhoAmI(cmd.Context())
		if err != nil {
			return env.fail(err)
		}

		cache, err := env.store.Load()
		if err == nil {
			cache.Identity = &id
			err = env.store.Save(cache)
		}
		if err != nil {
			logger.Warn("caching identity", zap.Error(err))
		}

		name := titleStyle.Render(id.DisplayName)
		if id.IsAdmin() {
			name += " " + starStyle.Render("admin")
		}
		fmt.Fprintf(env.out, "%s (%s)\n", name, id.UserName)
		if id.Email != "" {
			fmt.Fprintln(env.out, id.Email)
		}
		if len(id.Roles) > 0 {
			fmt.Fprintln(env.out, dimStyle.Render("roles: "+strings.Join(id.Roles, ", ")))
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the backend version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := env.client.AppInfo(cmd.Context())
		if err != nil {
			return env.fail(err)
		}
		fmt.Fprintf(env.out, "version %s (build %s)\n", info.VersionInfo.Version, info.VersionInfo.BuildNumber)
		fmt.Fprintf(env.out, "user    %s\n", info.UserInfo.DisplayName)
		fmt.Fprintf(env.out, "backend %s\n", env.cfg.BaseURL)
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "Also list healthy links")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default ~/Downloads/bookmarks-export-<date>.html)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", exporter.DefaultConcurrency, "Folders fetched at once")
}
