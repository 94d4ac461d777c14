package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/folderpath"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/picker"
	"github.com/nikbrunner/bmr/internal/resolver"
	"github.com/nikbrunner/bmr/internal/sorter"
)

var (
	lsCached bool

	searchInteractive bool
	searchYank        bool
	searchOpen        bool

	addFolder bool

	editName      string
	editURL       string
	editPath      string
	editHighlight bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List the items of a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := folderpath.Root
		if len(args) == 1 {
			path = args[0]
		}
		if lsCached {
			return listCached(path)
		}
		view, err := env.resolver.Resolve(cmd.Context(), resolver.PathParam(path))
		if err != nil {
			return reported(err)
		}
		printView(env.out, view)
		return nil
	},
}

// listCached prints the listing stored by the last successful ls of path.
func listCached(path string) error {
	cache, err := env.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}
	f := cache.GetFolder(folderpath.Clean(path))
	if f == nil {
		return fmt.Errorf("no cached listing for %s", folderpath.Clean(path))
	}
	fmt.Fprintln(env.out, titleStyle.Render(f.Path)+"  "+dimStyle.Render("cached "+f.FetchedAt.Format("2006-01-02 15:04")))
	printListing(env.out, model.Listing(f.Items))
	return nil
}

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search bookmarks by name",
	Long: `Search bookmarks by display name. Results are ranked by fuzzy score.

With -i an interactive picker opens; the query is searched while typing.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if searchInteractive {
			return cobra.MaximumNArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.Join(args, " ")
		if searchInteractive {
			return runPicker(cmd, term)
		}

		view, err := env.resolver.Resolve(cmd.Context(), resolver.SearchParam(term))
		if err != nil {
			return reported(err)
		}
		printView(env.out, view)

		first := firstLink(view.Items)
		if first == nil {
			return nil
		}
		if searchYank {
			if err := clipboard.WriteAll(first.URL); err != nil {
				return fmt.Errorf("failed to copy URL: %w", err)
			}
			env.reporter.Succeed("Copied " + first.URL)
		}
		if searchOpen {
			openURL(env.client.FetchURL(first.ID))
		}
		return nil
	},
}

func firstLink(items model.Listing) *model.Bookmark {
	for i := range items {
		if !items[i].IsFolder() && items[i].URL != "" {
			return &items[i]
		}
	}
	return nil
}

func runPicker(cmd *cobra.Command, query string) error {
	p := picker.New(cmd.Context(), env.resolver.Search(), query)
	final, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	result := final.(picker.Picker)
	selected := result.SelectedBookmark()
	if result.Cancelled() || selected == nil {
		return nil
	}
	if selected.IsFolder() {
		fmt.Fprintln(env.out, folderpath.Join(selected.Path, selected.DisplayName))
		return nil
	}
	openURL(env.client.FetchURL(selected.ID))
	return nil
}

var mvCmd = &cobra.Command{
	Use:   "mv <path> <from> <to>",
	Short: "Move an item of a folder to another position",
	Long: `Move the item at position <from> of the folder to position <to>.
Positions are 1-based as printed by ls. The new order is written to the
backend; if it is rejected the previous order is kept.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := position(args[1])
		if err != nil {
			return err
		}
		to, err := position(args[2])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		view, err := env.resolver.Resolve(ctx, resolver.PathParam(args[0]))
		if err != nil {
			return reported(err)
		}

		ctrl := sorter.NewController(sorter.Params{
			Path:     view.Path,
			Items:    view.Items,
			Syncer:   env.client,
			Reporter: env.reporter,
			Logger:   logger.Named("sorter"),
		})
		defer ctrl.Detach()

		op, err := ctrl.Move(ctx, from-1, to-1)
		if err != nil {
			return env.fail(err)
		}
		if op != nil {
			if err := op.Wait(ctx); err != nil {
				return reported(err)
			}
		}
		printListing(env.out, ctrl.Items())
		return nil
	},
}

func position(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, apperr.Validation("invalid position %q", arg)
	}
	return n, nil
}

var addCmd = &cobra.Command{
	Use:   "add <path> <name> [url]",
	Short: "Add a bookmark or folder",
	Long: `Add a bookmark to the folder at <path>. With --folder a subfolder is
created instead and no URL is taken. Bookmarks added to the Read-Later
folder are highlighted.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if addFolder {
			return cobra.ExactArgs(2)(cmd, args)
		}
		return cobra.ExactArgs(3)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		params := model.NewBookmarkParams{
			Path:        folderpath.Clean(args[0]),
			DisplayName: args[1],
			Type:        model.NodeType,
		}
		if addFolder {
			params.Type = model.FolderType
		} else {
			params.URL = args[2]
			params.Highlight = env.resolver.IsReadLater(params.Path)
		}

		id, err := env.client.CreateBookmark(cmd.Context(), model.NewBookmark(params))
		if err != nil {
			return env.fail(err)
		}
		fmt.Fprintf(env.out, "%s %s\n", successStyle.Render("✓ Added"), id)

		if view, err := env.resolver.Reload(cmd.Context(), params.Path); err == nil {
			printView(env.out, view)
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the name, URL, folder or highlight of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := env.client.BookmarkByID(ctx, args[0])
		if err != nil {
			return env.fail(err)
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			b.DisplayName = editName
		}
		if flags.Changed("url") {
			b.URL = editURL
		}
		if flags.Changed("path") {
			b.Path = folderpath.Clean(editPath)
		}
		if flags.Changed("highlight") {
			b.Highlight = 0
			if editHighlight {
				b.Highlight = 1
			}
		}
		b.Normalize()

		if _, err := env.client.UpdateBookmark(ctx, b); err != nil {
			return env.fail(err)
		}
		env.reporter.Succeed("Updated " + b.DisplayName)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := env.client.DeleteBookmark(cmd.Context(), args[0]); err != nil {
			return env.fail(err)
		}
		env.reporter.Succeed("Deleted " + args[0])
		return nil
	},
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print every folder path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := env.client.AllPaths(cmd.Context())
		if err != nil {
			return env.fail(err)
		}
		for _, p := range paths {
			fmt.Fprintln(env.out, p)
		}
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top [n]",
	Short: "Show the most visited bookmarks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 10
		if len(args) == 1 {
			var err error
			if n, err = position(args[0]); err != nil {
				return err
			}
		}
		items, err := env.client.MostVisited(cmd.Context(), n)
		if err != nil {
			return env.fail(err)
		}
		items.Number()
		printListing(env.out, items)
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVar(&lsCached, "cached", false, "Print the last fetched listing without contacting the backend")

	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "Open the interactive picker")
	searchCmd.Flags().BoolVarP(&searchYank, "yank", "y", false, "Copy the URL of the first result")
	searchCmd.Flags().BoolVar(&searchOpen, "open", false, "Open the first result in the browser")

	addCmd.Flags().BoolVar(&addFolder, "folder", false, "Create a folder")

	editCmd.Flags().StringVar(&editName, "name", "", "New display name")
	editCmd.Flags().StringVar(&editURL, "url", "", "New URL")
	editCmd.Flags().StringVar(&editPath, "path", "", "Move to folder")
	editCmd.Flags().BoolVar(&editHighlight, "highlight", false, "Highlight the item")
}
