package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/search"
)

var (
	docsPages  int
	docsAmount bool

	uploadTitle   string
	uploadSenders []string
	uploadTags    []string
	uploadAmount  float64
	uploadInvoice string
)

var docsCmd = &cobra.Command{
	Use:   "docs [term]",
	Short: "Search documents by title",
	Long: `Search the documents stored in MyDMS by title, newest first. An empty
term lists all documents. Results are paged; --pages requests more than one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		showAmount := docsAmount || env.cfg.ShowAmount

		ctrl := search.NewController(search.Params[model.Document]{
			Fetch:    search.DocumentFetcher(env.client, func() bool { return showAmount }),
			PageSize: env.cfg.PageSize,
			Reporter: env.reporter,
			Logger:   logger.Named("documents"),
		})
		defer ctrl.Close()

		ctx := cmd.Context()
		state, err := ctrl.Search(ctx, term, 0)
		for i := 1; err == nil && i < docsPages && state.HasMore(); i++ {
			state, err = ctrl.ShowMore(ctx)
		}
		if err != nil {
			return reported(err)
		}

		printDocuments(env.out, state.Items, showAmount)
		footer := fmt.Sprintf("%d of %d documents", len(state.Items), state.TotalEntries)
		if state.HasMore() {
			footer += ", use --pages for more"
		}
		fmt.Fprintln(env.out, dimStyle.Render(footer))
		return nil
	},
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file and save it as a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := filepath.Base(args[0])
		title := uploadTitle
		if title == "" {
			title = strings.TrimSuffix(name, filepath.Ext(name))
		}
		draft := model.DocumentDraft{
			Title:         title,
			FileName:      name,
			Amount:        uploadAmount,
			Tags:          uploadTags,
			Senders:       uploadSenders,
			InvoiceNumber: uploadInvoice,
		}
		if len(draft.Senders) == 0 {
			return apperr.Validation("at least one --sender is required")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		ctx := cmd.Context()
		fmt.Fprintln(env.errOut, dimStyle.Render("Uploading "+name+"..."))
		upload, err := env.client.UploadFile(ctx, name, f)
		if err != nil {
			return env.fail(err)
		}
		draft.UploadFileToken = upload.Token

		if _, err := env.client.SaveDocument(ctx, draft); err != nil {
			return env.fail(err)
		}
		env.reporter.Succeed("Saved " + draft.Title)
		return nil
	},
}

func init() {
	docsCmd.Flags().IntVar(&docsPages, "pages", 1, "Number of result pages to fetch")
	docsCmd.Flags().BoolVar(&docsAmount, "amount", false, "Show document amounts")

	docsUploadCmd.Flags().StringVar(&uploadTitle, "title", "", "Document title (default file name)")
	docsUploadCmd.Flags().StringSliceVar(&uploadSenders, "sender", nil, "Sender, repeatable")
	docsUploadCmd.Flags().StringSliceVar(&uploadTags, "tag", nil, "Tag, repeatable")
	docsUploadCmd.Flags().Float64Var(&uploadAmount, "amount", 0, "Invoice amount")
	docsUploadCmd.Flags().StringVar(&uploadInvoice, "invoice", "", "Invoice number")

	docsCmd.AddCommand(docsUploadCmd)
}
