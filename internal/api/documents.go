package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/model"
)

// SearchDocuments returns one page of documents whose title matches.
func (c *Client) SearchDocuments(ctx context.Context, title string, limit, skip int) (DocumentPage, error) {
	q := url.Values{}
	q.Set("title", title)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))

	var page DocumentPage
	err := c.do(ctx, request{
		method: http.MethodGet,
		url:    c.mydmsURL + "/documents/search?" + q.Encode(),
	}, &page)
	return page, err
}

// UploadFile stores a file temporarily. It runs under the long-running
// ceiling.
func (c *Client) UploadFile(ctx context.Context, fileName string, r io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("close form: %w", err)
	}

	var res UploadResult
	err = c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.mydmsURL + "/upload/file",
		rawBody:     &buf,
		contentType: mw.FormDataContentType(),
		long:        true,
	}, &res)
	return res, err
}

// SaveDocument stores a document referencing a previous upload. The draft is
// validated locally before anything is sent; success=false is a backend
// error.
func (c *Client) SaveDocument(ctx context.Context, draft model.DocumentDraft) (Result, error) {
	if err := draft.Validate(); err != nil {
		return Result{}, apperr.Validation("%v", err)
	}
	return c.write(ctx, http.MethodPost, c.mydmsURL+"/documents", draft)
}
