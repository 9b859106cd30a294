package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// UploadPDF calls POST /pdf/upload/:folderID with the file at path in the
// multipart field "file".
func (c *Client) UploadPDF(ctx context.Context, folderID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/pdf/upload/"+folderID, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	resp.Body.Close()
	return nil
}

// DeletePDF calls DELETE /pdf/:id.
func (c *Client) DeletePDF(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/pdf/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete pdf: %w", err)
	}
	return nil
}

// DownloadPDF calls GET /pdf/download/:id and copies the document into w.
func (c *Client) DownloadPDF(ctx context.Context, id int, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/pdf/download/"+strconv.Itoa(id), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download pdf: %w", err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to download pdf: %w", err)
	}
	return n, nil
}
