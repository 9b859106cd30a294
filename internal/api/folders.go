package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// PDF processing states.
const (
	PDFStatusInQueue   = "INQUEUE"
	PDFStatusProcessed = "PROCESSED"
)

// DefaultFolderColor is the color new folders get when none is chosen.
const DefaultFolderColor = "bg-blue-500"

// FolderColors is the palette a folder color must come from.
var FolderColors = []string{
	"bg-blue-500",
	"bg-purple-500",
	"bg-green-500",
	"bg-orange-500",
	"bg-indigo-500",
	"bg-pink-500",
	"bg-teal-500",
	"bg-red-500",
}

// ValidFolderColor reports whether color is in FolderColors.
func ValidFolderColor(color string) bool {
	for _, c := range FolderColors {
		if c == color {
			return true
		}
	}
	return false
}

// FolderSummary is a folder entry in a listing.
type FolderSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"createdAt"` // unix seconds
	Color       string `json:"color"`
	PDFCount    int    `json:"pdfNum"`
}

// FolderList is one page of folders.
type FolderList struct {
	CurrentPage int             `json:"currentPage"`
	Folders     []FolderSummary `json:"folders"`
	TotalPages  int             `json:"totalPages"`
}

// PDF is a document inside a folder.
type PDF struct {
	ID         int    `json:"id"`
	FileName   string `json:"fileName"`
	URL        string `json:"url"`
	Status     string `json:"status"`
	TotalPages int    `json:"totalPages"`
	UploadedAt int64  `json:"uploadedAt"` // unix seconds
}

// Folder is a folder with its documents.
type Folder struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	PDFs        []PDF  `json:"pdfs"`
}

// FolderInput is the body for creating or updating a folder.
type FolderInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ListFolders calls GET /folder?page=&query=.
func (c *Client) ListFolders(ctx context.Context, page int, query string) (*FolderList, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("query", query)

	var list FolderList
	if err := c.doJSON(ctx, http.MethodGet, "/folder?"+params.Encode(), nil, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch folders: %w", err)
	}
	return &list, nil
}

// GetFolder calls GET /folder/:id.
func (c *Client) GetFolder(ctx context.Context, id string) (*Folder, error) {
	var folder Folder
	if err := c.doJSON(ctx, http.MethodGet, "/folder/"+url.PathEscape(id), nil, &folder); err != nil {
		return nil, fmt.Errorf("failed to fetch folder: %w", err)
	}
	return &folder, nil
}

// CreateFolder calls POST /folder.
func (c *Client) CreateFolder(ctx context.Context, in FolderInput) error {
	if err := c.doJSON(ctx, http.MethodPost, "/folder", in, nil); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

// UpdateFolder calls PUT /folder/:id.
func (c *Client) UpdateFolder(ctx context.Context, id int, in FolderInput) error {
	if err := c.doJSON(ctx, http.MethodPut, "/folder/"+strconv.Itoa(id), in, nil); err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	return nil
}

// DeleteFolder calls DELETE /folder/:id.
func (c *Client) DeleteFolder(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/folder/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}
