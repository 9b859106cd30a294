package render

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/xiaot623/pdfchat/internal/api"
)

// FolderList prints one page of folders.
func FolderList(w io.Writer, list *api.FolderList) {
	st := newStyles(w)
	if len(list.Folders) == 0 {
		fmt.Fprintln(w, st.dim.Render("No folders."))
		return
	}

	t := newTable(st, "ID", "NAME", "PDFS", "CREATED")
	for _, f := range list.Folders {
		t.Row(strconv.Itoa(f.ID), f.Name, strconv.Itoa(f.PDFCount), since(f.CreatedAt))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, st.dim.Render(fmt.Sprintf("page %d of %d", list.CurrentPage, list.TotalPages)))
}

// Folder prints a folder and its documents.
func Folder(w io.Writer, f *api.Folder) {
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render(f.Name))
	if f.Description != "" {
		fmt.Fprintln(w, f.Description)
	}
	if len(f.PDFs) == 0 {
		fmt.Fprintln(w, st.dim.Render("No documents."))
		return
	}

	t := newTable(st, "ID", "FILE", "PAGES", "STATUS", "UPLOADED")
	for _, p := range f.PDFs {
		status := st.queued.Render(p.Status)
		if p.Status == api.PDFStatusProcessed {
			status = st.processed.Render(p.Status)
		}
		t.Row(strconv.Itoa(p.ID), p.FileName, strconv.Itoa(p.TotalPages), status, since(p.UploadedAt))
	}
	fmt.Fprintln(w, t.Render())
}

// User prints the signed-in user.
func User(w io.Writer, u *api.User) {
	st := newStyles(w)
	fmt.Fprintf(w, "%s %s\n", st.title.Render(u.Name), st.dim.Render("<"+u.Email+">"))
}

// Avatars prints the avatar catalog.
func Avatars(w io.Writer, avatars []api.Avatar) {
	st := newStyles(w)
	t := newTable(st, "ID", "NAME", "CATEGORY")
	for _, a := range avatars {
		t.Row(a.ID, a.Label, a.Category)
	}
	fmt.Fprintln(w, t.Render())
}

// Bytes formats a byte count for transfer summaries.
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func newTable(st styles, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.dim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func since(unix int64) string {
	if unix <= 0 {
		return "-"
	}
	return humanize.Time(time.Unix(unix, 0))
}
