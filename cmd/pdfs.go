package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xiaot623/pdfchat/internal/logging"
	"github.com/xiaot623/pdfchat/internal/render"
)

var pdfOutput string

var pdfsCmd = &cobra.Command{
	Use:   "pdfs",
	Short: "Manage PDFs inside folders",
}

var pdfsUploadCmd = &cobra.Command{
	Use:   "upload <folder-id> <file>",
	Short: "Upload a PDF into a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		folderID, path := args[0], args[1]
		if _, err := parseID(folderID); err != nil {
			return err
		}
		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := client.UploadPDF(cmd.Context(), folderID, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s. It will be queryable once processed.\n", filepath.Base(path))
		return nil
	},
}

var pdfsDeleteCmd = &cobra.Command{
	Use:   "delete <pdf-id>",
	Short: "Delete a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := client.DeletePDF(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted PDF %d.\n", id)
		return nil
	},
}

var pdfsDownloadCmd = &cobra.Command{
	Use:   "download <pdf-id>",
	Short: "Download a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		output := pdfOutput
		if output == "" {
			output = fmt.Sprintf("%d.pdf", id)
		}

		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		n, err := client.DownloadPDF(cmd.Context(), id, f)
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
		if err != nil {
			if rmErr := os.Remove(output); rmErr != nil {
				logging.Warnf("Failed to remove partial download %s: %v", output, rmErr)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s).\n", output, render.Bytes(n))
		return nil
	},
}

func init() {
	pdfsDownloadCmd.Flags().StringVarP(&pdfOutput, "output", "o", "", "Destination file (default <pdf-id>.pdf)")

	pdfsCmd.AddCommand(pdfsUploadCmd, pdfsDeleteCmd, pdfsDownloadCmd)
	rootCmd.AddCommand(pdfsCmd)
}
