package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaot623/pdfchat/internal/config"
	"github.com/xiaot623/pdfchat/internal/logging"
)

var (
	verbose bool
	envFile string
	version string = "dev"

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pdfchat",
	Short: "Chat with the PDFs in your folders",
	Long: `pdfchat is a terminal client for the PDF chat service.

Organise documents into folders, upload PDFs, and ask questions about them.
Answers stream in token by token.

Quick Start:
  pdfchat signin --email you@example.com
  pdfchat folders list
  pdfchat chat <folder-id>`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			cfg = config.Load(envFile)
		} else {
			cfg = config.Load()
		}
		logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
		if verbose {
			logging.SetVerbose(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, closeFn, err := openAuth()
		if err != nil {
			return err
		}
		defer closeFn()

		out := cmd.OutOrStdout()
		if mgr.Authenticated(cmd.Context()) {
			fmt.Fprintln(out, "Signed in. Try `pdfchat folders list` or `pdfchat chat <folder-id>`.")
		} else {
			fmt.Fprintln(out, "Not signed in. Run `pdfchat signin` or `pdfchat signup` to get started.")
		}
		fmt.Fprintln(out, "Run `pdfchat --help` for all commands.")
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this file instead of .env")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
