package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaot623/pdfchat/internal/api"
	"github.com/xiaot623/pdfchat/internal/render"
)

var (
	folderPage        int
	folderQuery       string
	folderName        string
	folderDescription string
	folderColor       string

	updateName        string
	updateDescription string
	updateColor       string
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Manage folders",
}

var foldersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		list, err := client.ListFolders(cmd.Context(), folderPage, folderQuery)
		if err != nil {
			return err
		}
		render.FolderList(cmd.OutOrStdout(), list)
		return nil
	},
}

var foldersShowCmd = &cobra.Command{
	Use:   "show <folder-id>",
	Short: "Show a folder and its PDFs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		folder, err := client.GetFolder(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		render.Folder(cmd.OutOrStdout(), folder)
		return nil
	},
}

var foldersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := api.FolderInput{Name: folderName, Description: folderDescription, Color: folderColor}
		if err := validateFolderInput(&in); err != nil {
			return err
		}
		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := client.CreateFolder(cmd.Context(), in); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created folder %q.\n", in.Name)
		return nil
	},
}

var foldersUpdateCmd = &cobra.Command{
	Use:   "update <folder-id>",
	Short: "Rename, redescribe or recolor a folder",
	Long:  `Update a folder. Fields whose flag is not given keep their current value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("name") && !flags.Changed("description") && !flags.Changed("color") {
			return fmt.Errorf("nothing to update: set --name, --description or --color")
		}
		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		current, err := client.GetFolder(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		in := api.FolderInput{Name: current.Name, Description: current.Description, Color: current.Color}
		if flags.Changed("name") {
			in.Name = updateName
		}
		if flags.Changed("description") {
			in.Description = updateDescription
		}
		if flags.Changed("color") {
			in.Color = updateColor
		} else if !api.ValidFolderColor(in.Color) {
			in.Color = api.DefaultFolderColor
		}
		if err := validateFolderInput(&in); err != nil {
			return err
		}

		if err := client.UpdateFolder(cmd.Context(), id, in); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated folder %d.\n", id)
		return nil
	},
}

var foldersDeleteCmd = &cobra.Command{
	Use:   "delete <folder-id>",
	Short: "Delete a folder",
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

		if err := client.DeleteFolder(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %d.\n", id)
		return nil
	},
}

// validateFolderInput trims in and rejects what the service would refuse:
// a blank name or description, or a color outside the palette.
func validateFolderInput(in *api.FolderInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" || in.Description == "" {
		return fmt.Errorf("name and description are required")
	}
	if in.Color == "" {
		in.Color = api.DefaultFolderColor
	}
	if !api.ValidFolderColor(in.Color) {
		return fmt.Errorf("invalid color %q: choose one of %s", in.Color, strings.Join(api.FolderColors, ", "))
	}
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func init() {
	foldersListCmd.Flags().IntVar(&folderPage, "page", 1, "Page number")
	foldersListCmd.Flags().StringVar(&folderQuery, "query", "", "Filter folders by name")

	foldersCreateCmd.Flags().StringVar(&folderName, "name", "", "Folder name")
	foldersCreateCmd.Flags().StringVar(&folderDescription, "description", "", "Folder description")
	foldersCreateCmd.Flags().StringVar(&folderColor, "color", api.DefaultFolderColor, "Folder color")
	foldersCreateCmd.MarkFlagRequired("name")
	foldersCreateCmd.MarkFlagRequired("description")

	foldersUpdateCmd.Flags().StringVar(&updateName, "name", "", "New folder name")
	foldersUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "New folder description")
	foldersUpdateCmd.Flags().StringVar(&updateColor, "color", "", "New folder color")

	foldersCmd.AddCommand(foldersListCmd, foldersShowCmd, foldersCreateCmd, foldersUpdateCmd, foldersDeleteCmd)
	rootCmd.AddCommand(foldersCmd)
}
