package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaot623/pdfchat/internal/api"
	"github.com/xiaot623/pdfchat/internal/render"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and remember the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordOrPrompt(cmd)
		if err != nil {
			return err
		}

		mgr, closeFn, err := openAuth()
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := mgr.SignIn(cmd.Context(), authEmail, password)
		if err != nil {
			return fmt.Errorf("sign in failed: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), "Signed in as ")
		render.User(cmd.OutOrStdout(), user)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordOrPrompt(cmd)
		if err != nil {
			return err
		}

		mgr, closeFn, err := openAuth()
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := mgr.SignUp(cmd.Context(), authName, authEmail, password)
		if err != nil {
			return fmt.Errorf("sign up failed: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), "Welcome, ")
		render.User(cmd.OutOrStdout(), user)
		return nil
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, closeFn, err := openAuth()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := mgr.SignOut(cmd.Context()); err != nil {
			return fmt.Errorf("sign out failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := client.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		render.User(cmd.OutOrStdout(), user)
		return nil
	},
}

var avatarList bool

var avatarCmd = &cobra.Command{
	Use:   "avatar <avatar-id>",
	Short: "Change your avatar",
	Long: `Change your avatar to one of the catalog entries.

Run with --list to see the available avatar ids.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if avatarList {
			render.Avatars(cmd.OutOrStdout(), api.Avatars)
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("an avatar id is required (see --list)")
		}
		avatar, ok := api.FindAvatar(args[0])
		if !ok {
			return fmt.Errorf("unknown avatar %q (see --list)", args[0])
		}

		client, closeFn, err := requireClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		if err := client.UpdateAvatar(cmd.Context(), avatar.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Avatar set to %s.\n", avatar.Label)
		return nil
	},
}

// passwordOrPrompt returns --password, or reads one line from stdin.
func passwordOrPrompt(cmd *cobra.Command) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func init() {
	for _, c := range []*cobra.Command{signinCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when omitted)")
		c.MarkFlagRequired("email")
	}
	signupCmd.Flags().StringVar(&authName, "name", "", "Display name")
	signupCmd.MarkFlagRequired("name")
	avatarCmd.Flags().BoolVar(&avatarList, "list", false, "List available avatars")

	rootCmd.AddCommand(signinCmd, signupCmd, signoutCmd, whoamiCmd, avatarCmd)
}
