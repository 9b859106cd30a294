package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaot623/pdfchat/internal/chat"
	"github.com/xiaot623/pdfchat/internal/logging"
	"github.com/xiaot623/pdfchat/internal/policy"
	"github.com/xiaot623/pdfchat/internal/render"
)

var chatCmd = &cobra.Command{
	Use:   "chat <folder-id>",
	Short: "Ask questions about the PDFs in a folder",
	Long: `Start an interactive conversation with the documents of a folder.

Type a question and press Enter. The answer streams in; input is paused until
it finishes. Type /quit or press Ctrl+C to leave.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folderID := args[0]
		if _, err := parseID(folderID); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		mgr, closeFn, err := openAuth()
		if err != nil {
			return err
		}
		defer closeFn()

		client, err := mgr.Client(ctx)
		if err != nil {
			return fmt.Errorf("%w: run `pdfchat signin` first", err)
		}

		guard, err := policy.NewEngineFromFile(ctx, cfg.QueryPolicyFile, cfg.MaxQueryLength)
		if err != nil {
			return err
		}

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		if folder, err := client.GetFolder(ctx, folderID); err == nil {
			fmt.Fprintf(out, "Chatting with %q (%d PDFs).\n", folder.Name, len(folder.PDFs))
		} else {
			logging.Warnf("Could not load folder %s: %v", folderID, err)
		}

		store := chat.NewMemoryStore()
		transcript := render.NewTranscript(out, errOut)
		session := chat.NewSession(folderID, cfg.WSAddress,
			chat.NewWebSocketDialer(cfg.HandshakeTimeout, client.Token()),
			chat.MultiObserver(store, transcript),
			chat.WithNotifier(transcript),
			chat.WithGuard(guard),
		)

		fmt.Fprintln(out, "Type a question, or /quit to leave.")
		return runChat(ctx, cmd.InOrStdin(), out, session, store, transcript)
	},
}

// runChat reads questions from in until /quit, EOF or ctx is done. Each
// question waits for its answer to finish before the next line is read.
func runChat(ctx context.Context, in io.Reader, out io.Writer, session *chat.Session, store *chat.MemoryStore, transcript *render.Transcript) error {
	defer session.CloseConnection()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")

		var input string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInterrupted")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			input = strings.TrimSpace(line)
		}

		if input == "" {
			continue
		}
		if input == "/quit" {
			fmt.Fprintln(out, "Bye!")
			return nil
		}

		err := session.SendMessage(store.Messages(), input, store.NextID())
		var policyErr *chat.PolicyError
		switch {
		case errors.As(err, &policyErr):
			reason := policyErr.Reason
			if reason == "" {
				reason = policyErr.Error()
			}
			transcript.Notify(reason)
			continue
		case err != nil:
			return err
		}

		err = session.Wait(ctx)
		transcript.EndReply()
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nInterrupted")
			return nil
		}
		if err != nil {
			transcript.Notify(fmt.Sprintf("connection to folder %s lost: %v", session.FolderID(), err))
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
