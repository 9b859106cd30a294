package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/xiaot623/pdfchat/internal/chat"
)

// Transcript prints a conversation as it streams. It is a chat.Observer and a
// chat.Notifier.
type Transcript struct {
	out    io.Writer
	errOut io.Writer
	st     styles
	errSt  styles

	mu        sync.Mutex
	replyID   string // reply currently being printed, "" when none
	replyOpen bool
}

// NewTranscript prints messages to out and notifications to errOut.
func NewTranscript(out, errOut io.Writer) *Transcript {
	return &Transcript{
		out:    out,
		errOut: errOut,
		st:     newStyles(out),
		errSt:  newStyles(errOut),
	}
}

// OnUserMessage prints the user's message on its own line.
func (t *Transcript) OnUserMessage(msg chat.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endReplyLocked()
	fmt.Fprintf(t.out, "%s %s\n", t.st.userRole.Render(" you "), msg.Content)
}

// OnAssistantFragment prints a fragment, opening a new reply line when id changes.
func (t *Transcript) OnAssistantFragment(id, fragment string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.replyOpen || t.replyID != id {
		t.endReplyLocked()
		fmt.Fprintf(t.out, "%s ", t.st.aiRole.Render(" ai "))
		t.replyID = id
		t.replyOpen = true
	}
	fmt.Fprint(t.out, fragment)
}

// Notify prints a server error notification.
func (t *Transcript) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endReplyLocked()
	fmt.Fprintln(t.errOut, t.errSt.notice.Render("! "+message))
}

// EndReply terminates the reply line, if one is open.
func (t *Transcript) EndReply() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endReplyLocked()
}

func (t *Transcript) endReplyLocked() {
	if t.replyOpen {
		fmt.Fprintln(t.out)
		t.replyOpen = false
		t.replyID = ""
	}
}
