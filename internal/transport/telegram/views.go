package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
	tele "gopkg.in/telebot.v3"
)

// chatView renders one exchange into a Telegram chat. User turns are not
// echoed because the user already sees their own message.
type chatView struct {
	ctx    context.Context
	to     tele.Recipient
	out    *sender
	typing func()

	mu      sync.Mutex
	nextID  core.EntryID
	pending map[core.EntryID]*tele.Message
}

func newChatView(ctx context.Context, to tele.Recipient, out *sender, typing func()) *chatView {
	return &chatView{
		ctx:     ctx,
		to:      to,
		out:     out,
		typing:  typing,
		pending: make(map[core.EntryID]*tele.Message),
	}
}

func (v *chatView) Append(entry core.Entry) core.EntryID {
	v.mu.Lock()
	v.nextID++
	id := v.nextID
	v.mu.Unlock()

	switch entry.Kind {
	case core.EntryTyping:
		if v.typing != nil {
			v.typing()
		}
	case core.EntryPlaceholder:
		msg := v.out.sendText(v.ctx, v.to, entry.Turn.Text)
		v.mu.Lock()
		v.pending[id] = msg
		v.mu.Unlock()
	default:
		if entry.Turn.Role != core.RoleAssistant {
			break
		}
		if entry.Turn.Markdown {
			if err := v.out.sendMarkdown(v.ctx, v.to, entry.Turn.Text); err != nil {
				_ = v.out.sendPlain(v.ctx, v.to, entry.Turn.Text)
			}
		} else {
			v.out.sendText(v.ctx, v.to, entry.Turn.Text)
		}
	}
	return id
}

func (v *chatView) Remove(id core.EntryID) {
	v.mu.Lock()
	msg := v.pending[id]
	delete(v.pending, id)
	v.mu.Unlock()
	v.out.delete(v.ctx, msg)
}

// SetInput shows a voice transcript back to the user before it is answered.
func (v *chatView) SetInput(text string) {
	if text == "" {
		return
	}
	v.out.sendText(v.ctx, v.to, fmt.Sprintf("🎤 %s", text))
}

func (v *chatView) Alert(msg string) {
	v.out.sendText(v.ctx, v.to, msg)
}

func (v *chatView) SetRecording(bool) {}

type uploadView struct {
	ctx context.Context
	to  tele.Recipient
	out *sender

	mu   sync.Mutex
	last string
}

func (v *uploadView) SetStatus(text string) {
	v.mu.Lock()
	if text == v.last {
		v.mu.Unlock()
		return
	}
	v.last = text
	v.mu.Unlock()
	v.out.sendText(v.ctx, v.to, text)
}

func (v *uploadView) SetUploadEnabled(bool) {}

func (v *uploadView) SetProcessing(active bool) {
	if active {
		v.SetStatus("⏳ Processing document...")
	}
}

type navigator struct {
	ctx      context.Context
	to       tele.Recipient
	out      *sender
	fileName string
}

func (n *navigator) OpenChat() {
	n.out.sendText(n.ctx, n.to, fmt.Sprintf("✅ %s is ready. Ask me anything about it.", n.fileName))
}
