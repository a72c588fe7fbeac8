package console

import (
	"bytes"
	"testing"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestChatViewPrintsFinishedTurns(t *testing.T) {
	var buf bytes.Buffer
	v := NewChatView(&buf, false)

	v.Append(core.Entry{Kind: core.EntryTurn, Turn: core.Turn{Role: core.RoleUser, Text: "question"}})
	id := v.Append(core.Entry{Kind: core.EntryTyping})
	v.Remove(id)
	v.Append(core.Entry{Kind: core.EntryTurn, Turn: core.Turn{Role: core.RoleAssistant, Text: "# Title\n\nbody", Markdown: true}})

	out := buf.String()
	assert.NotContains(t, out, "question")
	assert.NotContains(t, out, "# Title")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}

func TestChatViewKeepsInput(t *testing.T) {
	v := NewChatView(&bytes.Buffer{}, true)
	v.SetInput("transcribed words")
	assert.Equal(t, "transcribed words", v.Input())
}

func TestUploadViewDeduplicatesStatus(t *testing.T) {
	var buf bytes.Buffer
	v := NewUploadView(&buf)

	v.SetStatus("Uploading...")
	v.SetStatus("Uploading...")
	v.SetProcessing(true)
	v.SetProcessing(false)

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Uploading...")))
	assert.Contains(t, buf.String(), "Processing document...")
}

func TestNavigatorOpenChatTwice(t *testing.T) {
	n := NewNavigator()
	n.OpenChat()
	n.OpenChat()

	select {
	case <-n.Ready():
	default:
		t.Fatal("navigator not ready")
	}
}
