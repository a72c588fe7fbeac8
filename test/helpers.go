// Package test holds display fakes shared by controller tests.
package test

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandevgo/docchat/internal/core"
)

// Event is one call recorded by a fake view, in call order.
type Event struct {
	Op    string // append, remove, input, alert, recording, status, enabled, processing
	ID    core.EntryID
	Entry core.Entry
	Text  string
	Flag  bool
}

// ChatView records every display call and tracks which entries are visible.
type ChatView struct {
	mu      sync.Mutex
	nextID  core.EntryID
	events  []Event
	visible map[core.EntryID]core.Entry
	order   []core.EntryID
	removed map[core.EntryID]int
}

func NewChatView() *ChatView {
	return &ChatView{
		visible: make(map[core.EntryID]core.Entry),
		removed: make(map[core.EntryID]int),
	}
}

func (v *ChatView) Append(entry core.Entry) core.EntryID {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	id := v.nextID
	v.visible[id] = entry
	v.order = append(v.order, id)
	v.events = append(v.events, Event{Op: "append", ID: id, Entry: entry})
	return id
}

func (v *ChatView) Remove(id core.EntryID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removed[id]++
	delete(v.visible, id)
	v.events = append(v.events, Event{Op: "remove", ID: id})
}

func (v *ChatView) SetInput(text string) {
	v.record(Event{Op: "input", Text: text})
}

func (v *ChatView) Alert(msg string) {
	v.record(Event{Op: "alert", Text: msg})
}

func (v *ChatView) SetRecording(active bool) {
	v.record(Event{Op: "recording", Flag: active})
}

func (v *ChatView) record(e Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, e)
}

func (v *ChatView) Events() []Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Event(nil), v.events...)
}

// Visible returns the entries still on screen in display order.
func (v *ChatView) Visible() []core.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []core.Entry
	for _, id := range v.order {
		if e, ok := v.visible[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Turns returns the visible transcript turns, ignoring transient entries.
func (v *ChatView) Turns() []core.Turn {
	var out []core.Turn
	for _, e := range v.Visible() {
		if e.Kind == core.EntryTurn {
			out = append(out, e.Turn)
		}
	}
	return out
}

// RemoveCount reports how many times id was removed.
func (v *ChatView) RemoveCount(id core.EntryID) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.removed[id]
}

// UploadView records upload screen state.
type UploadView struct {
	mu         sync.Mutex
	status     []string
	enabled    bool
	processing bool
	events     []Event
}

func NewUploadView() *UploadView {
	return &UploadView{enabled: true}
}

func (v *UploadView) SetStatus(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = append(v.status, text)
	v.events = append(v.events, Event{Op: "status", Text: text})
}

func (v *UploadView) SetUploadEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = enabled
	v.events = append(v.events, Event{Op: "enabled", Flag: enabled})
}

func (v *UploadView) SetProcessing(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.processing = active
	v.events = append(v.events, Event{Op: "processing", Flag: active})
}

func (v *UploadView) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.status) == 0 {
		return ""
	}
	return v.status[len(v.status)-1]
}

func (v *UploadView) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

func (v *UploadView) Processing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.processing
}

func (v *UploadView) Events() []Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Event(nil), v.events...)
}

// Navigator counts chat handoffs.
type Navigator struct {
	count atomic.Int32
	done  chan struct{}
	once  sync.Once
}

func NewNavigator() *Navigator {
	return &Navigator{done: make(chan struct{})}
}

func (n *Navigator) OpenChat() {
	n.count.Add(1)
	n.once.Do(func() { close(n.done) })
}

func (n *Navigator) Count() int {
	return int(n.count.Load())
}

// Wait blocks until the first handoff or the timeout.
func (n *Navigator) Wait(timeout time.Duration) bool {
	select {
	case <-n.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
