package core

const (
	AppName      = "docchat"
	AppUserAgent = "docchat/0.1"
	AppVersion   = "0.1.0"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the transcript. It is never changed after display.
type Turn struct {
	Role     Role   `json:"role"`
	Text     string `json:"text"`
	Markdown bool   `json:"-"`
}

type EntryKind int

const (
	EntryTurn EntryKind = iota
	// EntryTyping is the transient "composing" indicator.
	EntryTyping
	// EntryPlaceholder is a transient assistant message removed when the
	// operation it stands for resolves.
	EntryPlaceholder
)

type Entry struct {
	Kind EntryKind
	Turn Turn
}

// EntryID identifies an appended entry so it can be removed later.
type EntryID int64

type IngestStatus string

const (
	StatusPending   IngestStatus = "pending"
	StatusCompleted IngestStatus = "completed"
	StatusFailed    IngestStatus = "failed"
)

// Terminal reports whether polling must stop on this status.
func (s IngestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type UserInfo struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

func (u UserInfo) IsGuest() bool {
	return u.Name == ""
}
