package core

// ChatView is the display contract of the chat screen.
// Implementations must be safe to call from any goroutine.
type ChatView interface {
	Append(entry Entry) EntryID
	Remove(id EntryID)
	SetInput(text string)
	Alert(msg string)
	SetRecording(active bool)
}

// UploadView is the display contract of the upload screen.
type UploadView interface {
	SetStatus(text string)
	SetUploadEnabled(enabled bool)
	SetProcessing(active bool)
}

// Navigator hands control over to the chat screen once a document is ready.
type Navigator interface {
	OpenChat()
}
