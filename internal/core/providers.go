package core

import (
	"context"
	"io"
)

type ChatBackend interface {
	Chat(ctx context.Context, message string, collection *string) (string, error)
}

type TranscribeBackend interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type IngestBackend interface {
	UploadPDF(ctx context.Context, name string, r io.Reader) (string, error)
	Status(ctx context.Context, collectionID string) (IngestStatus, error)
}

type ProfileBackend interface {
	UserInfo(ctx context.Context) (UserInfo, error)
}

// Microphone grants exclusive capture sessions. Open fails when access is
// denied or the device is unavailable.
type Microphone interface {
	Open(ctx context.Context) (Capture, error)
}

// Capture is one recording session. Frames yields audio frames in arrival
// order and is closed once Stop has flushed the final frame.
type Capture interface {
	Frames() <-chan []byte
	Stop() error
}
