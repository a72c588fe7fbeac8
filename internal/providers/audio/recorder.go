// Package audio captures microphone input by running an external recorder
// that writes an encoded stream (webm/opus by default) to stdout.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/docchat/internal/core"
)

const (
	frameSize = 4096
	// A recorder that exits this quickly never got hold of the device.
	startupGrace = 300 * time.Millisecond
	stopTimeout  = 3 * time.Second
)

var ErrDeviceUnavailable = errors.New("microphone unavailable")

// CommandMicrophone starts one recorder process per capture session.
type CommandMicrophone struct {
	argv []string
}

func NewCommandMicrophone(command string) *CommandMicrophone {
	return &CommandMicrophone{argv: strings.Fields(command)}
}

func (m *CommandMicrophone) Open(ctx context.Context) (core.Capture, error) {
	if len(m.argv) == 0 {
		return nil, fmt.Errorf("%w: no recorder configured", ErrDeviceUnavailable)
	}

	// Not bound to ctx: the session lives until Stop, not until the caller returns.
	cmd := exec.Command(m.argv[0], m.argv[1:]...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	// A plain pipe rather than StdoutPipe: Wait must not close the reader
	// before the final frame is drained.
	stdout, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("recorder pipe: %w", err)
	}
	cmd.Stdout = pw

	err = cmd.Start()
	pw.Close()
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	c := &commandCapture{
		cmd:    cmd,
		frames: make(chan []byte, 16),
		exited: make(chan error, 1),
	}
	go func() { c.exited <- cmd.Wait() }()

	select {
	case err := <-c.exited:
		stdout.Close()
		msg := strings.TrimSpace(stderr.String())
		if msg == "" && err != nil {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrDeviceUnavailable, msg)
	case <-time.After(startupGrace):
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		stdout.Close()
		return nil, ctx.Err()
	}

	go c.pump(stdout)
	return c, nil
}

type commandCapture struct {
	cmd    *exec.Cmd
	frames chan []byte
	exited chan error
	once   sync.Once
}

func (c *commandCapture) Frames() <-chan []byte {
	return c.frames
}

func (c *commandCapture) pump(r io.ReadCloser) {
	defer close(c.frames)
	defer r.Close()
	buf := make([]byte, frameSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			frame := make([]byte, n)
			copy(frame, buf[:n])
			c.frames <- frame
		}
		if err != nil {
			return
		}
	}
}

// Stop asks the recorder to finish its container and release the device.
// Frames is closed once the recorder's output is drained.
func (c *commandCapture) Stop() error {
	var err error
	c.once.Do(func() {
		if sigErr := c.cmd.Process.Signal(os.Interrupt); sigErr != nil {
			err = c.cmd.Process.Kill()
			return
		}
		select {
		case <-c.exited:
		case <-time.After(stopTimeout):
			err = c.cmd.Process.Kill()
		}
	})
	return err
}
