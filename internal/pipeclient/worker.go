package pipeclient

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"ytscribe/internal/model"
)

// Worker drives one long-lived pipe-mode subprocess over its stdin/stdout.
// A mutex serializes requests because the protocol pairs each request line
// with exactly one response line.
type Worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	mu     sync.Mutex
}

// StartWorker launches command with args and wires up its pipes. The
// subprocess is expected to speak the pipe protocol, typically a
// ytscribe-pipe binary.
func StartWorker(command string, args ...string) (*Worker, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start pipe worker: %w", err)
	}

	return &Worker{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

// GetTranscript sends one request line and blocks until the matching
// response line arrives.
func (w *Worker) GetTranscript(videoID string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	payload, err := json.Marshal(model.TranscriptRequest{VideoID: videoID})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	if _, err := w.stdin.Write(append(payload, '\n')); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}

	line, err := w.stdout.ReadBytes('\n')
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var resp model.PipeResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return "", errors.New(resp.Error)
	}
	if resp.Transcript == nil {
		return "", errors.New("malformed response: neither transcript nor error")
	}
	return *resp.Transcript, nil
}

// Close shuts the worker down. Closing stdin lets a well-behaved subprocess
// exit on end-of-input; the kill covers the rest.
func (w *Worker) Close() error {
	if w.stdin != nil {
		_ = w.stdin.Close()
	}
	if w.cmd == nil || w.cmd.Process == nil {
		return nil
	}
	if err := w.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill pipe worker: %w", err)
	}
	_ = w.cmd.Wait()
	return nil
}
