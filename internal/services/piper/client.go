// Package piper wraps the piper text-to-speech binary. The engine is treated
// as an opaque producer of a WAV clip; only the subprocess contract lives
// here.
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"soundcraft/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, stdin string) error
}

// Client invokes piper to synthesize speech into a WAV file.
type Client struct {
	binary   string
	modelDir string
	timeout  time.Duration
	exec     Executor
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// New constructs a piper client. modelDir is the directory holding
// <voice>.onnx and <voice>.onnx.json pairs.
func New(binary, modelDir string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("piper binary required")
	}
	client := &Client{
		binary:   binary,
		modelDir: strings.TrimSpace(modelDir),
		timeout:  time.Duration(timeoutSeconds) * time.Second,
		exec:     commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Speak synthesizes text with the named voice model and writes the result to
// outPath. The model must already exist on disk; piper is never asked to
// download anything.
func (c *Client) Speak(ctx context.Context, text, voice, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, "piper", "speak", "text is empty", nil)
	}
	modelPath := filepath.Join(c.modelDir, voice+".onnx")
	if _, err := os.Stat(modelPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "piper", "locate model", fmt.Sprintf("voice model %s not found", modelPath), err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"--model", modelPath,
		"--config", modelPath + ".json",
		"--output_file", outPath,
	}
	if err := c.exec.Run(runCtx, c.binary, args, text); err != nil {
		return services.Wrap(services.ErrExternalTool, "piper", "synthesize", "piper exited with error", err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, stdin string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
