package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Pandoc converts documents by running the pandoc command line tool.
type Pandoc struct {
	command string
	timeout time.Duration
}

func NewPandoc(command string, timeout time.Duration) *Pandoc {
	if command == "" {
		command = "pandoc"
	}
	return &Pandoc{command: command, timeout: timeout}
}

func (p *Pandoc) Convert(ctx context.Context, path string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.command, "--to", "plain", "--wrap", "none", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", p.command, err, msg)
		}
		return "", fmt.Errorf("%s: %w", p.command, err)
	}

	return stdout.String(), nil
}
