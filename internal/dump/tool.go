package dump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultToolPath is the dump tool looked up on PATH when none is configured.
const DefaultToolPath = "gdump"

// DefaultFlags select explicit-only output of function labels in the text
// section, without demangling, as raw hex.
var DefaultFlags = []string{
	"-N",
	"-ytext",
	"-ylabfunc",
	"-nx",
	"-raw",
}

var ErrToolNotFound = errors.New("dump tool not found")

// Tool runs the external object dump program.
type Tool struct {
	Path  string
	Flags []string
}

// NewTool returns a tool with the default flags when flags is empty.
func NewTool(path string, flags []string) *Tool {
	if path == "" {
		path = DefaultToolPath
	}
	if len(flags) == 0 {
		flags = DefaultFlags
	}
	return &Tool{Path: path, Flags: flags}
}

// Resolve finds the executable, either at the configured path or on PATH.
func (t *Tool) Resolve() (string, error) {
	path, err := exec.LookPath(t.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrToolNotFound, t.Path, err)
	}
	return path, nil
}

// Command renders the invocation for objectPath, for logs and errors.
func (t *Tool) Command(objectPath string) string {
	return strings.Join(append(append([]string{t.Path}, t.Flags...), objectPath), " ")
}

// Run dumps objectPath and returns the complete standard output. It
// blocks until the tool exits.
func (t *Tool) Run(ctx context.Context, objectPath string) ([]byte, error) {
	if _, err := os.Stat(objectPath); err != nil {
		return nil, fmt.Errorf("object file not found: %s", objectPath)
	}
	path, err := t.Resolve()
	if err != nil {
		return nil, err
	}

	args := append(append([]string{}, t.Flags...), objectPath)
	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running dump tool", "command", t.Command(objectPath))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("dump tool failed: %v\n%s", err, strings.TrimSpace(stderr.String()))
	}
	slog.Debug("Dump tool finished", "bytes", stdout.Len())
	return stdout.Bytes(), nil
}

// Source produces the raw dump listing for an object file.
type Source interface {
	Run(ctx context.Context, objectPath string) ([]byte, error)
}

// File replays a listing captured earlier instead of running the tool.
type File struct {
	Path string
}

func (f File) Run(_ context.Context, _ string) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read dump file: %w", err)
	}
	return data, nil
}
