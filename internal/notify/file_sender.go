package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileSender appends each message to a file, for local runs.
type FileSender struct {
	path string
	mu   sync.Mutex
}

// NewFileSender makes sure the directory of path exists.
func NewFileSender(path string) (*FileSender, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("mail file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create mail directory for %q: %w", path, err)
	}
	return &FileSender{path: path}, nil
}

func (s *FileSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open mail file: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("--- Email logged at %s (To: %v, Subject: %s) ---\n%s\n--- End ---\n\n",
		time.Now().Format(time.RFC3339), msg.To, msg.Subject, msg.Raw())
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("write mail file: %w", err)
	}
	return nil
}
