package services

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure AnswerActionService implements the interface.
var _ driving.AnswerActionService = (*AnswerActionService)(nil)

// AnswerActionService provides actions on answers.
type AnswerActionService struct {
	uploads driven.UploadStore

	// Seams for tests.
	copy func(text string) error
	open func(path string) error
}

// NewAnswerActionService creates a new answer action service.
func NewAnswerActionService(uploads driven.UploadStore) *AnswerActionService {
	return &AnswerActionService{
		uploads: uploads,
		copy:    copyToClipboard,
		open:    openPath,
	}
}

// CopyAnswer copies the answer and a source list to the system clipboard.
func (s *AnswerActionService) CopyAnswer(_ context.Context, answer *domain.Answer) error {
	if answer == nil {
		return fmt.Errorf("answer is nil")
	}
	return s.copy(FormatAnswer(answer))
}

// OpenDocument opens the retained upload of a document.
func (s *AnswerActionService) OpenDocument(_ context.Context, documentID string) error {
	if s.uploads == nil {
		return fmt.Errorf("uploads are not retained: %w", domain.ErrNotFound)
	}
	path, err := s.uploads.Path(documentID)
	if err != nil {
		return err
	}
	return s.open(path)
}

// FormatAnswer renders an answer as plain text followed by its sources.
func FormatAnswer(answer *domain.Answer) string {
	var b strings.Builder
	b.WriteString(answer.Answer)
	if len(answer.Citations) > 0 {
		b.WriteString("\n\nSources:\n")
		for i, c := range answer.Citations {
			fmt.Fprintf(&b, "[%d] %s, page %d\n", i+1, c.DocumentName, c.PageNumber)
		}
	}
	return b.String()
}

// copyToClipboard copies text to the system clipboard using OS-specific commands.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("pbcopy")
	case osLinux:
		// Try xclip first, fall back to xsel
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else {
			return fmt.Errorf("no clipboard utility found (install xclip or xsel)")
		}
	case osWindows:
		cmd = exec.Command("cmd", "/c", "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// openPath opens a file in the default application.
func openPath(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", path)
	case osLinux:
		cmd = exec.Command("xdg-open", path)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
