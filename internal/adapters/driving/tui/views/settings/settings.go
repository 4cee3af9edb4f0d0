// Package settings provides a read-only view of the active settings.
package settings

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// View shows the resolved settings. Changes go through
// 'insight settings set'.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	invalid  error
	err      error
	width    int
	height   int
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		settingsService: settingsService,
		width:           80,
	}
}

// Init loads the settings.
func (v *View) Init() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "r":
			return v, v.Init()
		}

	case messages.SettingsLoaded:
		v.settings = msg.Settings
		v.err = msg.Err
		v.invalid = nil
		if msg.Err == nil && v.settingsService != nil {
			v.invalid = v.settingsService.Validate()
		}
	}
	return v, nil
}

// View renders the settings.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.settings == nil:
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
	default:
		v.renderSettings(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] reload  [esc] back   change with: insight settings set <key> <value>"))
	return b.String()
}

func (v *View) renderSettings(b *strings.Builder) {
	s := v.settings
	section := func(name string, fields ...[2]string) {
		b.WriteString(v.styles.Subtitle.Render("[" + name + "]"))
		b.WriteString("\n")
		for _, f := range fields {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %-20s", f[0])))
			b.WriteString(v.styles.Normal.Render(f[1]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	section("Embedding",
		[2]string{"provider", s.Embedding.Provider.Description()},
		[2]string{"model", s.Embedding.Model},
		[2]string{"dimensions", fmt.Sprintf("%d", s.Embedding.Dimensions)},
		[2]string{"api_key", MaskAPIKey(s.Embedding.APIKey)},
		[2]string{"requests_per_second", fmt.Sprintf("%g", s.Embedding.RequestsPerSecond)},
	)
	section("LLM",
		[2]string{"provider", s.LLM.Provider.Description()},
		[2]string{"model", s.LLM.Model},
		[2]string{"api_key", MaskAPIKey(s.LLM.APIKey)},
		[2]string{"max_tokens", fmt.Sprintf("%d", s.LLM.MaxTokens)},
		[2]string{"temperature", fmt.Sprintf("%g", s.LLM.Temperature)},
	)
	section("Chunking",
		[2]string{"size", fmt.Sprintf("%d", s.Chunking.Size)},
		[2]string{"overlap_words", fmt.Sprintf("%d", s.Chunking.OverlapWords)},
	)
	section("Retrieval",
		[2]string{"top_k", fmt.Sprintf("%d", s.Retrieval.TopK)},
	)
	cache := "disabled"
	if s.Cache.Enabled() {
		cache = s.Cache.RedisAddr + " (ttl " + s.Cache.TTL.String() + ")"
	}
	section("Server",
		[2]string{"addr", s.Server.Addr},
		[2]string{"cors_origins", strings.Join(s.Server.CORSOrigins, ", ")},
		[2]string{"cache", cache},
	)

	if v.invalid != nil {
		b.WriteString(v.styles.Warning.Render("Warning: " + v.invalid.Error()))
	} else {
		b.WriteString(v.styles.Success.Render("Configuration is valid."))
	}
}

// MaskAPIKey hides all but the first and last four characters of a key.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Reset clears loaded state so the next Init reloads.
func (v *View) Reset() {
	v.settings = nil
	v.err = nil
	v.invalid = nil
}
