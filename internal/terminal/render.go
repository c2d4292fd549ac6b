package terminal

import (
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// StyleConfig defines visual styles
type StyleConfig struct {
	PromptColor  lipgloss.Color
	SubtleColor  lipgloss.Color
	ErrorColor   lipgloss.Color
	SuccessColor lipgloss.Color
}

// DefaultStyleConfig returns the default style configuration
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{
		PromptColor:  lipgloss.Color("12"),  // Blue
		SubtleColor:  lipgloss.Color("241"), // Grey
		ErrorColor:   lipgloss.Color("9"),   // Red
		SuccessColor: lipgloss.Color("10"),  // Green
	}
}

// Renderer turns replies into terminal text. Command output goes through
// glamour as a code block; everything else is styled with lipgloss.
type Renderer struct {
	term  *glamour.TermRenderer
	style *StyleConfig
}

// NewRenderer creates a Renderer wrapping at width columns.
func NewRenderer(width int) (*Renderer, error) {
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{term: term, style: DefaultStyleConfig()}, nil
}

// NewPlainRenderer renders without glamour.
func NewPlainRenderer() *Renderer {
	return &Renderer{style: DefaultStyleConfig()}
}

// Prompt returns the styled input prompt.
func (r *Renderer) Prompt(label string) string {
	return lipgloss.NewStyle().Foreground(r.style.PromptColor).Bold(true).Render(label+">") + " "
}

// Error styles a local error message.
func (r *Renderer) Error(msg string) string {
	return lipgloss.NewStyle().Foreground(r.style.ErrorColor).Render(msg)
}

// Reply renders a reply and numbers its actions from 1.
func (r *Renderer) Reply(reply core.Reply) string {
	if reply.Silent {
		return ""
	}

	var b strings.Builder
	switch {
	case reply.Output:
		b.WriteString(r.output(reply.Text))
	case reply.Err != nil:
		b.WriteString(r.Error(reply.Text))
	default:
		b.WriteString(reply.Text)
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}

	subtle := lipgloss.NewStyle().Foreground(r.style.SubtleColor)
	for i, a := range flatten(reply.Actions) {
		b.WriteString(subtle.Render(fmt.Sprintf("  !%d %s", i+1, actionLabel(a))))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) output(text string) string {
	if r.term == nil {
		return text
	}
	out, err := r.term.Render("```\n" + text + "\n```")
	if err != nil {
		return text
	}
	return out
}

func actionLabel(a core.Action) string {
	switch a.Verb {
	case core.VerbBookmarkAdd:
		return "add bookmark " + a.Path
	case core.VerbBookmarkJump:
		return "cd " + a.Path
	case core.VerbBookmarkRemove:
		return "remove bookmark " + a.Path
	}
	return a.Tag()
}

func flatten(rows [][]core.Action) []core.Action {
	var out []core.Action
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
