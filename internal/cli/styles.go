// Package cli provides styled terminal output and interactive input for the
// review loop.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#5FAFD7")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// PromptStyle is used for user prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	BankIcon    = "🏦"
	LedgerIcon  = "📒"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatTitle formats a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(BankIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// StatusStyle returns the style appropriate to a proposal status.
func StatusStyle(status model.MatchStatus) lipgloss.Style {
	switch status {
	case model.StatusConfirmed, model.StatusManual, model.StatusResolved:
		return SuccessStyle
	case model.StatusRejected:
		return ErrorStyle
	case model.StatusSkipped:
		return SubtleStyle
	default:
		return WarningStyle
	}
}

// FormatConfidence renders a confidence value as a styled percentage.
func FormatConfidence(confidence float64) string {
	text := fmt.Sprintf("%.0f%%", confidence*100)
	switch {
	case confidence >= 0.75:
		return SuccessStyle.Render(text)
	case confidence >= 0.4:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

// RenderProposal renders one proposal as a bordered card for review.
func RenderProposal(p *model.MatchProposal, displayName func(string) string) string {
	header := fmt.Sprintf("%s  %s  %s %s",
		p.ID,
		StatusStyle(p.Status).Render(string(p.Status)),
		FormatConfidence(p.Confidence),
		SubtleStyle.Render(string(p.Kind)))

	bankLine := fmt.Sprintf("%s %s  %s  %s  £%s",
		BankIcon,
		p.Bank.Date.Format(model.BankDateLayout),
		p.Bank.Type,
		p.Bank.Description,
		p.Bank.Amount.StringFixed(2))

	lines := []string{header, bankLine}
	for _, e := range p.Entries {
		payee := e.Payee
		if displayName != nil {
			payee = displayName(e.Payee)
		}
		lines = append(lines, fmt.Sprintf("%s %s  #%s  %s  £%s",
			LedgerIcon,
			e.Date.Format(model.LedgerDateLayout),
			e.RefNo,
			payee,
			e.Amount.StringFixed(2)))
	}
	if len(p.Entries) == 0 && p.Kind == model.KindNoMatch {
		lines = append(lines, SubtleStyle.Render("no candidate above the confidence floor"))
	}
	if p.Comment != "" {
		lines = append(lines, SubtleStyle.Render("note: "+p.Comment))
	}
	if len(p.Entries) > 0 {
		lines = append(lines, SubtleStyle.Render(fmt.Sprintf(
			"scores: amount %.2f  date %.2f  name %.2f",
			p.Scores.Amount, p.Scores.Date, p.Scores.Name)))
	}

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
