package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ErrorBarStyle renders the dismissable error line.
var ErrorBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// BadgeStyle renders the unread counter next to the title.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// UnreadTitleStyle emphasizes notifications not yet read.
var UnreadTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// ReadTitleStyle dims notifications already read.
var ReadTitleStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SeverityStyle returns a color-coded style for the given severity.
func SeverityStyle(sev model.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch sev {
	case model.SeveritySuccess:
		return base.Foreground(ColorGreen)
	case model.SeverityInfo:
		return base.Foreground(ColorBlue)
	case model.SeverityWarning:
		return base.Foreground(ColorYellow)
	case model.SeverityError:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// TypeBadgeStyle returns the badge style for a notification type.
func TypeBadgeStyle(typ string) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)

	switch typ {
	case model.TypeOrderCreated, model.TypePaymentConfirmed:
		return base.Foreground(ColorGreen)
	case model.TypeOrderCancelled:
		return base.Foreground(ColorRed)
	case model.TypeLowStock:
		return base.Foreground(ColorYellow)
	case model.TypeTest:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}

// TypeIcon returns the glyph shown in front of a notification type.
func TypeIcon(typ string) string {
	switch typ {
	case model.TypeOrderCreated:
		return "📦"
	case model.TypeOrderCancelled:
		return "❌"
	case model.TypeLowStock:
		return "📉"
	case model.TypePaymentConfirmed:
		return "💰"
	case model.TypeDirect:
		return "📧"
	case model.TypeTest:
		return "🧪"
	default:
		return "📢"
	}
}

// SeverityIcon returns the glyph for a severity level.
func SeverityIcon(sev model.Severity) string {
	switch sev {
	case model.SeveritySuccess:
		return "✅"
	case model.SeverityInfo:
		return "ℹ️"
	case model.SeverityWarning:
		return "⚠️"
	case model.SeverityError:
		return "❌"
	default:
		return "•"
	}
}
