package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Core palette
	Green       = lipgloss.Color("#00FF41")
	BrightGreen = lipgloss.Color("#39FF14")
	DarkGreen   = lipgloss.Color("#008F11")
	DimGreen    = lipgloss.Color("#003B00")
	Cyan        = lipgloss.Color("#00D4AA")
	Amber       = lipgloss.Color("#FFB000")
	Black       = lipgloss.Color("#0D0208")
	LightGray   = lipgloss.Color("#aaaaaa")
	White       = lipgloss.Color("#e0e0e0")
	Red         = lipgloss.Color("#FF4136")

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(DarkGreen).
			Foreground(Black).
			Bold(true).
			Padding(0, 1)

	StatusPathStyle = lipgloss.NewStyle().
			Background(Green).
			Foreground(Black).
			Bold(true).
			Padding(0, 1)

	// Labels in dashboards and CLI listings
	UserLabelStyle = lipgloss.NewStyle().
			Foreground(BrightGreen).
			Bold(true)

	FieldLabelStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(White)

	PassedStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	FailedStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// Input
	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Padding(0, 1)

	ViewportStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGreen).
			Padding(0, 1)

	LogoBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGreen).
			Padding(0, 1)

	// Banner
	BannerStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(DimGreen)

	// Error
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)

const Banner = `
  ╦═╗╔═╗╔═╗╦╔═╗╔╦╗╦═╗╔═╗╦═╗
  ╠╦╝║╣ ║ ╦║╚═╗ ║ ╠╦╝╠═╣╠╦╝
  ╩╚═╚═╝╚═╝╩╚═╝ ╩ ╩╚═╩ ╩╩╚═
`

// RenderBanner returns the banner in the banner style.
func RenderBanner() string {
	return BannerStyle.Render(Banner)
}
