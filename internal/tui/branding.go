package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const AppName = "frontpage"

var LogoLines = []string{
	"█▀▀ █▀█ █▀█ █▄ █ ▀█▀ █▀█ ▄▀█ █▀▀ █▀▀",
	"█▀  █▀▄ █▄█ █ ▀█  █  █▀▀ █▀█ █▄█ ██▄",
}

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#F5F1E8"),
	lipgloss.Color("#C9B79C"),
	lipgloss.Color("#8FA3BF"),
	lipgloss.Color("#567BA8"),
}

// Newsprint palette: paper, ink and a single accent for headlines.
var (
	PrimaryColor   = lipgloss.Color("#F5F1E8") // Paper
	SecondaryColor = lipgloss.Color("#567BA8") // Masthead blue
	AccentColor    = lipgloss.Color("#C9B79C") // Aged paper

	BackgroundColor = lipgloss.Color("#121212")
	SurfaceColor    = lipgloss.Color("#1F2430")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	UnreadColor  = lipgloss.Color("#F2C14E")
	ReadColor    = lipgloss.Color("#64748B")
	ErrorColor   = lipgloss.Color("#EF4444")
	SuccessColor = lipgloss.Color("#10B981")
)

var (
	LogoStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)

	// list titles read like a masthead strip
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Background(SecondaryColor).
			Bold(true).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Underline(true).
			Bold(true)

	KickerStyle   = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	SectionStyle  = lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	HelpStyle     = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
	TimeStyle     = lipgloss.NewStyle().Foreground(MutedColor).Faint(true)
	EmptyStyle    = lipgloss.NewStyle()
	ReadItemStyle = lipgloss.NewStyle().Foreground(ReadColor)

	UnreadItemStyle = lipgloss.NewStyle().
			Foreground(UnreadColor).
			Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	SeparatorStyle = lipgloss.NewStyle().Foreground(SurfaceColor)

	StatusInfoStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	StatusSuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	StatusWarnStyle    = lipgloss.NewStyle().Foreground(UnreadColor)
	StatusErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
)

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func GetWelcomeMessage() string {
	return GetCompactBanner(MsgNoStories + " ctrl+l: sections • ctrl+r: reload")
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner returns the masthead printed by the version command.
func Banner(version string) string {
	lines := append([]string{}, LogoLines...)
	lines = append(lines, "")

	tagline := "Top Stories Reader"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline = fmt.Sprintf("%s %s", tagline, version)
	}
	lines = append(lines, tagline)

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	banner := border.Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))
	rule := lipgloss.NewStyle().Foreground(AccentColor).Render("━━━ ◆ ━━━")

	return lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.NewStyle().Width(70).Align(lipgloss.Center).Render(banner),
		lipgloss.NewStyle().Width(70).Align(lipgloss.Center).MarginBottom(1).Render(rule),
	)
}

func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
