// Package ui renders the terminal views: answers as markdown, passages
// with per-index disclosure, the health panel, and status lines.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"icc-assistant/internal/api"
	"icc-assistant/internal/health"
	"icc-assistant/internal/query"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	badgeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// Display handles terminal output
type Display struct {
	width    int
	renderer *glamour.TermRenderer

	spinnerActive bool
	spinnerDone   chan bool
}

// NewDisplay creates a display sized to the current terminal
func NewDisplay() *Display {
	width := terminalWidth()

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width-4, 100)),
	)

	return &Display{
		width:       width,
		renderer:    renderer,
		spinnerDone: make(chan bool),
	}
}

// PrintWelcome displays the welcome banner
func (d *Display) PrintWelcome(endpoint string) {
	fmt.Println(titleStyle.Render("ICC Knowledge Assistant"))
	fmt.Println(subtleStyle.Render("Answers are grounded in retrieved passages from the policy document store."))
	fmt.Println(subtleStyle.Render(fmt.Sprintf("Backend: %s", endpoint)))
	fmt.Println()
}

// PrintHelp lists the chat commands
func (d *Display) PrintHelp() {
	help := []string{
		"/help          show this help",
		"/sources       re-print the passages of the last answer",
		"/expand N      expand passage N",
		"/collapse N    collapse passage N",
		"/topk N        set passages per query (1-10)",
		"/health        refresh the backend health panel",
		"/agent         toggle agent mode (admin only)",
		"/logout        log out",
		"/exit          quit",
	}
	for _, line := range help {
		fmt.Println(subtleStyle.Render("  " + line))
	}
	fmt.Println()
}

// PrintGoodbye displays the goodbye message
func (d *Display) PrintGoodbye() {
	fmt.Println(infoStyle.Render("Goodbye!"))
}

// PrintError displays an error
func (d *Display) PrintError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %v", err)))
}

// PrintFailure displays a user-facing failure message
func (d *Display) PrintFailure(msg string) {
	fmt.Println(errorStyle.Render("✗ " + msg))
}

// PrintInfo displays an info message
func (d *Display) PrintInfo(msg string) {
	fmt.Println(infoStyle.Render("ℹ " + msg))
}

// PrintWarning displays a warning message
func (d *Display) PrintWarning(msg string) {
	fmt.Println(warnStyle.Render("⚠ " + msg))
}

// PrintSuccess displays a success message
func (d *Display) PrintSuccess(msg string) {
	fmt.Println(successStyle.Render("✓ " + msg))
}

// PrintLoggedIn announces the active identity
func (d *Display) PrintLoggedIn(user api.User) {
	d.PrintSuccess(fmt.Sprintf("Logged in as %s (%s)", user.Username, user.Role))
}

// PrintPrompt displays the question input prompt
func (d *Display) PrintPrompt(topK int, agentMode bool) {
	badge := ""
	if agentMode {
		badge = badgeStyle.Render("[agent] ")
	}
	fmt.Printf("\n%s%s", badge, promptStyle.Render(fmt.Sprintf("ask (top_k=%d) ❯ ", topK)))
}

// PrintAnswer renders the generated answer as markdown
func (d *Display) PrintAnswer(answer string, agentMode bool) {
	fmt.Println()
	header := "Answer"
	if agentMode {
		header += " " + badgeStyle.Render("[AI Agent mode]")
	}
	fmt.Println(headerStyle.Render(header))

	if d.renderer != nil {
		if rendered, err := d.renderer.Render(answer); err == nil {
			fmt.Println(strings.TrimRight(rendered, "\n"))
			return
		}
	}
	fmt.Println(answer)
}

// PrintPassages renders the retrieved passages honoring per-passage
// disclosure: collapsed passages show only their header line, expanded
// ones show full text, distance and every metadata entry
func (d *Display) PrintPassages(passages []query.Passage, disclosure *query.Disclosure) {
	fmt.Println()
	if len(passages) == 0 {
		fmt.Println(subtleStyle.Render("No supporting passages were found for this question."))
		return
	}

	fmt.Println(headerStyle.Render("Sources"))
	for i, passage := range passages {
		header := fmt.Sprintf("Passage %d (source: %s)", i+1, passage.SourceLabel())
		if disclosure != nil && disclosure.Expanded(i) {
			fmt.Println(infoStyle.Render("▼ " + header))
			d.printExpandedPassage(passage)
		} else {
			fmt.Println(subtleStyle.Render(fmt.Sprintf("▶ %s — /expand %d for details", header, i+1)))
		}
	}
}

// printExpandedPassage shows full text plus the distance/metadata
// caption line
func (d *Display) printExpandedPassage(passage query.Passage) {
	for _, line := range strings.Split(strings.TrimRight(passage.Text, "\n"), "\n") {
		fmt.Println("  " + line)
	}

	caption := []string{fmt.Sprintf("distance=%s", passage.FormatDistance())}
	caption = append(caption, passage.MetadataLines()...)
	fmt.Println(subtleStyle.Render("  " + strings.Join(caption, " | ")))
}

// PrintHealth renders the health panel from the last-known snapshot
func (d *Display) PrintHealth(snap *health.Snapshot) {
	fmt.Println()
	fmt.Println(headerStyle.Render("Backend health"))
	if snap == nil {
		fmt.Println(subtleStyle.Render("  no health information yet"))
		return
	}

	for _, check := range snap.Checks {
		if health.Classify(check) == health.StatusProblem {
			fmt.Println(errorStyle.Render("  ● " + check))
		} else {
			fmt.Println(successStyle.Render("  ● " + check))
		}
	}
	fmt.Println(subtleStyle.Render("  as of " + snap.FetchedAt.Format("15:04:05")))
}

// ShowSpinner displays a spinner with a message until StopSpinner
func (d *Display) ShowSpinner(msg string) {
	if d.spinnerActive {
		d.StopSpinner()
	}

	d.spinnerActive = true
	d.spinnerDone = make(chan bool)

	go func() {
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		i := 0
		for {
			select {
			case <-d.spinnerDone:
				fmt.Printf("\r\033[2K")
				return
			default:
				fmt.Printf("\r%s %s", infoStyle.Render(frames[i]), subtleStyle.Render(msg))
				i = (i + 1) % len(frames)
				time.Sleep(80 * time.Millisecond)
			}
		}
	}()
}

// StopSpinner stops the active spinner and clears its line
func (d *Display) StopSpinner() {
	if d.spinnerActive {
		d.spinnerActive = false
		d.spinnerDone <- true
		time.Sleep(10 * time.Millisecond) // let the goroutine clear the line
	}
}

// PrintSeparator prints a visual separator
func (d *Display) PrintSeparator() {
	fmt.Println(subtleStyle.Render(strings.Repeat("─", min(d.width, 80))))
}

// terminalWidth returns the terminal width, with a sane fallback
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 100
	}
	return width
}
