// Package tui provides a Bubble Tea terminal user interface for bingwall.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/norwind/bingwall/internal/collect"
	"github.com/norwind/bingwall/internal/config"
	"github.com/norwind/bingwall/internal/download"
	"github.com/norwind/bingwall/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	marketStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateDownloading
	StateComplete
	StateError
)

// Collector runs one metadata collection sweep. *collect.Orchestrator
// satisfies it.
type Collector interface {
	Run(ctx context.Context) (*collect.Summary, error)
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings

	collector Collector
	queue     *download.Queue

	summary *collect.Summary
	tasks   []model.DownloadTask
	err     error

	// Collection context
	ctx    context.Context
	cancel context.CancelFunc

	// Options
	downloadImages bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings, collector Collector, queue *download.Queue) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:          StateIdle,
		spinner:        sp,
		progress:       prog,
		settings:       settings,
		collector:      collector,
		queue:          queue,
		downloadImages: true,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Message types
type (
	// CollectDoneMsg is sent when the collection sweep finishes.
	CollectDoneMsg struct {
		Summary *collect.Summary
		Err     error
	}

	// EnqueueDoneMsg is sent after the collected records are enqueued.
	EnqueueDoneMsg struct {
		Count int
	}

	// TickMsg is for periodic queue polling.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			m.queue.Clear()
			return m, tea.Quit

		case "esc":
			if m.state == StateIdle {
				return m, tea.Quit
			}
			if m.state == StateCollecting || m.state == StateDownloading {
				m.cancel()
				m.queue.Clear()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateIdle {
				m.state = StateCollecting
				return m, tea.Batch(m.runCollection(), m.spinner.Tick)
			}

		case "d":
			if m.state == StateIdle {
				m.downloadImages = !m.downloadImages
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.state = StateIdle
				m.summary = nil
				m.tasks = nil
				m.err = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case CollectDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.summary = msg.Summary
		if m.downloadImages && len(msg.Summary.Records) > 0 {
			m.state = StateDownloading
			cmds = append(cmds, m.enqueueDownloads(), m.tickQueue())
		} else {
			m.state = StateComplete
		}

	case EnqueueDoneMsg:
		if msg.Count == 0 {
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateDownloading {
			m.tasks = m.queue.List()
			done := 0
			for _, task := range m.tasks {
				if task.Status.IsTerminal() {
					done++
				}
			}
			if len(m.tasks) > 0 && done == len(m.tasks) {
				m.state = StateComplete
				break
			}
			var percent float64
			if len(m.tasks) > 0 {
				percent = float64(done) / float64(len(m.tasks))
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickQueue())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickQueue returns a command to poll the download queue.
func (m Model) tickQueue() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🖼  Bing Wallpaper Collector"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Collect daily wallpapers across markets"))
	b.WriteString("\n\n")

	switch m.state {
	case StateIdle:
		b.WriteString(m.viewIdle())
	case StateCollecting:
		b.WriteString(m.viewCollecting())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewIdle() string {
	var b strings.Builder

	markets := m.settings.Markets()
	b.WriteString(subtitleStyle.Render("Ready to collect:"))
	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("  Markets:    %d", len(markets))))
	b.WriteString("\n")
	for _, market := range markets {
		b.WriteString(marketStyle.Render(fmt.Sprintf("    %s %s", market.Flag, market.Name)))
		b.WriteString("\n")
		if len(markets) > 6 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("    ... and %d more", len(markets)-1)))
			b.WriteString("\n")
			break
		}
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("  Days back:  %d", m.settings.DaysToCollect)))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("  Resolution: %s", m.settings.Resolution)))
	b.WriteString("\n\n")

	imagesCheck := "[ ]"
	if m.downloadImages {
		imagesCheck = "[×]"
	}
	b.WriteString(fmt.Sprintf("  %s Download images (d)\n", imagesCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Data path: %s", m.settings.DataPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewCollecting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Collecting wallpaper metadata..."))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.summary != nil {
		b.WriteString(successStyle.Render(fmt.Sprintf(
			"Collected %d new wallpapers (%d skipped, %d failed)",
			m.summary.Collected, m.summary.Skipped, m.summary.Failed)))
		b.WriteString("\n\n")
	}

	done := 0
	for _, task := range m.tasks {
		if task.Status.IsTerminal() {
			done++
		}
	}
	var percent float64
	if len(m.tasks) > 0 {
		percent = float64(done) / float64(len(m.tasks))
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Images: %d/%d", done, len(m.tasks))))
	b.WriteString("\n\n")

	b.WriteString(m.renderTasks())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	collected, skipped, failed := 0, 0, 0
	if m.summary != nil {
		collected = m.summary.Collected
		skipped = m.summary.Skipped
		failed = m.summary.Failed
	}
	downloaded := 0
	for _, task := range m.tasks {
		if task.Status == model.StatusCompleted {
			downloaded++
		}
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Collection Complete!\n\n"+
			"New records: %d\n"+
			"Skipped:     %d\n"+
			"Failed:      %d\n"+
			"Images:      %d",
		collected, skipped, failed, downloaded,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

// renderTasks shows the most recent download tasks with their progress.
func (m Model) renderTasks() string {
	var b strings.Builder

	shown := m.tasks
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, task := range shown {
		var style lipgloss.Style
		prefix := "•"
		detail := ""
		switch task.Status {
		case model.StatusCompleted:
			style = successStyle
			prefix = "✓"
		case model.StatusFailed:
			style = errorStyle
			prefix = "✗"
			detail = " " + task.ErrorMessage
		case model.StatusCancelled:
			style = warningStyle
			prefix = "!"
		case model.StatusInProgress:
			style = infoStyle
			prefix = "›"
			detail = fmt.Sprintf(" %.0f%% %s", task.Percent(), task.SpeedLabel())
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s %s [%s]%s", prefix, task.Title, task.Resolution, detail)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateIdle:
		return "enter: collect • d: toggle images • esc: quit"
	case StateCollecting, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// runCollection runs the metadata sweep in the background.
func (m *Model) runCollection() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.collector.Run(m.ctx)
		return CollectDoneMsg{Summary: summary, Err: err}
	}
}

// enqueueDownloads pushes every newly collected record into the queue at
// the configured resolution's matching variant.
func (m *Model) enqueueDownloads() tea.Cmd {
	return func() tea.Msg {
		tag := variantForResolution(m.settings.Resolution)
		count := 0
		for _, wp := range m.summary.Records {
			if _, err := m.queue.Enqueue(wp, tag); err == nil {
				count++
			}
		}
		return EnqueueDoneMsg{Count: count}
	}
}

// variantForResolution maps a configured resolution name onto the stored
// variant tag closest to it.
func variantForResolution(name string) string {
	switch name {
	case "FullHD":
		return "Full HD"
	case "HD":
		return "HD"
	case "Standard":
		return "Standard"
	default:
		return "UHD"
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, collector Collector, queue *download.Queue) error {
	p := tea.NewProgram(NewModel(settings, collector, queue), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
