package reltui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/relnote/relnote/pkg/release"
)

var (
	spinnerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	fragmentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("211"))
	blockStyle        = lipgloss.NewStyle().Margin(1, 2)
	checkMark         = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).SetString("✓")
	errorMark         = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).SetString("✗")
)

// teaMsgWriteLog carries a log line into the running program, where it
// is printed above the progress view.
type teaMsgWriteLog string

// BuildModel renders release build progress: one line per folded-in
// fragment plus an overall progress bar.
type BuildModel struct {
	err            error
	version        string
	spinner        spinner.Model
	progress       progress.Model
	totalFragments int
	addedFragments int
	width          int
	height         int
	mu             sync.RWMutex
	done           bool
}

func NewBuildModel() *BuildModel {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	s := spinner.New()
	s.Style = spinnerStyle

	return &BuildModel{
		spinner:  s,
		progress: p,
		mu:       sync.RWMutex{},
	}
}

func (m *BuildModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.progress.SetPercent(0))
}

//nolint:ireturn // Third-party.
func (m *BuildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}

	case teaMsgWriteLog:
		return m, m.printLog(msg)

	case release.EventSetFragmentTotal:
		m.mu.Lock()
		defer m.mu.Unlock()

		m.totalFragments = int(msg)

	case release.EventAddedFragment:
		m.mu.Lock()
		defer m.mu.Unlock()

		icon := checkMark
		if msg.Err != nil {
			icon = errorMark
		}

		m.addedFragments++
		progressCmd := m.progress.SetPercent(float64(m.addedFragments) / float64(m.totalFragments))

		return m, tea.Batch(
			progressCmd,
			tea.Printf("%s %s", icon, msg.Name),
		)

	case release.EventDone:
		// Allow previously sent messages to be drawn, then linger on the
		// final frame briefly before exiting.
		record := tea.Tick(time.Millisecond*100, func(_ time.Time) tea.Msg {
			m.mu.Lock()
			defer m.mu.Unlock()

			m.err = msg.Err
			m.version = msg.Version
			m.done = true

			return nil
		})
		linger := tea.Tick(time.Millisecond*500, func(_ time.Time) tea.Msg {
			return nil
		})

		return m, tea.Sequence(record, linger, tea.Quit)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case progress.FrameMsg:
		newModel, cmd := m.progress.Update(msg)
		if newModel, ok := newModel.(progress.Model); ok {
			m.progress = newModel
		}

		return m, cmd
	}

	return m, nil
}

func (m *BuildModel) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return m.errorView()
	}

	if m.done {
		return blockStyle.Render(fmt.Sprintf("Done! Built release %s.\n", m.version))
	}

	w := lipgloss.Width(strconv.Itoa(m.totalFragments))
	fragmentCount := fmt.Sprintf(" %*d/%*d", w, m.addedFragments, w, m.totalFragments)

	prog := blockStyle.Render(m.progress.View() + fragmentCount)
	progGap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(prog)))

	spin := m.spinner.View() + " "
	info := lipgloss.NewStyle().
		MaxWidth(max(0, m.width-lipgloss.Width(spin))).
		Render("Assembling " + fragmentWordStyle.Render("fragments"))
	spinGap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(spin+info)))

	return spin + info + spinGap + "\n" + prog + progGap + "\n"
}

func (m *BuildModel) errorView() string {
	msg := strings.Trim(m.err.Error(), "\r\n")

	return blockStyle.Width(max(0, m.width-2)).Render(msg + "\n")
}

func (m *BuildModel) printLog(msg teaMsgWriteLog) tea.Cmd {
	line := strings.Trim(string(msg), "\r\n")

	return tea.Println(lipgloss.NewStyle().Width(max(0, m.width-2)).Render(line))
}
