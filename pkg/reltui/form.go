package reltui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)

const (
	fieldPR = iota
	fieldRubric
	fieldText
	fieldAuthor
	fieldCount
)

// FormResult holds the values of a completed fragment form.
type FormResult struct {
	Rubric string
	Text   string
	Author string
	PR     int
}

// FormModel is the interactive fragment form. It walks through the PR
// number, rubric, entry text and author fields, validating each on
// enter.
type FormModel struct {
	err     error
	inputs  []textinput.Model
	rubrics []string
	result  FormResult
	focus   int
	width   int
	height  int
	done    bool
	aborted bool
}

func NewFormModel(rubrics []string) *FormModel {
	inputs := make([]textinput.Model, fieldCount)

	for i := range inputs {
		ti := textinput.New()
		ti.PromptStyle = promptStyle

		switch i {
		case fieldPR:
			ti.Placeholder = "1234"
			ti.CharLimit = 10
		case fieldRubric:
			ti.Placeholder = strings.Join(rubrics, ", ")
		case fieldText:
			ti.Placeholder = "One sentence describing the change."
			ti.Width = 60
		case fieldAuthor:
			ti.Placeholder = "github-handle"
		}

		inputs[i] = ti
	}

	inputs[fieldPR].Focus()

	return &FormModel{
		inputs:  inputs,
		rubrics: rubrics,
	}
}

// Result returns the collected values. The second return is false until
// the form has been submitted, and stays false after an abort.
func (m *FormModel) Result() (FormResult, bool) {
	return m.result, m.done
}

func (m *FormModel) Init() tea.Cmd {
	return textinput.Blink
}

//nolint:ireturn // Third-party.
func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true

			return m, tea.Quit

		case "enter":
			if err := m.validateField(m.focus); err != nil {
				m.err = err

				return m, nil
			}

			m.err = nil

			if m.focus == fieldCount-1 {
				m.collect()
				m.done = true

				return m, tea.Quit
			}

			return m, m.setFocus(m.focus + 1)

		case "tab", "down":
			return m, m.setFocus((m.focus + 1) % fieldCount)

		case "shift+tab", "up":
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		}
	}

	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *FormModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder

	labels := []string{"PR number", "Rubric", "Entry text", "Author"}
	for i, ti := range m.inputs {
		b.WriteString(promptStyle.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(ti.View())
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(errorMark.String())
		b.WriteString(" ")
		b.WriteString(m.err.Error())
		b.WriteString("\n")
	}

	b.WriteString("\nenter accepts a field, esc aborts\n")

	return b.String()
}

func (m *FormModel) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i

	return m.inputs[i].Focus()
}

func (m *FormModel) validateField(i int) error {
	val := strings.TrimSpace(m.inputs[i].Value())

	switch i {
	case fieldPR:
		if _, err := strconv.Atoi(val); err != nil {
			return fmt.Errorf("PR must be a number, got %q", val)
		}

	case fieldRubric:
		if !slices.Contains(m.rubrics, val) {
			return fmt.Errorf("rubric %q is not declared, pick one of: %s",
				val, strings.Join(m.rubrics, ", "))
		}

	case fieldText:
		if val == "" {
			return errors.New("the entry text must not be empty")
		}

	case fieldAuthor:
		if val == "" {
			return errors.New("the author must not be empty")
		}
	}

	return nil
}

func (m *FormModel) collect() {
	pr, _ := strconv.Atoi(strings.TrimSpace(m.inputs[fieldPR].Value()))

	m.result = FormResult{
		PR:     pr,
		Rubric: strings.TrimSpace(m.inputs[fieldRubric].Value()),
		Text:   strings.TrimSpace(m.inputs[fieldText].Value()),
		Author: strings.TrimSpace(m.inputs[fieldAuthor].Value()),
	}
}
