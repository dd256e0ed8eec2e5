// Package views provides TUI view components for the Pathway application.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pathway-dev/pathway/internal/assessment"
	"github.com/pathway-dev/pathway/internal/tui"
)

// ============================================================================
// QuestionModel
// ============================================================================

// maxQuestionWidth is the maximum width for the question box.
const maxQuestionWidth = 90

// QuestionModel renders the input widget for one question and emits a
// single tui.AnswerMsg when the user confirms. It holds only draft
// state; a fresh instance is created for every question, so re-rendering
// the same question always starts from the type-appropriate empty or
// default draft.
type QuestionModel struct {
	question assessment.Question

	// Draft state by question type. Only the fields matching the
	// question's type are ever touched.
	cursor    int             // row cursor for options / skills
	picked    []string        // multi-select, in selection order
	pickedSet map[string]bool // membership for toggling
	choice    string          // single-choice
	levelIdx  map[string]int  // skill -> index into levelScale
	value     int             // slider
	input     textinput.Model // free text

	// levelScale is the question's proficiency levels with the
	// "not selected" sentinel prepended at index 0.
	levelScale []string

	width  int
	height int
}

// NewQuestionModel creates a QuestionModel with the type-appropriate
// initial draft: empty set for multi-select, sentinel levels for skill
// rating, default/midpoint for slider, empty string otherwise.
func NewQuestionModel(q assessment.Question, width, height int) QuestionModel {
	m := QuestionModel{
		question:  q,
		pickedSet: make(map[string]bool),
		width:     width,
		height:    height,
	}

	switch q.Type {
	case assessment.TypeSkillRating:
		m.levelScale = append([]string{assessment.LevelNotSelected}, q.Levels...)
		m.levelIdx = make(map[string]int, len(q.Skills))
		for _, skill := range q.Skills {
			m.levelIdx[skill] = 0
		}
	case assessment.TypeSlider:
		m.value = q.SliderStart()
	case assessment.TypeFreeText:
		ti := textinput.New()
		ti.Placeholder = q.Placeholder
		if ti.Placeholder == "" {
			ti.Placeholder = "Type your answer..."
		}
		ti.CharLimit = 500
		ti.Width = maxQuestionWidth - 12
		ti.Focus()
		m.input = ti
	}

	return m
}

// Init returns the initial command for the question view.
func (m QuestionModel) Init() tea.Cmd {
	if m.question.Type == assessment.TypeFreeText {
		return textinput.Blink
	}
	return nil
}

// Draft returns the answer as currently drafted. For skill rating the
// full skill set is always present, unrated skills at the sentinel.
func (m QuestionModel) Draft() assessment.Answer {
	switch m.question.Type {
	case assessment.TypeMultiSelect:
		return assessment.MultiSelect(m.picked...)
	case assessment.TypeSingleChoice:
		return assessment.Choose(m.choice)
	case assessment.TypeSkillRating:
		levels := make(map[string]string, len(m.question.Skills))
		for _, skill := range m.question.Skills {
			levels[skill] = m.levelScale[m.levelIdx[skill]]
		}
		return assessment.Skills(levels)
	case assessment.TypeFreeText:
		return assessment.Text(strings.TrimSpace(m.input.Value()))
	case assessment.TypeSlider:
		return assessment.Slider(m.value)
	}
	return assessment.Answer{}
}

// CanSubmit reports whether the draft passes the question's required
// guard. While false the confirm key does nothing; no error is shown.
func (m QuestionModel) CanSubmit() bool {
	return m.question.Complete(m.Draft())
}

// Update handles messages for the question view.
func (m QuestionModel) Update(msg tea.Msg) (QuestionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.question.Type {
		case assessment.TypeMultiSelect:
			return m.updateMultiSelect(msg)
		case assessment.TypeSingleChoice:
			return m.updateSingleChoice(msg)
		case assessment.TypeSkillRating:
			return m.updateSkillRating(msg)
		case assessment.TypeSlider:
			return m.updateSlider(msg)
		case assessment.TypeFreeText:
			return m.updateFreeText(msg)
		}
	}

	if m.question.Type == assessment.TypeFreeText {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m QuestionModel) updateMultiSelect(msg tea.KeyMsg) (QuestionModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyUp, "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case tui.KeyDown, "j":
		if m.cursor < len(m.question.Options)-1 {
			m.cursor++
		}
	case tui.KeySpace, "x":
		if len(m.question.Options) == 0 {
			return m, nil
		}
		m.toggleOption(m.question.Options[m.cursor])
	case tui.KeyEnter:
		return m.submit()
	}
	return m, nil
}

func (m QuestionModel) updateSingleChoice(msg tea.KeyMsg) (QuestionModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyUp, "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case tui.KeyDown, "j":
		if m.cursor < len(m.question.Options)-1 {
			m.cursor++
		}
	case tui.KeySpace, "x":
		if len(m.question.Options) == 0 {
			return m, nil
		}
		m.choice = m.question.Options[m.cursor]
	case tui.KeyEnter:
		// Enter picks the hovered option and confirms in one press.
		if m.choice == "" && len(m.question.Options) > 0 {
			m.choice = m.question.Options[m.cursor]
		}
		return m.submit()
	}
	return m, nil
}

func (m QuestionModel) updateSkillRating(msg tea.KeyMsg) (QuestionModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyUp, "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case tui.KeyDown, "j":
		if m.cursor < len(m.question.Skills)-1 {
			m.cursor++
		}
	case tui.KeyRight, "l":
		if len(m.question.Skills) == 0 {
			return m, nil
		}
		skill := m.question.Skills[m.cursor]
		if m.levelIdx[skill] < len(m.levelScale)-1 {
			m.levelIdx[skill]++
		}
	case tui.KeyLeft, "h":
		if len(m.question.Skills) == 0 {
			return m, nil
		}
		skill := m.question.Skills[m.cursor]
		if m.levelIdx[skill] > 0 {
			m.levelIdx[skill]--
		}
	case tui.KeyEnter:
		return m.submit()
	}
	return m, nil
}

func (m QuestionModel) updateSlider(msg tea.KeyMsg) (QuestionModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyRight, "l", tui.KeyUp, "k":
		if m.value < m.question.Max {
			m.value++
		}
	case tui.KeyLeft, "h", tui.KeyDown, "j":
		if m.value > m.question.Min {
			m.value--
		}
	case tui.KeyEnter:
		return m.submit()
	}
	return m, nil
}

func (m QuestionModel) updateFreeText(msg tea.KeyMsg) (QuestionModel, tea.Cmd) {
	if msg.String() == tui.KeyEnter {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// toggleOption adds or removes an option, preserving selection order
// for the ones that remain.
func (m *QuestionModel) toggleOption(option string) {
	if m.pickedSet[option] {
		delete(m.pickedSet, option)
		for i, o := range m.picked {
			if o == option {
				m.picked = append(m.picked[:i], m.picked[i+1:]...)
				break
			}
		}
		return
	}
	m.pickedSet[option] = true
	m.picked = append(m.picked, option)
}

// submit emits the draft if the guard passes; otherwise it is a no-op.
func (m QuestionModel) submit() (QuestionModel, tea.Cmd) {
	if !m.CanSubmit() {
		return m, nil
	}
	answer := m.Draft()
	questionID := m.question.ID
	return m, func() tea.Msg {
		return tui.AnswerMsg{QuestionID: questionID, Answer: answer}
	}
}

// View renders the question view.
func (m QuestionModel) View() string {
	var b strings.Builder

	questionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E5E7EB")).
		Bold(true)

	b.WriteString(questionStyle.Render(m.question.Prompt))
	b.WriteString("\n\n")

	switch m.question.Type {
	case assessment.TypeMultiSelect:
		b.WriteString(m.viewMultiSelect())
	case assessment.TypeSingleChoice:
		b.WriteString(m.viewSingleChoice())
	case assessment.TypeSkillRating:
		b.WriteString(m.viewSkillRating())
	case assessment.TypeSlider:
		b.WriteString(m.viewSlider())
	case assessment.TypeFreeText:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	boxWidth := maxQuestionWidth
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}

func (m QuestionModel) viewMultiSelect() string {
	var b strings.Builder
	for i, opt := range m.question.Options {
		cursor := "  "
		if i == m.cursor {
			cursor = "❯ "
		}
		check := "[ ]"
		if m.pickedSet[opt] {
			check = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, check, opt)
		if i == m.cursor {
			b.WriteString(tui.SelectedStyle.Render(line))
		} else if m.pickedSet[opt] {
			b.WriteString(tui.SuccessStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m QuestionModel) viewSingleChoice() string {
	var b strings.Builder
	for i, opt := range m.question.Options {
		cursor := "  "
		if i == m.cursor {
			cursor = "❯ "
		}
		mark := "( )"
		if opt == m.choice {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, opt)
		if i == m.cursor {
			b.WriteString(tui.SelectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m QuestionModel) viewSkillRating() string {
	var b strings.Builder
	for i, skill := range m.question.Skills {
		cursor := "  "
		if i == m.cursor {
			cursor = "❯ "
		}
		level := m.levelScale[m.levelIdx[skill]]
		var rendered string
		if level == assessment.LevelNotSelected {
			rendered = tui.DimStyle.Render("not rated")
		} else {
			rendered = tui.SuccessStyle.Render(level)
		}
		name := fmt.Sprintf("%-20s", skill)
		if i == m.cursor {
			name = tui.SelectedStyle.Render(name)
		}
		b.WriteString(fmt.Sprintf("%s%s ◂ %s ▸", cursor, name, rendered))
		b.WriteString("\n")
	}
	return b.String()
}

func (m QuestionModel) viewSlider() string {
	q := m.question
	span := q.Max - q.Min
	if span <= 0 {
		span = 1
	}
	const track = 30
	pos := (m.value - q.Min) * (track - 1) / span

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d ", q.Min))
	for i := 0; i < track; i++ {
		if i == pos {
			b.WriteString(tui.SelectedStyle.Render("●"))
		} else {
			b.WriteString(tui.DimStyle.Render("─"))
		}
	}
	b.WriteString(fmt.Sprintf(" %d", q.Max))

	label := fmt.Sprintf("%d", m.value)
	if q.Unit != "" {
		label = fmt.Sprintf("%d %s", m.value, q.Unit)
	}
	b.WriteString("\n\n")
	b.WriteString(tui.SuccessStyle.Render(label))
	b.WriteString("\n")
	return b.String()
}

func (m QuestionModel) viewFooter() string {
	var hints []string
	switch m.question.Type {
	case assessment.TypeMultiSelect:
		hints = []string{"Space to toggle", "↑↓ to navigate", "Enter to confirm"}
	case assessment.TypeSingleChoice:
		hints = []string{"↑↓ to navigate", "Enter to choose"}
	case assessment.TypeSkillRating:
		hints = []string{"↑↓ skills", "←→ level", "Enter to confirm"}
	case assessment.TypeSlider:
		hints = []string{"←→ to adjust", "Enter to confirm"}
	case assessment.TypeFreeText:
		hints = []string{"Enter to send"}
	}

	footer := tui.DimStyle.Render(strings.Join(hints, " · "))
	if !m.CanSubmit() {
		footer += "\n" + tui.WarningStyle.Render("An answer is required before continuing")
	}
	return footer
}
