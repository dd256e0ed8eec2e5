// Package assessment implements the question/answer model and the session
// state machine for the career-assessment chat flow.
package assessment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionType determines both the input widget and the shape of the answer.
type QuestionType string

const (
	TypeMultiSelect  QuestionType = "multi_select"
	TypeSingleChoice QuestionType = "single_choice"
	TypeSkillRating  QuestionType = "skill_rating"
	TypeFreeText     QuestionType = "free_text"
	TypeSlider       QuestionType = "slider"
)

// LevelNotSelected is the sentinel proficiency level for skills the user
// left unrated. It is stored in the answer but omitted from display.
const LevelNotSelected = "None"

// Question is a single assessment question. Immutable once fetched.
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Prompt   string       `json:"prompt"`
	Required bool         `json:"required"`

	// Choice types
	Options []string `json:"options,omitempty"`

	// Skill rating
	Skills []string `json:"skills,omitempty"`
	Levels []string `json:"levels,omitempty"`

	// Slider
	Min     int    `json:"min,omitempty"`
	Max     int    `json:"max,omitempty"`
	Default int    `json:"default,omitempty"`
	Unit    string `json:"unit,omitempty"`

	// Free text
	Placeholder string `json:"placeholder,omitempty"`
}

// SliderStart returns the initial draft value for a slider question:
// the declared default if it lies within [Min, Max], the midpoint otherwise.
func (q Question) SliderStart() int {
	if q.Default >= q.Min && q.Default <= q.Max {
		return q.Default
	}
	return q.Min + (q.Max-q.Min)/2
}

// Answer is a tagged union over the five answer shapes. Exactly one shape
// field is populated, selected by Type.
type Answer struct {
	Type        QuestionType      `json:"type"`
	Selected    []string          `json:"selected,omitempty"`     // multi_select, in selection order
	Choice      string            `json:"choice,omitempty"`       // single_choice
	SkillLevels map[string]string `json:"skill_levels,omitempty"` // skill_rating
	Text        string            `json:"text,omitempty"`         // free_text
	Value       int               `json:"value"`                  // slider
}

// MultiSelect builds a multi-select answer preserving selection order.
func MultiSelect(options ...string) Answer {
	return Answer{Type: TypeMultiSelect, Selected: options}
}

// Choose builds a single-choice answer.
func Choose(option string) Answer {
	return Answer{Type: TypeSingleChoice, Choice: option}
}

// Skills builds a skill-rating answer from a skill -> level mapping.
func Skills(levels map[string]string) Answer {
	return Answer{Type: TypeSkillRating, SkillLevels: levels}
}

// Text builds a free-text answer.
func Text(s string) Answer {
	return Answer{Type: TypeFreeText, Text: s}
}

// Slider builds a slider answer.
func Slider(v int) Answer {
	return Answer{Type: TypeSlider, Value: v}
}

// Empty reports whether the answer carries no user input.
// A slider always carries a value and is never empty. A skill rating is
// empty when every skill is left at the sentinel level.
func (a Answer) Empty() bool {
	switch a.Type {
	case TypeMultiSelect:
		return len(a.Selected) == 0
	case TypeSingleChoice:
		return a.Choice == ""
	case TypeSkillRating:
		for _, level := range a.SkillLevels {
			if level != LevelNotSelected {
				return false
			}
		}
		return true
	case TypeFreeText:
		return strings.TrimSpace(a.Text) == ""
	case TypeSlider:
		return false
	}
	return true
}

// Display renders the answer as a human-readable chat line.
// The owning question supplies skill ordering and the slider unit.
func (a Answer) Display(q Question) string {
	switch a.Type {
	case TypeMultiSelect:
		return strings.Join(a.Selected, ", ")
	case TypeSingleChoice:
		return a.Choice
	case TypeFreeText:
		return a.Text
	case TypeSlider:
		if q.Unit != "" {
			return fmt.Sprintf("%d %s", a.Value, q.Unit)
		}
		return fmt.Sprintf("%d", a.Value)
	case TypeSkillRating:
		// Iterate the question's skill list so output order is stable.
		var parts []string
		for _, skill := range q.Skills {
			level, ok := a.SkillLevels[skill]
			if !ok || level == LevelNotSelected {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s (%s)", skill, level))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// Matches reports whether the answer shape fits the question's type.
func (a Answer) Matches(q Question) bool {
	return a.Type == q.Type
}

// Complete reports whether the draft answer satisfies the question's
// required flag. This is the submit-guard predicate: when it returns
// false the renderer disables submission, no error is raised.
func (q Question) Complete(a Answer) bool {
	if !a.Matches(q) {
		return false
	}
	if !q.Required {
		return true
	}
	return !a.Empty()
}

// answerJSON is the wire form of Answer. Value is a pointer so that a
// slider zero can be told apart from an absent field on decode.
type answerJSON struct {
	Type        QuestionType      `json:"type"`
	Selected    []string          `json:"selected,omitempty"`
	Choice      string            `json:"choice,omitempty"`
	SkillLevels map[string]string `json:"skill_levels,omitempty"`
	Text        string            `json:"text,omitempty"`
	Value       *int              `json:"value,omitempty"`
}

// MarshalJSON encodes only the shape selected by the type tag.
func (a Answer) MarshalJSON() ([]byte, error) {
	out := answerJSON{Type: a.Type}
	switch a.Type {
	case TypeMultiSelect:
		out.Selected = a.Selected
	case TypeSingleChoice:
		out.Choice = a.Choice
	case TypeSkillRating:
		out.SkillLevels = a.SkillLevels
	case TypeFreeText:
		out.Text = a.Text
	case TypeSlider:
		v := a.Value
		out.Value = &v
	default:
		return nil, fmt.Errorf("marshal answer: unknown type %q", a.Type)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an answer and rejects unknown type tags.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var in answerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Type {
	case TypeMultiSelect, TypeSingleChoice, TypeSkillRating, TypeFreeText:
		// No extra fields to pull apart.
	case TypeSlider:
		if in.Value == nil {
			return fmt.Errorf("unmarshal answer: slider without value")
		}
	default:
		return fmt.Errorf("unmarshal answer: unknown type %q", in.Type)
	}
	a.Type = in.Type
	a.Selected = in.Selected
	a.Choice = in.Choice
	a.SkillLevels = in.SkillLevels
	a.Text = in.Text
	if in.Value != nil {
		a.Value = *in.Value
	} else {
		a.Value = 0
	}
	return nil
}
