package assessment

import (
	"encoding/json"
	"testing"
)

func TestSingleChoiceAnswer(t *testing.T) {
	q := Question{
		ID:       "q-relocate",
		Type:     TypeSingleChoice,
		Prompt:   "Are you open to relocation?",
		Required: true,
		Options:  []string{"Yes", "No"},
	}

	empty := Choose("")
	if q.Complete(empty) {
		t.Error("empty choice should not satisfy a required question")
	}

	a := Choose("Yes")
	if !q.Complete(a) {
		t.Error("chosen option should satisfy the question")
	}
	if got := a.Display(q); got != "Yes" {
		t.Errorf("Display: got %q, want %q", got, "Yes")
	}
}

func TestSliderAnswer(t *testing.T) {
	q := Question{
		ID:      "q-hours",
		Type:    TypeSlider,
		Min:     1,
		Max:     10,
		Default: 5,
		Unit:    "hours per day",
	}

	if got := q.SliderStart(); got != 5 {
		t.Errorf("SliderStart: got %d, want 5", got)
	}

	a := Slider(8)
	if a.Empty() {
		t.Error("slider answers always carry a value")
	}
	if got := a.Display(q); got != "8 hours per day" {
		t.Errorf("Display: got %q, want %q", got, "8 hours per day")
	}
}

func TestSliderStartFallsBackToMidpoint(t *testing.T) {
	q := Question{Type: TypeSlider, Min: 2, Max: 10, Default: 0}
	if got := q.SliderStart(); got != 6 {
		t.Errorf("SliderStart: got %d, want midpoint 6", got)
	}
}

func TestSkillRatingAnswer(t *testing.T) {
	q := Question{
		ID:     "q-skills",
		Type:   TypeSkillRating,
		Skills: []string{"React", "SQL"},
		Levels: []string{"Beginner", "Expert"},
	}

	a := Skills(map[string]string{
		"React": "Expert",
		"SQL":   LevelNotSelected,
	})

	if a.Empty() {
		t.Error("one rated skill makes the answer non-empty")
	}
	if got := a.Display(q); got != "React (Expert)" {
		t.Errorf("Display: got %q, want %q (unrated skills omitted)", got, "React (Expert)")
	}

	allSentinel := Skills(map[string]string{
		"React": LevelNotSelected,
		"SQL":   LevelNotSelected,
	})
	if !allSentinel.Empty() {
		t.Error("all-sentinel skill answer should be empty")
	}
}

func TestOptionalMultiSelectAllowsEmpty(t *testing.T) {
	q := Question{
		ID:      "q-extras",
		Type:    TypeMultiSelect,
		Options: []string{"A", "B"},
		// Required deliberately false.
	}

	empty := MultiSelect()
	if !q.Complete(empty) {
		t.Error("optional question must accept an empty selection")
	}
	if got := empty.Display(q); got != "" {
		t.Errorf("Display of empty selection: got %q, want empty", got)
	}
}

func TestMultiSelectDisplayPreservesSelectionOrder(t *testing.T) {
	q := Question{Type: TypeMultiSelect, Options: []string{"A", "B", "C"}}
	a := MultiSelect("C", "A")
	if got := a.Display(q); got != "C, A" {
		t.Errorf("Display: got %q, want %q", got, "C, A")
	}
}

func TestAnswerTypeMismatchFailsGuard(t *testing.T) {
	q := Question{ID: "q", Type: TypeFreeText}
	if q.Complete(Slider(3)) {
		t.Error("a slider answer must not satisfy a free-text question")
	}
}

func TestFreeTextWhitespaceIsEmpty(t *testing.T) {
	q := Question{Type: TypeFreeText, Required: true}
	if q.Complete(Text("   ")) {
		t.Error("whitespace-only text should not satisfy a required question")
	}
	if !q.Complete(Text("ship it")) {
		t.Error("non-empty text should satisfy the question")
	}
}

func TestAnswerJSONCarriesOnlyTheTaggedShape(t *testing.T) {
	data, err := json.Marshal(Skills(map[string]string{"React": "Expert"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["type"] != string(TypeSkillRating) {
		t.Errorf("type tag: got %v", raw["type"])
	}
	if _, ok := raw["selected"]; ok {
		t.Error("skill answer must not carry the multi-select shape")
	}

	var back Answer
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal answer: %v", err)
	}
	if back.SkillLevels["React"] != "Expert" {
		t.Errorf("round trip lost skill level: %+v", back)
	}
}

func TestAnswerJSONSliderZeroSurvives(t *testing.T) {
	data, err := json.Marshal(Slider(0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Answer
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Type != TypeSlider || back.Value != 0 {
		t.Errorf("round trip: got %+v", back)
	}
}

func TestAnswerJSONRejectsUnknownType(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`{"type":"essay","text":"hi"}`), &a); err == nil {
		t.Error("unknown type tag should fail to decode")
	}
}
