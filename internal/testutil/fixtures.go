// Package testutil provides shared test fixtures for pathway tests.
package testutil

import "github.com/pathway-dev/pathway/internal/assessment"

// Questions returns one question of every type, in a fixed order, for
// tests that drive a whole session.
func Questions() []assessment.Question {
	return []assessment.Question{
		{
			ID:       "q-interests",
			Type:     assessment.TypeMultiSelect,
			Prompt:   "Which fields interest you?",
			Required: true,
			Options:  []string{"Engineering", "Design", "Data", "Product"},
		},
		{
			ID:       "q-relocate",
			Type:     assessment.TypeSingleChoice,
			Prompt:   "Are you open to relocation?",
			Required: true,
			Options:  []string{"Yes", "No"},
		},
		{
			ID:       "q-skills",
			Type:     assessment.TypeSkillRating,
			Prompt:   "Rate your proficiency:",
			Required: true,
			Skills:   []string{"React", "SQL"},
			Levels:   []string{"Beginner", "Intermediate", "Expert"},
		},
		{
			ID:      "q-hours",
			Type:    assessment.TypeSlider,
			Prompt:  "How many hours per day can you commit?",
			Min:     1,
			Max:     10,
			Default: 5,
			Unit:    "hours per day",
		},
		{
			ID:          "q-goals",
			Type:        assessment.TypeFreeText,
			Prompt:      "Tell me about your career goals.",
			Placeholder: "I want to...",
		},
	}
}
