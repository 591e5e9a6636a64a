package profile

import "time"

// SuggestionType classifies what part of the resume a suggestion targets.
type SuggestionType string

const (
	SuggestionContent    SuggestionType = "content"
	SuggestionFormatting SuggestionType = "formatting"
	SuggestionKeywords   SuggestionType = "keywords"
	SuggestionStructure  SuggestionType = "structure"
	SuggestionGrammar    SuggestionType = "grammar"
)

// Priority orders suggestions for presentation.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Impact estimates how much a suggestion would move the resume's score.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Suggestion is a single improvement proposal. Suggestions are immutable once
// generated; flipping Applied is a state transition owned by the caller, not
// the engine.
type Suggestion struct {
	Type      SuggestionType `json:"type"`
	Priority  Priority       `json:"priority"`
	Section   string         `json:"section,omitempty"`
	Current   string         `json:"current,omitempty"`
	Suggested string         `json:"suggested"`
	Impact    Impact         `json:"impact,omitempty"`
	Applied   bool           `json:"applied,omitempty"`
	AppliedAt *time.Time     `json:"applied_at,omitempty"`
}
