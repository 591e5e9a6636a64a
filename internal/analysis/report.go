package analysis

import (
	"time"

	"github.com/cvmatch/cv-match/internal/profile"
)

// ContentQualityReport grades the writing quality of the resume.
type ContentQualityReport struct {
	Score      int      `json:"score"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
	Degraded   bool     `json:"degraded,omitempty"`
	Note       string   `json:"note,omitempty"`
}

// ATSReport grades how well the resume survives applicant tracking systems.
type ATSReport struct {
	Score    int      `json:"score"`
	Issues   []string `json:"issues,omitempty"`
	Degraded bool     `json:"degraded,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// SuggestionReport carries concrete improvement suggestions.
type SuggestionReport struct {
	Items    []profile.Suggestion `json:"items"`
	Degraded bool                 `json:"degraded,omitempty"`
	Note     string               `json:"note,omitempty"`
}

// SkillReport carries the skills the model extracted from the resume text.
type SkillReport struct {
	Skills   []profile.Skill `json:"skills"`
	Degraded bool            `json:"degraded,omitempty"`
	Note     string          `json:"note,omitempty"`
}

// KeywordReport grades the resume's keyword coverage for its target field.
type KeywordReport struct {
	Score    int      `json:"score"`
	Present  []string `json:"present,omitempty"`
	Missing  []string `json:"missing,omitempty"`
	Degraded bool     `json:"degraded,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// Recommendation is one prioritized action item distilled from the
// sub-analyses.
type Recommendation struct {
	Priority profile.Priority `json:"priority"`
	Message  string           `json:"message"`
}

// Report is the composite outcome of analyzing one resume version. A report
// is complete even when individual sub-analyses fell back to their defaults;
// the per-section Degraded flags record which ones did.
type Report struct {
	ResumeID      string    `json:"resume_id"`
	ResumeVersion int       `json:"resume_version"`
	GeneratedAt   time.Time `json:"generated_at"`

	OverallScore int `json:"overall_score"`

	ContentQuality ContentQualityReport `json:"content_quality"`
	ATS            ATSReport            `json:"ats"`
	Suggestions    SuggestionReport     `json:"suggestions"`
	Skills         SkillReport          `json:"skills"`
	Keywords       KeywordReport        `json:"keywords"`

	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// Degraded reports whether any sub-analysis fell back to its default.
func (r *Report) Degraded() bool {
	return r.ContentQuality.Degraded ||
		r.ATS.Degraded ||
		r.Suggestions.Degraded ||
		r.Skills.Degraded ||
		r.Keywords.Degraded
}
