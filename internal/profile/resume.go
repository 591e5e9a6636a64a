package profile

import (
	"fmt"
	"time"
)

// SkillCategory classifies an extracted skill.
type SkillCategory string

const (
	SkillTechnical     SkillCategory = "technical"
	SkillSoft          SkillCategory = "soft"
	SkillTool          SkillCategory = "tool"
	SkillFramework     SkillCategory = "framework"
	SkillCertification SkillCategory = "certification"
)

// Skill is a single skill extracted from a resume, with the extractor's
// confidence in the range [0,1].
type Skill struct {
	Name       string        `json:"name"`
	Category   SkillCategory `json:"category"`
	Confidence float64       `json:"confidence"`
}

// Embedding is a fixed-dimension vector attached to a profile, together with
// the metadata needed to decide whether it is still valid for comparison.
type Embedding struct {
	Vector      []float64 `json:"vector"`
	Model       string    `json:"model"`
	Dimensions  int       `json:"dimensions"`
	GeneratedAt time.Time `json:"generated_at"`
	// Version records the profile version the vector was generated for.
	// A resume whose Version moved past this value needs a fresh vector.
	Version int `json:"version"`
}

// ExperienceEntry is one position on a resume. EndYear of zero together with
// Current=false means the entry carries no usable date information.
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	StartYear   int    `json:"start_year,omitempty"`
	EndYear     int    `json:"end_year,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

// EducationEntry is one education record on a resume.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        int    `json:"year,omitempty"`
}

// Resume is the structured resume record the engine operates on. Version is
// monotonic and doubles as the cache-invalidation key: every content change
// bumps it, producing a new analysis cache entry and a stale embedding.
type Resume struct {
	ID              string            `json:"id"`
	Version         int               `json:"version"`
	Summary         string            `json:"summary,omitempty"`
	Experience      []ExperienceEntry `json:"experience,omitempty"`
	Education       []EducationEntry  `json:"education,omitempty"`
	TechnicalSkills []string          `json:"technical_skills,omitempty"`
	SoftSkills      []string          `json:"soft_skills,omitempty"`
	Certifications  []string          `json:"certifications,omitempty"`
	ExtractedSkills []Skill           `json:"extracted_skills,omitempty"`
	RawText         string            `json:"raw_text,omitempty"`
	Embedding       *Embedding        `json:"embedding,omitempty"`
}

// Validate checks the invariants the engine relies on.
func (r *Resume) Validate() error {
	if r == nil {
		return fmt.Errorf("resume is required")
	}
	if r.ID == "" {
		return fmt.Errorf("resume id is required")
	}
	if r.Version < 0 {
		return fmt.Errorf("resume version must not be negative")
	}
	return nil
}

// SkillNames returns the union of declared technical skills and extracted
// skill names, preserving first-seen order and dropping duplicates
// case-insensitively.
func (r *Resume) SkillNames() []string {
	names := make([]string, 0, len(r.TechnicalSkills)+len(r.ExtractedSkills))
	seen := make(map[string]struct{})

	add := func(name string) {
		key := foldSkill(name)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	for _, name := range r.TechnicalSkills {
		add(name)
	}
	for _, skill := range r.ExtractedSkills {
		add(skill.Name)
	}

	return names
}

// EmbeddingCurrent reports whether the attached embedding, if any, was
// generated for the resume's current version.
func (r *Resume) EmbeddingCurrent() bool {
	return r.Embedding != nil && len(r.Embedding.Vector) > 0 && r.Embedding.Version == r.Version
}
