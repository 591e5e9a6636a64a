// Package scoring implements the deterministic four-factor match score
// between a resume and a job posting. The engine is a pure function of its
// inputs: embeddings must already be populated by the caller.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cvmatch/cv-match/internal/logger"
	"github.com/cvmatch/cv-match/internal/profile"
)

// Default weights of the four sub-scores in the overall match score. The
// distribution is tuned empirically, so it is configuration rather than part
// of the formula's structure.
const (
	DefaultSemanticWeight   = 0.40
	DefaultSkillsWeight     = 0.25
	DefaultExperienceWeight = 0.20
	DefaultKeywordWeight    = 0.15
)

// Weights carries the sub-score weights of the overall match score.
type Weights struct {
	Semantic   float64 `mapstructure:"semantic"`
	Skills     float64 `mapstructure:"skills"`
	Experience float64 `mapstructure:"experience"`
	Keywords   float64 `mapstructure:"keywords"`
}

// DefaultWeights returns the documented default distribution.
func DefaultWeights() Weights {
	return Weights{
		Semantic:   DefaultSemanticWeight,
		Skills:     DefaultSkillsWeight,
		Experience: DefaultExperienceWeight,
		Keywords:   DefaultKeywordWeight,
	}
}

// Validate rejects weight sets that do not form a sane distribution.
func (w Weights) Validate() error {
	for name, value := range map[string]float64{
		"semantic":   w.Semantic,
		"skills":     w.Skills,
		"experience": w.Experience,
		"keywords":   w.Keywords,
	} {
		if value < 0 {
			return fmt.Errorf("%s weight must not be negative", name)
		}
	}

	sum := w.Semantic + w.Skills + w.Experience + w.Keywords
	if math.Abs(sum-1) > 0.01 {
		return fmt.Errorf("weights must sum to 1.0, got %.3f", sum)
	}

	return nil
}

// MatchResult is the outcome of scoring one resume against one job. Created
// on demand and never persisted by the engine itself.
type MatchResult struct {
	ResumeID string `json:"resume_id"`
	JobID    string `json:"job_id"`

	OverallScore    int     `json:"overall_score"`
	SemanticScore   float64 `json:"semantic_score"`
	SkillsScore     float64 `json:"skills_score"`
	ExperienceScore float64 `json:"experience_score"`
	KeywordScore    float64 `json:"keyword_score"`

	MatchedSkills []string `json:"matched_skills,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`
	Explanations  []string `json:"explanations,omitempty"`
}

// Engine computes match scores. Stateless and safe for concurrent use.
type Engine struct {
	weights Weights
	logger  *zap.Logger
	now     func() time.Time
}

// NewEngine creates a scoring engine with the provided weights. Invalid or
// zero weights fall back to the defaults.
func NewEngine(weights Weights, logger *zap.Logger) *Engine {
	if err := weights.Validate(); err != nil {
		weights = DefaultWeights()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		weights: weights,
		logger:  logger,
		now:     time.Now,
	}
}

// Weights returns the engine's active weight distribution.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Score computes the weighted four-factor match between resume and job.
func (e *Engine) Score(resume *profile.Resume, job *profile.Job) *MatchResult {
	result := &MatchResult{
		ResumeID: resume.ID,
		JobID:    job.ID,
	}

	result.SemanticScore = e.semanticScore(resume, job, result)
	result.SkillsScore = e.skillsScore(resume, job, result)
	result.ExperienceScore = experienceScore(resume, job, e.now().Year())

	resumeText := resume.RawText
	if resumeText == "" {
		resumeText = profile.NormalizeResume(resume)
	}
	keywordScore, _, missingKeywords := KeywordScore(job, resumeText)
	result.KeywordScore = keywordScore
	if len(missingKeywords) > 0 {
		limit := len(missingKeywords)
		if limit > 5 {
			limit = 5
		}
		result.Explanations = append(result.Explanations,
			fmt.Sprintf("resume is missing job keywords such as %v", missingKeywords[:limit]))
	}

	overall := e.weights.Semantic*result.SemanticScore +
		e.weights.Skills*result.SkillsScore +
		e.weights.Experience*result.ExperienceScore +
		e.weights.Keywords*result.KeywordScore
	result.OverallScore = clampScore(int(math.Round(overall)))

	e.logger.Debug("match scored",
		zap.String(logger.FieldResume, resume.ID),
		zap.String(logger.FieldJob, job.ID),
		zap.Int("overall", result.OverallScore),
		zap.Float64("semantic", result.SemanticScore),
		zap.Float64("skills", result.SkillsScore),
		zap.Float64("experience", result.ExperienceScore),
		zap.Float64("keywords", result.KeywordScore),
	)

	return result
}

// RankJobs scores the resume against every job and returns the results
// ordered by overall score, best first, truncated to limit. Ties keep the
// input order.
func (e *Engine) RankJobs(resume *profile.Resume, jobs []*profile.Job, limit int) []*MatchResult {
	results := make([]*MatchResult, 0, len(jobs))
	for _, job := range jobs {
		results = append(results, e.Score(resume, job))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallScore > results[j].OverallScore
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results
}

func (e *Engine) semanticScore(resume *profile.Resume, job *profile.Job, result *MatchResult) float64 {
	if resume.Embedding == nil || job.Embedding == nil {
		result.Explanations = append(result.Explanations, "semantic similarity not scored: embedding missing")
		return 0
	}

	a, b := resume.Embedding.Vector, job.Embedding.Vector
	if len(a) != len(b) {
		result.Explanations = append(result.Explanations,
			fmt.Sprintf("semantic similarity not scored: embedding dimensions differ (%d vs %d)", len(a), len(b)))
		return 0
	}

	return SemanticScore(a, b)
}

func (e *Engine) skillsScore(resume *profile.Resume, job *profile.Job, result *MatchResult) float64 {
	jobSkills := dedupeSkills(job.Skills)
	resumeSkills := resume.SkillNames()

	if len(jobSkills) == 0 {
		result.Explanations = append(result.Explanations, "job lists no required skills")
		return 0
	}
	if len(resumeSkills) == 0 {
		result.MissingSkills = jobSkills
		result.Explanations = append(result.Explanations, "resume lists no skills")
		return 0
	}

	matched := make([]string, 0, len(jobSkills))
	missing := make([]string, 0)

	for _, required := range jobSkills {
		found := false
		for _, candidate := range resumeSkills {
			if profile.MatchesSkill(required, candidate) {
				found = true
				break
			}
		}
		if found {
			matched = append(matched, required)
		} else {
			missing = append(missing, required)
		}
	}

	result.MatchedSkills = matched
	result.MissingSkills = missing
	result.Explanations = append(result.Explanations,
		fmt.Sprintf("matched %d of %d required skills", len(matched), len(jobSkills)))

	return float64(len(matched)) / float64(len(jobSkills)) * 100
}

func dedupeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, skill)
	}
	return result
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
