// Package analysis orchestrates the resume sub-analyses: five independent
// model-backed checks fanned out concurrently, aggregated into one composite
// report and cached per resume version.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cvmatch/cv-match/internal/cache"
	"github.com/cvmatch/cv-match/internal/logger"
	"github.com/cvmatch/cv-match/internal/profile"
	"github.com/cvmatch/cv-match/internal/provider"
)

// The composite score is a fixed split between writing quality and ATS
// compatibility. Configured separately from the match-scoring weights.
const (
	ContentQualityWeight = 0.6
	ATSWeight            = 0.4
)

const (
	// atsCriticalThreshold is the ATS score below which the report leads
	// with a critical compatibility recommendation.
	atsCriticalThreshold = 70
	maxRecommendations   = 5

	DefaultCacheTTL = time.Hour
)

// Config carries the orchestrator tunables. Zero values select defaults.
type Config struct {
	CacheTTL  time.Duration `mapstructure:"cache-ttl"`
	CacheSize int           `mapstructure:"cache-size"`
}

type inflight struct {
	done   chan struct{}
	report *Report
	err    error
}

// Engine runs resume analyses. Safe for concurrent use; concurrent calls for
// the same resume version share a single underlying computation.
type Engine struct {
	embedder  provider.Embedder
	generator provider.Generator
	cache     *cache.Cache[*Report]
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	inflight map[cache.Key]*inflight
}

// NewEngine creates an analysis engine backed by the given provider.
func NewEngine(embedder provider.Embedder, generator provider.Generator, cfg Config, log *zap.Logger) *Engine {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		embedder:  embedder,
		generator: generator,
		cache:     cache.New[*Report](cfg.CacheTTL, cfg.CacheSize),
		logger:    log,
		now:       time.Now,
		inflight:  make(map[cache.Key]*inflight),
	}
}

// Analyze produces the composite report for a resume. Re-analyzing the same
// resume version returns the cached report without touching the provider;
// concurrent calls for the same version await one shared computation.
func (e *Engine) Analyze(ctx context.Context, resume *profile.Resume) (*Report, error) {
	if err := resume.Validate(); err != nil {
		return nil, fmt.Errorf("analyze: %w: %w", provider.ErrInvalidInput, err)
	}

	key := cache.Key{ResumeID: resume.ID, Version: resume.Version}

	// Cache lookup and in-flight registration happen under one lock so two
	// callers for the same key observe at most one underlying computation.
	e.mu.Lock()
	if report, ok := e.cache.Get(key); ok {
		e.mu.Unlock()
		e.logger.Debug("analysis cache hit", zap.String(logger.FieldResume, resume.ID))
		return report, nil
	}
	if flight, ok := e.inflight[key]; ok {
		e.mu.Unlock()
		select {
		case <-flight.done:
			return flight.report, flight.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	flight := &inflight{done: make(chan struct{})}
	e.inflight[key] = flight
	e.mu.Unlock()

	report, err := e.compute(ctx, resume)

	flight.report, flight.err = report, err
	close(flight.done)

	e.mu.Lock()
	if err == nil {
		e.cache.Put(key, report)
	}
	delete(e.inflight, key)
	e.mu.Unlock()

	return report, err
}

// Invalidate drops any cached report for the given resume version.
func (e *Engine) Invalidate(resumeID string, version int) {
	e.cache.Invalidate(cache.Key{ResumeID: resumeID, Version: version})
}

// EnsureResumeEmbedding generates and attaches an embedding when the resume
// carries none for its current version. Idempotent once populated.
func (e *Engine) EnsureResumeEmbedding(ctx context.Context, resume *profile.Resume) error {
	if err := resume.Validate(); err != nil {
		return fmt.Errorf("ensure embedding: %w: %w", provider.ErrInvalidInput, err)
	}
	if resume.EmbeddingCurrent() {
		return nil
	}

	vector, err := e.embedder.Embed(ctx, resumeText(resume))
	if err != nil {
		return fmt.Errorf("ensure embedding: resume %s: %w", resume.ID, err)
	}

	resume.Embedding = &profile.Embedding{
		Vector:      vector,
		Model:       e.embedder.EmbeddingModel(),
		Dimensions:  len(vector),
		GeneratedAt: e.now(),
		Version:     resume.Version,
	}

	return nil
}

// EnsureJobEmbeddings generates embeddings for every job that lacks one,
// batching the provider calls. Jobs already carrying a vector are skipped.
func (e *Engine) EnsureJobEmbeddings(ctx context.Context, jobs []*profile.Job) error {
	pending := make([]*profile.Job, 0, len(jobs))
	texts := make([]string, 0, len(jobs))

	for _, job := range jobs {
		if err := job.Validate(); err != nil {
			return fmt.Errorf("ensure job embeddings: %w: %w", provider.ErrInvalidInput, err)
		}
		if job.Embedding != nil && len(job.Embedding.Vector) > 0 {
			continue
		}
		pending = append(pending, job)
		texts = append(texts, profile.NormalizeJob(job))
	}

	if len(pending) == 0 {
		return nil
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("ensure job embeddings: %w", err)
	}

	generatedAt := e.now()
	for i, job := range pending {
		job.Embedding = &profile.Embedding{
			Vector:      vectors[i],
			Model:       e.embedder.EmbeddingModel(),
			Dimensions:  len(vectors[i]),
			GeneratedAt: generatedAt,
		}
	}

	return nil
}

func (e *Engine) compute(ctx context.Context, resume *profile.Resume) (*Report, error) {
	text := resumeText(resume)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("analyze: resume %s has no content: %w", resume.ID, provider.ErrInvalidInput)
	}

	report := &Report{
		ResumeID:      resume.ID,
		ResumeVersion: resume.Version,
	}

	started := e.now()

	if err := e.runSubAnalyses(ctx, text, report); err != nil {
		return nil, fmt.Errorf("analyze: resume %s: %w", resume.ID, err)
	}

	report.OverallScore = clampScore(int(math.Round(
		ContentQualityWeight*float64(report.ContentQuality.Score) +
			ATSWeight*float64(report.ATS.Score))))
	report.Recommendations = buildRecommendations(report)
	report.GeneratedAt = e.now()

	e.logger.Info("resume analyzed",
		zap.String(logger.FieldResume, resume.ID),
		zap.Int("version", resume.Version),
		zap.Int("overall", report.OverallScore),
		zap.Bool("degraded", report.Degraded()),
		zap.Duration("took", e.now().Sub(started)),
	)

	return report, nil
}

// runSubAnalyses fans out the five checks and collects all of them before
// returning. A malformed model response degrades that one section to its
// documented default; any other failure is reported after every check has
// finished.
func (e *Engine) runSubAnalyses(ctx context.Context, text string, report *Report) error {
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"content quality", func(ctx context.Context) error {
			var out ContentQualityReport
			if err := e.generator.GenerateJSON(ctx, renderPrompt(contentQualityPrompt, text), &out); err != nil {
				report.ContentQuality = ContentQualityReport{
					Degraded: true,
					Note:     "unable to parse content quality analysis",
				}
				return err
			}
			out.Score = clampScore(out.Score)
			report.ContentQuality = out
			return nil
		}},
		{"ats compatibility", func(ctx context.Context) error {
			var out ATSReport
			if err := e.generator.GenerateJSON(ctx, renderPrompt(atsPrompt, text), &out); err != nil {
				report.ATS = ATSReport{
					Degraded: true,
					Note:     "unable to parse ats compatibility analysis",
				}
				return err
			}
			out.Score = clampScore(out.Score)
			report.ATS = out
			return nil
		}},
		{"suggestions", func(ctx context.Context) error {
			var out SuggestionReport
			if err := e.generator.GenerateJSON(ctx, renderPrompt(suggestionsPrompt, text), &out); err != nil {
				report.Suggestions = SuggestionReport{
					Items:    []profile.Suggestion{},
					Degraded: true,
					Note:     "unable to parse improvement suggestions",
				}
				return err
			}
			if out.Items == nil {
				out.Items = []profile.Suggestion{}
			}
			report.Suggestions = out
			return nil
		}},
		{"skills", func(ctx context.Context) error {
			var out SkillReport
			if err := e.generator.GenerateJSON(ctx, renderPrompt(skillsPrompt, text), &out); err != nil {
				report.Skills = SkillReport{
					Skills:   []profile.Skill{},
					Degraded: true,
					Note:     "unable to parse extracted skills",
				}
				return err
			}
			if out.Skills == nil {
				out.Skills = []profile.Skill{}
			}
			report.Skills = out
			return nil
		}},
		{"keywords", func(ctx context.Context) error {
			var out KeywordReport
			if err := e.generator.GenerateJSON(ctx, renderPrompt(keywordsPrompt, text), &out); err != nil {
				report.Keywords = KeywordReport{
					Degraded: true,
					Note:     "unable to parse keyword analysis",
				}
				return err
			}
			out.Score = clampScore(out.Score)
			report.Keywords = out
			return nil
		}},
	}

	var wg sync.WaitGroup
	failures := make([]error, len(steps))

	for i, step := range steps {
		wg.Add(1)
		go func(i int, name string, run func(context.Context) error) {
			defer wg.Done()

			err := run(ctx)
			if err == nil {
				return
			}

			if errors.Is(err, provider.ErrMalformedResponse) {
				e.logger.Warn("sub-analysis degraded to default",
					zap.String("analysis", name),
					zap.Error(err),
				)
				return
			}

			failures[i] = fmt.Errorf("%s: %w", name, err)
		}(i, step.name, step.run)
	}
	wg.Wait()

	return errors.Join(failures...)
}

// buildRecommendations distills the report into at most five action items.
// A low ATS score always leads the list.
func buildRecommendations(report *Report) []Recommendation {
	recommendations := make([]Recommendation, 0, maxRecommendations)

	if report.ATS.Score < atsCriticalThreshold {
		message := "improve ATS compatibility so the resume is reliably parsed by applicant tracking systems"
		if len(report.ATS.Issues) > 0 {
			message = fmt.Sprintf("%s (start with: %s)", message, report.ATS.Issues[0])
		}
		recommendations = append(recommendations, Recommendation{
			Priority: profile.PriorityCritical,
			Message:  message,
		})
	}

	for _, item := range report.Suggestions.Items {
		if item.Priority != profile.PriorityCritical {
			continue
		}
		message := item.Suggested
		if item.Section != "" {
			message = fmt.Sprintf("%s: %s", item.Section, message)
		}
		recommendations = append(recommendations, Recommendation{
			Priority: item.Priority,
			Message:  message,
		})
		if len(recommendations) == maxRecommendations {
			break
		}
	}

	return recommendations
}

func resumeText(resume *profile.Resume) string {
	if strings.TrimSpace(resume.RawText) != "" {
		return resume.RawText
	}
	return profile.NormalizeResume(resume)
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
