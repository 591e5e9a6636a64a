package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cvmatch/cv-match/internal/profile"
	"github.com/cvmatch/cv-match/internal/provider"
)

type stubGenerator struct {
	mu    sync.Mutex
	calls int
	delay time.Duration

	content        ContentQualityReport
	contentErr     error
	ats            ATSReport
	atsErr         error
	suggestions    SuggestionReport
	suggestionsErr error
	skills         SkillReport
	skillsErr      error
	keywords       KeywordReport
	keywordsErr    error
}

func (g *stubGenerator) GenerateJSON(_ context.Context, prompt string, out any) error {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.delay > 0 {
		time.Sleep(g.delay)
	}

	var value any
	var err error

	switch {
	case strings.Contains(prompt, "content quality"):
		value, err = g.content, g.contentErr
	case strings.Contains(prompt, "applicant tracking system"):
		value, err = g.ats, g.atsErr
	case strings.Contains(prompt, "resume coach"):
		value, err = g.suggestions, g.suggestionsErr
	case strings.Contains(prompt, "professional skills"):
		value, err = g.skills, g.skillsErr
	case strings.Contains(prompt, "keyword optimization"):
		value, err = g.keywords, g.keywordsErr
	default:
		return fmt.Errorf("unexpected prompt: %s", prompt)
	}

	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type stubEmbedder struct {
	mu     sync.Mutex
	calls  int
	vector []float64
	err    error
}

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vector, err := e.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (e *stubEmbedder) Dimensions() int { return len(e.vector) }

func (e *stubEmbedder) EmbeddingModel() string { return "stub-embedding" }

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func healthyGenerator() *stubGenerator {
	return &stubGenerator{
		content: ContentQualityReport{Score: 80, Strengths: []string{"clear writing"}},
		ats:     ATSReport{Score: 90},
		suggestions: SuggestionReport{Items: []profile.Suggestion{
			{Type: profile.SuggestionContent, Priority: profile.PriorityMedium, Suggested: "quantify achievements"},
		}},
		skills:   SkillReport{Skills: []profile.Skill{{Name: "Go", Category: profile.SkillTechnical, Confidence: 0.9}}},
		keywords: KeywordReport{Score: 70, Present: []string{"go"}, Missing: []string{"kubernetes"}},
	}
}

func testResume() *profile.Resume {
	return &profile.Resume{
		ID:              "r1",
		Version:         1,
		Summary:         "Backend engineer with Go experience.",
		TechnicalSkills: []string{"Go"},
	}
}

func TestAnalyzeAggregatesSubScores(t *testing.T) {
	generator := healthyGenerator()
	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	report, err := engine.Analyze(context.Background(), testResume())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0.6*80 + 0.4*90 = 84.
	if report.OverallScore != 84 {
		t.Fatalf("expected overall score 84, got %d", report.OverallScore)
	}

	if generator.callCount() != 5 {
		t.Fatalf("expected 5 sub-analysis calls, got %d", generator.callCount())
	}

	if report.Degraded() {
		t.Fatalf("healthy run must not be degraded")
	}
	if report.GeneratedAt.IsZero() {
		t.Fatalf("report must carry its generation time")
	}
}

func TestAnalyzeIsIdempotentPerVersion(t *testing.T) {
	generator := healthyGenerator()
	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	resume := testResume()

	first, err := engine.Analyze(context.Background(), resume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := engine.Analyze(context.Background(), resume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if generator.callCount() != 5 {
		t.Fatalf("second analysis of the same version must not touch the provider, got %d calls", generator.callCount())
	}
	if first != second {
		t.Fatalf("expected the cached report to be returned unchanged")
	}

	// A version bump is a different key and recomputes.
	resume.Version = 2
	if _, err := engine.Analyze(context.Background(), resume); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generator.callCount() != 10 {
		t.Fatalf("new version must recompute, got %d calls", generator.callCount())
	}
}

func TestAnalyzeSubstitutesFallbackOnMalformedResponse(t *testing.T) {
	generator := healthyGenerator()
	generator.suggestionsErr = fmt.Errorf("parse response: %w", provider.ErrMalformedResponse)

	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	report, err := engine.Analyze(context.Background(), testResume())
	if err != nil {
		t.Fatalf("malformed response must not fail the analysis: %v", err)
	}

	if !report.Suggestions.Degraded {
		t.Fatalf("expected suggestions section to be degraded")
	}
	if report.Suggestions.Items == nil || len(report.Suggestions.Items) != 0 {
		t.Fatalf("expected empty suggestion fallback, got %v", report.Suggestions.Items)
	}
	if report.Suggestions.Note == "" {
		t.Fatalf("degraded section must carry a human-readable note")
	}

	// The other sections still came through.
	if report.ContentQuality.Degraded || report.ATS.Degraded {
		t.Fatalf("unrelated sections must not be degraded")
	}
	if !report.Degraded() {
		t.Fatalf("report-level degraded flag must reflect the fallback")
	}
}

func TestAnalyzeDegradedScoreCountsAsZero(t *testing.T) {
	generator := healthyGenerator()
	generator.atsErr = fmt.Errorf("parse response: %w", provider.ErrMalformedResponse)

	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	report, err := engine.Analyze(context.Background(), testResume())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 0.6*80 + 0.4*0 = 48.
	if report.OverallScore != 48 {
		t.Fatalf("expected overall score 48 with ats fallback, got %d", report.OverallScore)
	}
}

func TestAnalyzePropagatesExhaustion(t *testing.T) {
	generator := healthyGenerator()
	generator.contentErr = fmt.Errorf("generate after 3 attempts: %w: rate limit", provider.ErrExhausted)

	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	_, err := engine.Analyze(context.Background(), testResume())
	if !errors.Is(err, provider.ErrExhausted) {
		t.Fatalf("expected exhaustion to propagate, got %v", err)
	}

	// The remaining sub-analyses still ran to completion.
	if generator.callCount() != 5 {
		t.Fatalf("one failure must not abort the other sub-analyses, got %d calls", generator.callCount())
	}
}

func TestAnalyzeRejectsInvalidResume(t *testing.T) {
	generator := healthyGenerator()
	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	_, err := engine.Analyze(context.Background(), &profile.Resume{Version: 1})
	if !errors.Is(err, provider.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if generator.callCount() != 0 {
		t.Fatalf("invalid resume must not reach the provider")
	}

	empty := &profile.Resume{ID: "r-empty", Version: 1}
	if _, err := engine.Analyze(context.Background(), empty); !errors.Is(err, provider.ErrInvalidInput) {
		t.Fatalf("expected invalid input error for empty resume, got %v", err)
	}
}

func TestAnalyzeRecommendationsLeadWithATS(t *testing.T) {
	generator := healthyGenerator()
	generator.ats = ATSReport{Score: 55, Issues: []string{"missing section headings"}}
	generator.suggestions = SuggestionReport{Items: []profile.Suggestion{
		{Priority: profile.PriorityCritical, Section: "summary", Suggested: "add a summary"},
		{Priority: profile.PriorityLow, Suggested: "minor wording"},
		{Priority: profile.PriorityCritical, Suggested: "fix contact details"},
		{Priority: profile.PriorityCritical, Suggested: "add dates to roles"},
		{Priority: profile.PriorityCritical, Suggested: "name your tools"},
		{Priority: profile.PriorityCritical, Suggested: "split long paragraphs"},
	}}

	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	report, err := engine.Analyze(context.Background(), testResume())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Recommendations) != 5 {
		t.Fatalf("expected recommendation list capped at 5, got %d", len(report.Recommendations))
	}

	first := report.Recommendations[0]
	if first.Priority != profile.PriorityCritical || !strings.Contains(first.Message, "ATS") {
		t.Fatalf("expected the ATS item first, got %+v", first)
	}

	for _, rec := range report.Recommendations[1:] {
		if rec.Priority != profile.PriorityCritical {
			t.Fatalf("only critical suggestions belong in recommendations, got %+v", rec)
		}
	}

	// Low-priority items never make the list.
	for _, rec := range report.Recommendations {
		if strings.Contains(rec.Message, "minor wording") {
			t.Fatalf("low-priority suggestion leaked into recommendations")
		}
	}
}

func TestAnalyzeHighATSSkipsCriticalItem(t *testing.T) {
	generator := healthyGenerator()
	generator.ats = ATSReport{Score: 90}
	generator.suggestions = SuggestionReport{Items: []profile.Suggestion{
		{Priority: profile.PriorityMedium, Suggested: "quantify achievements"},
	}}

	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	report, err := engine.Analyze(context.Background(), testResume())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %v", report.Recommendations)
	}
}

func TestAnalyzeConcurrentCallsShareOneComputation(t *testing.T) {
	generator := healthyGenerator()
	generator.delay = 50 * time.Millisecond

	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())
	resume := testResume()

	var wg sync.WaitGroup
	reports := make([]*Report, 4)
	errs := make([]error, 4)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = engine.Analyze(context.Background(), resume)
		}(i)
	}
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("unexpected error from caller %d: %v", i, errs[i])
		}
		if reports[i] == nil {
			t.Fatalf("caller %d got no report", i)
		}
	}

	if generator.callCount() != 5 {
		t.Fatalf("concurrent callers must share one computation, got %d provider calls", generator.callCount())
	}
}

func TestEnsureResumeEmbedding(t *testing.T) {
	embedder := &stubEmbedder{vector: []float64{0.1, 0.2}}
	engine := NewEngine(embedder, healthyGenerator(), Config{}, zap.NewNop())

	resume := testResume()

	if err := engine.EnsureResumeEmbedding(context.Background(), resume); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resume.Embedding == nil || len(resume.Embedding.Vector) != 2 {
		t.Fatalf("expected embedding to be attached, got %+v", resume.Embedding)
	}
	if resume.Embedding.Version != resume.Version {
		t.Fatalf("embedding must be stamped with the resume version")
	}
	if resume.Embedding.Model != "stub-embedding" {
		t.Fatalf("embedding must record its model, got %q", resume.Embedding.Model)
	}

	// Idempotent once populated.
	if err := engine.EnsureResumeEmbedding(context.Background(), resume); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedder.callCount() != 1 {
		t.Fatalf("expected exactly one provider call, got %d", embedder.callCount())
	}

	// A version bump invalidates the stored vector.
	resume.Version = 2
	if err := engine.EnsureResumeEmbedding(context.Background(), resume); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedder.callCount() != 2 {
		t.Fatalf("stale embedding must be regenerated, got %d calls", embedder.callCount())
	}
}

func TestEnsureResumeEmbeddingPropagatesExhaustion(t *testing.T) {
	embedder := &stubEmbedder{err: fmt.Errorf("embed after 3 attempts: %w: unavailable", provider.ErrExhausted)}
	engine := NewEngine(embedder, healthyGenerator(), Config{}, zap.NewNop())

	err := engine.EnsureResumeEmbedding(context.Background(), testResume())
	if !errors.Is(err, provider.ErrExhausted) {
		t.Fatalf("expected exhaustion to propagate, got %v", err)
	}
}

func TestEnsureJobEmbeddingsSkipsPopulated(t *testing.T) {
	embedder := &stubEmbedder{vector: []float64{0.5}}
	engine := NewEngine(embedder, healthyGenerator(), Config{}, zap.NewNop())

	populated := &profile.Job{
		ID:        "j1",
		Title:     "Engineer",
		Embedding: &profile.Embedding{Vector: []float64{0.9}},
	}
	missing := &profile.Job{ID: "j2", Title: "Engineer"}

	if err := engine.EnsureJobEmbeddings(context.Background(), []*profile.Job{populated, missing}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if embedder.callCount() != 1 {
		t.Fatalf("expected one embedding call for the missing job, got %d", embedder.callCount())
	}
	if missing.Embedding == nil || len(missing.Embedding.Vector) != 1 {
		t.Fatalf("expected embedding attached to the missing job")
	}
	if populated.Embedding.Vector[0] != 0.9 {
		t.Fatalf("populated job's embedding must not be touched")
	}
}

func TestInvalidateForcesRecomputation(t *testing.T) {
	generator := healthyGenerator()
	engine := NewEngine(&stubEmbedder{vector: []float64{1, 0}}, generator, Config{}, zap.NewNop())

	resume := testResume()

	if _, err := engine.Analyze(context.Background(), resume); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	engine.Invalidate(resume.ID, resume.Version)

	if _, err := engine.Analyze(context.Background(), resume); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generator.callCount() != 10 {
		t.Fatalf("invalidated report must be recomputed, got %d calls", generator.callCount())
	}
}
