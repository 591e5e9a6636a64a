package scoring

import (
	"testing"

	"github.com/cvmatch/cv-match/internal/profile"
)

func TestExtractKeywordsFiltersNoise(t *testing.T) {
	job := &profile.Job{
		ID:          "j1",
		Title:       "Backend Engineer",
		Description: "You will work with the team on Kubernetes and gRPC services.",
		Skills:      []string{"Go", "C#"},
	}

	keywords := ExtractKeywords(job)

	want := map[string]bool{"kubernetes": false, "grpc": false, "go": false, "c#": false}
	for _, kw := range keywords {
		if _, ok := want[kw]; ok {
			want[kw] = true
		}
		if kw == "the" || kw == "will" || kw == "team" || kw == "work" {
			t.Fatalf("stopword %q leaked into keywords", kw)
		}
	}
	for kw, found := range want {
		if !found {
			t.Fatalf("expected keyword %q in %v", kw, keywords)
		}
	}
}

func TestExtractKeywordsKeepsShortDeclaredSkills(t *testing.T) {
	job := &profile.Job{ID: "j1", Title: "Engineer", Skills: []string{"Go"}}

	keywords := ExtractKeywords(job)

	found := false
	for _, kw := range keywords {
		if kw == "go" {
			found = true
		}
	}
	if !found {
		t.Fatalf("declared two-letter skill must survive, got %v", keywords)
	}
}

func TestKeywordScorePartitions(t *testing.T) {
	job := &profile.Job{
		ID:     "j1",
		Title:  "Engineer",
		Skills: []string{"Docker", "Terraform"},
	}

	score, present, missing := KeywordScore(job, "Five years running Docker in production.")

	if score <= 0 || score >= 100 {
		t.Fatalf("expected partial score, got %v", score)
	}
	if len(present) == 0 {
		t.Fatalf("expected docker to be present")
	}

	foundMissing := false
	for _, kw := range missing {
		if kw == "terraform" {
			foundMissing = true
		}
	}
	if !foundMissing {
		t.Fatalf("expected terraform in missing set, got %v", missing)
	}
}

func TestKeywordScoreEmptyInputs(t *testing.T) {
	job := &profile.Job{ID: "j1", Title: "Engineer", Skills: []string{"Go"}}

	if score, _, _ := KeywordScore(job, "   "); score != 0 {
		t.Fatalf("expected 0 for empty resume text, got %v", score)
	}

	empty := &profile.Job{ID: "j2"}
	if score, _, _ := KeywordScore(empty, "some resume text"); score != 0 {
		t.Fatalf("expected 0 for job without keywords, got %v", score)
	}
}
