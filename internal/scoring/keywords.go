package scoring

import (
	"strings"
	"unicode"

	"github.com/cvmatch/cv-match/internal/profile"
)

// stopwords are tokens too generic to count as job-relevant keywords.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "you": {}, "will": {},
	"our": {}, "are": {}, "this": {}, "that": {}, "have": {}, "has": {},
	"your": {}, "not": {}, "all": {}, "can": {}, "who": {}, "what": {},
	"their": {}, "they": {}, "them": {}, "been": {}, "being": {},
	"from": {}, "into": {}, "about": {}, "more": {}, "than": {},
	"work": {}, "working": {}, "team": {}, "experience": {}, "years": {},
	"year": {}, "skills": {}, "skill": {}, "strong": {}, "ability": {},
	"able": {}, "required": {}, "requirements": {}, "requirement": {},
	"responsibilities": {}, "responsibility": {}, "knowledge": {},
	"including": {}, "include": {}, "includes": {}, "must": {},
	"plus": {}, "etc": {}, "using": {}, "use": {}, "other": {},
	"role": {}, "position": {}, "candidate": {}, "candidates": {},
	"company": {}, "job": {}, "new": {}, "well": {}, "good": {},
	"such": {}, "within": {}, "across": {}, "also": {}, "both": {},
	"level": {}, "related": {}, "relevant": {}, "preferred": {},
}

// ExtractKeywords tokenizes the job posting text and returns the unique
// job-relevant keywords in first-seen order: lowercase, stopwords removed,
// tokens shorter than three characters dropped (except symbol-bearing ones
// like "c#" and "go" which survive via the skills list).
func ExtractKeywords(job *profile.Job) []string {
	text := strings.Join([]string{
		job.Title,
		job.Description,
		strings.Join(job.Requirements, " "),
		strings.Join(job.Responsibilities, " "),
		strings.Join(job.Skills, " "),
	}, " ")

	seen := make(map[string]struct{})
	keywords := make([]string, 0, 32)

	for _, token := range tokenize(text) {
		if len([]rune(token)) < 3 && !strings.ContainsAny(token, "+#") {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	// Declared skills always count as keywords, whatever their length.
	for _, skill := range job.Skills {
		token := strings.ToLower(strings.TrimSpace(skill))
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	return keywords
}

// KeywordScore returns the share of job keywords found in the resume's raw
// text, scaled to [0,100], plus the present/missing keyword partitions.
func KeywordScore(job *profile.Job, resumeText string) (float64, []string, []string) {
	keywords := ExtractKeywords(job)
	if len(keywords) == 0 || strings.TrimSpace(resumeText) == "" {
		return 0, nil, keywords
	}

	haystack := strings.ToLower(resumeText)

	present := make([]string, 0, len(keywords))
	missing := make([]string, 0)

	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			present = append(present, keyword)
		} else {
			missing = append(missing, keyword)
		}
	}

	return float64(len(present)) / float64(len(keywords)) * 100, present, missing
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		// Keep symbols that are part of technology names.
		return r != '+' && r != '#'
	})
}
