package scoring

import (
	"sort"

	"github.com/cvmatch/cv-match/internal/profile"
)

// BaselineExperienceScore is the floor applied when a resume carries no
// usable experience dates. Many resumes omit precise dates while evidently
// describing some experience, so the absence of data scores a small positive
// baseline instead of zero. The exact value is a tuning decision; it is a
// named constant so it stays auditable.
const BaselineExperienceScore = 30

// requiredYears maps a job's declared seniority band to the years of
// experience that earn a full experience score.
var requiredYears = map[profile.ExperienceLevel]float64{
	profile.LevelEntry:     0,
	profile.LevelJunior:    1,
	profile.LevelMid:       3,
	profile.LevelSenior:    5,
	profile.LevelLead:      8,
	profile.LevelExecutive: 10,
}

// TotalExperienceYears sums the non-overlapping years covered by the
// resume's dated experience entries. Current positions run until nowYear.
// The second return value is false when no entry carries usable dates.
func TotalExperienceYears(entries []profile.ExperienceEntry, nowYear int) (float64, bool) {
	type span struct{ start, end int }

	spans := make([]span, 0, len(entries))
	for _, entry := range entries {
		if entry.StartYear <= 0 {
			continue
		}
		end := entry.EndYear
		if entry.Current {
			end = nowYear
		}
		if end < entry.StartYear {
			continue
		}
		spans = append(spans, span{start: entry.StartYear, end: end})
	}

	if len(spans) == 0 {
		return 0, false
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	total := 0
	current := spans[0]
	for _, s := range spans[1:] {
		if s.start <= current.end {
			if s.end > current.end {
				current.end = s.end
			}
			continue
		}
		total += current.end - current.start
		current = s
	}
	total += current.end - current.start

	return float64(total), true
}

// experienceScore compares the candidate's total relevant years against the
// job's declared band. Missing date data yields the named baseline.
func experienceScore(resume *profile.Resume, job *profile.Job, nowYear int) float64 {
	years, ok := TotalExperienceYears(resume.Experience, nowYear)
	if !ok {
		return BaselineExperienceScore
	}

	required, known := requiredYears[job.ExperienceLevel]
	if !known {
		// Unspecified band: score against the mid-level bar.
		required = requiredYears[profile.LevelMid]
	}

	if required <= 0 {
		return 100
	}

	ratio := years / required
	if ratio > 1 {
		ratio = 1
	}

	return ratio * 100
}
