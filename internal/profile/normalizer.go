package profile

import (
	"fmt"
	"strings"
)

// foldSkill normalizes a skill name for case-insensitive set operations.
func foldSkill(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MatchesSkill reports whether the candidate skill satisfies the required one.
// Equality and substring containment both count, case-insensitively, so that
// "React" matches "React.js" and vice versa.
func MatchesSkill(required, candidate string) bool {
	req := foldSkill(required)
	cand := foldSkill(candidate)
	if req == "" || cand == "" {
		return false
	}
	return req == cand || strings.Contains(cand, req) || strings.Contains(req, cand)
}

// NormalizeResume flattens the structured resume sections into a single plain
// text suitable for embedding and keyword extraction. The result is also
// stored on the resume as RawText.
func NormalizeResume(r *Resume) string {
	if r == nil {
		return ""
	}

	var sb strings.Builder

	writeSection(&sb, "Summary", r.Summary)

	if len(r.Experience) > 0 {
		sb.WriteString("Experience:\n")
		for _, entry := range r.Experience {
			sb.WriteString(fmt.Sprintf("- %s at %s", strings.TrimSpace(entry.Title), strings.TrimSpace(entry.Company)))
			if span := formatSpan(entry); span != "" {
				sb.WriteString(" (" + span + ")")
			}
			sb.WriteString("\n")
			if desc := strings.TrimSpace(entry.Description); desc != "" {
				sb.WriteString("  " + desc + "\n")
			}
		}
		sb.WriteString("\n")
	}

	if len(r.Education) > 0 {
		sb.WriteString("Education:\n")
		for _, entry := range r.Education {
			line := strings.TrimSpace(entry.Degree)
			if inst := strings.TrimSpace(entry.Institution); inst != "" {
				line += ", " + inst
			}
			if entry.Year > 0 {
				line += fmt.Sprintf(" (%d)", entry.Year)
			}
			sb.WriteString("- " + line + "\n")
		}
		sb.WriteString("\n")
	}

	writeSection(&sb, "Technical skills", strings.Join(r.TechnicalSkills, ", "))
	writeSection(&sb, "Soft skills", strings.Join(r.SoftSkills, ", "))
	writeSection(&sb, "Certifications", strings.Join(r.Certifications, ", "))

	text := strings.TrimSpace(sb.String())
	r.RawText = text
	return text
}

// NormalizeJob flattens a job posting into plain text for embedding.
func NormalizeJob(j *Job) string {
	if j == nil {
		return ""
	}

	var sb strings.Builder

	title := strings.TrimSpace(j.Title)
	if company := strings.TrimSpace(j.Company); company != "" {
		title += " at " + company
	}
	writeSection(&sb, "Position", title)
	writeSection(&sb, "Description", j.Description)

	if len(j.Requirements) > 0 {
		sb.WriteString("Requirements:\n")
		for _, req := range j.Requirements {
			sb.WriteString("- " + strings.TrimSpace(req) + "\n")
		}
		sb.WriteString("\n")
	}

	if len(j.Responsibilities) > 0 {
		sb.WriteString("Responsibilities:\n")
		for _, resp := range j.Responsibilities {
			sb.WriteString("- " + strings.TrimSpace(resp) + "\n")
		}
		sb.WriteString("\n")
	}

	writeSection(&sb, "Required skills", strings.Join(j.Skills, ", "))
	if j.ExperienceLevel != "" {
		writeSection(&sb, "Experience level", string(j.ExperienceLevel))
	}

	return strings.TrimSpace(sb.String())
}

func writeSection(sb *strings.Builder, name, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	sb.WriteString(name + ": " + body + "\n\n")
}

func formatSpan(entry ExperienceEntry) string {
	if entry.StartYear <= 0 {
		return ""
	}
	if entry.Current {
		return fmt.Sprintf("%d-present", entry.StartYear)
	}
	if entry.EndYear >= entry.StartYear {
		return fmt.Sprintf("%d-%d", entry.StartYear, entry.EndYear)
	}
	return fmt.Sprintf("%d", entry.StartYear)
}
