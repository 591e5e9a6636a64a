package analysis

import "strings"

// The sub-analysis prompts. Each one pins the JSON shape the model must
// return; GenerateJSON rejects anything that does not parse into the paired
// report struct.
const (
	contentQualityPrompt = `You are an experienced technical recruiter reviewing a resume.
Grade the overall content quality of the resume below on a 0-100 scale:
clarity of writing, use of measurable achievements, specificity, and
professional tone.

Respond with JSON only, in this exact shape:
{"score": <0-100>, "strengths": ["..."], "weaknesses": ["..."]}

Resume:
{{resume}}`

	atsPrompt = `You are an applicant tracking system (ATS) compatibility checker.
Grade how reliably the resume below would be parsed by common ATS software
on a 0-100 scale. Look for missing section headings, unparseable formatting
artifacts, missing contact or date information, and non-standard structure.

Respond with JSON only, in this exact shape:
{"score": <0-100>, "issues": ["..."]}

Resume:
{{resume}}`

	suggestionsPrompt = `You are a resume coach. Propose up to 8 concrete improvements for the
resume below. For each, classify its type (content, formatting, keywords,
structure or grammar), its priority (low, medium, high or critical) and its
expected impact (low, medium or high), name the resume section it applies
to, quote the current text if relevant, and write the suggested replacement.

Respond with JSON only, in this exact shape:
{"items": [{"type": "...", "priority": "...", "section": "...",
"current": "...", "suggested": "...", "impact": "..."}]}

Resume:
{{resume}}`

	skillsPrompt = `Extract the professional skills evidenced by the resume below. Classify
each as technical, soft, tool, framework or certification, and attach a
confidence between 0 and 1 reflecting how clearly the resume supports it.

Respond with JSON only, in this exact shape:
{"skills": [{"name": "...", "category": "...", "confidence": <0-1>}]}

Resume:
{{resume}}`

	keywordsPrompt = `You are a keyword optimization checker for job applications. Infer the
candidate's target field from the resume below, then grade on a 0-100 scale
how well the resume covers the keywords recruiters in that field search
for. List the relevant keywords that are present and the important ones
that are missing.

Respond with JSON only, in this exact shape:
{"score": <0-100>, "present": ["..."], "missing": ["..."]}

Resume:
{{resume}}`
)

// renderPrompt substitutes the resume text into a prompt template.
func renderPrompt(template, resumeText string) string {
	return strings.ReplaceAll(template, "{{resume}}", resumeText)
}
