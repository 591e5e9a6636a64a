package profile

import "fmt"

// ExperienceLevel is the job's declared seniority band.
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelJunior    ExperienceLevel = "junior"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelLead      ExperienceLevel = "lead"
	LevelExecutive ExperienceLevel = "executive"
)

// Job is the structured job-posting record the engine scores resumes against.
type Job struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Company          string          `json:"company,omitempty"`
	Description      string          `json:"description,omitempty"`
	Requirements     []string        `json:"requirements,omitempty"`
	Responsibilities []string        `json:"responsibilities,omitempty"`
	Skills           []string        `json:"skills,omitempty"`
	ExperienceLevel  ExperienceLevel `json:"experience_level,omitempty"`
	Embedding        *Embedding      `json:"embedding,omitempty"`
}

// Validate checks the invariants the engine relies on.
func (j *Job) Validate() error {
	if j == nil {
		return fmt.Errorf("job is required")
	}
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	return nil
}

// Jobs is a loadable collection of job postings.
type Jobs struct {
	Items []*Job `json:"items"`
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}
