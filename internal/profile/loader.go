package profile

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadResume reads a resume record from a JSON file. The persistence layer
// proper is an external collaborator; file-backed records are the engine's
// interface to it on the command line.
func LoadResume(path string) (*Resume, error) {
	var resume Resume
	if err := loadJSON(path, &resume); err != nil {
		return nil, fmt.Errorf("load resume: %w", err)
	}
	if err := resume.Validate(); err != nil {
		return nil, fmt.Errorf("load resume %q: %w", path, err)
	}
	if resume.RawText == "" {
		NormalizeResume(&resume)
	}
	return &resume, nil
}

// LoadJob reads a single job posting from a JSON file.
func LoadJob(path string) (*Job, error) {
	var job Job
	if err := loadJSON(path, &job); err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("load job %q: %w", path, err)
	}
	return &job, nil
}

// LoadJobs reads a collection of job postings from a JSON file. Both the
// {"items": [...]} envelope and a bare array are accepted.
func LoadJobs(path string) (*Jobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	var jobs Jobs
	if err := json.Unmarshal(data, &jobs); err != nil || jobs.Items == nil {
		var items []*Job
		if arrErr := json.Unmarshal(data, &items); arrErr != nil {
			if err == nil {
				err = arrErr
			}
			return nil, fmt.Errorf("load jobs %q: %w", path, err)
		}
		jobs.Items = items
	}

	for _, job := range jobs.Items {
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("load jobs %q: %w", path, err)
		}
	}

	return &jobs, nil
}

// SaveResume writes the resume back to the given JSON file, preserving any
// embedding generated during the run.
func SaveResume(path string, resume *Resume) error {
	return saveJSON(path, resume)
}

func loadJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(target)
}

func saveJSON(path string, v any) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
