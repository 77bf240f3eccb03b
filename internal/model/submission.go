package model

import "time"

// Submission is a project's hand-in package. IsComplete is derived from its
// inputs on every read and never stored.
type Submission struct {
	ProjectID       string    `db:"project_id" json:"projectId"`
	GithubURL       string    `db:"github_url" json:"githubUrl"`
	PresentationURL string    `db:"presentation_url" json:"presentationUrl"`
	DemoVideoURL    string    `db:"demo_video_url" json:"demoVideoUrl,omitempty"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// IsComplete reports whether the submission is ready to judge: both the
// repository and presentation URLs are present. The demo video is optional
// and never affects completeness.
func (s *Submission) IsComplete() bool {
	return s.GithubURL != "" && s.PresentationURL != ""
}

// ShareURL returns the public, unauthenticated view path for the submission.
func (s *Submission) ShareURL() string {
	return "/submission/" + s.ProjectID + "/public"
}
