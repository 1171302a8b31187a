package types

import "time"

// Artifact is the unit of work: the three-file static site produced by the
// generator plus a short human-readable summary of what was built.
// By the time an Artifact leaves the generator all three file fields are
// non-empty; missing or malformed model output is replaced field-by-field
// with the deterministic fallback content. Artifacts are never mutated after
// creation; a new request produces a new Artifact.
type Artifact struct {
	HTML           string `json:"html"`
	CSS            string `json:"css"`
	JS             string `json:"js"`
	SummaryMessage string `json:"message"`
}

// GenerateResult wraps an Artifact with degradation metadata so callers can
// tell a real model response from fallback content without catching errors.
type GenerateResult struct {
	Artifact       Artifact
	Degraded       bool
	DegradedFields []string // which of html/css/js came from the fallback
	Cause          error    // taxonomy sentinel from the faults package, nil when clean
}

// RepositoryRef is the result of publishing an Artifact to the source host.
// FullName is always in owner/name form, even for synthesized placeholders,
// so the deployment trigger's contract stays uniform.
type RepositoryRef struct {
	WebURL   string `json:"webUrl"`
	FullName string `json:"fullName"`
	CloneURL string `json:"cloneUrl,omitempty"`
}

// DeploymentResult is the outcome of a deployment trigger. Degraded is true
// when a placeholder URL was substituted for a real one.
type DeploymentResult struct {
	PublicURL string `json:"publicUrl"`
	Succeeded bool   `json:"succeeded"`
	Degraded  bool   `json:"degraded"`
}

// ProvisionResult is the externally visible outcome of a full
// generate -> publish -> deploy run. The URLs are always usable (mocked ones
// follow a fixed recognizable pattern) and Success reflects whether a real
// deployment happened.
type ProvisionResult struct {
	PublicURL     string `json:"publicUrl"`
	RepositoryURL string `json:"repositoryUrl"`
	Message       string `json:"message"`
	Success       bool   `json:"success"`
}

// SavedProject is one entry in a user's generation history.
type SavedProject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Preview   string    `json:"preview"` // first ~200 chars of HTML
	Timestamp time.Time `json:"timestamp"`
	Artifact  Artifact  `json:"artifact"`
}

// UserSession holds a single user's saved projects, most recent first,
// capped at MaxSavedProjects.
type UserSession struct {
	UserID    string         `json:"userId"`
	CreatedAt time.Time      `json:"createdAt"`
	Projects  []SavedProject `json:"projects"`
}

// MaxSavedProjects bounds the per-user history; inserting beyond it drops
// the oldest entries.
const MaxSavedProjects = 20
