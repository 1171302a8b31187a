package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"siteforge_server/internal/faults"
	"siteforge_server/internal/types"
)

const (
	defaultBaseURL = "https://api.github.com"

	// repoNamePrefix plus a time-derived token keeps repository names
	// unique by construction; there is no collision check.
	repoNamePrefix = "ai-site-"

	// placeholderOwner keeps the repository path well-formed when the
	// identity lookup fails.
	placeholderOwner = "ai-site-bot"
)

// ErrorKind distinguishes publish failures for diagnostics. The pipeline
// treats all kinds identically (degrade).
type ErrorKind string

const (
	KindMissingCredential     ErrorKind = "missing_credential"
	KindAuthRejected          ErrorKind = "auth_rejected"
	KindNameConflictOrInvalid ErrorKind = "name_conflict_or_invalid"
	KindUnknown               ErrorKind = "unknown"
)

// PublishError is the only error type Publish returns.
type PublishError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *PublishError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("github publish failed (%s, status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("github publish failed (%s): %s", e.Kind, e.Message)
}

// Unwrap maps the kind onto the shared failure taxonomy so callers can use
// errors.Is without importing this package's kinds.
func (e *PublishError) Unwrap() error {
	switch e.Kind {
	case KindMissingCredential:
		return faults.ErrConfigurationMissing
	case KindAuthRejected, KindNameConflictOrInvalid:
		return faults.ErrRemoteRejected
	default:
		return faults.ErrRemoteUnavailable
	}
}

// Client publishes artifacts as new repositories via the GitHub REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a GitHub publisher. An empty token is a supported
// configuration; Publish then fails with KindMissingCredential and the
// pipeline substitutes a placeholder repository.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second, // Set a reasonable timeout
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake API.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

// Configured reports whether a publishing credential is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

type createRepoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

type repoResponse struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type createFileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"` // base64 per the contents API
}

// Publish creates a new repository named after a fixed prefix and a
// time-derived token, then uploads the artifact files one call each in fixed
// order: index.html, styles.css, script.js, README.md. The index.html write
// establishes the initial commit, so its failure propagates; the remaining
// writes are best-effort and only logged.
func (c *Client) Publish(ctx context.Context, artifact types.Artifact, ownerHint string) (*types.RepositoryRef, error) {
	if c.token == "" {
		return nil, &PublishError{Kind: KindMissingCredential, Message: "GITHUB_TOKEN is not set"}
	}

	owner := ownerHint
	if owner == "" {
		owner = c.resolveIdentity(ctx)
	}

	repoName := fmt.Sprintf("%s%d", repoNamePrefix, time.Now().UnixMilli())
	log.Printf("Creating GitHub repository %s/%s", owner, repoName)

	repo, err := c.createRepository(ctx, repoName)
	if err != nil {
		return nil, err
	}
	// Prefer what the API reports; the authenticated user may differ from
	// the hint.
	fullName := repo.FullName
	if fullName == "" {
		fullName = owner + "/" + repoName
	}

	files := []struct {
		path    string
		content string
	}{
		{"index.html", artifact.HTML},
		{"styles.css", artifact.CSS},
		{"script.js", artifact.JS},
		{"README.md", readmeFor(artifact)},
	}
	for i, f := range files {
		if err := c.createFile(ctx, fullName, f.path, f.content); err != nil {
			if i == 0 {
				// No initial commit means no usable repository.
				return nil, err
			}
			log.Printf("WARN: Failed to upload %s to %s, continuing: %v", f.path, fullName, err)
		}
	}

	ref := &types.RepositoryRef{
		WebURL:   repo.HTMLURL,
		FullName: fullName,
		CloneURL: repo.CloneURL,
	}
	if ref.WebURL == "" {
		ref.WebURL = "https://github.com/" + fullName
	}
	log.Printf("Published artifact to %s", ref.WebURL)
	return ref, nil
}

// resolveIdentity looks up the authenticated account name. A failed lookup
// substitutes a fixed placeholder so the repository path stays well-formed.
func (c *Client) resolveIdentity(ctx context.Context) string {
	body, status, err := c.do(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil || status != http.StatusOK {
		log.Printf("WARN: GitHub identity lookup failed (status %d, err %v), using placeholder owner %q", status, err, placeholderOwner)
		return placeholderOwner
	}
	var user struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(body, &user); err != nil || user.Login == "" {
		log.Printf("WARN: Could not decode GitHub identity response, using placeholder owner %q", placeholderOwner)
		return placeholderOwner
	}
	return user.Login
}

func (c *Client) createRepository(ctx context.Context, name string) (*repoResponse, error) {
	payload := createRepoRequest{
		Name:        name,
		Description: "AI-generated website",
		Private:     false,
		AutoInit:    false, // first contents call creates the initial commit
	}
	body, status, err := c.do(ctx, http.MethodPost, c.baseURL+"/user/repos", payload)
	if err != nil {
		return nil, &PublishError{Kind: KindUnknown, Message: err.Error()}
	}
	if status != http.StatusCreated {
		return nil, publishErrorForStatus(status, body)
	}
	var repo repoResponse
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, &PublishError{Kind: KindUnknown, Status: status, Message: "could not decode create-repo response: " + err.Error()}
	}
	return &repo, nil
}

func (c *Client) createFile(ctx context.Context, fullName, path, content string) error {
	payload := createFileRequest{
		Message: "Add " + path,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
	}
	url := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, fullName, path)
	body, status, err := c.do(ctx, http.MethodPut, url, payload)
	if err != nil {
		return &PublishError{Kind: KindUnknown, Message: err.Error()}
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return publishErrorForStatus(status, body)
	}
	return nil
}

func publishErrorForStatus(status int, body []byte) *PublishError {
	kind := KindUnknown
	switch status {
	case http.StatusUnauthorized:
		kind = KindAuthRejected
	case http.StatusUnprocessableEntity:
		kind = KindNameConflictOrInvalid
	}
	return &PublishError{Kind: kind, Status: status, Message: string(body)}
}

// do performs one authenticated API call and returns the response body and
// status. Payloads are JSON-encoded; a nil payload sends no body.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal GitHub request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create GitHub API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request to GitHub API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read GitHub API response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func readmeFor(artifact types.Artifact) string {
	return fmt.Sprintf(`# AI-Generated Website

%s

## Files

- index.html
- styles.css
- script.js

Generated automatically; edit freely.
`, artifact.SummaryMessage)
}
