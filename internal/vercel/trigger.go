package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"siteforge_server/internal/types"
)

const (
	defaultBaseURL = "https://api.vercel.com"

	// defaultBuildWait is the fixed pause after deployment creation that
	// lets the asynchronous build start before we hand out the URL.
	defaultBuildWait = 3 * time.Second
)

// Client triggers deployments on the Vercel API. Deploy never fails outward:
// any error, including a missing credential, yields a placeholder URL with
// Degraded set.
type Client struct {
	token      string
	projectID  string
	baseURL    string
	httpClient *http.Client
	buildWait  time.Duration
}

func NewClient(token, projectID string) *Client {
	return &Client{
		token:     token,
		projectID: projectID,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second, // Set a reasonable timeout
		},
		buildWait: defaultBuildWait,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake API
// and to shorten the post-creation wait.
func NewClientWithBaseURL(token, projectID, baseURL string, buildWait time.Duration) *Client {
	c := NewClient(token, projectID)
	c.baseURL = baseURL
	c.buildWait = buildWait
	return c
}

// Configured reports whether a deployment credential is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

type gitSource struct {
	Type string `json:"type"`
	Repo string `json:"repo"`
	Ref  string `json:"ref"`
}

type inlineFile struct {
	File string `json:"file"`
	Data string `json:"data"`
}

type deploymentRequest struct {
	Name            string         `json:"name"`
	GitSource       *gitSource     `json:"gitSource,omitempty"`
	Files           []inlineFile   `json:"files,omitempty"`
	ProjectSettings map[string]any `json:"projectSettings,omitempty"`
	Target          string         `json:"target,omitempty"`
}

type deploymentResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Deploy requests a deployment for the published repository. Two strategies,
// in priority order: repository-based when both a token and a project id are
// configured, otherwise a direct inline upload of the artifact files plus a
// synthesized manifest routing every path to index.html. Whenever neither
// applies or the call fails, the result carries a placeholder URL.
func (c *Client) Deploy(ctx context.Context, repo *types.RepositoryRef, artifact types.Artifact) types.DeploymentResult {
	if c.token == "" {
		log.Println("WARN: VERCEL_TOKEN not configured, returning mock deployment URL.")
		return mockDeployment()
	}

	var req deploymentRequest
	if c.projectID != "" && repo != nil && repo.FullName != "" {
		req = deploymentRequest{
			Name: c.projectID,
			GitSource: &gitSource{
				Type: "github",
				Repo: repo.FullName,
				Ref:  "main",
			},
			Target: "production",
		}
		log.Printf("Triggering Vercel deployment of %s@main into project %s", repo.FullName, c.projectID)
	} else {
		req = deploymentRequest{
			Name:  "ai-generated-site",
			Files: inlineFiles(artifact),
			ProjectSettings: map[string]any{
				"framework": nil,
			},
		}
		log.Println("Triggering Vercel deployment from inline artifact files")
	}

	dep, err := c.createDeployment(ctx, req)
	if err != nil {
		log.Printf("WARN: Vercel deployment failed, returning mock URL: %v", err)
		return mockDeployment()
	}

	// Give the asynchronous build a moment to register before the caller
	// opens the URL.
	time.Sleep(c.buildWait)

	publicURL := dep.URL
	if publicURL == "" {
		publicURL = dep.ID + ".vercel.app"
	}
	return types.DeploymentResult{
		PublicURL: "https://" + publicURL,
		Succeeded: true,
		Degraded:  false,
	}
}

func (c *Client) createDeployment(ctx context.Context, payload deploymentRequest) (*deploymentResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Vercel deployment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v13/deployments", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create Vercel API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Vercel API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Vercel API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("Vercel API returned status %d: %s", resp.StatusCode, string(body))
	}

	var dep deploymentResponse
	if err := json.Unmarshal(body, &dep); err != nil {
		return nil, fmt.Errorf("failed to decode Vercel deployment response: %w", err)
	}
	return &dep, nil
}

// inlineFiles packages the artifact plus a static-hosting manifest that
// routes all paths to index.html.
func inlineFiles(artifact types.Artifact) []inlineFile {
	manifest := `{"routes":[{"src":"/(.*)","dest":"/index.html"}]}`
	return []inlineFile{
		{File: "index.html", Data: artifact.HTML},
		{File: "styles.css", Data: artifact.CSS},
		{File: "script.js", Data: artifact.JS},
		{File: "vercel.json", Data: manifest},
	}
}

// MockURL builds the recognizable placeholder URL handed out when no real
// deployment happened.
func MockURL() string {
	return fmt.Sprintf("https://mock-site-%d.vercel.app", time.Now().Unix())
}

func mockDeployment() types.DeploymentResult {
	return types.DeploymentResult{
		PublicURL: MockURL(),
		Succeeded: false,
		Degraded:  true,
	}
}
