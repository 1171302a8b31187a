package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteforge_server/internal/github"
	"siteforge_server/internal/types"
)

type fakeGenerator struct {
	calls  int
	result types.GenerateResult
}

func (f *fakeGenerator) Generate(_ context.Context, description string, _ *types.Artifact) types.GenerateResult {
	f.calls++
	if f.result.Artifact.HTML == "" {
		f.result.Artifact = types.Artifact{HTML: "<html>" + description + "</html>", CSS: "body{}", JS: "1;"}
	}
	return f.result
}

type fakePublisher struct {
	configured bool
	calls      int
	ref        *types.RepositoryRef
	err        error
}

func (f *fakePublisher) Publish(_ context.Context, _ types.Artifact, _ string) (*types.RepositoryRef, error) {
	f.calls++
	return f.ref, f.err
}

func (f *fakePublisher) Configured() bool { return f.configured }

type fakeTrigger struct {
	calls  int
	result types.DeploymentResult

	// captured input
	repo *types.RepositoryRef
}

func (f *fakeTrigger) Deploy(_ context.Context, repo *types.RepositoryRef, _ types.Artifact) types.DeploymentResult {
	f.calls++
	f.repo = repo
	return f.result
}

func TestProvisionShortDescriptionMakesNoCalls(t *testing.T) {
	gen := &fakeGenerator{}
	pub := &fakePublisher{configured: true}
	trig := &fakeTrigger{}
	p := New(gen, pub, trig, "")

	result := p.Provision(context.Background(), "short", "user42")

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, result.PublicURL)
	assert.Empty(t, result.RepositoryURL)
	assert.Zero(t, gen.calls)
	assert.Zero(t, pub.calls)
	assert.Zero(t, trig.calls)
}

func TestProvisionHappyPath(t *testing.T) {
	gen := &fakeGenerator{}
	pub := &fakePublisher{
		configured: true,
		ref: &types.RepositoryRef{
			WebURL:   "https://github.com/someone/ai-site-1",
			FullName: "someone/ai-site-1",
		},
	}
	trig := &fakeTrigger{result: types.DeploymentResult{
		PublicURL: "https://ai-site-1.vercel.app",
		Succeeded: true,
	}}
	p := New(gen, pub, trig, "someone")

	result := p.Provision(context.Background(), "A bakery landing page with a gallery", "user42")

	assert.True(t, result.Success)
	assert.Equal(t, "https://ai-site-1.vercel.app", result.PublicURL)
	assert.Equal(t, "https://github.com/someone/ai-site-1", result.RepositoryURL)
	assert.Contains(t, result.Message, "https://ai-site-1.vercel.app")
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, 1, trig.calls)
	assert.Equal(t, pub.ref, trig.repo, "trigger must receive the published repository")
}

func TestProvisionWithoutPublisherCredentialUsesPlaceholderRepo(t *testing.T) {
	gen := &fakeGenerator{}
	pub := &fakePublisher{configured: false}
	trig := &fakeTrigger{result: types.DeploymentResult{
		PublicURL: "https://ai-site-1.vercel.app",
		Succeeded: true,
	}}
	p := New(gen, pub, trig, "")

	result := p.Provision(context.Background(), "A bakery landing page with a gallery", "user42")

	assert.Zero(t, pub.calls, "publish must be skipped entirely without a credential")
	require.NotNil(t, trig.repo)
	assert.Regexp(t, `^ai-generated/site-\d+$`, trig.repo.FullName, "placeholder keeps owner/name shape")
	assert.True(t, result.Success, "a real deployment still counts as success")
}

func TestProvisionPublishErrorYieldsMockedResponse(t *testing.T) {
	gen := &fakeGenerator{}
	pub := &fakePublisher{
		configured: true,
		err:        &github.PublishError{Kind: github.KindAuthRejected, Status: 401, Message: "bad token"},
	}
	trig := &fakeTrigger{}
	p := New(gen, pub, trig, "")

	result := p.Provision(context.Background(), "A bakery landing page with a gallery", "user42")

	assert.False(t, result.Success)
	assert.Regexp(t, `^https://mock-site-\d+\.vercel\.app$`, result.PublicURL)
	assert.Regexp(t, `^https://github\.com/ai-generated/site-\d+$`, result.RepositoryURL)
	assert.NotEmpty(t, result.Message)
	assert.Zero(t, trig.calls, "real deployment is not attempted after a publish failure")
}

func TestProvisionNoCredentialsEndToEnd(t *testing.T) {
	// Zero credentials anywhere: generation degrades, publish is skipped,
	// deployment degrades. The caller still gets renderable URLs.
	gen := &fakeGenerator{result: types.GenerateResult{Degraded: true, DegradedFields: []string{"html", "css", "js"}}}
	pub := &fakePublisher{configured: false}
	trig := &fakeTrigger{result: types.DeploymentResult{
		PublicURL: "https://mock-site-1712345678.vercel.app",
		Succeeded: false,
		Degraded:  true,
	}}
	p := New(gen, pub, trig, "")

	result := p.Provision(context.Background(), "A bakery landing page with a contact form and gallery", "user42")

	assert.False(t, result.Success)
	assert.Regexp(t, `^https://mock-site-\d+\.vercel\.app$`, result.PublicURL)
	assert.Regexp(t, `^https://github\.com/ai-generated/site-\d+$`, result.RepositoryURL)
	assert.NotEmpty(t, result.Message)
}
