package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"siteforge_server/internal/types"
	"siteforge_server/internal/vercel"
)

// MinDescriptionLen is the provisioning threshold. It is deliberately larger
// than the chat endpoint's 3-char minimum; the two surfaces validate
// independently.
const MinDescriptionLen = 10

// placeholderOwner names the synthetic owner used when publishing is skipped.
// The owner/name shape is load-bearing for the deployment trigger's contract.
const placeholderOwner = "ai-generated"

// Generator produces an artifact for a description; it cannot fail outward.
type Generator interface {
	Generate(ctx context.Context, description string, prior *types.Artifact) types.GenerateResult
}

// Publisher pushes an artifact to the source host.
type Publisher interface {
	Publish(ctx context.Context, artifact types.Artifact, ownerHint string) (*types.RepositoryRef, error)
	Configured() bool
}

// Trigger requests a deployment; it cannot fail outward.
type Trigger interface {
	Deploy(ctx context.Context, repo *types.RepositoryRef, artifact types.Artifact) types.DeploymentResult
}

// Pipeline sequences generate -> publish -> deploy. Each step consumes the
// previous step's output, so the run is strictly sequential. This boundary is
// the single place a real failure becomes user-visible as Success=false, and
// even then the response carries usable mocked URLs.
type Pipeline struct {
	generator Generator
	publisher Publisher
	trigger   Trigger
	ownerHint string
}

func New(generator Generator, publisher Publisher, trigger Trigger, ownerHint string) *Pipeline {
	return &Pipeline{
		generator: generator,
		publisher: publisher,
		trigger:   trigger,
		ownerHint: ownerHint,
	}
}

// Provision runs the full create-and-deploy operation for one description.
func (p *Pipeline) Provision(ctx context.Context, description, userID string) types.ProvisionResult {
	if len(description) < MinDescriptionLen {
		return types.ProvisionResult{
			Message: fmt.Sprintf("Could you describe the website in a bit more detail? A few words about its purpose, sections and style (at least %d characters) helps me build something useful.", MinDescriptionLen),
			Success: false,
		}
	}

	runID := uuid.New().String()
	log.Printf("Provisioning run %s: building website for user %s", runID, userID)

	gen := p.generator.Generate(ctx, description, nil)
	if gen.Degraded {
		log.Printf("WARN: Run %s generator degraded (fields %v, cause %v); continuing with fallback content.", runID, gen.DegradedFields, gen.Cause)
	}

	var repo *types.RepositoryRef
	if !p.publisher.Configured() {
		// Skipping publish without a credential is policy, not an error:
		// the run still produces a usable demo URL.
		repo = placeholderRepository()
		log.Printf("Run %s: publisher credential absent, using placeholder repository %s", runID, repo.FullName)
	} else {
		published, err := p.publisher.Publish(ctx, gen.Artifact, p.ownerHint)
		if err != nil {
			log.Printf("WARN: Run %s publishing failed, returning fully mocked response: %v", runID, err)
			mock := placeholderRepository()
			return types.ProvisionResult{
				PublicURL:     vercel.MockURL(),
				RepositoryURL: mock.WebURL,
				Message:       "I generated your website, but publishing it to the source host failed. Here is a demo preview; please check the publishing credential and try again.",
				Success:       false,
			}
		}
		repo = published
	}

	dep := p.trigger.Deploy(ctx, repo, gen.Artifact)

	message := fmt.Sprintf("Your website is live at %s and its source is at %s.", dep.PublicURL, repo.WebURL)
	if dep.Degraded {
		message = fmt.Sprintf("I generated your website. %s is a demo preview URL; configure the deployment credentials to get a live site. Source: %s.", dep.PublicURL, repo.WebURL)
	}

	return types.ProvisionResult{
		PublicURL:     dep.PublicURL,
		RepositoryURL: repo.WebURL,
		Message:       message,
		Success:       dep.Succeeded,
	}
}

// placeholderRepository synthesizes a RepositoryRef whose FullName keeps the
// owner/name shape so the trigger's contract stays uniform.
func placeholderRepository() *types.RepositoryRef {
	fullName := fmt.Sprintf("%s/site-%d", placeholderOwner, time.Now().Unix())
	return &types.RepositoryRef{
		WebURL:   "https://github.com/" + fullName,
		FullName: fullName,
	}
}
