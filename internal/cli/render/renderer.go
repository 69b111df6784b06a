package render

import "github.com/plinth-labs/plinth/internal/domain/models"

// Renderer renders a use case result to the terminal
type Renderer[T any] interface {
	Render(result T) error
}

var (
	_ Renderer[*models.DeploymentResult]   = (*DeployRenderer)(nil)
	_ Renderer[*models.VerificationReport] = (*VerifyRenderer)(nil)
)
