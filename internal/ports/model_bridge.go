package ports

import (
	"context"

	"github.com/bnema/chatfs/internal/domain"
)

// ModelBridge sends one assembled call history to the language model service.
// Refusals surface as *domain.BlockedError, transport and service failures as
// *domain.ServiceError.
type ModelBridge interface {
	Generate(ctx context.Context, history []domain.Turn) (string, error)
}
