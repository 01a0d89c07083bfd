package ports

import (
	"context"

	"github.com/bnema/chatfs/internal/domain"
)

// FileGateway is the only boundary that touches durable filesystem state.
// Paths must come from sandbox resolution; implementations map platform
// failures onto the domain error taxonomy and never leak raw path errors.
type FileGateway interface {
	Read(ctx context.Context, absolute string) ([]byte, error)
	Write(ctx context.Context, absolute string, data []byte) error
	List(ctx context.Context, absolute string) ([]domain.DirEntry, error)
	Stat(ctx context.Context, absolute string) (domain.FileStat, error)
	Delete(ctx context.Context, absolute string) error
}
