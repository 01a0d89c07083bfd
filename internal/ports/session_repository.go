package ports

import (
	"context"

	"github.com/bnema/chatfs/internal/domain"
)

type SessionRepository interface {
	Save(ctx context.Context, session domain.Session) error
	List(ctx context.Context) ([]domain.SessionSummary, error)
	Get(ctx context.Context, id string) (domain.Session, error)
}
