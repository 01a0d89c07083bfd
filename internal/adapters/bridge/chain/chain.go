package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/chatfs/internal/domain"
	"github.com/bnema/chatfs/internal/ports"
)

// Bridge tries a primary model and falls back to a secondary one when the
// primary fails for transport reasons. Refusals and canceled contexts never
// fall through: a blocked request stays blocked.
type Bridge struct {
	primary  ports.ModelBridge
	fallback ports.ModelBridge
}

var _ ports.ModelBridge = (*Bridge)(nil)

var (
	errNilPrimaryBridge  = errors.New("primary model bridge is nil")
	errNilFallbackBridge = errors.New("fallback model bridge is nil")
)

func NewBridge(primary ports.ModelBridge, fallback ports.ModelBridge) *Bridge {
	bridge, err := NewBridgeChecked(primary, fallback)
	if err != nil {
		panic(err)
	}
	return bridge
}

func NewBridgeChecked(primary ports.ModelBridge, fallback ports.ModelBridge) (*Bridge, error) {
	if primary == nil {
		return nil, errNilPrimaryBridge
	}
	if fallback == nil {
		return nil, errNilFallbackBridge
	}
	return &Bridge{primary: primary, fallback: fallback}, nil
}

func (b *Bridge) Generate(ctx context.Context, history []domain.Turn) (string, error) {
	reply, err := b.primary.Generate(ctx, history)
	if err == nil {
		return reply, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackReply, fallbackErr := b.fallback.Generate(ctx, history)
	if fallbackErr == nil {
		return fallbackReply, nil
	}

	return "", &domain.ServiceError{
		Cause: fmt.Errorf("primary model failed: %w; fallback model failed: %w", err, fallbackErr),
	}
}

func shouldSkipFallback(err error) bool {
	var blocked *domain.BlockedError
	if errors.As(err, &blocked) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
