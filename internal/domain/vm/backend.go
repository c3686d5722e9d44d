package vm

import (
	"context"
	"time"

	"github.com/GriffinCanCode/VMConsole/internal/shared/id"
	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// Backend creates and drives VM sessions.
type Backend interface {
	Create(ctx context.Context, os types.OSOption, url string) (types.Session, error)
	Navigate(ctx context.Context, s types.Session, url string) error
	Destroy(ctx context.Context, s types.Session) error
}

// tokenHolder is implemented by backends that need a bearer token.
type tokenHolder interface {
	SetToken(token string)
	HasToken() bool
}

// LocalBackend hands out local session tokens and performs no I/O.
type LocalBackend struct {
	ids *id.Source
}

// NewLocalBackend creates a local backend minting tokens from id.Shared.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{ids: id.Shared()}
}

func (b *LocalBackend) Create(_ context.Context, os types.OSOption, _ string) (types.Session, error) {
	return types.Session{
		ID:        b.ids.Prefixed(id.SessionPrefix),
		OS:        os.ID,
		CreatedAt: time.Now(),
	}, nil
}

func (b *LocalBackend) Navigate(context.Context, types.Session, string) error { return nil }

func (b *LocalBackend) Destroy(context.Context, types.Session) error { return nil }
