package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/config"
	"github.com/PiotrWarzachowski/blue-launcher/internal/logging"
	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/microsoft"
	"github.com/PiotrWarzachowski/blue-launcher/internal/storage"
)

type AuthProvider struct {
	ms      *microsoft.Client
	storage *storage.Storage
	logger  *zap.Logger
}

func NewAuthProvider(cfg *config.Config, store *storage.Storage, logger *zap.Logger) (*AuthProvider, error) {
	if err := cfg.RequireClientID(); err != nil {
		return nil, err
	}

	return &AuthProvider{
		ms:      microsoft.NewClient(cfg, nil, logger),
		storage: store,
		logger:  logging.OrNop(logger),
	}, nil
}

func (p *AuthProvider) Begin(ctx context.Context) (*microsoft.DeviceAuthorizationSession, error) {
	return p.ms.BeginDeviceAuth(ctx)
}

// Poll advances the sign-in once and stores the account when it completes.
func (p *AuthProvider) Poll(ctx context.Context, s *microsoft.DeviceAuthorizationSession) (*microsoft.PollResult, error) {
	res, err := p.ms.PollOnce(ctx, s)
	if err != nil || res.Pending {
		return res, err
	}

	if err := p.storage.SaveAccount(res.Account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	p.logger.Debug("account stored", zap.String("path", p.storage.GetBasePath()))

	return res, nil
}

// Current returns the stored account, or nil when nobody is signed in.
func (p *AuthProvider) Current() (*storage.StoredAccount, error) {
	return p.storage.LoadAccount()
}
