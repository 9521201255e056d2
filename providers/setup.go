package providers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/config"
	"github.com/PiotrWarzachowski/blue-launcher/internal/download"
	"github.com/PiotrWarzachowski/blue-launcher/internal/logging"
)

// Setup loads configuration from the environment and builds the logger every
// command shares.
func Setup(debug bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(debug)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// NewFetcher returns a content fetcher whose timeout bounds waiting for
// response headers only, so large archives are not cut off mid-transfer.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *download.Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.HTTPTimeout
	transport.MaxIdleConnsPerHost = cfg.DownloadWorkers

	return download.New(&http.Client{Transport: transport}, cfg.MaxRedirects, logger)
}
