package deps

import (
	"github.com/dineup/dineup/internal/auth"
	"go.uber.org/zap"
)

// Deps bundles the process-wide collaborators the HTTP layer shares: the
// structured logger and the session token manager.
type Deps struct {
	Logger       *zap.SugaredLogger
	TokenManager *auth.TokenManager
}

func NewDependencies(secretKey string) *Deps {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout", "server.log"}

	return &Deps{
		Logger:       zap.Must(cfg.Build()).Sugar(),
		TokenManager: auth.NewTokenManager(secretKey),
	}
}
