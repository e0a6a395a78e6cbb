package pkg

import (
	"github.com/SAP-F-2025/exercise-authoring-service/internal/config"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// NewCasdoorClient returns nil when authentication is disabled.
func NewCasdoorClient(cfg *config.AuthConfig) *casdoorsdk.Client {
	if !cfg.Enabled {
		return nil
	}
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
}
