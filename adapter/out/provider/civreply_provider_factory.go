package provider

import (
	"context"
	"fmt"

	"civreply_server/adapter/out/provider/graph"
	"civreply_server/core/port/out"
)

// FactoryConfig selects and configures the mailbox provider.
type FactoryConfig struct {
	Provider string // "graph" or "gmail"
	Graph    graph.Config
	Gmail    GmailConfig
}

// NewMailProvider creates the configured provider adapter.
func NewMailProvider(ctx context.Context, cfg FactoryConfig) (out.MailProviderPort, error) {
	switch cfg.Provider {
	case "graph", "outlook", "":
		if cfg.Graph.TenantID == "" || cfg.Graph.ClientID == "" || cfg.Graph.ClientSecret == "" || cfg.Graph.Mailbox == "" {
			return nil, fmt.Errorf("graph provider requires tenant, client id, client secret and mailbox")
		}
		return NewGraphAdapter(cfg.Graph), nil
	case "gmail":
		return NewGmailAdapter(ctx, cfg.Gmail)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
