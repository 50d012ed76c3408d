package supabase

import (
	"fmt"

	"cozylogic-backend/internal/config"

	"github.com/supabase-community/supabase-go"
)

type Client struct {
	Supabase *supabase.Client
	Storage  *StorageClient
	Config   *config.Config
}

// NewClient connects with the service role key; storage calls go through
// the client's embedded storage API.
func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	store := NewStorageClientFromURL(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	if client.Storage != nil {
		store = NewStorageClient(client.Storage)
	}

	return &Client{
		Supabase: client,
		Storage:  store,
		Config:   cfg,
	}, nil
}
