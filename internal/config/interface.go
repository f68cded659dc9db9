package config

import "context"

// Loader is the interface for a format-specific sweep definition loader.
type Loader interface {
	// Load reads every definition found at paths and merges them into a
	// single model. Fields that no file sets are left at their zero value.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
