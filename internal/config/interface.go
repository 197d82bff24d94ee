package config

import "context"

// Loader reads a configuration file in one format and translates it into the
// format-agnostic Model. Loaders apply defaults but do not validate.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}
