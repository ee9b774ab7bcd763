package repository

import "context"

// SettingRepository reads runtime settings such as commission rates.
type SettingRepository interface {
	// Get returns the raw value for key, or ErrNotFound when unset.
	Get(ctx context.Context, key string) (string, error)
}
