package patta2pdf

import (
	"context"

	"go.uber.org/zap"

	"github.com/fra-portal/patta2pdf/internal/settings"
)

// SettingsSource yields the export settings. Exporter asks it on every
// export and never caches the answer. An error or invalid settings make the
// export fall back to DefaultSettings.
type SettingsSource interface {
	Settings(ctx context.Context) (Settings, error)
}

// StaticSettings always returns the same settings.
type StaticSettings Settings

// Settings implements SettingsSource.
func (s StaticSettings) Settings(context.Context) (Settings, error) {
	return Settings(s), nil
}

// KVReader is the read side of a key-value store.
type KVReader interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// StoreSettings reads the persisted settings blob from a key-value store.
// Missing or malformed values fall back to defaults field by field.
type StoreSettings struct {
	kv     KVReader
	logger *zap.Logger
}

// NewStoreSettings reads from kv. logger may be nil.
func NewStoreSettings(kv KVReader, logger *zap.Logger) *StoreSettings {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreSettings{kv: kv, logger: logger}
}

// Settings implements SettingsSource. It never returns an error.
func (s *StoreSettings) Settings(ctx context.Context) (Settings, error) {
	res := settings.Resolve(ctx, s.kv)
	if res.Cause != nil || len(res.Defaulted) > 0 {
		s.logger.Debug("settings fell back to defaults",
			zap.Strings("fields", res.Defaulted),
			zap.NamedError("cause", res.Cause),
		)
	}
	return res.Settings, nil
}
