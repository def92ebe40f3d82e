package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fra-portal/patta2pdf"
	"github.com/fra-portal/patta2pdf/internal/config"
	"github.com/fra-portal/patta2pdf/internal/store"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage        = errors.New("invalid usage")
	ErrOpenDatabase = errors.New("failed to open database")
	ErrReadInput    = errors.New("failed to read input")
	ErrWritePayload = errors.New("failed to write payload file")
)

// session holds what every data command needs: resolved config, logger,
// and the seeded database.
type session struct {
	cfg    *config.Config
	env    *envConfig
	logger *zap.Logger
	db     *store.SQLite
	repo   *patta2pdf.Repository
}

// openSession resolves config, opens the database and seeds the built-in
// records that are missing.
func openSession(ctx context.Context, common commonFlags, env *Environment) (*session, error) {
	ev := loadEnvConfig()
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg, err := loadToolConfig(common, ev)
	if err != nil {
		return nil, err
	}
	logger := newLogger(env.Stderr, common)

	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenDatabase, err)
	}
	db, err := store.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenDatabase, err)
	}

	repo := patta2pdf.NewRepository(db)
	repo.SetClock(env.Now)
	n, err := repo.Seed(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: seeding records: %v", ErrOpenDatabase, err)
	}
	if n > 0 {
		logger.Info("seeded built-in records", zap.Int("count", n), zap.String("db", path))
	}

	return &session{cfg: cfg, env: ev, logger: logger, db: db, repo: repo}, nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.db.Close()
}

// loadToolConfig resolves the tool configuration.
// Precedence: flags > env > config file > defaults.
func loadToolConfig(common commonFlags, ev *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()

	name := common.config
	if name == "" {
		name = ev.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(ev, cfg)
	if common.db != "" {
		cfg.Database.Path = common.db
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the production JSON logger on w. Default level is Warn;
// --verbose lowers it to Debug and --quiet raises it to Error.
func newLogger(w io.Writer, common commonFlags) *zap.Logger {
	cfg := zap.NewProductionConfig()
	switch {
	case common.quiet:
		cfg.Level.SetLevel(zapcore.ErrorLevel)
	case common.verbose:
		cfg.Level.SetLevel(zapcore.DebugLevel)
	default:
		cfg.Level.SetLevel(zapcore.WarnLevel)
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg.EncoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		cfg.Level,
	)
	return zap.New(core, zap.AddCaller()).Named("patta2pdf")
}
