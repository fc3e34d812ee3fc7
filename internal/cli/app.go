package cli

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"gymlog/internal/ai"
	"gymlog/internal/config"
	"gymlog/internal/crypto"
	"gymlog/internal/db"
	"gymlog/internal/services"
	"gymlog/internal/store"
)

// app is the set of long-lived dependencies a command needs.
type app struct {
	cfg      config.Config
	conn     *sqlx.DB
	store    *store.Store
	ai       *ai.Client
	analyzer *services.MealAnalyzer
	parser   *services.PlanParser
	tipper   *services.ExerciseTipper
	meals    *services.MealLogger
}

func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if opts.port != "" {
		cfg.Port = opts.port
	}
	if opts.dbURL != "" {
		cfg.DatabaseDriver, cfg.DatabaseDSN = config.ResolveDatabase(opts.dbURL)
	}
	return cfg, nil
}

// openDB connects and migrates.
func openDB(cfg config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	conn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	logger.Info("database ready", zap.String("driver", cfg.DatabaseDriver))
	return conn, nil
}

func newServices(cfg config.Config, logger *zap.Logger) (*ai.Client, *services.MealAnalyzer, *services.PlanParser, *services.ExerciseTipper) {
	client := ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL)
	if !client.Configured() {
		logger.Warn("no AI API key configured; analysis endpoints will report the service as unreachable")
	}
	return client,
		services.NewMealAnalyzer(client, cfg.AITextModel, logger),
		services.NewPlanParser(client, cfg.AIVisionModel, logger),
		services.NewExerciseTipper(client, cfg.AITipModel, logger)
}

func openApp(opts *options) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	var sealer *crypto.Sealer
	if len(cfg.EncryptionKey) > 0 {
		if sealer, err = crypto.NewSealer(cfg.EncryptionKey); err != nil {
			return nil, fmt.Errorf("%s: %w", config.EnvEncryptionKey, err)
		}
	}
	conn, err := openDB(cfg, opts.logger)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, conn: conn, store: store.New(conn, sealer)}
	a.ai, a.analyzer, a.parser, a.tipper = newServices(cfg, opts.logger)
	a.meals = services.NewMealLogger(a.analyzer, a.store.Entries, opts.logger)
	return a, nil
}

func (a *app) Close() error {
	return a.conn.Close()
}
