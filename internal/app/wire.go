package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fuel-planner/internal/calendar"
	"fuel-planner/internal/config"
	"fuel-planner/internal/database"
	"fuel-planner/internal/dining"
	"fuel-planner/internal/llm"
	"fuel-planner/internal/metrics"
	"fuel-planner/internal/planner"
)

// Bootstrap builds an App from configuration. A missing LLM key or Google
// setting does not fail startup; the affected operation reports it. The
// returned close function releases the generator and the metrics database.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	gen, err := llm.New(ctx, cfg)
	if err != nil {
		logger.Warn("text generator unavailable", zap.Error(err))
		gen = llm.Unavailable(err)
	} else if c, ok := gen.(llm.Closer); ok {
		closers = append(closers, func() { c.Close() })
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	ds, err := dining.FromSource(fetchCtx, cfg.DiningSource, &http.Client{Timeout: 20 * time.Second})
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("failed to load dining data from %q: %w", cfg.DiningSource, err)
	}
	logger.Info("dining data loaded", zap.String("source", cfg.DiningSource), zap.Int("locations", ds.Len()))

	var store *metrics.Store
	if cfg.MetricsDBPath != "" {
		db, err := database.NewDB(cfg.MetricsDBPath, logger)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to initialize metrics database: %w", err)
		}
		store = metrics.NewStore(db.SQL)
		closers = append(closers, func() { store.Close() })
	}

	google, googleErr := calendar.NewGoogleImporter(calendar.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		StateSecret:  cfg.OAuthStateSecret,
	})
	if googleErr != nil {
		logger.Info("google calendar import disabled", zap.Error(googleErr))
	}

	p := planner.NewPlanner(gen, planner.Options{
		Timeout:  cfg.LLMTimeout,
		Policy:   cfg.PlanValidation,
		Location: cfg.Location,
	})

	a := NewApp(Deps{
		Logger:    logger,
		Dining:    ds,
		Planner:   p,
		Metrics:   store,
		Google:    google,
		GoogleErr: googleErr,
		Location:  cfg.Location,
	})
	return a, closeAll, nil
}

// CleanupMetrics drops metric rows older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	if a.metrics == nil {
		return 0, nil
	}
	return a.metrics.Cleanup(ctx, days)
}
