package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studydeck/internal/api"
	"github.com/phrazzld/studydeck/internal/config"
	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/domain/srs"
	"github.com/phrazzld/studydeck/internal/events"
	"github.com/phrazzld/studydeck/internal/platform/postgres"
	"github.com/phrazzld/studydeck/internal/platform/sqlite"
	"github.com/phrazzld/studydeck/internal/service/deck"
	"github.com/phrazzld/studydeck/internal/service/reviewlog"
	"github.com/phrazzld/studydeck/internal/service/session"
	"github.com/phrazzld/studydeck/internal/store"
)

// application holds the wired components of a running server.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	clock    api.Clock
	subjects []domain.Subject

	cardStore      store.CardStore
	reviewLogStore store.ReviewLogStore

	emitter  *events.InMemoryEventEmitter
	recorder *reviewlog.Recorder
	deck     *deck.Repository
	sessions *session.Manager
}

// newApplication builds every component from cfg. db may be nil for the
// memory driver.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		clock:  time.Now,
	}

	app.setupStores()

	params, err := srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:  cfg.SRS.MinEaseFactor,
		PassingQuality: cfg.SRS.PassingGrade,
		FirstInterval:  cfg.SRS.FirstInterval,
		SecondInterval: cfg.SRS.SecondInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduler parameters: %w", err)
	}
	scheduler, err := srs.NewServiceWithParams(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	if app.reviewLogStore != nil {
		app.recorder = reviewlog.NewRecorder(app.reviewLogStore, logger)
		app.emitter.RegisterHandler(app.recorder)
	}

	opts := []deck.Option{
		deck.WithEmitter(app.emitter),
		deck.WithLogger(logger),
		deck.WithMasteredInterval(cfg.SRS.MasteredIntervalDays),
	}
	if app.cardStore != nil {
		opts = append(opts, deck.WithStore(app.cardStore))
	}
	app.deck = deck.NewRepository(scheduler, opts...)

	if err := app.deck.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	app.subjects = mergeSubjects(nil, cfg.Deck.Subjects)
	if cfg.Deck.SeedFile != "" {
		if err := app.seed(ctx, cfg.Deck.SeedFile); err != nil {
			return nil, err
		}
	}

	app.sessions = session.NewManager(app.deck, logger,
		session.WithIdleTimeout(cfg.Server.SessionIdleTimeout))

	logger.Info("application initialized",
		slog.String("driver", cfg.Database.Driver),
		slog.Int("cards", len(app.deck.AllCards())),
		slog.Int("subjects", len(app.subjects)))
	return app, nil
}

func (app *application) setupStores() {
	switch app.config.Database.Driver {
	case config.DriverPostgres:
		app.cardStore = postgres.NewPostgresCardStore(app.db, app.logger)
		app.reviewLogStore = postgres.NewPostgresReviewLogStore(app.db, app.logger)
	case config.DriverSQLite:
		app.cardStore = sqlite.NewCardStore(app.db, app.logger)
		app.reviewLogStore = sqlite.NewReviewLogStore(app.db, app.logger)
	}
}

// seed adds the cards from path that the repository does not already hold.
func (app *application) seed(ctx context.Context, path string) error {
	file, err := deck.LoadSeed(path)
	if err != nil {
		return err
	}
	cards, err := file.BuildCards(app.clock())
	if err != nil {
		return err
	}
	added, err := app.deck.Seed(ctx, cards)
	if err != nil {
		return fmt.Errorf("failed to seed deck: %w", err)
	}

	app.subjects = mergeSubjects(app.subjects, file.Subjects)
	app.logger.Info("deck seeded",
		slog.String("seed_file", path),
		slog.Int("cards_in_file", len(cards)),
		slog.Int("cards_added", added))
	return nil
}

// mergeSubjects appends the subjects in extra whose IDs are not yet present.
func mergeSubjects(base []domain.Subject, extra []domain.Subject) []domain.Subject {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]domain.Subject, 0, len(base)+len(extra))
	for _, list := range [][]domain.Subject{base, extra} {
		for _, s := range list {
			if _, ok := seen[s.ID]; ok {
				continue
			}
			seen[s.ID] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// reviewLister returns the recorder as an api.ReviewLister, or nil when
// review history is not kept.
func (app *application) reviewLister() api.ReviewLister {
	if app.recorder == nil {
		return nil
	}
	return app.recorder
}

// Run starts the HTTP server and blocks until it shuts down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go app.sweepSessions(sweepCtx)

	return startHTTPServer(ctx, app, router)
}

// sweepSessions evicts idle sessions once a minute until ctx is cancelled.
func (app *application) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.sessions.Sweep()
		}
	}
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	app.logger.Info("cleaning up application resources")
	closeDatabase(app.db, app.logger)
}
