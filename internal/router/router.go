package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	mem "cat-feeder/internal/adapters/storage/memory"
	pg "cat-feeder/internal/adapters/storage/postgres"
	"cat-feeder/internal/config"
	"cat-feeder/internal/domain/accounts"
	"cat-feeder/internal/domain/audit"
	"cat-feeder/internal/domain/feedings"
	"cat-feeder/internal/domain/inventory"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/domain/push"
	"cat-feeder/internal/domain/stats"
	"cat-feeder/internal/domain/weights"
	"cat-feeder/internal/middleware"
	"cat-feeder/internal/notify"
	"cat-feeder/internal/platform/logger"
	"cat-feeder/internal/platform/metrics"
	"cat-feeder/internal/reports"

	_ "cat-feeder/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"
)

// sessionSource adapta accounts.Service al port que piden los
// middlewares (que no importan el módulo de cuentas).
type sessionSource struct {
	svc *accounts.Service
}

func (s sessionSource) HasUsers(ctx context.Context) (bool, error) {
	return s.svc.HasUsers(ctx)
}

func (s sessionSource) UserFromSession(ctx context.Context, token string) (middleware.User, error) {
	u, err := s.svc.UserFromSession(ctx, token)
	if err != nil {
		return middleware.User{}, err
	}
	return middleware.User{ID: u.ID, Username: u.Username, IsActive: u.IsActive}, nil
}

type Options struct {
	Config config.Config
	Log    logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	m := metrics.New()

	var (
		accountsRepo accounts.Repository
		petsRepo     pets.Repository
		feedingsRepo feedings.Repository
		invRepo      inventory.Repository
		auditRepo    audit.Repository
		pushRepo     push.Repository
		weightsRepo  weights.Repository
	)

	if opts.DB != nil {
		accountsRepo = pg.NewAccountsRepo(opts.DB)
		petsRepo = pg.NewPetsRepo(opts.DB)
		feedingsRepo = pg.NewFeedingsRepo(opts.DB)
		invRepo = pg.NewInventoryRepo(opts.DB)
		auditRepo = pg.NewAuditRepo(opts.DB)
		pushRepo = pg.NewPushRepo(opts.DB)
		weightsRepo = pg.NewWeightsRepo(opts.DB)
	} else {
		accountsRepo = mem.NewAccountsRepo()
		petsRepo = mem.NewPetsRepo()
		feedingsRepo = mem.NewFeedingsRepo()
		invRepo = mem.NewInventoryRepo()
		auditRepo = mem.NewAuditRepo()
		pushRepo = mem.NewPushRepo()
		weightsRepo = mem.NewWeightsRepo()
	}

	// Services por módulo
	auditSvc := audit.NewService(auditRepo)
	accountsSvc := accounts.NewService(accountsRepo)
	petsSvc := pets.NewService(petsRepo)
	pushSvc := push.NewService(pushRepo)

	dispatcher := notify.NewDispatcher(accountsSvc, pushSvc, notify.VAPIDKeys{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subject:    cfg.VAPIDSubject,
	}, log)

	inventorySvc := inventory.NewService(invRepo, inventory.Deps{
		Audit:             auditSvc,
		Alerts:            dispatcher,
		Log:               log,
		Metrics:           m,
		SachetSizeGrams:   cfg.SachetSizeGrams,
		LowStockThreshold: cfg.LowStockThreshold,
	})
	feedingsSvc := feedings.NewService(feedingsRepo, feedings.Deps{
		Pets:              petsSvc,
		Audit:             auditSvc,
		Inventory:         inventorySvc,
		Notifier:          dispatcher,
		Log:               log,
		Metrics:           m,
		DefaultDailyLimit: cfg.DailyLimit,
	})
	weightsSvc := weights.NewService(weightsRepo, petsSvc, auditSvc)
	statsSvc := stats.NewService(feedingsRepo)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SessionContext(sessionSource{accountsSvc}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	// Rutas públicas: auth y login con rate limit por IP.
	limitLogin := middleware.LoginRateLimit(rate.Every(time.Second), 5)
	accounts.RegisterPublicRoutes(r, accountsSvc, auditSvc, cfg.SessionMaxAge, limitLogin)

	// Todo el resto va detrás de RequireAuth (que deja pasar todo
	// mientras no exista ningún usuario).
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(sessionSource{accountsSvc}))

		// Swagger UI queda detrás del mismo gate que la API.
		pr.Get("/docs/*", httpSwagger.WrapHandler)

		accounts.RegisterRoutes(pr, accountsSvc, auditSvc)
		pets.RegisterRoutes(pr, petsSvc, feedingsSvc, auditSvc)
		feedings.RegisterRoutes(pr, feedingsSvc, petsSvc, auditSvc, cfg.DeviceToken, cfg.SeedToken)
		inventory.RegisterRoutes(pr, inventorySvc, petsSvc)
		stats.RegisterRoutes(pr, statsSvc)
		weights.RegisterRoutes(pr, weightsSvc)
		push.RegisterRoutes(pr, pushSvc, cfg.VAPIDPublicKey)
		audit.RegisterRoutes(pr, auditSvc)
		reports.RegisterRoutes(pr, petsSvc, feedingsSvc, weightsSvc, inventorySvc)
	})

	return r
}
