package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/group-stage/internal/config"
	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/domain/tournament"
	"github.com/riskibarqy/group-stage/internal/infrastructure/lock/redisstore"
	"github.com/riskibarqy/group-stage/internal/infrastructure/realtime"
	"github.com/riskibarqy/group-stage/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/group-stage/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/group-stage/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/group-stage/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/group-stage/internal/platform/cache"
	"github.com/riskibarqy/group-stage/internal/platform/id"
	"github.com/riskibarqy/group-stage/internal/platform/lock"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
	"github.com/riskibarqy/group-stage/internal/platform/resilience"
	"github.com/riskibarqy/group-stage/internal/usecase"
)

// App owns every long-lived dependency of the API process.
type App struct {
	Server *http.Server

	logger      *logging.Logger
	db          *sqlx.DB
	redis       *redis.Client
	hub         *realtime.Hub
	broadcaster *usecase.Broadcaster
}

type repositories struct {
	teams   team.Repository
	matches match.Repository
}

// New builds the HTTP server and its dependencies. Callers must Close the
// returned App even when Server is never started.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	rules := rulesFromConfig(cfg)
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	a := &App{logger: logger}

	repos, err := a.openRepositories(ctx, cfg)
	if err != nil {
		_ = a.closeStores()
		return nil, err
	}

	lockStore, err := a.openLockStore(ctx, cfg)
	if err != nil {
		_ = a.closeStores()
		return nil, err
	}

	breaker := resilience.NewCircuitBreakerFromConfig(resilience.NormalizeCircuitBreakerConfig(resilience.CircuitBreakerConfig{
		Enabled:          cfg.LockCircuitEnabled,
		FailureThreshold: cfg.LockCircuitFailureCount,
		OpenTimeout:      cfg.LockCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.LockCircuitHalfOpenMaxReq,
		OnStateChange: func(from, to resilience.CircuitState) {
			logger.Warn("lock store circuit changed", "from", from, "to", to)
		},
	}))
	lockOpts := lock.Options{
		TTL:          cfg.LockTTL,
		Timeout:      cfg.LockTimeout,
		PollInterval: cfg.LockPollInterval,
	}
	locks := lock.NewService(lockStore, id.NewUUIDGenerator(), breaker, lockOpts, logger.Named("lock"))

	hubOpts := realtime.DefaultOptions()
	hubOpts.CheckOrigin = originChecker(cfg.CORSAllowedOrigins)
	a.hub = realtime.NewHub(hubOpts, logger.Named("realtime"))

	standings := usecase.NewStandingService(repos.teams, repos.matches, rules)
	a.broadcaster, err = usecase.NewBroadcaster(
		standings,
		repos.teams,
		httpapi.NewLivePublisher(a.hub),
		rules,
		cfg.BroadcastWorkers,
		cfg.BroadcastTimeout,
		logger.Named("broadcaster"),
	)
	if err != nil {
		a.hub.Close()
		_ = a.closeStores()
		return nil, err
	}

	handler := httpapi.NewHandler(
		usecase.NewTeamService(repos.teams, repos.matches, locks, lockOpts, rules, a.broadcaster, logger),
		usecase.NewMatchService(repos.teams, repos.matches, locks, lockOpts, rules, a.broadcaster, logger),
		standings,
		usecase.NewAdminService(repos.teams, repos.matches, locks, lockOpts, a.broadcaster, logger),
		a.hub,
		logger,
	)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
		WriteRateLimit:     cfg.WriteRateLimit,
		WriteRateWindow:    cfg.WriteRateWindow,
	}, logger.Named("http"))

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("app initialized",
		"storage_driver", cfg.StorageDriver,
		"lock_driver", cfg.LockDriver,
		"cache_enabled", cfg.CacheEnabled,
		"lock_circuit_enabled", breaker != nil,
		"final_round", rules.FinalRound,
		"group_count", rules.GroupCount,
	)

	return a, nil
}

// Close drains queued broadcasts, disconnects subscribers, then releases the
// stores. The HTTP server must already be shut down.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.broadcaster != nil {
		if err := a.broadcaster.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close broadcaster: %w", err))
		}
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if err := a.closeStores(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeStores() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		a.redis = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		a.db = nil
	}
	return errors.Join(errs...)
}

func (a *App) openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	var repos repositories

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		repos = repositories{
			teams:   memory.NewTeamRepository(store),
			matches: memory.NewMatchRepository(store),
		}
	default:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		a.db = db
		repos = repositories{
			teams:   postgres.NewTeamRepository(db),
			matches: postgres.NewMatchRepository(db),
		}
	}

	if cfg.CacheEnabled {
		repos.teams = cache.NewTeamRepository(repos.teams, basecache.NewStore[[]team.Team](cfg.CacheTTL))
	}
	return repos, nil
}

func (a *App) openLockStore(ctx context.Context, cfg config.Config) (lock.Store, error) {
	if cfg.LockDriver == config.LockDriverMemory {
		a.logger.Warn("using in-process lock store; writes are only serialized within this instance")
		return lock.NewMemoryStore(), nil
	}

	client, err := redisstore.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect lock store: %w", err)
	}
	a.redis = client
	return redisstore.New(client, cfg.ServiceName+":lock:"), nil
}

func rulesFromConfig(cfg config.Config) tournament.Rules {
	rules := tournament.DefaultRules()
	if cfg.FinalRound > 0 {
		rules.FinalRound = cfg.FinalRound
	}
	if cfg.GroupCount > 0 {
		rules.GroupCount = cfg.GroupCount
	}
	if cfg.MaxTeamsPerGroup > 0 {
		rules.MaxTeamsPerGroup = cfg.MaxTeamsPerGroup
	}
	if cfg.QualifyingCount > 0 {
		rules.DefaultQualifyingCount = cfg.QualifyingCount
	}
	if len(cfg.QualifyingCountByRound) > 0 {
		rules.QualifyingCountByRound = cfg.QualifyingCountByRound
	}
	return rules
}

// originChecker applies the CORS allow-list to websocket handshakes.
// Requests without an Origin header are not browser-initiated and pass.
func originChecker(allowed []string) func(r *http.Request) bool {
	allowAll := false
	allowMap := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
		case "*":
			allowAll = true
		default:
			allowMap[origin] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" || allowAll {
			return true
		}
		if _, ok := allowMap[origin]; ok {
			return true
		}
		parsed, err := url.Parse(origin)
		return err == nil && strings.EqualFold(parsed.Host, r.Host)
	}
}
