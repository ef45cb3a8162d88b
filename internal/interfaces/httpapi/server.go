package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

type RouterConfig struct {
	ServiceName        string
	CORSAllowedOrigins []string
	AdminToken         string
	WriteRateLimit     int
	WriteRateWindow    time.Duration
}

func NewRouter(handler *Handler, cfg RouterConfig, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "group-stage"
	}

	admin := adminChain(cfg)

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)
	registerLiveRoutes(mux, handler)
	registerAdminRoutes(mux, handler, admin)

	return RequestTracing(cfg.ServiceName, RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}

// adminChain checks the admin token before the write rate limit.
func adminChain(cfg RouterConfig) func(http.Handler) http.Handler {
	limit := RateLimit(cfg.WriteRateLimit, cfg.WriteRateWindow)
	return func(next http.Handler) http.Handler {
		return RequireAdminToken(cfg.AdminToken, limit(next))
	}
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
