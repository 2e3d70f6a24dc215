package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const (
	apiKeyHeaderDefault  = "x-api-key"
	requestIDHeader      = "x-request-id"
	permRead             = "read"
	permWrite            = "write"
	clientKeyUnknown     = "unknown"
	healthPathPrefix     = "/healthz"
	readinessPathPrefix  = "/readyz"
	grpcReadMethodPrefix = "Get"
	grpcListMethodPrefix = "List"
)

var errInvalidAPIKey = errors.New("invalid api key")

// keyAuth checks API keys and permissions for both transports.
type keyAuth struct {
	enabled bool
	header  string
	clients map[string]config.APIClientKey
	limiter *keyedLimiter
}

func newKeyAuth(cfg config.APIConfig) *keyAuth {
	header := strings.ToLower(strings.TrimSpace(cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = apiKeyHeaderDefault
	}
	clients := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		clients[k.Key] = k
	}
	return &keyAuth{
		enabled: cfg.Auth.Enabled,
		header:  header,
		clients: clients,
		limiter: newKeyedLimiter(cfg.RateLimit),
	}
}

func (a *keyAuth) authenticate(apiKey, required string) error {
	if apiKey == "" {
		return errInvalidAPIKey
	}
	var client config.APIClientKey
	found := false
	for key, c := range a.clients {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			client, found = c, true
			break
		}
	}
	if !found {
		return errInvalidAPIKey
	}
	return checkPermission(client, required)
}

// checkPermission treats an empty permission list as allow-all.
func checkPermission(client config.APIClientKey, required string) error {
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

// Wrap guards an HTTP handler. Probes bypass auth and throttling.
func (a *keyAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, healthPathPrefix) || strings.HasPrefix(r.URL.Path, readinessPathPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := strings.TrimSpace(r.Header.Get(a.header))
		if a.enabled {
			if err := a.authenticate(apiKey, httpPermission(r)); err != nil {
				statusCode := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if !a.limiter.allow(httpClientKey(apiKey, r)) {
			metrics.IncRateLimited("http")
			writeError(w, http.StatusTooManyRequests, errRateLimit.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func httpPermission(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return permRead
	}
	return permWrite
}

func httpClientKey(apiKey string, r *http.Request) string {
	if apiKey != "" {
		return apiKey
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

// Unary is the gRPC counterpart of Wrap.
func (a *keyAuth) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		apiKey := first(md.Get(a.header))

		if a.enabled {
			if err := a.authenticate(apiKey, grpcPermission(info.FullMethod)); err != nil {
				if errors.Is(err, errPermissionDenied) {
					return nil, status.Error(codes.PermissionDenied, err.Error())
				}
				return nil, status.Error(codes.Unauthenticated, err.Error())
			}
		}

		if !a.limiter.allow(grpcClientKey(ctx, apiKey)) {
			metrics.IncRateLimited("grpc")
			return nil, status.Error(codes.ResourceExhausted, errRateLimit.Error())
		}

		return handler(ctx, req)
	}
}

func grpcPermission(fullMethod string) string {
	method := fullMethod[strings.LastIndex(fullMethod, "/")+1:]
	if strings.HasPrefix(method, grpcReadMethodPrefix) || strings.HasPrefix(method, grpcListMethodPrefix) {
		return permRead
	}
	return permWrite
}

func grpcClientKey(ctx context.Context, apiKey string) string {
	if apiKey != "" {
		return apiKey
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return clientKeyUnknown
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}

func LoggingUnaryInterceptor(logger *zerolog.Logger) grpc.UnaryServerInterceptor {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "grpc").Logger()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := requestIDFromMetadata(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)
		dur := time.Since(start)

		code := status.Code(err)
		metrics.IncGRPC(info.FullMethod, code.String())

		remote := clientKeyUnknown
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		base.Info().
			Str("request_id", requestID).
			Str("method", info.FullMethod).
			Str("remote", remote).
			Str("code", code.String()).
			Dur("duration", dur).
			Msg("grpc request")

		return resp, err
	}
}

func requestIDFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if id := first(md.Get(requestIDHeader)); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
