package api

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	"github.com/jegu600/Gestion360/config"
	"github.com/jegu600/Gestion360/modules/auth"
	"github.com/jegu600/Gestion360/modules/notificacion"
	"github.com/jegu600/Gestion360/modules/push"
	"github.com/jegu600/Gestion360/modules/tarea"
)

// APIModule is the HTTP API module with WebSocket support.
type APIModule struct {
	port       int
	rateLimit  int
	rateWindow time.Duration
	redisCfg   config.RedisConfig

	app            *fiber.App
	limiterStorage fiber.Storage
	authAdapter    auth.AuthPort
	tareaAdapter   tarea.TareaPort
	notifAdapter   notificacion.NotificacionPort
	hub            *push.Hub
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule.
func NewModule(cfg *config.Config) *APIModule {
	return &APIModule{
		port:       cfg.HTTP.Port,
		rateLimit:  cfg.HTTP.AuthRateLimit,
		rateWindow: cfg.HTTP.AuthRateWindow,
		redisCfg:   cfg.Redis,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "tarea", "notificacion"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "tarea":
		m.tareaAdapter = tarea.NewTareaAdapter(container)
	case "notificacion":
		m.notifAdapter = notificacion.NewNotificacionAdapter(container)
	}
}

// SetHub sets the push hub (called from main.go).
func (m *APIModule) SetHub(hub *push.Hub) {
	m.hub = hub
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authAdapter == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.tareaAdapter == nil {
		return fmt.Errorf("tarea dependency not set")
	}
	if m.notifAdapter == nil {
		return fmt.Errorf("notificacion dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("push hub dependency not set")
	}

	if m.redisCfg.Enabled() {
		storage, err := newLimiterStorage(m.redisCfg.Addr)
		if err != nil {
			log.Printf("[api] Warning: rate limit storage unavailable, using memory: %v", err)
		} else {
			m.limiterStorage = storage
		}
	}

	handlers := NewHandlers(m.authAdapter, m.tareaAdapter, m.notifAdapter, m.hub)
	m.app = newApp(handlers, m.authLimiter())

	addr := ":" + strconv.Itoa(m.port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if m.limiterStorage != nil {
		if err := m.limiterStorage.Close(); err != nil {
			log.Printf("[api] Warning: failed to close rate limit storage: %v", err)
		}
	}
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	limiterBackend := "memory"
	if m.limiterStorage != nil {
		limiterBackend = "redis"
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":            m.port,
			"limiter_storage": limiterBackend,
		},
	}
}

// authLimiter throttles the public credential endpoints per client IP.
func (m *APIModule) authLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        m.rateLimit,
		Expiration: m.rateWindow,
		Storage:    m.limiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		LimitReached: rateLimitReached,
	})
}

// newApp builds the Fiber application with the middleware stack and routes.
func newApp(h *Handlers, authLimiter fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(fiberrecover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,x-token",
	}))

	setupRoutes(app, h, authLimiter)
	return app
}

// newLimiterStorage connects the shared rate limit storage. The storage
// driver panics when Redis is unreachable, so that is turned into an error.
func newLimiterStorage(addr string) (storage fiber.Storage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("redis storage at %s: %v", addr, r)
		}
	}()

	host, port := parseRedisAddr(addr)
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		PoolSize: 50,
	}), nil
}

func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}

	if host == "" {
		host = defaultHost
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}

	return host, port
}
