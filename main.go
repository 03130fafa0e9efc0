package main

import (
	"context"
	"log"
	"os"
	"strings"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/jegu600/Gestion360/config"
	"github.com/jegu600/Gestion360/modules/api"
	"github.com/jegu600/Gestion360/modules/auth"
	"github.com/jegu600/Gestion360/modules/notificacion"
	"github.com/jegu600/Gestion360/modules/push"
	"github.com/jegu600/Gestion360/modules/tarea"
)

func main() {
	log.Println("=== Gestion360 - Task Management Backend ===")

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	if strings.EqualFold(cfg.Log.Level, "error") {
		logLevel = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	authModule := auth.NewModule(cfg)
	notificacionModule := notificacion.NewModule(cfg)
	tareaModule := tarea.NewModule(cfg)
	pushModule := push.NewModule()
	apiModule := api.NewModule(cfg)

	// The hub is not exposed via ServiceContainer
	apiModule.SetHub(pushModule.GetHub())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - auth: users and tokens (ServiceProviderModule)
	// - notificacion: inbox and fan-out sink (ServiceProviderModule + EventEmitterModule + EventConsumerModule)
	// - tarea: task lifecycle engine (depends on auth, notificacion)
	// - push: WebSocket hub (EventConsumerModule)
	// - api: Fiber HTTP/WebSocket server (depends on auth, tarea, notificacion)
	app.Register(authModule)
	app.Register(notificacionModule)
	app.Register(tareaModule)
	app.Register(pushModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.HTTP.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Storage:")
	log.Printf("  - Usuarios: %s", cfg.Database.AuthPath)
	log.Printf("  - Tareas: %s", cfg.Database.TareasPath)
	log.Printf("  - Notificaciones: %s", cfg.Database.NotificacionesPath)
	if cfg.Redis.Enabled() {
		log.Printf("  - Redis: %s (unread counters, auth rate limit)", cfg.Redis.Addr)
	} else {
		log.Println("  - Redis: disabled")
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTP.Port)
	log.Println("  GET    /health                                - Health check")
	log.Println("  POST   /api/auth/register                     - Register a user")
	log.Println("  POST   /api/auth/login                        - Login")
	log.Println("  POST   /api/auth/refresh                      - Refresh tokens")
	log.Println("  GET    /api/auth/renew                        - Renew tokens (protected)")
	log.Println("  GET    /api/usuarios                          - List users (protected)")
	log.Println("  GET    /api/usuarios/:id                      - Get user (protected)")
	log.Println("  GET    /api/tareas                            - List tasks (protected)")
	log.Println("  GET    /api/tareas/estado/:estado             - List tasks by status (protected)")
	log.Println("  GET    /api/tareas/:id                        - Get task (protected)")
	log.Println("  POST   /api/tareas                            - Create task (protected)")
	log.Println("  PUT    /api/tareas/:id                        - Update task (protected)")
	log.Println("  PATCH  /api/tareas/:id/estado                 - Change task status (protected)")
	log.Println("  DELETE /api/tareas/:id                        - Delete task (protected)")
	log.Println("  GET    /api/notificaciones                    - List notifications (protected)")
	log.Println("  GET    /api/notificaciones/no-leidas          - Unread notifications (protected)")
	log.Println("  GET    /api/notificaciones/contador           - Unread count (protected)")
	log.Println("  PATCH  /api/notificaciones/:id/leida          - Mark read (protected)")
	log.Println("  PATCH  /api/notificaciones/marcar-todas-leidas - Mark all read (protected)")
	log.Println("  DELETE /api/notificaciones/limpiar-leidas     - Purge read (protected)")
	log.Println("  DELETE /api/notificaciones/:id                - Delete notification (protected)")
	log.Println("")
	log.Printf("WebSocket Endpoint: ws://localhost:%d/ws?token=<access_token>", cfg.HTTP.Port)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
