package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/user"
	"github.com/cmlabs-hris/hris-timesheet/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewLogger builds the JSON (ECS) application logger
func NewLogger(env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-timesheet"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)
}

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {

				// Own timesheet
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
						r.Get("/status", attendanceHandler.GetStatus)
						r.Get("/weekly", attendanceHandler.GetMyWeekly)
						r.Get("/timeline", attendanceHandler.GetTimeline)
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
						r.Post("/clock-in", attendanceHandler.ClockIn)
						r.Post("/breaks/start", attendanceHandler.StartBreak)
						r.Post("/breaks/resume", attendanceHandler.ResumeWork)
						r.Post("/clock-out", attendanceHandler.ClockOut)
					})
				})

				// Owner / manager
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/employees/{employeeID}/weekly", attendanceHandler.GetEmployeeWeekly)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
					r.Put("/entries", attendanceHandler.ManualEdit)
					r.Delete("/entries/{id}", attendanceHandler.Delete)
				})
			})
		})
	})
	return r
}
