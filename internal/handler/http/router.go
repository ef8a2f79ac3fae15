package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-core/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	JWTService     jwt.Service
	Translator     *i18n.Translator
}

func NewRouter(cfg RouterConfig, attendanceHandler AttendanceHandler, leaveHandler LeaveHandler, salaryHandler SalaryHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Language"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))
	r.Use(middleware.Locale(cfg.Translator))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, i18n.T(r.Context(), "error.route_not_found"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireCompany)

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/check-in", attendanceHandler.CheckIn)
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/", attendanceHandler.List)
				r.Get("/summary", attendanceHandler.Summary)
				r.Get("/{id}", attendanceHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCorrect))
					r.Put("/{id}", attendanceHandler.Correct)
					r.Delete("/{id}", attendanceHandler.Delete)
				})
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", leaveHandler.Create)
				r.Get("/", leaveHandler.List)
				r.Get("/{id}", leaveHandler.Get)
				r.Put("/{id}", leaveHandler.Update)
				r.Post("/{id}/cancel", leaveHandler.Cancel)
				r.Post("/{id}/attachments", leaveHandler.AddAttachment)
				r.Delete("/{id}", leaveHandler.Delete)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
					r.Post("/{id}/approve", leaveHandler.Approve)
					r.Post("/{id}/reject", leaveHandler.Reject)
				})
			})

			r.Route("/salaries", func(r chi.Router) {
				r.Get("/", salaryHandler.List)
				r.Get("/{id}", salaryHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/summary", salaryHandler.Summary)
					r.Post("/", salaryHandler.Create)
					r.Put("/{id}", salaryHandler.Update)
					r.Post("/{id}/pay", salaryHandler.MarkPaid)
					r.Delete("/{id}", salaryHandler.Delete)
				})
			})
		})
	})
	return r
}
