package http

import (
	"io"
	"log/slog"
	"os"
	"regexp"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/middleware"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

type Handlers struct {
	Account     AccountHandler
	Leave       LeaveHandler
	Substitute  SubstituteHandler
	Attendance  AttendanceHandler
	Payroll     PayrollHandler
	Recruitment RecruitmentHandler
	Events      EventsHandler
}

var tokenQuery = regexp.MustCompile(`([?&]jwt=)[^&\s]+`)

// redactTokens masks ?jwt= bearer tokens in the request URL and message
// before the schema renames the attributes.
func redactTokens(next func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && (a.Key == slog.MessageKey || a.Key == httplog.SchemaECS.RequestURL) {
			a = slog.String(a.Key, tokenQuery.ReplaceAllString(a.Value.String(), "${1}REDACTED"))
		}
		return next(groups, a)
	}
}

func newRequestLogger(w io.Writer, cfg RouterConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: redactTokens(logFormat.ReplaceAttr),
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logger := newRequestLogger(os.Stdout, cfg)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	capability := middleware.RequireCapability

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Account.Login)
			r.Post("/password-reset/confirm", h.Account.ConfirmPasswordReset)
		})

		// EventSource cannot set headers, so the stream also accepts ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired)
			r.Get("/events", h.Events.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/leave-applications", func(r chi.Router) {
				r.With(capability(access.FeatureLeaveApply)).Post("/", h.Leave.Submit)
				r.Get("/", h.Leave.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Leave.Get)
					r.Post("/cancel", h.Leave.Cancel)
					r.Get("/affected-slots", h.Leave.AffectedSlots)
					r.Get("/compose-notice", h.Leave.ComposeNotice)

					r.Group(func(r chi.Router) {
						r.Use(capability(access.FeatureLeaveApprove))
						r.Post("/approve", h.Leave.Approve)
						r.Post("/reject", h.Leave.Reject)
					})

					r.Group(func(r chi.Router) {
						r.Use(capability(access.FeatureSubstituteAssign))
						r.Post("/affected-slots/refresh", h.Leave.RefreshAffectedSlots)
						r.Post("/substitutes", h.Leave.AssignSubstitute)
					})
				})
			})

			r.With(capability(access.FeatureSubstituteAssign)).Get("/substitutes/available", h.Substitute.Available)

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(capability(access.FeatureAttendanceRecord))
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
				})
				r.With(capability(access.FeatureAttendanceManage)).Post("/mark", h.Attendance.Mark)
				r.Get("/summary", h.Attendance.Summary)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/", h.Payroll.List)
				r.Get("/{id}", h.Payroll.Get)

				r.Group(func(r chi.Router) {
					r.Use(capability(access.FeaturePayrollGenerate))
					r.Post("/calculate", h.Payroll.Calculate)
					r.Post("/generate", h.Payroll.Generate)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.With(capability(access.FeatureCreateInstitutionAdmin)).Post("/institution-admins", h.Account.CreateInstitutionAdmin)
				r.With(capability(access.FeatureCreateStudent)).Post("/students", h.Account.CreateStudentUser)
				r.With(capability(access.FeatureResetPassword)).Post("/password-reset", h.Account.SendPasswordReset)
			})

			r.Route("/recruitment/job-postings", func(r chi.Router) {
				r.Use(capability(access.FeatureRecruitmentManage))
				r.Post("/", h.Recruitment.CreateJobPosting)
				r.Get("/{id}", h.Recruitment.GetJobPosting)
			})
		})
	})
	return r
}
