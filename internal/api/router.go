package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/top242011/relife-app/internal/auth"
	"github.com/top242011/relife-app/internal/directory"
	"github.com/top242011/relife-app/internal/meeting"
	"github.com/top242011/relife-app/internal/member"
	"github.com/top242011/relife-app/internal/metrics"
	"github.com/top242011/relife-app/internal/ratelimit"
	"github.com/top242011/relife-app/internal/session"
)

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Auth        *auth.Service
	Sessions    session.Store
	Members     *member.Store
	Assignments AssignmentStore
	Directory   *directory.Store
	Meetings    *meeting.Store
	Limiter     *ratelimit.Limiter
	Metrics     *metrics.Metrics
	CORSOrigins []string
	Production  bool
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.CORSOrigins))
	r.Use(slogRequestLogger)
	r.Use(metricsMiddleware(deps.Metrics))
	r.Use(auth.LoadIdentity(deps.Sessions))

	// Handlers.
	authH := newAuthHandler(deps.Auth, deps.Metrics, deps.Production)
	regsH := newRegistrationsHandler(deps.Auth, deps.Metrics)
	membersH := newMembersHandler(deps.Members)
	assignH := newAssignmentsHandler(deps.Assignments)
	meetingsH := newMeetingsHandler(deps.Meetings)
	regulationsH := newRegulationsHandler(deps.Meetings)

	positionsH := newDirectoryHandler(deps.Directory, directory.TablePositions, "position")
	departmentsH := newDirectoryHandler(deps.Directory, directory.TableDepartments, "department")
	committeesH := newDirectoryHandler(deps.Directory, directory.TableCommittees, "committee")
	meetingTypesH := newDirectoryHandler(deps.Directory, directory.TableMeetingTypes, "meeting type")

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Live metrics summary.
	r.Get("/metrics", deps.Metrics.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		// Registration endpoints are rate limited by client IP.
		v1.Group(func(lr chi.Router) {
			lr.Use(ratelimit.Middleware(deps.Limiter, func() {
				deps.Metrics.IncRateLimitRejection("registration")
			}))
			lr.Post("/auth/register", authH.Register)
			lr.Get("/auth/registration-status", authH.RegistrationStatus)
		})

		v1.Post("/auth/login", authH.Login)

		// Public reads.
		v1.Get("/members", membersH.List)
		v1.Get("/members/{id}", membersH.Get)
		v1.Get("/members/{id}/{kind:positions|departments|committees}", assignH.List)
		v1.Get("/members/{id}/roles", assignH.ListRoles)

		v1.Get("/positions", positionsH.List)
		v1.Get("/positions/{id}", positionsH.Get)
		v1.Get("/departments", departmentsH.List)
		v1.Get("/departments/{id}", departmentsH.Get)
		v1.Get("/committees", committeesH.List)
		v1.Get("/committees/{id}", committeesH.Get)
		v1.Get("/meeting-types", meetingTypesH.List)
		v1.Get("/meeting-types/{id}", meetingTypesH.Get)

		v1.Get("/meetings", meetingsH.List)
		v1.Get("/meetings/{id}", meetingsH.Get)
		v1.Get("/meetings/{id}/attendances", meetingsH.ListAttendances)
		v1.Get("/meetings/{id}/agendas", meetingsH.ListAgendas)
		v1.Get("/meetings/{id}/report", meetingsH.GetReport)
		v1.Get("/agendas/{id}", meetingsH.GetAgenda)
		v1.Get("/agendas/{id}/votes", meetingsH.ListVotes)
		v1.Get("/draft-regulations", regulationsH.List)
		v1.Get("/draft-regulations/{id}", regulationsH.Get)

		// Authenticated writes.
		v1.Group(func(ur chi.Router) {
			ur.Use(auth.RequireUser)

			ur.Post("/auth/logout", authH.Logout)
			ur.Get("/auth/me", authH.Me)

			ur.Post("/members", membersH.Create)
			ur.Put("/members/{id}", membersH.Update)
			ur.Delete("/members/{id}", membersH.Delete)

			ur.Post("/members/{id}/{kind:positions|departments|committees}", assignH.Add)
			ur.Delete("/members/{id}/{kind:positions|departments|committees}/{targetID}", assignH.Remove)
			ur.Post("/members/{id}/roles", assignH.AddRole)
			ur.Delete("/members/{id}/roles/{role}", assignH.RemoveRole)
			ur.Put("/member-roles/{id}", assignH.UpdateRole)
			ur.Delete("/member-roles/{id}", assignH.RemoveRoleByID)

			ur.Post("/positions", positionsH.Create)
			ur.Put("/positions/{id}", positionsH.Update)
			ur.Delete("/positions/{id}", positionsH.Delete)
			ur.Post("/departments", departmentsH.Create)
			ur.Put("/departments/{id}", departmentsH.Update)
			ur.Delete("/departments/{id}", departmentsH.Delete)
			ur.Post("/committees", committeesH.Create)
			ur.Put("/committees/{id}", committeesH.Update)
			ur.Delete("/committees/{id}", committeesH.Delete)
			ur.Post("/meeting-types", meetingTypesH.Create)
			ur.Put("/meeting-types/{id}", meetingTypesH.Update)
			ur.Delete("/meeting-types/{id}", meetingTypesH.Delete)

			ur.Post("/meetings", meetingsH.Create)
			ur.Put("/meetings/{id}", meetingsH.Update)
			ur.Delete("/meetings/{id}", meetingsH.Delete)
			ur.Post("/meetings/{id}/attendances", meetingsH.RecordAttendance)
			ur.Put("/meetings/{id}/report", meetingsH.PutReport)
			ur.Put("/attendances/{id}", meetingsH.UpdateAttendance)
			ur.Delete("/attendances/{id}", meetingsH.DeleteAttendance)
			ur.Post("/meetings/{id}/agendas", meetingsH.CreateAgenda)
			ur.Put("/agendas/{id}", meetingsH.UpdateAgenda)
			ur.Delete("/agendas/{id}", meetingsH.DeleteAgenda)
			ur.Post("/agendas/{id}/votes", meetingsH.CastVote)
			ur.Put("/votes/{id}", meetingsH.UpdateVote)
			ur.Delete("/votes/{id}", meetingsH.DeleteVote)

			ur.Post("/draft-regulations", regulationsH.Create)
			ur.Put("/draft-regulations/{id}", regulationsH.Update)
			ur.Delete("/draft-regulations/{id}", regulationsH.Delete)
		})

		// Admin review of registration requests.
		v1.Route("/admin", func(ar chi.Router) {
			ar.Use(auth.RequireAdmin)

			ar.Get("/registrations", regsH.List)
			ar.Get("/registrations/pending", regsH.ListPending)
			ar.Post("/registrations/{id}/approve", regsH.Approve)
			ar.Post("/registrations/{id}/reject", regsH.Reject)
		})
	})

	return r
}

// slogRequestLogger is a simple structured logging middleware using slog.
func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
		)
	})
}
