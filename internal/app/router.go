package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medira-his/medira/internal/appointments"
	"github.com/medira-his/medira/internal/auth"
	"github.com/medira-his/medira/internal/leave"
	"github.com/medira-his/medira/internal/masterdata/branches"
	"github.com/medira-his/medira/internal/notifications"
	"github.com/medira-his/medira/internal/observability"
	"github.com/medira-his/medira/internal/patients"
	"github.com/medira-his/medira/internal/payroll"
	"github.com/medira-his/medira/internal/pharmacy"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/staff"
	"github.com/medira-his/medira/jobs"
)

// RouterConfig collects every handler and gate the router mounts.
type RouterConfig struct {
	Middlewares []func(http.Handler) http.Handler
	Metrics     *observability.Metrics

	Gates         rbac.Middleware
	BranchChecker rbac.BranchChecker

	Auth          *auth.Handler
	Branches      *branches.Handler
	Patients      *patients.Handler
	Staff         *staff.Handler
	Appointments  *appointments.Handler
	Leave         *leave.Handler
	Payroll       *payroll.Handler
	Pharmacy      *pharmacy.Handler
	Notifications *notifications.Handler
	Jobs          *jobs.Handler
}

// NewRouter builds the HTTP route tree. Branch-scoped modules live under
// /api/branches/{branchID} and pass the capability gate first, then the
// branch-isolation gate, before any handler runs.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	for _, mw := range cfg.Middlewares {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	branchGate := cfg.Gates.RequireBranchScope(cfg.BranchChecker, rbac.DefaultBranchSource)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			cfg.Auth.MountRoutes(r, LoginRateLimiter())
		})

		// Self-signup shares the credential-endpoint throttle.
		r.With(LoginRateLimiter()).Group(cfg.Patients.MountPublicRoutes)

		r.Route("/branches", func(r chi.Router) {
			cfg.Branches.MountRoutes(r)
		})

		r.Route("/branches/{branchID}", func(r chi.Router) {
			r.Route("/patients", func(r chi.Router) {
				r.Use(cfg.Gates.RequireAnyAbility(
					rbac.AbilitySuperAdmin, rbac.AbilityAdmin, rbac.AbilityDoctor,
					rbac.AbilityNurse, rbac.AbilityCenterAid, rbac.AbilityAuditor,
				))
				r.Use(branchGate)
				cfg.Patients.MountRoutes(r)
			})

			r.Route("/staff", func(r chi.Router) {
				r.Use(cfg.Gates.RequireAnyAbility(rbac.AbilitySuperAdmin, rbac.AbilityAdmin))
				r.Use(branchGate)
				cfg.Staff.MountRoutes(r)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Use(cfg.Gates.RequireAnyAbility(
					rbac.AbilitySuperAdmin, rbac.AbilityAdmin, rbac.AbilityDoctor,
					rbac.AbilityNurse, rbac.AbilityCenterAid, rbac.AbilityPatient,
				))
				r.Use(branchGate)
				cfg.Appointments.MountRoutes(r)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Use(cfg.Gates.RequireAnyAbility(
					rbac.AbilitySuperAdmin, rbac.AbilityAdmin, rbac.AbilityDoctor,
					rbac.AbilityNurse, rbac.AbilityCashier, rbac.AbilityPharmacist,
					rbac.AbilityITSupport, rbac.AbilityCenterAid, rbac.AbilityAuditor,
				))
				r.Use(branchGate)
				cfg.Leave.MountRoutes(r)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Use(cfg.Gates.RequireAnyAbility(rbac.AbilitySuperAdmin, rbac.AbilityAdmin))
				r.Use(branchGate)
				cfg.Payroll.MountRoutes(r)
			})

			r.Route("/pharmacy", func(r chi.Router) {
				r.Use(cfg.Gates.RequireAnyAbility(
					rbac.AbilitySuperAdmin, rbac.AbilityAdmin, rbac.AbilityDoctor,
					rbac.AbilityPharmacist, rbac.AbilityCashier,
				))
				r.Use(branchGate)
				cfg.Pharmacy.MountRoutes(r)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			cfg.Notifications.MountRoutes(r)
		})

		if cfg.Jobs != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(cfg.Gates.RequireAnyAbility(rbac.AbilitySuperAdmin, rbac.AbilityITSupport))
				cfg.Jobs.MountRoutes(r)
			})
		}
	})

	return r
}
