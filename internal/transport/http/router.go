package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopauth/internal/gate"
	obsmw "shopauth/internal/observability/middleware"
)

type RouterConfig struct {
	CORSOrigins []string
	// OTPRequestsPerMinute and LoginRequestsPerMinute throttle the two
	// abuse-prone endpoints per client IP.
	OTPRequestsPerMinute   int
	LoginRequestsPerMinute int
}

func NewRouter(h *Handler, g *gate.Gate, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(g.Require(gate.Public()))
			r.Use(httprate.LimitByIP(perMinute(cfg.OTPRequestsPerMinute, 5), time.Minute))
			r.Post("/otp", h.SendOTP)
		})
		r.Group(func(r chi.Router) {
			r.Use(g.Require(gate.Public()))
			r.Use(httprate.LimitByIP(perMinute(cfg.LoginRequestsPerMinute, 10), time.Minute))
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(g.Require(gate.Public()))
			r.Post("/register", h.Register)
			r.Post("/refresh-token", h.RefreshToken)
			r.Post("/logout", h.Logout)
			r.Post("/forgot-password", h.ForgotPassword)

			r.Get("/google-link", h.GoogleLink)
			r.Get("/google/callback", h.GoogleCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(g.Require(gate.DefaultPolicy()))
			r.Post("/2fa/setup", h.SetupTwoFactorAuth)
			r.Post("/2fa/disable", h.DisableTwoFactorAuth)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(g.Require(gate.DefaultPolicy()))
		r.Get("/profile", h.Profile)
	})

	// Payment provider webhooks authenticate with a dedicated shared key,
	// not a user token.
	r.Group(func(r chi.Router) {
		r.Use(g.Require(gate.Policy{
			Strategies: []gate.StrategyName{gate.PaymentAPIKey},
			Condition:  gate.And,
		}))
		r.Post("/webhooks/payment", h.PaymentWebhook)
	})

	return r
}

func perMinute(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

func originsIfSet(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
