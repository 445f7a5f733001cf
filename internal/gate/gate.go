// Package gate is the per-request authentication gate. Routes declare a
// Policy, a set of named strategies plus an AND/OR composition mode, and
// the gate enforces it before the handler runs. Policies are fixed at
// router construction.
package gate

import (
	"encoding/json"
	"net/http"

	"shopauth/internal/domain"
	"shopauth/internal/observability/metrics"
)

type StrategyName string

const (
	Bearer        StrategyName = "Bearer"
	APIKey        StrategyName = "APIKey"
	PaymentAPIKey StrategyName = "PaymentAPIKey"
	None          StrategyName = "None"
)

type Condition string

const (
	And Condition = "and"
	Or  Condition = "or"
)

type Policy struct {
	Strategies []StrategyName
	Condition  Condition
}

// DefaultPolicy guards a route that declares nothing: bearer token, all
// strategies required.
func DefaultPolicy() Policy {
	return Policy{Strategies: []StrategyName{Bearer}, Condition: And}
}

func Public() Policy {
	return Policy{Strategies: []StrategyName{None}, Condition: And}
}

// Strategy authenticates one way. On success it returns the request,
// possibly rewrapped with identity context.
type Strategy interface {
	Authenticate(r *http.Request) (*http.Request, error)
}

type Gate struct {
	strategies map[StrategyName]Strategy
}

type Config struct {
	Bearer        *BearerStrategy
	APIKeySecret  string
	PaymentAPIKey string
}

func New(cfg Config) *Gate {
	return &Gate{
		strategies: map[StrategyName]Strategy{
			Bearer:        cfg.Bearer,
			APIKey:        &APIKeyStrategy{secret: cfg.APIKeySecret},
			PaymentAPIKey: &PaymentAPIKeyStrategy{secret: cfg.PaymentAPIKey},
			None:          noneStrategy{},
		},
	}
}

// Require evaluates the policy ahead of the wrapped handler.
func (g *Gate) Require(p Policy) func(http.Handler) http.Handler {
	if len(p.Strategies) == 0 {
		p = DefaultPolicy()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				out *http.Request
				err error
			)
			if p.Condition == Or {
				out, err = g.evaluateOr(p.Strategies, r)
			} else {
				out, err = g.evaluateAnd(p.Strategies, r)
			}
			if err != nil {
				writeGateError(w, err)
				return
			}
			next.ServeHTTP(w, out)
		})
	}
}

// evaluateAnd runs every strategy in order; the first failure aborts. A
// structured domain error is surfaced as-is, anything else becomes a
// generic Unauthorized.
func (g *Gate) evaluateAnd(names []StrategyName, r *http.Request) (*http.Request, error) {
	for _, name := range names {
		s, ok := g.strategies[name]
		if !ok {
			return nil, domain.ErrUnauthorized
		}
		out, err := s.Authenticate(r)
		if err != nil {
			metrics.GateDecisionsTotal.WithLabelValues(string(name), "failure").Inc()
			if _, isDomain := domain.AsAuthError(err); isDomain {
				return nil, err
			}
			return nil, domain.ErrUnauthorized
		}
		metrics.GateDecisionsTotal.WithLabelValues(string(name), "success").Inc()
		r = out
	}
	return r, nil
}

// evaluateOr short-circuits on the first success; when everything fails
// the last structured error wins, else a generic Unauthorized.
func (g *Gate) evaluateOr(names []StrategyName, r *http.Request) (*http.Request, error) {
	var lastDomainErr error
	for _, name := range names {
		s, ok := g.strategies[name]
		if !ok {
			continue
		}
		out, err := s.Authenticate(r)
		if err == nil {
			metrics.GateDecisionsTotal.WithLabelValues(string(name), "success").Inc()
			return out, nil
		}
		metrics.GateDecisionsTotal.WithLabelValues(string(name), "failure").Inc()
		if _, isDomain := domain.AsAuthError(err); isDomain {
			lastDomainErr = err
		}
	}
	if lastDomainErr != nil {
		return nil, lastDomainErr
	}
	return nil, domain.ErrUnauthorized
}

type noneStrategy struct{}

func (noneStrategy) Authenticate(r *http.Request) (*http.Request, error) { return r, nil }

func writeGateError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	body := map[string]string{"message": domain.ErrUnauthorized.Code}
	if ae, ok := domain.AsAuthError(err); ok {
		status = ae.Status
		body["message"] = ae.Code
		if ae.Path != "" {
			body["path"] = ae.Path
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
