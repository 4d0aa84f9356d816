package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Verifications counts verification verdicts by outcome:
	// accepted, cached, rejected, reused, error.
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_turnstile_verifications_total",
		Help: "Turnstile verification attempts by outcome.",
	}, []string{"outcome"})

	// ContactSubmissions counts contact-form submissions by outcome:
	// accepted, invalid, challenge_failed, rate_limited, error.
	ContactSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_contact_submissions_total",
		Help: "Contact form submissions by outcome.",
	}, []string{"outcome"})

	// EmailSends counts outbound email dispatches by outcome: ok, error.
	EmailSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_email_sends_total",
		Help: "Outbound contact emails by outcome.",
	}, []string{"outcome"})
)

// Handler exposes the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
