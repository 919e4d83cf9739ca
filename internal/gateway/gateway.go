// Package gateway is the edge router. Each path prefix is forwarded to one
// backing service; the /gateway routes are answered locally.
package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Service names as reported by /gateway/services.
const (
	accountsService = "authentication-service"
	financeService  = "user-finance-service"
	goalsService    = "goal-service"
	insightService  = "insight-service"
)

// Route forwards every request under Prefix to Service. When Strip is set the
// prefix is removed before forwarding.
type Route struct {
	Prefix  string
	Service string
	Label   string
	Strip   bool
}

var routeTable = []Route{
	{Prefix: "/auth", Service: accountsService},
	{Prefix: "/finance", Service: financeService},
	{Prefix: "/goals", Service: goalsService},
	{Prefix: "/insights", Service: insightService, Strip: true},
	{Prefix: "/notifications", Service: insightService},
	{Prefix: "/recommendations", Service: insightService},
	{Prefix: "/analytics", Service: insightService},
	{Prefix: "/integrated", Service: insightService, Label: "insight-service (integrated)"},
	{Prefix: "/test", Service: insightService, Label: "insight-service (testing)"},
}

type Gateway struct {
	upstreams map[string]*url.URL
	port      int
	publicURL string
	origins   []string
	now       func() time.Time
}

// New resolves the upstream of every service from cfg.
func New(cfg *config.Config) (*Gateway, error) {
	raw := map[string]string{
		accountsService: cfg.Services.AccountsURL,
		financeService:  cfg.Services.FinanceURL,
		goalsService:    cfg.Services.GoalsURL,
		insightService:  cfg.Services.InsightURL,
	}

	upstreams := make(map[string]*url.URL, len(raw))
	for name, s := range raw {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid upstream url for %s: %q", name, s)
		}
		upstreams[name] = u
	}

	return &Gateway{
		upstreams: upstreams,
		port:      cfg.Server.Port,
		publicURL: cfg.Gateway.PublicURL,
		origins:   cfg.Gateway.AllowedOrigins,
		now:       time.Now,
	}, nil
}

// Handler builds the router: middleware, introspection, swagger and one
// proxy per route table entry.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   g.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	r.Route("/gateway", func(r chi.Router) {
		r.Get("/health", g.health)
		r.Get("/services", g.services)
		r.Get("/routes", g.routes)
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.InstanceName(docs.Gateway)))

	for _, route := range routeTable {
		proxy := g.proxy(route)
		r.Handle(route.Prefix, proxy)
		r.Handle(route.Prefix+"/*", proxy)
	}
	return r
}

// @Summary Gateway health
// @Tags gateway
// @Produce json
// @Success 200 {object} map[string]interface{} "Gateway status"
// @Router /gateway/health [get]
func (g *Gateway) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "UP",
		"service":   "API Gateway",
		"port":      g.port,
		"timestamp": g.now(),
		"message":   "API Gateway is running successfully!",
	})
}

// @Summary Registered services
// @Description Every upstream the gateway forwards to, with host and port
// @Tags gateway
// @Produce json
// @Success 200 {object} map[string]interface{} "Registered services"
// @Router /gateway/services [get]
func (g *Gateway) services(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(g.upstreams))
	for name := range g.upstreams {
		names = append(names, name)
	}
	sort.Strings(names)

	details := make(map[string]any, len(names))
	for _, name := range names {
		u := g.upstreams[name]
		details[name] = map[string]any{
			"instances": 1,
			"host":      u.Hostname(),
			"port":      port(u),
			"uri":       u.String(),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"registeredServices": names,
		"serviceDetails":     details,
		"totalServices":      len(names),
		"timestamp":          g.now(),
	})
}

// @Summary Route table
// @Tags gateway
// @Produce json
// @Success 200 {object} map[string]interface{} "Available routes and examples"
// @Router /gateway/routes [get]
func (g *Gateway) routes(w http.ResponseWriter, _ *http.Request) {
	available := make(map[string]string, len(routeTable))
	for _, route := range routeTable {
		label := route.Label
		if label == "" {
			label = route.Service
		}
		available[route.Prefix+"/**"] = label
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"availableRoutes": available,
		"gatewayUrl":      g.publicURL,
		"examples": map[string]string{
			"Auth Health":        "GET " + g.publicURL + "/auth/health",
			"Finance Health":     "GET " + g.publicURL + "/finance/health",
			"Goals Health":       "GET " + g.publicURL + "/goals/health",
			"Insights Health":    "GET " + g.publicURL + "/insights/health",
			"Test Communication": "GET " + g.publicURL + "/test/communication-status",
			"Gateway Services":   "GET " + g.publicURL + "/gateway/services",
		},
		"timestamp": g.now(),
	})
}

// port returns the explicit port of u, or the scheme default.
func port(u *url.URL) int {
	if p, err := strconv.Atoi(u.Port()); err == nil {
		return p
	}
	if u.Scheme == "https" {
		return 443
	}
	return 80
}
