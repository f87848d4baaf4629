package http

import (
	"net/http"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/cas/login"
	"github.com/rizesql/cas/internal/cas/logout"
	"github.com/rizesql/cas/internal/cas/proxy"
	"github.com/rizesql/cas/internal/cas/servicevalidate"
	"github.com/rizesql/cas/internal/cas/validate"
	"github.com/rizesql/cas/internal/server"
)

// Register wires every CAS endpoint onto the server. All protocol
// endpoints carry the mandated no-cache headers; /metrics does not.
func Register(srv *server.Server, platform *cas.Platform, cfg cas.Config, filter login.RedirectFilter) {
	mws := []server.Middleware{
		server.WithLogging(platform.Logger),
		server.WithNoCache(platform.Clock),
	}

	srv.Register(login.NewHandler(platform, cfg, filter), mws...)
	srv.Register(login.NewSubmitHandler(platform, cfg, filter), mws...)
	srv.Register(logout.NewHandler(platform, cfg), mws...)
	srv.Register(validate.NewHandler(platform, cfg), mws...)
	srv.Register(servicevalidate.NewHandler(platform, cfg), mws...)
	srv.Register(servicevalidate.NewProxyValidateHandler(platform, cfg), mws...)
	srv.Register(proxy.NewHandler(platform, cfg), mws...)

	srv.Register(metricsRoute{platform.Metrics.Handler()},
		server.WithLogging(platform.Logger),
	)
}

type metricsRoute struct {
	handler http.Handler
}

func (m metricsRoute) Method() string { return http.MethodGet }
func (m metricsRoute) Path() string   { return "/metrics" }

func (m metricsRoute) Handle() http.HandlerFunc {
	return m.handler.ServeHTTP
}
