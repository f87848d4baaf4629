package cas

import (
	"github.com/rizesql/cas/internal/clock"
	"github.com/rizesql/cas/internal/directory"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/o11y/metrics"
	"github.com/rizesql/cas/internal/session"
	"github.com/rizesql/cas/internal/store"
	"github.com/rizesql/cas/internal/ticket"
)

// Platform bundles the collaborators every endpoint shares.
type Platform struct {
	Clock     clock.Clock
	Logger    *logging.Logger
	Metrics   *metrics.Metrics
	Store     store.Store
	Directory directory.Directory
	Sessions  session.Provider
	Nonces    *session.Nonces
	Codec     *ticket.Codec
}

func NewPlatform(
	clk clock.Clock,
	logger *logging.Logger,
	m *metrics.Metrics,
	st store.Store,
	dir directory.Directory,
	sessions session.Provider,
	nonces *session.Nonces,
	codec *ticket.Codec,
) *Platform {
	return &Platform{
		Clock:     clk,
		Logger:    logger,
		Metrics:   m,
		Store:     st,
		Directory: dir,
		Sessions:  sessions,
		Nonces:    nonces,
		Codec:     codec,
	}
}
