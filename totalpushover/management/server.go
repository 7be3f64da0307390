package management

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/boogah/total-pushover/rpc"
	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/hook"
)

// Server represents the management server. It answers intercept calls for
// hosts and routers that cannot run the hook in-process.
type Server struct {
	Logger     zerolog.Logger
	Connection *amqp.Connection
	Hook       hook.MailHook

	rpc *rpc.Server
}

func (server *Server) getLogger(module string) zerolog.Logger {
	return server.Logger.With().Str("module", module).Logger()
}

func (server *Server) handlers() map[string]rpc.Handler {
	return map[string]rpc.Handler{
		totalpushover.InterceptCall: server.interceptHandler,
	}
}

// Run runs the Server until ctx is done.
func (server *Server) Run(ctx context.Context) error {
	logger := server.getLogger("runner")

	// the exchange may not exist yet if no router has started
	channel, err := server.Connection.Channel()
	if err != nil {
		return err
	}
	err = channel.ExchangeDeclare(totalpushover.Exchange, "topic", true, false, false, false, nil)
	_ = channel.Close()
	if err != nil {
		return err
	}
	logger.Debug().Msg("Exchange registered")

	handlers := server.handlers()
	logger.Debug().Msgf("%d handlers registered", len(handlers))

	server.rpc = &rpc.Server{
		Logger:   server.Logger,
		Handlers: handlers,

		Connection: server.Connection,
		Exchange:   totalpushover.Exchange,
		RoutingKey: totalpushover.RPCRoutingKey,
	}
	if err := server.rpc.Run(); err != nil {
		return err
	}
	logger.Info().Msg("Management server started")

	// the handler goroutines run until the connection closes
	<-ctx.Done()
	return nil
}
