package routing

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/boogah/total-pushover/rpc"
	"github.com/boogah/total-pushover/totalpushover"
)

// caller asks the management server for an intercept decision.
type caller interface {
	Call(ctx context.Context, callName string, arguments, reply interface{}) error
}

// publisher hands mail over to the delivery queues.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Router consumes outgoing mail, runs it past the interceptor and forwards
// what is left to normal delivery.
type Router struct {
	MQURI  string // The AMQP message queue URL to dial.
	Logger zerolog.Logger

	conn      *amqp.Connection
	channel   *amqp.Channel
	rpc       caller
	publisher publisher
}

// New initializes the Router struct. It should only be called once.
func (r *Router) New() error {
	// create the connection
	conn, err := amqp.Dial(r.MQURI)
	if err != nil {
		return err
	}
	r.conn = conn
	r.Logger.Debug().Msg("Connection established")

	// create the channel
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.channel = channel
	r.publisher = channel
	r.Logger.Debug().Msg("Channel established")

	// set prefetching
	err = r.channel.Qos(1, 0, false)
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.Logger.Debug().Msg("Prefetching set")

	// register the exchange
	err = channel.ExchangeDeclare(totalpushover.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.Logger.Debug().Msg("Exchange registered")

	// register the outgoing mail queue
	queue, err := channel.QueueDeclare(totalpushover.OutgoingQueue, true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.Logger.Debug().Msg("Outgoing queue registered")
	// bind the outgoing queue to the exchange
	err = channel.QueueBind(queue.Name, totalpushover.OutgoingRoutingKey+".*", totalpushover.Exchange, false, nil)
	if err != nil {
		_ = conn.Close()
		return err
	}
	r.Logger.Debug().Msg("Outgoing queue bound to exchange")

	// create the RPC client
	r.rpc = &rpc.Client{
		Logger:             r.Logger,
		Connection:         conn,
		Exchange:           totalpushover.Exchange,
		RequestRoutingKey:  totalpushover.RPCRoutingKey,
		ResponseRoutingKey: totalpushover.RPCResponseRoutingKey,
	}
	r.Logger.Debug().Msg("RPC client created")

	return nil
}

// Close closes the broker connection.
func (r *Router) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
