package rpc

import (
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// Handler answers one RPC request body with a response body.
type Handler func([]byte) []byte

// Server describes an RPC server, providing multiple RPC handlers.
type Server struct {
	Handlers map[string]Handler
	Logger   zerolog.Logger

	// Connection configuration
	Connection *amqp.Connection
	Exchange   string // Exchange to register our request queues against. Expected to be topic or direct.
	RoutingKey string // Routing key prefix for requests (e.g. "rpc").

	channel *amqp.Channel
}

// publisher is the part of *amqp.Channel used to answer requests.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// serve runs handler on every delivery and publishes the answer to its
// ReplyTo routing key.
func serve(logger zerolog.Logger, pub publisher, exchange string, handler Handler, deliveries <-chan amqp.Delivery) {
	for delivery := range deliveries {
		output := handler(delivery.Body)

		if delivery.ReplyTo == "" {
			logger.Warn().Str("correlation_id", delivery.CorrelationId).Msg("Request without reply-to, dropping response.")
			continue
		}
		err := pub.Publish(
			exchange,
			delivery.ReplyTo, // use ReplyTo as routing key
			true,             // mandatory
			false,            // immediate
			amqp.Publishing{
				CorrelationId: delivery.CorrelationId,
				Body:          output,
			},
		)
		if err != nil {
			logger.Err(err).Msg("Error publishing response.")
		}
	}
}

func (s *Server) runHandler(queueName, handlerName string) {
	logger := s.Logger.With().Str("module", "rpc-handler").Str("handler", handlerName).Logger()

	deliveryChannel, err := s.channel.Consume(
		queueName,
		"",
		true,  // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		logger.Err(err).Msg("Error creating delivery channel.")
		return
	}

	serve(logger, s.channel, s.Exchange, s.Handlers[handlerName], deliveryChannel)
}

// Run declares one queue per handler and starts consuming them in the
// background.
func (s *Server) Run() error {
	channel, err := s.Connection.Channel()
	if err != nil {
		return err
	}
	s.channel = channel

	// set prefetch
	err = channel.Qos(1, 0, false)
	if err != nil {
		return err
	}

	for handler := range s.Handlers {
		queue, err := channel.QueueDeclare(
			s.Exchange+"."+s.RoutingKey+"."+handler,
			false, // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		)
		if err != nil {
			return err
		}

		err = channel.QueueBind(
			queue.Name,
			s.RoutingKey+"."+handler,
			s.Exchange,
			false, // noWait
			nil,
		)
		if err != nil {
			return err
		}

		go s.runHandler(queue.Name, handler)
	}

	return nil
}
