package routing

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/metrics"
)

const transport = "amqp"

// Run starts the router. It blocks until ctx is done or the broker closes
// the delivery channel.
func (r *Router) Run(ctx context.Context) error {
	logger := r.Logger.With().Str("module", "consumer").Logger()
	logger.Info().Msg("Router started")

	// begin consuming
	deliveries, err := r.channel.Consume(totalpushover.OutgoingQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			r.route(ctx, logger, delivery)
		}
	}
}

func (r *Router) route(ctx context.Context, logger zerolog.Logger, delivery amqp.Delivery) {
	var mail totalpushover.Mail

	logger.Debug().Str("routing_key", delivery.RoutingKey).Msg("Outgoing mail received")

	if err := totalpushover.Unmarshal(delivery.Body, &mail); err != nil {
		logger.Err(err).Bytes("data", delivery.Body).Msg("Error deserializing. Rejecting and continuing.")
		_ = delivery.Reject(false) // do *not* requeue, otherwise we'll just be stuck processing garbage
		return
	}

	// ask the management server whether the mail goes out
	callCtx, cancel := context.WithTimeout(ctx, totalpushover.DefaultRPCTimeout)
	defer cancel()
	var reply totalpushover.InterceptReply
	if err := r.rpc.Call(callCtx, totalpushover.InterceptCall, mail, &reply); err != nil {
		logger.Err(err).Msg("Error sending RPC request. Requeuing delivery.")
		_ = delivery.Reject(true)
		return
	}

	// beyond this point we can't requeue, so we error gracefully
	_ = delivery.Ack(false)
	metrics.ObserveDecision(transport, reply.Proceed)
	if !reply.Proceed {
		logger.Debug().Msg("Mail suppressed")
		return
	}

	data := delivery.Body
	if reply.Mail != nil {
		encoded, err := totalpushover.Marshal(reply.Mail)
		if err != nil {
			logger.Err(err).Msg("Error serializing mail. Forwarding original.")
		} else {
			data = encoded
		}
	}

	err := r.publisher.Publish(
		totalpushover.Exchange,
		totalpushover.DeliveryRoutingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	)
	if err != nil {
		logger.Err(err).Msg("Error publishing mail for delivery.")
		return
	}
	logger.Debug().Msg("Mail forwarded for delivery")
}
