package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// ErrTimeout is returned when no response arrives before the call's deadline.
var ErrTimeout = errors.New("rpc: request timed out")

// Client describes an RPC client with the ability to call remote RPC servers.
type Client struct {
	Logger zerolog.Logger

	// Connection configuration.
	Connection         *amqp.Connection
	Exchange           string // Exchange to register our response queues against. Expected to be topic or direct.
	RequestRoutingKey  string // Routing key prefix for requests.
	ResponseRoutingKey string // Routing key prefix for responses (e.g. "rpc.response").

	setupOnce sync.Once
	setupErr  error

	channel   *amqp.Channel
	publisher publisher // requests go out here
	replyTo   string    // assembled routing key for responses
	seq       uint64    // sequence number for request correlation

	mu      sync.Mutex
	callers map[string]chan<- []byte
}

func (c *Client) setup() error {
	c.setupOnce.Do(func() {
		c.setupErr = c.declare()
	})
	return c.setupErr
}

func (c *Client) declare() error {
	c.callers = make(map[string]chan<- []byte)

	// set up channel
	channel, err := c.Connection.Channel()
	if err != nil {
		return err
	}
	c.channel = channel
	c.publisher = channel

	// set up queue
	queue, err := channel.QueueDeclare(
		"",    // name, let server pick
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}
	c.replyTo = c.ResponseRoutingKey + "." + queue.Name
	err = channel.QueueBind(
		queue.Name,
		c.replyTo, // routing key
		c.Exchange,
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}

	deliveries, err := channel.Consume(
		queue.Name,
		"",
		true,  // autoAck
		true,  // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go c.consumer(deliveries)
	return nil
}

func (c *Client) consumer(deliveries <-chan amqp.Delivery) {
	logger := c.Logger.With().Str("module", "rpc-consumer").Logger()

	for delivery := range deliveries {
		c.mu.Lock()
		callback, ok := c.callers[delivery.CorrelationId]
		c.mu.Unlock()

		if !ok {
			logger.Warn().Str("correlation_id", delivery.CorrelationId).Msg("Received response with no caller.")
			continue
		}
		// callbacks are buffered, a late response for an abandoned call is dropped
		select {
		case callback <- delivery.Body:
		default:
		}
	}
}

// Call makes a RPC call and decodes the response into reply. The client is
// initialized on first use. The call gives up when ctx is done.
func (c *Client) Call(ctx context.Context, callName string, arguments, reply interface{}) error {
	if err := c.setup(); err != nil {
		return err
	}

	// get next ID in sequence for our CorrelationID
	correlationID := strconv.FormatUint(atomic.AddUint64(&c.seq, 1), 10)

	callback := make(chan []byte, 1)
	c.mu.Lock()
	c.callers[correlationID] = callback
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.callers, correlationID)
		c.mu.Unlock()
	}()

	encodedArgs, err := json.Marshal(arguments)
	if err != nil {
		return err
	}

	err = c.publisher.Publish(
		c.Exchange,
		c.RequestRoutingKey+"."+callName,
		true,
		false,
		amqp.Publishing{
			CorrelationId: correlationID,
			ReplyTo:       c.replyTo,
			Body:          encodedArgs,
		},
	)
	if err != nil {
		return err
	}

	select {
	case data := <-callback:
		return json.Unmarshal(data, reply)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
