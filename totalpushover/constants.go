package totalpushover

import "time"

// Endpoint is the Pushover message API.
const Endpoint = "https://api.pushover.net/1/messages.json"

// DefaultTimeout bounds every call to the Pushover API.
const DefaultTimeout = 10 * time.Second

// Exchange describes the RabbitMQ exchange name.
const Exchange = "totalpushover"

// Message broker queue names.
const (
	OutgoingQueue = Exchange + ".outgoing"
)

// Routing key prefixes.
const (
	OutgoingRoutingKey    = "outgoing"
	DeliveryRoutingKey    = "delivery.mail"
	RPCRoutingKey         = "rpc"
	RPCResponseRoutingKey = RPCRoutingKey + ".response"
)

// RPC call names.
const (
	InterceptCall = "intercept"
)

// DefaultRPCTimeout represents the default RPC timeout. It has to outlive a
// Pushover call.
const DefaultRPCTimeout = DefaultTimeout + 5*time.Second

// Admin screen wiring.
const (
	TestQueryParam = "total_pushover_test"
	TestQueryValue = "true"
	NoticeKey      = "total_pushover_notice"
	NoticeTTL      = 10 * time.Second
)
