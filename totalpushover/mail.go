package totalpushover

import (
	"encoding/json"
	"time"
)

// Mail represents an outgoing email as handed over by the host right before it
// would be sent. Only Subject and Message are read; everything else is carried
// through untouched.
type Mail struct {
	To          []string               `json:"to,omitempty"`
	Subject     string                 `json:"subject"`
	Message     string                 `json:"message"`
	Headers     []string               `json:"headers,omitempty"`
	Attachments []string               `json:"attachments,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// InterceptReply is the answer to an intercept call. Mail is only set when
// Proceed is true.
type InterceptReply struct {
	Proceed bool  `json:"proceed"`
	Mail    *Mail `json:"mail,omitempty"`
}

// Credentials identify the sending application and the receiving account.
type Credentials struct {
	APIToken string
	UserKey  string
}

// Enabled reports whether both credentials are set.
func (c Credentials) Enabled() bool {
	return c.APIToken != "" && c.UserKey != ""
}

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	Credentials Credentials
	Endpoint    string
	Timeout     time.Duration
}

// Marshal encodes v for the wire.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes wire data into v.
func Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
