package realtime

import (
	"encoding/json"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
)

// Named events exchanged over the realtime channel.
const (
	EventJoin         = "join"
	EventJoined       = "joined"
	EventExecute      = "execute"
	EventResult       = "result"
	EventNotification = "notification"
	EventError        = "error"
	EventPing         = "ping"
	EventPong         = "pong"
)

// Envelope is the wire frame for every channel message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MarshalEnvelope wraps a payload in an envelope and encodes it.
func MarshalEnvelope(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// JoinRequest is the client→server credential exchange. The credential
// travels on the channel itself, not in HTTP headers.
type JoinRequest struct {
	TenantID   string `json:"tenant_id"`
	Credential string `json:"credential"`
}

// JoinedPayload acknowledges a successful join with a tenant snapshot.
type JoinedPayload struct {
	ConnectionID string                `json:"connection_id"`
	Tenant       models.TenantSnapshot `json:"tenant"`
}

// ErrorPayload is emitted back on the channel for failed operations.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ExecuteRequest asks the coordinator to run an interactive operation.
type ExecuteRequest struct {
	Type   string         `json:"type"` // "query" or "connection_test"
	Query  string         `json:"query,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// ResultPayload is the direct reply to the executing client.
type ResultPayload struct {
	Type      string `json:"type"`
	OK        bool   `json:"ok"`
	Detail    string `json:"detail,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// NotificationPayload is the advisory broadcast to the rest of the tenant
// group: who executed what, and when. No acknowledgement is expected.
type NotificationPayload struct {
	TenantID     string    `json:"tenant_id"`
	ConnectionID string    `json:"connection_id"`
	Action       string    `json:"action"`
	Detail       string    `json:"detail,omitempty"`
	At           time.Time `json:"at"`
}
