package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/repositories"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const defaultChannelID = "realtime"

// Coordinator manages the realtime session lifecycle: handshake, channel
// credential exchange, tenant rooms, heartbeats and disconnects. It holds
// the hub and an injected connection registry, never process-global state.
type Coordinator struct {
	hub      *Hub
	authSvc  services.AuthService
	connRepo repositories.ConnectionRepository
	executor Executor
	upgrader websocket.Upgrader
	timeout  time.Duration
}

func NewCoordinator(authSvc services.AuthService, connRepo repositories.ConnectionRepository, executor Executor) *Coordinator {
	return &Coordinator{
		hub:      NewHub(),
		authSvc:  authSvc,
		connRepo: connRepo,
		executor: executor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		timeout: 5 * time.Second,
	}
}

// Hub exposes the tenant rooms, e.g. for platform-originated broadcasts.
func (co *Coordinator) Hub() *Hub {
	return co.hub
}

// ServeWS upgrades the HTTP request and starts the client's pumps. The
// connection registry row is created at handshake acceptance, before any
// tenant is bound.
func (co *Coordinator) ServeWS(c echo.Context) error {
	conn, err := co.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := newClient(uuid.NewString(), defaultChannelID, conn)
	co.persistConnection(client, nil)

	go client.writePump()
	go client.readPump(co)
	return nil
}

// HandleMessage dispatches one inbound event. Called serially per client by
// its read pump.
func (co *Coordinator) HandleMessage(client *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		co.emitError(client, "MALFORMED_EVENT", "Could not decode event envelope")
		return
	}

	switch env.Event {
	case EventJoin:
		co.handleJoin(client, env.Data)
	case EventExecute:
		co.handleExecute(client, env.Data)
	case EventPing:
		co.handlePing(client)
	case EventPong:
		// transport keepalive only
	default:
		co.emitError(client, "UNKNOWN_EVENT", "Unsupported event: "+env.Event)
	}
}

// handleJoin validates the channel-native credential exchange. Any failure
// is emitted back as InvalidCredential and leaves the client in the
// Connected state; the channel is not torn down.
func (co *Coordinator) handleJoin(client *Client, data json.RawMessage) {
	var req JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		co.emitError(client, string(common.CodeInvalidCredential), "Invalid join payload")
		return
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		co.emitError(client, string(common.CodeInvalidCredential), "Invalid tenant id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), co.timeout)
	defer cancel()

	identity, err := co.authSvc.ResolveForTenant(ctx, tenantID, req.Credential)
	if err != nil {
		co.emitError(client, string(common.CodeInvalidCredential), "Tenant id and credential do not match an active tenant")
		return
	}

	// Persist before binding: a failed registry write leaves the client in
	// Connected, never half-Joined.
	if err := co.upsertConnection(ctx, client, &identity.Tenant.ID); err != nil {
		log.Printf("Failed to persist connection %s on join: %v", client.ConnectionID(), err)
		co.emitError(client, string(common.CodeStoreUnavailable), "Could not register connection")
		return
	}

	client.setTenant(identity.Tenant)
	co.hub.Join(identity.Tenant.ID, client)

	co.emit(client, EventJoined, JoinedPayload{
		ConnectionID: client.ConnectionID(),
		Tenant:       identity.Tenant.Snapshot(),
	})
}

// handleExecute runs an authenticated operation, replies with the result
// and broadcasts an advisory notification to the rest of the tenant group.
func (co *Coordinator) handleExecute(client *Client, data json.RawMessage) {
	if !client.Joined() {
		co.emitError(client, string(common.CodeUnauthenticated), "Join a tenant before executing")
		return
	}

	var req ExecuteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		co.emitError(client, "MALFORMED_EVENT", "Invalid execute payload")
		return
	}

	tenant := client.Tenant()
	ctx, cancel := context.WithTimeout(context.Background(), co.timeout)
	defer cancel()

	result, err := co.executor.Execute(ctx, tenant, &req)
	if err != nil {
		result = &ResultPayload{Type: req.Type, OK: false, Detail: err.Error()}
	}
	co.emit(client, EventResult, result)

	// Advisory, at-least-once, unordered relative to the direct result.
	notification, err := MarshalEnvelope(EventNotification, NotificationPayload{
		TenantID:     tenant.ID.String(),
		ConnectionID: client.ConnectionID(),
		Action:       req.Type,
		Detail:       req.Query,
		At:           time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to encode notification: %v", err)
		return
	}
	co.hub.Broadcast(tenant.ID, client, notification)
}

// handlePing answers the application-level heartbeat and refreshes the
// persisted heartbeat timestamp for joined clients.
func (co *Coordinator) handlePing(client *Client) {
	co.emit(client, EventPong, nil)

	if !client.Joined() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), co.timeout)
	defer cancel()
	if err := co.connRepo.TouchHeartbeat(ctx, client.ConnectionID()); err != nil {
		log.Printf("Failed to persist heartbeat for connection %s: %v", client.ConnectionID(), err)
	}
}

// handleDisconnect marks the registry row inactive and leaves the room.
// Safe to run more than once for the same connection id.
func (co *Coordinator) handleDisconnect(client *Client) {
	co.hub.Leave(client)
	client.closeSend()

	ctx, cancel := context.WithTimeout(context.Background(), co.timeout)
	defer cancel()
	if err := co.connRepo.Deactivate(ctx, client.ConnectionID()); err != nil {
		log.Printf("Failed to deactivate connection %s: %v", client.ConnectionID(), err)
	}
}

func (co *Coordinator) persistConnection(client *Client, tenantID *uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), co.timeout)
	defer cancel()
	if err := co.upsertConnection(ctx, client, tenantID); err != nil {
		log.Printf("Failed to persist connection %s: %v", client.ConnectionID(), err)
	}
}

func (co *Coordinator) upsertConnection(ctx context.Context, client *Client, tenantID *uuid.UUID) error {
	return co.connRepo.Upsert(ctx, &models.Connection{
		ID:           uuid.New(),
		ConnectionID: client.ConnectionID(),
		ChannelID:    client.channelID,
		TenantID:     tenantID,
		Metadata:     map[string]interface{}{},
	})
}

func (co *Coordinator) emit(client *Client, event string, payload any) {
	message, err := MarshalEnvelope(event, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}
	if !client.enqueue(message) {
		log.Printf("Dropping %s event for slow connection %s", event, client.ConnectionID())
	}
}

func (co *Coordinator) emitError(client *Client, code, message string) {
	co.emit(client, EventError, ErrorPayload{Code: code, Message: message})
}
