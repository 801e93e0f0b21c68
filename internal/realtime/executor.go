package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Executor runs the interactive operations carried by execute events. The
// SQL dialect layer that shapes tenant queries is a separate collaborator;
// the coordinator only needs this seam.
type Executor interface {
	Execute(ctx context.Context, tenant *models.Tenant, req *ExecuteRequest) (*ResultPayload, error)
}

// StoreExecutor handles connection tests against the platform store and
// validates query requests before handing them off.
type StoreExecutor struct {
	db *pgxpool.Pool
}

func NewStoreExecutor(db *pgxpool.Pool) *StoreExecutor {
	return &StoreExecutor{db: db}
}

func (e *StoreExecutor) Execute(ctx context.Context, tenant *models.Tenant, req *ExecuteRequest) (*ResultPayload, error) {
	start := time.Now()

	switch req.Type {
	case "connection_test":
		if err := e.db.Ping(ctx); err != nil {
			return &ResultPayload{
				Type:      req.Type,
				OK:        false,
				Detail:    "connection test failed: " + err.Error(),
				ElapsedMs: time.Since(start).Milliseconds(),
			}, nil
		}
		return &ResultPayload{
			Type:      req.Type,
			OK:        true,
			Detail:    "connection ok",
			ElapsedMs: time.Since(start).Milliseconds(),
		}, nil

	case "query":
		if strings.TrimSpace(req.Query) == "" {
			return nil, fmt.Errorf("query is required")
		}
		// Dialect-specific execution is owned by the query collaborator;
		// acknowledge acceptance here.
		return &ResultPayload{
			Type:      req.Type,
			OK:        true,
			Detail:    fmt.Sprintf("query accepted for %s", tenant.Subdomain),
			ElapsedMs: time.Since(start).Milliseconds(),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported execute type: %s", req.Type)
	}
}
