// Package client reaches the gateway procedures either in-process (a
// *gateway.Gateway is a Transport) or over the HTTP rpc bridge.
package client

import (
	"context"

	"busmanager/internal/domain"
)

// Transport invokes one gateway procedure by wire name and returns its raw
// JSON result. A non-nil error means the call itself failed.
type Transport interface {
	Call(ctx context.Context, entity domain.Entity, method string, args []string) (string, error)
}

// Gateway is the per-entity CRUD surface consumed by panels.
type Gateway interface {
	GetAll(ctx context.Context) (string, error)
	GetByID(ctx context.Context, id string) (string, error)
	Add(ctx context.Context, payload string) (string, error)
	UpdateByID(ctx context.Context, payload string) (string, error)
	DeleteByID(ctx context.Context, id string) (string, error)
}

// Entity binds a Transport to one entity.
type Entity struct {
	Transport Transport
	Name      domain.Entity
}

func For(t Transport, e domain.Entity) Entity {
	return Entity{Transport: t, Name: e}
}

func (c Entity) GetAll(ctx context.Context) (string, error) {
	return c.Call(ctx, "GetAll")
}

func (c Entity) GetByID(ctx context.Context, id string) (string, error) {
	return c.Call(ctx, "GetById", id)
}

func (c Entity) Add(ctx context.Context, payload string) (string, error) {
	return c.Call(ctx, "Add", payload)
}

func (c Entity) UpdateByID(ctx context.Context, payload string) (string, error) {
	return c.Call(ctx, "UpdateById", payload)
}

func (c Entity) DeleteByID(ctx context.Context, id string) (string, error) {
	return c.Call(ctx, "DeleteById", id)
}

// Call reaches the entity-specific procedures (GetNearby, AssignBus...).
func (c Entity) Call(ctx context.Context, method string, args ...string) (string, error) {
	if args == nil {
		args = []string{}
	}
	return c.Transport.Call(ctx, c.Name, method, args)
}
