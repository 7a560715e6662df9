package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"busmanager/internal/domain"
	"busmanager/internal/gateway/wire"
	"busmanager/internal/utils"
)

// crudService is the method set shared by every entity service.
type crudService[T any] interface {
	GetByID(ctx context.Context, id string) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Add(ctx context.Context, rec *T) error
	UpdateByID(ctx context.Context, rec *T) error
	DeleteByID(ctx context.Context, id string) error
}

// EntityRouter is the procedure surface of one entity. Every result is a
// JSON string; failures are encoded as {"Error": "..."} and never returned
// as Go errors.
type EntityRouter interface {
	GetAll(ctx context.Context) string
	GetByID(ctx context.Context, id string) string
	Add(ctx context.Context, payload string) string
	UpdateByID(ctx context.Context, payload string) string
	DeleteByID(ctx context.Context, id string) string
}

// Router implements EntityRouter for any record type.
type Router[T any] struct {
	entity domain.Entity
	svc    crudService[T]
}

func NewRouter[T any](entity domain.Entity, svc crudService[T]) Router[T] {
	return Router[T]{entity: entity, svc: svc}
}

// GetAll marshals the list as-is, so an empty table yields "null".
func (r Router[T]) GetAll(ctx context.Context) string {
	list, err := r.svc.GetAll(ctx)
	if err != nil {
		return r.fail("get_all", err)
	}
	return wire.Encode(list)
}

func (r Router[T]) GetByID(ctx context.Context, id string) string {
	if strings.TrimSpace(id) == "" {
		return wire.NewJsonError(fmt.Errorf("ID cant be null"))
	}
	rec, err := r.svc.GetByID(ctx, id)
	if err != nil {
		return r.fail("get_by_id", err)
	}
	return wire.Encode(rec)
}

// Add stores the decoded record and echoes it with its assigned ID.
func (r Router[T]) Add(ctx context.Context, payload string) string {
	var rec T
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return r.fail("add", err)
	}
	if err := r.svc.Add(ctx, &rec); err != nil {
		return r.fail("add", err)
	}
	return wire.Encode(rec)
}

func (r Router[T]) UpdateByID(ctx context.Context, payload string) string {
	var rec T
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return r.fail("update_by_id", err)
	}
	if err := r.svc.UpdateByID(ctx, &rec); err != nil {
		return r.fail("update_by_id", err)
	}
	return wire.Encode(rec)
}

func (r Router[T]) DeleteByID(ctx context.Context, id string) string {
	if strings.TrimSpace(id) == "" {
		return wire.NewJsonError(fmt.Errorf("ID cant be null"))
	}
	if err := r.svc.DeleteByID(ctx, id); err != nil {
		return r.fail("delete_by_id", err)
	}
	return wire.NewSuccessResponse("deleted")
}

func (r Router[T]) fail(action string, err error) string {
	utils.LogFailure("", "gateway_"+r.entity.String(), action, err)
	return wire.NewJsonError(err)
}
