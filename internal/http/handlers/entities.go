package handlers

import (
	"context"
	"net/http"

	"busmanager/internal/domain/models"
	"busmanager/internal/services"

	"github.com/gin-gonic/gin"
)

type service[T any] interface {
	GetByID(ctx context.Context, id string) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Add(ctx context.Context, rec *T) error
	UpdateByID(ctx context.Context, rec *T) error
	DeleteByID(ctx context.Context, id string) error
}

// Resource serves the REST endpoints of one entity.
type Resource[T any] struct {
	svc   func(services.Fleet) service[T]
	setID func(*T, string)
}

var (
	Buses = Resource[models.Bus]{
		svc:   func(f services.Fleet) service[models.Bus] { return f.Buses },
		setID: func(b *models.Bus, id string) { b.ID = id },
	}
	Drivers = Resource[models.Driver]{
		svc:   func(f services.Fleet) service[models.Driver] { return f.Drivers },
		setID: func(d *models.Driver, id string) { d.ID = id },
	}
	Stops = Resource[models.Stop]{
		svc:   func(f services.Fleet) service[models.Stop] { return f.Stops },
		setID: func(s *models.Stop, id string) { s.ID = id },
	}
	Routes = Resource[models.Route]{
		svc:   func(f services.Fleet) service[models.Route] { return f.Routes },
		setID: func(r *models.Route, id string) { r.ID = id },
	}
)

// Mount registers GET, GET /:id, POST, PUT /:id and DELETE /:id.
func (r Resource[T]) Mount(g *gin.RouterGroup) {
	g.GET("", r.List)
	g.GET("/:id", r.Get)
	g.POST("", r.Create)
	g.PUT("/:id", r.Update)
	g.DELETE("/:id", r.Delete)
}

// List always answers with an array, unlike the gateway's "null".
func (r Resource[T]) List(c *gin.Context) {
	list, err := r.svc(fleet(c)).GetAll(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if list == nil {
		list = []T{}
	}
	c.JSON(http.StatusOK, list)
}

func (r Resource[T]) Get(c *gin.Context) {
	rec, err := r.svc(fleet(c)).GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (r Resource[T]) Create(c *gin.Context) {
	var rec T
	if !BindJSONOrError(c, &rec) {
		return
	}
	r.setID(&rec, "")
	if err := r.svc(fleet(c)).Add(c.Request.Context(), &rec); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (r Resource[T]) Update(c *gin.Context) {
	var rec T
	if !BindJSONOrError(c, &rec) {
		return
	}
	r.setID(&rec, c.Param("id"))
	if err := r.svc(fleet(c)).UpdateByID(c.Request.Context(), &rec); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (r Resource[T]) Delete(c *gin.Context) {
	if err := r.svc(fleet(c)).DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "id": c.Param("id")})
}
