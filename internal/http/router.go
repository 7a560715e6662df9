package api

import (
	stdhttp "net/http"

	intconfig "busmanager/internal/config"
	h "busmanager/internal/http/handlers"
	"busmanager/internal/http/middleware"
	"busmanager/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	h.SetReportFont(env.ReportFont)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		zap.L().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes-table", h.RoutesTable)

		h.Buses.Mount(api.Group("/buses"))
		h.Drivers.Mount(api.Group("/drivers"))

		stops := api.Group("/stops")
		stops.GET("/nearby", h.NearbyStops)
		h.Stops.Mount(stops)

		routes := api.Group("/routes")
		h.Routes.Mount(routes)
		routes.GET("/:id/details", h.RouteDetails)
		mountRouteLinks(routes, "drivers", services.LinkDriver)
		mountRouteLinks(routes, "stops", services.LinkStop)
		mountRouteLinks(routes, "buses", services.LinkBus)

		// Reports
		reports := api.Group("/reports")
		reports.GET("/fleet", h.FleetReport)

		// Gateway procedures for remote panels
		api.POST("/rpc/:entity/:method", h.RPC)
	}

	h.SetRouter(r)
	return r
}

func mountRouteLinks(g *gin.RouterGroup, segment, kind string) {
	g.POST("/:id/"+segment+"/:refId", h.AssignToRoute(kind))
	g.DELETE("/:id/"+segment+"/:refId", h.UnassignFromRoute(kind))
}
