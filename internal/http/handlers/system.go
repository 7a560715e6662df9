package handlers

import (
	"net/http"
	"sync"

	intconfig "busmanager/internal/config"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes-table).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "busmanager is running"})
}

var checkedTables = []string{"buses", "drivers", "routes", "bus_stops"}

// DBCheck pings the store and reports row counts per entity table.
func DBCheck(c *gin.Context) {
	if err := intconfig.EnsureDB(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	counts := make(gin.H, len(checkedTables))
	for _, table := range checkedTables {
		var n int
		if err := intconfig.DB.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "count " + table + ": " + err.Error()})
			return
		}
		counts[table] = n
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "driver": intconfig.Dialect, "counts": counts})
}

// RoutesTable lists the HTTP endpoints; /api/routes is the bus route resource.
func RoutesTable(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router is not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
