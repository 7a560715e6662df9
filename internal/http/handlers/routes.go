package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/routes/:id/details
func RouteDetails(c *gin.Context) {
	details, err := fleet(c).Routes.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// AssignToRoute serves POST /api/routes/:id/{drivers|stops|buses}/:refId.
// kind is one of services.LinkDriver, LinkStop, LinkBus.
func AssignToRoute(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fleet(c).Routes.Assign(c.Request.Context(), kind, c.Param("id"), c.Param("refId")); err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "assigned", "route_id": c.Param("id"), kind + "_id": c.Param("refId")})
	}
}

func UnassignFromRoute(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fleet(c).Routes.Unassign(c.Request.Context(), kind, c.Param("id"), c.Param("refId")); err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "unassigned", "route_id": c.Param("id"), kind + "_id": c.Param("refId")})
	}
}
