package handlers

import (
	"errors"
	"net/http"

	"busmanager/internal/client"
	"busmanager/internal/domain"
	"busmanager/internal/gateway"
	"busmanager/internal/gateway/wire"

	"github.com/gin-gonic/gin"
)

// POST /api/rpc/:entity/:method with {"args": [...]}.
//
// The body of a 200 is the procedure's JSON verbatim, including
// {"Error": "..."} payloads. Only malformed calls get a non-2xx status.
func RPC(c *gin.Context) {
	var req client.RPCRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Data(http.StatusBadRequest, "application/json", []byte(wire.NewJsonError(err)))
			return
		}
	}

	entity := domain.Entity(c.Param("entity"))
	raw, err := gateway.New(fleet(c)).Call(c.Request.Context(), entity, c.Param("method"), req.Args)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, gateway.ErrUnknownEntity) || errors.Is(err, gateway.ErrUnknownProcedure) {
			status = http.StatusNotFound
		}
		c.Data(status, "application/json", []byte(wire.NewJsonError(err)))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(raw))
}
