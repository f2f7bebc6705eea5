package platform

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Wanderer Map Service

Signature reconciliation and lifecycle backend for the wormhole mapper.

## Auth

All /api/* routes require a Bearer token (validated by the fleet gateway).
Health endpoints are public. Set WM_AUTH_DISABLED=true for local runs.

## Notable Routes

- GET /healthz
- GET /readyz
- GET /swagger/index.html
- GET /api/v1/systems
- POST /api/v1/systems
- GET /api/v1/systems/:id/signatures
- POST /api/v1/systems/:id/signatures/paste
- DELETE /api/v1/systems/:id/signatures/:eve_id
- POST /api/v1/signatures/undo
- GET /api/v1/systems/:id/connections
- POST /api/v1/connections
- GET /api/v1/ws
`)
	})
}
