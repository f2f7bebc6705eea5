package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wanderer/internal/models"
	"wanderer/internal/platform"
	"wanderer/internal/repository"
)

type SystemsHandler struct {
	Repo repository.Repository
}

func (h *SystemsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1")
	g.GET("/systems", h.list)
	g.POST("/systems", h.put)
	g.GET("/systems/:id", h.get)
	g.GET("/systems/:id/connections", h.listConnections)
	g.POST("/connections", h.putConnection)
	g.DELETE("/connections/:id", h.deleteConnection)
}

// @Summary List map systems
// @Tags systems
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param name query string false "name filter"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/systems [get]
func (h *SystemsHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 200)
	offset := intQuery(c, "offset", 0)
	params := repository.ListSystemsParams{
		Limit:  limit,
		Offset: offset,
		Name:   strQueryPtr(c, "name"),
	}
	items, err := h.Repo.ListSystems(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountSystems(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get one system
// @Tags systems
// @Param id path string true "solar system id"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/systems/{id} [get]
func (h *SystemsHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid system id", nil)
		return
	}
	item, err := h.Repo.GetSystemByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "system not found", nil)
		return
	}
	Ok(c, item, nil)
}

type putSystemRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// @Summary Create or update a system
// @Tags systems
// @Param body body handler.putSystemRequest true "system"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/systems [post]
func (h *SystemsHandler) put(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req putSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid system id", nil)
		return
	}
	now := time.Now().UTC()
	item := &models.System{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Repo.UpsertSystem(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	platform.LogBestEffort(c, platform.SystemUpsertLog(id))
	next, _ := h.Repo.GetSystemByID(c.Request.Context(), id)
	Ok(c, next, nil)
}

// @Summary List connections of a system
// @Tags connections
// @Param id path string true "solar system id"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/systems/{id}/connections [get]
func (h *SystemsHandler) listConnections(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid system id", nil)
		return
	}
	items, err := h.Repo.ListConnectionsBySystem(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

type putConnectionRequest struct {
	ID             uint64 `json:"id"`
	SystemSourceID string `json:"system_source_id"`
	SystemTargetID string `json:"system_target_id"`
	SignatureEveID string `json:"signature_eve_id"`
	TimeStatus     int    `json:"time_status"`
	MassStatus     int    `json:"mass_status"`
}

// @Summary Create or update a connection
// @Tags connections
// @Param body body handler.putConnectionRequest true "connection"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/connections [post]
func (h *SystemsHandler) putConnection(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req putConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	src := strings.TrimSpace(req.SystemSourceID)
	dst := strings.TrimSpace(req.SystemTargetID)
	if src == "" || dst == "" {
		Error(c, http.StatusBadRequest, "invalid source or target system", nil)
		return
	}
	now := time.Now().UTC()
	item := &models.Connection{
		ID:             req.ID,
		SystemSourceID: src,
		SystemTargetID: dst,
		SignatureEveID: strings.TrimSpace(req.SignatureEveID),
		TimeStatus:     req.TimeStatus,
		MassStatus:     req.MassStatus,
		UpdatedAt:      now,
	}
	if item.ID == 0 {
		item.CreatedAt = now
	}
	if err := h.Repo.UpsertConnection(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	platform.LogBestEffort(c, platform.ConnectionUpsertLog(src, dst))
	Ok(c, item, nil)
}

// @Summary Delete a connection
// @Tags connections
// @Param id path int true "connection id"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/connections/{id} [delete]
func (h *SystemsHandler) deleteConnection(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid connection id", nil)
		return
	}
	if err := h.Repo.DeleteConnection(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{"deleted": id}, nil)
}
