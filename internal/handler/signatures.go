package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wanderer/internal/models"
	"wanderer/internal/pending"
	"wanderer/internal/platform"
	"wanderer/internal/repository"
	"wanderer/internal/service"
	"wanderer/internal/signature"
)

type SignaturesHandler struct {
	Repo repository.Repository
	Svc  *service.SignatureUpdateService
}

func (h *SignaturesHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1")
	g.GET("/systems/:id/signatures", h.list)
	g.POST("/systems/:id/signatures/paste", h.paste)
	g.DELETE("/systems/:id/signatures/:eve_id", h.delete)
	g.POST("/signatures/undo", h.undo)
}

// signatureView joins the stored record with the in-memory pending flags.
type signatureView struct {
	EveID        string         `json:"eve_id"`
	Kind         string         `json:"kind"`
	Group        string         `json:"group"`
	Name         string         `json:"name,omitempty"`
	Description  string         `json:"description,omitempty"`
	CustomInfo   map[string]any `json:"custom_info,omitempty"`
	InsertedAt   time.Time      `json:"inserted_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	PendingOp    string         `json:"pending_op,omitempty"`
	PendingUntil *time.Time     `json:"pending_until,omitempty"`
}

func viewOf(sig models.Signature, states map[string]pending.State) signatureView {
	v := signatureView{
		EveID:       sig.EveID,
		Kind:        sig.Kind,
		Group:       sig.Group,
		Name:        sig.Name,
		Description: sig.Description,
		CustomInfo:  signature.CustomInfoMap(sig),
		InsertedAt:  sig.InsertedAt,
		UpdatedAt:   sig.UpdatedAt,
	}
	if st, ok := states[sig.EveID]; ok {
		until := st.Until
		v.PendingUntil = &until
		switch st.Op {
		case pending.OpAddition:
			v.PendingOp = "addition"
		case pending.OpDeletion:
			v.PendingOp = "deletion"
		}
	}
	return v
}

// @Summary List signatures of a system
// @Tags signatures
// @Param id path string true "solar system id"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/systems/{id}/signatures [get]
func (h *SignaturesHandler) list(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid system id", nil)
		return
	}
	sigs, states, err := h.Svc.ListSignatures(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	out := make([]signatureView, 0, len(sigs))
	for _, sig := range sigs {
		out = append(out, viewOf(sig, states))
	}
	Ok(c, out, map[string]any{"total": len(out)})
}

type pasteRequest struct {
	Text       string `json:"text"`
	UpdateOnly bool   `json:"update_only"`
}

// @Summary Reconcile a scanner paste against a system's signatures
// @Tags signatures
// @Param id path string true "solar system id"
// @Param body body handler.pasteRequest true "raw scan window paste"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/systems/{id}/signatures/paste [post]
func (h *SignaturesHandler) paste(c *gin.Context) {
	if h.Svc == nil || h.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid system id", nil)
		return
	}
	var req pasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		Error(c, http.StatusBadRequest, "empty paste", nil)
		return
	}
	system, err := h.Repo.GetSystemByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if system == nil {
		Error(c, http.StatusNotFound, "system not found", nil)
		return
	}
	res, err := h.Svc.ApplyPaste(c.Request.Context(), id, req.Text, service.PasteOptions{
		UpdateOnly: req.UpdateOnly,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	platform.LogBestEffort(c, platform.PasteLog(id, res.Added, res.Updated, res.Removed, res.PendingDeletions))
	states := map[string]pending.State{}
	if h.Svc.Tracker != nil {
		states = h.Svc.Tracker.States(id)
	}
	out := make([]signatureView, 0, len(res.Signatures))
	for _, sig := range res.Signatures {
		out = append(out, viewOf(sig, states))
	}
	Ok(c, out, map[string]any{
		"added":             res.Added,
		"updated":           res.Updated,
		"removed":           res.Removed,
		"pending_deletions": res.PendingDeletions,
		"unrecognized":      res.Unrecognized,
	})
}

// @Summary Delete one signature
// @Tags signatures
// @Param id path string true "solar system id"
// @Param eve_id path string true "signature eve id"
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/systems/{id}/signatures/{eve_id} [delete]
func (h *SignaturesHandler) delete(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	eveID := strings.TrimSpace(c.Param("eve_id"))
	if id == "" || eveID == "" {
		Error(c, http.StatusBadRequest, "invalid system or signature id", nil)
		return
	}
	if err := h.Svc.DeleteSignature(c.Request.Context(), id, eveID); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	platform.LogBestEffort(c, platform.DeleteLog(id, eveID))
	Ok(c, map[string]any{"deleted": eveID}, nil)
}

// @Summary Undo all pending signature operations
// @Tags signatures
// @Success 200 {object} handler.apiResponse
// @Router /api/v1/signatures/undo [post]
func (h *SignaturesHandler) undo(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	res, err := h.Svc.Undo(c.Request.Context())
	meta := map[string]any{
		"reverted_additions": len(res.Additions),
		"reverted_deletions": len(res.Deletions),
	}
	if err != nil {
		if errors.Is(err, pending.ErrStaleUndo) {
			Error(c, http.StatusConflict, err.Error(), meta)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), meta)
		return
	}
	platform.LogBestEffort(c, platform.UndoLog(len(res.Additions), len(res.Deletions)))
	Ok(c, nil, meta)
}
