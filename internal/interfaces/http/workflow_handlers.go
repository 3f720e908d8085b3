package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fotoforma/backoffice/internal/models"
)

// ApproveAsManager handles POST /api/expenses/:id/approve-manager
func (h *Handlers) ApproveAsManager(c *gin.Context) {
	actor, ok := h.actingUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	expense, err := h.engine.ApproveAsManager(c.Request.Context(), id, actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, expense)
}

// ApproveAsGeneralManager handles POST /api/expenses/:id/approve-general-manager
func (h *Handlers) ApproveAsGeneralManager(c *gin.Context) {
	actor, ok := h.actingUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	expense, err := h.engine.ApproveAsGeneralManager(c.Request.Context(), id, actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, expense)
}

// RejectRequest carries the mandatory rejection justification.
type RejectRequest struct {
	Justification string `json:"justification"`
}

// RejectExpense handles POST /api/expenses/:id/reject
func (h *Handlers) RejectExpense(c *gin.Context) {
	actor, ok := h.actingUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	expense, err := h.engine.Reject(c.Request.Context(), id, actor, req.Justification)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, expense)
}

// SettleExpense handles POST /api/expenses/:id/settle. Multipart form:
// "settlement_date" field plus one or more "files".
func (h *Handlers) SettleExpense(c *gin.Context) {
	actor, ok := h.actingUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	settlementDate := c.PostForm("settlement_date")
	proofs, ok := h.readProofFiles(c)
	if !ok {
		return
	}

	expense, err := h.liquidation.Settle(c.Request.Context(), id, actor, settlementDate, proofs)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, expense)
}

// AddSettlementProofs handles POST /api/expenses/:id/proofs. Only legal for
// settled expenses; appends proof files without touching status or history.
func (h *Handlers) AddSettlementProofs(c *gin.Context) {
	if _, ok := h.actingUser(c); !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	proofs, ok := h.readProofFiles(c)
	if !ok {
		return
	}

	expense, err := h.liquidation.AddProofs(c.Request.Context(), id, proofs)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, expense)
}

func (h *Handlers) readProofFiles(c *gin.Context) ([]*models.ProofFile, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "multipart form required"})
		return nil, false
	}

	headers := form.File["files"]
	proofs := make([]*models.ProofFile, 0, len(headers))
	for _, header := range headers {
		proof, err := h.readUpload(header)
		if err != nil {
			h.fail(c, err)
			return nil, false
		}
		proofs = append(proofs, proof)
	}
	return proofs, true
}
