package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/workflow"
)

// ExpenseRequest is the create/update payload for an expense.
type ExpenseRequest struct {
	Kind             string   `json:"kind" binding:"required"`
	Department       string   `json:"department" binding:"required"`
	VendorID         *int64   `json:"vendor_id"`
	TurmaIDs         []int64  `json:"turma_ids"`
	EventType        string   `json:"event_type"`
	RealizationDates []string `json:"realization_dates"`
	AmountCents      int64    `json:"amount_cents" binding:"gte=0"`
	PaymentMethod    string   `json:"payment_method" binding:"required"`
	PaymentDetails   string   `json:"payment_details"`
	ProofType        string   `json:"proof_type"`
	DueDate          string   `json:"due_date"`
	Description      string   `json:"description" binding:"required"`
	Reimbursement    bool     `json:"reimbursement"`
}

func (r *ExpenseRequest) toModel() *models.Expense {
	return &models.Expense{
		Kind:             r.Kind,
		Department:       r.Department,
		VendorID:         r.VendorID,
		TurmaIDs:         r.TurmaIDs,
		EventType:        r.EventType,
		RealizationDates: r.RealizationDates,
		AmountCents:      r.AmountCents,
		PaymentMethod:    r.PaymentMethod,
		PaymentDetails:   r.PaymentDetails,
		ProofType:        r.ProofType,
		DueDate:          r.DueDate,
		Description:      r.Description,
		Reimbursement:    r.Reimbursement,
	}
}

// CreateExpense handles POST /api/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	actor, ok := h.actingUser(c)
	if !ok {
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	expense, err := h.expenses.Create(req.toModel(), actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, expense)
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	expense, err := h.expenses.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, expense)
}

// UpdateExpense handles PUT /api/expenses/:id
func (h *Handlers) UpdateExpense(c *gin.Context) {
	actor, ok := h.actingUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	expense := req.toModel()
	expense.ID = id
	updated, err := h.expenses.Update(expense, actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, updated)
}

// DeleteExpense handles DELETE /api/expenses/:id
func (h *Handlers) DeleteExpense(c *gin.Context) {
	if _, ok := h.actingUser(c); !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.expenses.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": id})
}

// ExpenseListRequest holds the listing query parameters.
type ExpenseListRequest struct {
	Status          string `form:"status"`
	Department      string `form:"department"`
	Kind            string `form:"kind"`
	TurmaID         int64  `form:"turma_id"`
	CreatedFrom     string `form:"created_from"`
	CreatedTo       string `form:"created_to"`
	DueFrom         string `form:"due_from"`
	DueTo           string `form:"due_to"`
	RealizationFrom string `form:"realization_from"`
	RealizationTo   string `form:"realization_to"`
	Search          string `form:"search"`
	Limit           int    `form:"limit"`
	Offset          int    `form:"offset"`
}

func (r *ExpenseListRequest) toFilter() models.ExpenseFilter {
	return models.ExpenseFilter{
		Status:          r.Status,
		Department:      r.Department,
		Kind:            r.Kind,
		TurmaID:         r.TurmaID,
		CreatedFrom:     r.CreatedFrom,
		CreatedTo:       r.CreatedTo,
		DueFrom:         r.DueFrom,
		DueTo:           r.DueTo,
		RealizationFrom: r.RealizationFrom,
		RealizationTo:   r.RealizationTo,
		Search:          r.Search,
		Limit:           r.Limit,
		Offset:          r.Offset,
	}
}

// ListExpenses handles GET /api/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	expenses, total, err := h.expenses.List(req.toFilter())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"expenses": expenses, "total": total})
}

// ExportExpenses handles GET /api/expenses/export?format=csv|xlsx
func (h *Handlers) ExportExpenses(c *gin.Context) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	expenses, err := h.expenses.ListForExport(req.toFilter())
	if err != nil {
		h.fail(c, err)
		return
	}

	stamp := time.Now().Format("2006-01-02")
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="expenses-%s.xlsx"`, stamp))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := h.exporter.WriteXLSX(c.Writer, expenses); err != nil {
			h.fail(c, err)
		}
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="expenses-%s.csv"`, stamp))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		if err := h.exporter.WriteCSV(c.Writer, expenses); err != nil {
			h.fail(c, err)
		}
	default:
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "format must be csv or xlsx"})
	}
}

// AddAttachment handles POST /api/expenses/:id/attachments (multipart)
func (h *Handlers) AddAttachment(c *gin.Context) {
	if _, ok := h.actingUser(c); !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	purpose := c.PostForm("purpose")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing file"})
		return
	}

	proof, err := h.readUpload(fileHeader)
	if err != nil {
		h.fail(c, err)
		return
	}

	attachment, err := h.expenses.AddAttachment(id, purpose, proof)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, attachment)
}

// ServeAttachment handles GET /api/attachments/:ref
func (h *Handlers) ServeAttachment(c *gin.Context) {
	ref := c.Param("ref")
	attachment, err := h.attachments.GetByStorageRef(ref)
	if err != nil {
		h.fail(c, err)
		return
	}
	if attachment == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "attachment not found"})
		return
	}
	c.FileAttachment(attachment.FilePath, attachment.FileName)
}

// ExpenseHistory handles GET /api/expenses/:id/history
func (h *Handlers) ExpenseHistory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	entries, err := h.engine.History(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, entries)
}

// readUpload loads a multipart file into memory, enforcing the size limit.
func (h *Handlers) readUpload(header *multipart.FileHeader) (*models.ProofFile, error) {
	if header.Size > h.maxUpload {
		return nil, fmt.Errorf("%w: file %s exceeds %d bytes",
			workflow.ErrValidation, header.Filename, h.maxUpload)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrAttachment, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrAttachment, err)
	}
	if int64(len(content)) > h.maxUpload {
		return nil, fmt.Errorf("%w: file %s exceeds %d bytes",
			workflow.ErrValidation, header.Filename, h.maxUpload)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" && filepath.Ext(header.Filename) == ".pdf" {
		contentType = "application/pdf"
	}
	return &models.ProofFile{
		FileName:    header.Filename,
		ContentType: contentType,
		Content:     content,
	}, nil
}

// queryInt64 parses an optional numeric query parameter.
func queryInt64(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return v
}
