package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fotoforma/backoffice/internal/models"
)

// TurmaRequest is the create/update payload for a turma.
type TurmaRequest struct {
	Name           string `json:"name" binding:"required"`
	Course         string `json:"course"`
	Institution    string `json:"institution"`
	GraduationYear int    `json:"graduation_year" binding:"required"`
	ContractNumber string `json:"contract_number"`
	StudentCount   int    `json:"student_count"`
	Active         bool   `json:"active"`
}

// CreateTurma handles POST /api/turmas
func (h *Handlers) CreateTurma(c *gin.Context) {
	var req TurmaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	turma, err := h.turmas.Create(&models.Turma{
		Name:           req.Name,
		Course:         req.Course,
		Institution:    req.Institution,
		GraduationYear: req.GraduationYear,
		ContractNumber: req.ContractNumber,
		StudentCount:   req.StudentCount,
		Active:         req.Active,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, turma)
}

// GetTurma handles GET /api/turmas/:id
func (h *Handlers) GetTurma(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	turma, err := h.turmas.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, turma)
}

// UpdateTurma handles PUT /api/turmas/:id
func (h *Handlers) UpdateTurma(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req TurmaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	turma, err := h.turmas.Update(&models.Turma{
		ID:             id,
		Name:           req.Name,
		Course:         req.Course,
		Institution:    req.Institution,
		GraduationYear: req.GraduationYear,
		ContractNumber: req.ContractNumber,
		StudentCount:   req.StudentCount,
		Active:         req.Active,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, turma)
}

// DeleteTurma handles DELETE /api/turmas/:id
func (h *Handlers) DeleteTurma(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.turmas.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": id})
}

// ListTurmas handles GET /api/turmas
func (h *Handlers) ListTurmas(c *gin.Context) {
	includeExcluded, _ := strconv.ParseBool(c.Query("include_excluded"))
	turmas, err := h.turmas.List(includeExcluded)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, turmas)
}

// EventRequest is the create/update payload for an event.
type EventRequest struct {
	TurmaID       int64    `json:"turma_id" binding:"required"`
	Type          string   `json:"type" binding:"required"`
	StartDate     string   `json:"start_date" binding:"required"`
	EndDate       string   `json:"end_date"`
	Location      string   `json:"location"`
	Photographers []string `json:"photographers"`
	Notes         string   `json:"notes"`
}

func (r *EventRequest) toModel() *models.Event {
	return &models.Event{
		TurmaID:       r.TurmaID,
		Type:          r.Type,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Location:      r.Location,
		Photographers: r.Photographers,
		Notes:         r.Notes,
	}
}

// CreateEvent handles POST /api/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	event, err := h.events.Create(req.toModel())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, event)
}

// GetEvent handles GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	event, err := h.events.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, event)
}

// UpdateEvent handles PUT /api/events/:id
func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	event := req.toModel()
	event.ID = id
	updated, err := h.events.Update(event)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, updated)
}

// DeleteEvent handles DELETE /api/events/:id
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.events.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": id})
}

// ListEvents handles GET /api/events
func (h *Handlers) ListEvents(c *gin.Context) {
	events, err := h.events.List(queryInt64(c, "turma_id"), c.Query("from"), c.Query("to"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, events)
}

// EventCalendar handles GET /api/events/calendar
func (h *Handlers) EventCalendar(c *gin.Context) {
	days, err := h.events.Calendar(queryInt64(c, "turma_id"), c.Query("from"), c.Query("to"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, days)
}

// VendorRequest is the create/update payload for a vendor.
type VendorRequest struct {
	Name         string   `json:"name" binding:"required"`
	Document     string   `json:"document"`
	ServiceTypes []string `json:"service_types"`
	PixKey       string   `json:"pix_key"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Active       bool     `json:"active"`
}

func (r *VendorRequest) toModel() *models.Vendor {
	return &models.Vendor{
		Name:         r.Name,
		Document:     r.Document,
		ServiceTypes: r.ServiceTypes,
		PixKey:       r.PixKey,
		Phone:        r.Phone,
		Email:        r.Email,
		Active:       r.Active,
	}
}

// CreateVendor handles POST /api/vendors
func (h *Handlers) CreateVendor(c *gin.Context) {
	var req VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	vendor, err := h.vendors.Create(req.toModel())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, vendor)
}

// GetVendor handles GET /api/vendors/:id
func (h *Handlers) GetVendor(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	vendor, err := h.vendors.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, vendor)
}

// UpdateVendor handles PUT /api/vendors/:id
func (h *Handlers) UpdateVendor(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	vendor := req.toModel()
	vendor.ID = id
	updated, err := h.vendors.Update(vendor)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, updated)
}

// ListVendors handles GET /api/vendors
func (h *Handlers) ListVendors(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active_only"))
	vendors, err := h.vendors.List(activeOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, vendors)
}

// BriefingRequest is the create/update payload for a briefing group.
type BriefingRequest struct {
	TurmaID     int64    `json:"turma_id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	SessionDate string   `json:"session_date"`
	Period      string   `json:"period"`
	Students    []string `json:"students"`
}

func (r *BriefingRequest) toModel() *models.BriefingGroup {
	return &models.BriefingGroup{
		TurmaID:     r.TurmaID,
		Name:        r.Name,
		SessionDate: r.SessionDate,
		Period:      r.Period,
		Students:    r.Students,
	}
}

// CreateBriefing handles POST /api/briefings
func (h *Handlers) CreateBriefing(c *gin.Context) {
	var req BriefingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	group, err := h.briefings.Create(req.toModel())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, group)
}

// UpdateBriefing handles PUT /api/briefings/:id
func (h *Handlers) UpdateBriefing(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req BriefingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	group := req.toModel()
	group.ID = id
	updated, err := h.briefings.Update(group)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, updated)
}

// DeleteBriefing handles DELETE /api/briefings/:id
func (h *Handlers) DeleteBriefing(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.briefings.Delete(id); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": id})
}

// ListBriefings handles GET /api/turmas/:id/briefings
func (h *Handlers) ListBriefings(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	groups, err := h.briefings.ListByTurma(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, groups)
}

// SaleItemRequest is one cart line in a sale payload.
type SaleItemRequest struct {
	Product        string `json:"product" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required,gt=0"`
	UnitPriceCents int64  `json:"unit_price_cents" binding:"gte=0"`
}

// SaleRequest is the create payload for a POS sale.
type SaleRequest struct {
	TurmaID       *int64            `json:"turma_id"`
	CustomerName  string            `json:"customer_name"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateSale handles POST /api/sales
func (h *Handlers) CreateSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	sale := &models.Sale{
		TurmaID:       req.TurmaID,
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
	}
	for _, item := range req.Items {
		sale.Items = append(sale.Items, &models.SaleItem{
			Product:        item.Product,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	created, err := h.sales.Create(sale)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.created(c, created)
}

// GetSale handles GET /api/sales/:id
func (h *Handlers) GetSale(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	sale, err := h.sales.Get(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, sale)
}

// ListSales handles GET /api/sales
func (h *Handlers) ListSales(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	sales, err := h.sales.List(queryInt64(c, "turma_id"), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, sales)
}
