package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prodplan/prodplan/internal/rest"
	"github.com/prodplan/prodplan/pkg/capacity"
	"github.com/prodplan/prodplan/pkg/ledger"
	"github.com/prodplan/prodplan/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

type PlanDTO struct {
	Id                 string  `json:"id,omitempty"`
	Name               string  `json:"name"`
	PartName           string  `json:"partName,omitempty"`
	CustomerName       string  `json:"customerName,omitempty"`
	TimePerPiece       float64 `json:"timePerPiece"`
	ManpowerCount      int     `json:"manpowerCount"`
	ShiftDurationHours float64 `json:"shiftDurationHours,omitempty"`
	PlanningHours      float64 `json:"planningHours"`
	OvertimeHours      float64 `json:"overtimeHours"`
	InitialStock       int     `json:"initialStock"`
	HorizonDays        int     `json:"horizonDays,omitempty"`
	// Deliveries maps a day to its shift-1 requirement. Only read on creation.
	Deliveries map[int]int `json:"deliveries,omitempty"`
	Slots      []SlotDTO   `json:"slots,omitempty"`
	Summary    *SummaryDTO `json:"summary,omitempty"`
	CreatedAt  *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time  `json:"updatedAt,omitempty"`
}

type SlotDTO struct {
	Id            string  `json:"id"`
	Day           int     `json:"day"`
	Shift         string  `json:"shift"`
	Delivery      int     `json:"delivery"`
	Pcs           int     `json:"pcs"`
	PlanningPcs   int     `json:"planningPcs"`
	PlanningHours float64 `json:"planningHours"`
	OvertimePcs   int     `json:"overtimePcs"`
	OvertimeHours float64 `json:"overtimeHours"`
	ActualPcs     int     `json:"actualPcs"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes,omitempty"`
	Adjustment    int     `json:"adjustment,omitempty"`
	TriggerDay    int     `json:"triggerDay,omitempty"`
}

type SummaryDTO struct {
	TotalDemand      int     `json:"totalDemand"`
	TotalPlanned     int     `json:"totalPlanned"`
	RequiredHours    float64 `json:"requiredHours"`
	ShiftCapacity    int     `json:"shiftCapacity"`
	Sufficient       bool    `json:"sufficient"`
	RemainingStock   int     `json:"remainingStock"`
	PendingShortfall int     `json:"pendingShortfall"`
}

type EditDTO struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type LedgerDTO struct {
	Days                  int   `json:"days"`
	InMaterialStock       []int `json:"inMaterialStock"`
	AktualInMaterialStock []int `json:"aktualInMaterialStock"`
	Theoretical           []int `json:"theoretical"`
	Rencana               []int `json:"rencana"`
	TotalInMaterial       int   `json:"totalInMaterial"`
	TotalAktualInMaterial int   `json:"totalAktualInMaterial"`
}

// Renderer turns schedules and ledgers into CSV documents.
type Renderer interface {
	RenderSchedule(slots []schedule.Slot) (string, error)
	RenderLedger(l ledger.Ledger) (string, error)
}

type Handler struct {
	service  Service
	renderer Renderer
}

func NewHandler(service Service, renderer Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// ListPlans godoc
// @Summary List production plans
// @Description Saved plans without their slots, most recently updated first
// @Tags Plan
// @Produce json
// @Success 200 {array} PlanDTO
// @Router /api/plan [get]
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing plans")
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	plansDTO := make([]PlanDTO, 0, len(plans))
	for _, plan := range plans {
		plansDTO = append(plansDTO, planToDTO(plan, false))
	}
	rest.WriteJSON(w, http.StatusOK, plansDTO)
}

// CreatePlan godoc
// @Summary Create a production plan
// @Description Generates the schedule for the given capacity and deliveries and stores it
// @Tags Plan
// @Accept json
// @Produce json
// @Param plan body PlanDTO true "Plan"
// @Success 201 {object} PlanDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid plan"
// @Router /api/plan [post]
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating plan")
	var planDTO PlanDTO
	if err := json.NewDecoder(r.Body).Decode(&planDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), dtoToPlan(planDTO), schedule.Demand(planDTO.Deliveries))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, planToDTO(plan, true))
}

// GetPlan godoc
// @Summary Get a production plan
// @Tags Plan
// @Produce json
// @Param planId path string true "Plan ID"
// @Success 200 {object} PlanDTO
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId} [get]
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planId, ok := planIdFromPath(w, r)
	if !ok {
		return
	}
	plan, err := h.service.GetPlan(r.Context(), planId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, planToDTO(plan, true))
}

// UpdatePlan godoc
// @Summary Update a production plan
// @Description Stores names, capacity and horizon and regenerates the schedule from the stored deliveries
// @Tags Plan
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param plan body PlanDTO true "Plan"
// @Success 200 {object} PlanDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid plan"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId} [put]
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating plan")
	planId, ok := planIdFromPath(w, r)
	if !ok {
		return
	}
	var planDTO PlanDTO
	if err := json.NewDecoder(r.Body).Decode(&planDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if planDTO.Id != "" && planDTO.Id != planId.String() {
		rest.WriteError(w, http.StatusBadRequest, "Invalid plan id in request body", "")
		return
	}

	plan := dtoToPlan(planDTO)
	plan.Id = planId
	updated, err := h.service.UpdatePlan(r.Context(), plan)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, planToDTO(updated, true))
}

// DeletePlan godoc
// @Summary Delete a production plan
// @Tags Plan
// @Param planId path string true "Plan ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId} [delete]
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	log.Debug("Deleting plan")
	planId, ok := planIdFromPath(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePlan(r.Context(), planId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditSlot godoc
// @Summary Edit one schedule slot
// @Description Applies a single field change and recalculates the whole schedule
// @Tags Plan
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param slotId path string true "Slot ID, e.g. 3-1 or ot-3"
// @Param edit body EditDTO true "Edit"
// @Success 200 {object} PlanDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid edit"
// @Failure 404 {object} rest.ErrorResponse "Plan or slot not found"
// @Router /api/plan/{planId}/slot/{slotId} [patch]
func (h *Handler) EditSlot(w http.ResponseWriter, r *http.Request) {
	planId, ok := planIdFromPath(w, r)
	if !ok {
		return
	}
	slotId := mux.Vars(r)["slotId"]
	log.Debugf("Editing slot %s", slotId)
	var editDTO EditDTO
	if err := json.NewDecoder(r.Body).Decode(&editDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	plan, err := h.service.EditSlot(r.Context(), planId, schedule.Edit{
		SlotId: slotId,
		Field:  schedule.Field(editDTO.Field),
		Value:  editDTO.Value,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, planToDTO(plan, true))
}

// GetLedger godoc
// @Summary Get the stock ledger of a plan
// @Description Cascading stock series indexed by day*2+shift for every ledger variant
// @Tags Plan
// @Produce json
// @Param planId path string true "Plan ID"
// @Success 200 {object} LedgerDTO
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId}/ledger [get]
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	planId, ok := planIdFromPath(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetLedger(r.Context(), planId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ledgerToDTO(result))
}

// Export godoc
// @Summary Export a plan as CSV
// @Description The schedule by default, the stock ledger with what=ledger
// @Tags Plan
// @Produce text/csv
// @Param planId path string true "Plan ID"
// @Param what query string false "schedule or ledger"
// @Success 200 {string} string "CSV document"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId}/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	planId, ok := planIdFromPath(w, r)
	if !ok {
		return
	}

	what := r.URL.Query().Get("what")
	var document string
	var err error
	switch what {
	case "", "schedule":
		what = "schedule"
		var plan Plan
		plan, err = h.service.GetPlan(r.Context(), planId)
		if err == nil {
			document, err = h.renderer.RenderSchedule(plan.Slots)
		}
	case "ledger":
		var result ledger.Ledger
		result, err = h.service.GetLedger(r.Context(), planId)
		if err == nil {
			document, err = h.renderer.RenderLedger(result)
		}
	default:
		rest.WriteError(w, http.StatusBadRequest, "Unknown export", what)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", what+"-"+planId.String()+".csv"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(document)); err != nil {
		log.Errorf("failed to write export: %v", err)
	}
}

func planIdFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	planId, err := uuid.Parse(mux.Vars(r)["planId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid plan id", err.Error())
		return uuid.Nil, false
	}
	return planId, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		rest.WriteError(w, http.StatusNotFound, "Plan not found", "")
	case errors.Is(err, schedule.ErrSlotNotFound):
		rest.WriteError(w, http.StatusNotFound, "Slot not found", err.Error())
	case errors.Is(err, ErrInvalidPlan):
		rest.WriteError(w, http.StatusBadRequest, "Invalid plan", err.Error())
	case errors.Is(err, schedule.ErrUnknownField),
		errors.Is(err, schedule.ErrFieldNotEditable),
		errors.Is(err, schedule.ErrInvalidValue),
		errors.Is(err, schedule.ErrInvalidStatus):
		rest.WriteError(w, http.StatusBadRequest, "Invalid slot edit", err.Error())
	default:
		log.Errorf("plan request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

func dtoToPlan(dto PlanDTO) Plan {
	return Plan{
		Name:         dto.Name,
		PartName:     dto.PartName,
		CustomerName: dto.CustomerName,
		Capacity: capacity.Parameters{
			TimePerPiece:       dto.TimePerPiece,
			ManpowerCount:      dto.ManpowerCount,
			ShiftDurationHours: dto.ShiftDurationHours,
			PlanningHours:      dto.PlanningHours,
			OvertimeHours:      dto.OvertimeHours,
			InitialStock:       dto.InitialStock,
		},
		HorizonDays: dto.HorizonDays,
	}
}

func planToDTO(plan Plan, withSlots bool) PlanDTO {
	dto := PlanDTO{
		Id:                 plan.Id.String(),
		Name:               plan.Name,
		PartName:           plan.PartName,
		CustomerName:       plan.CustomerName,
		TimePerPiece:       plan.Capacity.TimePerPiece,
		ManpowerCount:      plan.Capacity.ManpowerCount,
		ShiftDurationHours: plan.Capacity.ShiftDurationHours,
		PlanningHours:      plan.Capacity.PlanningHours,
		OvertimeHours:      plan.Capacity.OvertimeHours,
		InitialStock:       plan.Capacity.InitialStock,
		HorizonDays:        plan.HorizonDays,
		CreatedAt:          &plan.CreatedAt,
		UpdatedAt:          &plan.UpdatedAt,
	}
	if !withSlots {
		return dto
	}
	dto.Slots = make([]SlotDTO, 0, len(plan.Slots))
	for _, slot := range plan.Slots {
		dto.Slots = append(dto.Slots, slotToDTO(slot))
	}
	summary := plan.Summary()
	dto.Summary = &SummaryDTO{
		TotalDemand:      summary.TotalDemand,
		TotalPlanned:     summary.TotalPlanned,
		RequiredHours:    summary.RequiredHours,
		ShiftCapacity:    summary.ShiftCapacity,
		Sufficient:       summary.Sufficient,
		RemainingStock:   summary.RemainingStock,
		PendingShortfall: summary.PendingShortfall,
	}
	return dto
}

func slotToDTO(slot schedule.Slot) SlotDTO {
	return SlotDTO{
		Id:            slot.Id,
		Day:           slot.Day,
		Shift:         string(slot.Shift),
		Delivery:      slot.Delivery,
		Pcs:           slot.Pcs,
		PlanningPcs:   slot.PlanningPcs,
		PlanningHours: capacity.DisplayHours(slot.PlanningHours),
		OvertimePcs:   slot.OvertimePcs,
		OvertimeHours: capacity.DisplayHours(slot.OvertimeHours),
		ActualPcs:     slot.ActualPcs,
		Status:        string(slot.Status),
		Notes:         slot.Notes,
		Adjustment:    slot.Adjustment,
		TriggerDay:    slot.TriggerDay,
	}
}

func ledgerToDTO(l ledger.Ledger) LedgerDTO {
	return LedgerDTO{
		Days:                  l.Days,
		InMaterialStock:       l.InMaterialStock,
		AktualInMaterialStock: l.AktualInMaterialStock,
		Theoretical:           l.Theoretical,
		Rencana:               l.Rencana,
		TotalInMaterial:       l.TotalInMaterial,
		TotalAktualInMaterial: l.TotalAktualInMaterial,
	}
}
