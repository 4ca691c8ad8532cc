package material

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prodplan/prodplan/internal/rest"
	"github.com/prodplan/prodplan/pkg/ledger"
	log "github.com/sirupsen/logrus"
)

type InflowDTO struct {
	PlanId           string        `json:"planId"`
	Days             int           `json:"days"`
	InMaterial       ledger.Matrix `json:"inMaterial"`
	AktualInMaterial ledger.Matrix `json:"aktualInMaterial"`
	TotalIn          int           `json:"totalIn"`
	TotalAktual      int           `json:"totalAktual"`
}

type CellDTO struct {
	Kind     string `json:"kind"`
	Day      int    `json:"day"`
	Shift    int    `json:"shift"`
	Quantity *int   `json:"quantity"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetInflow godoc
// @Summary Get material inflow
// @Description Planned and recorded material inflow of a plan, one row per planned day
// @Tags Material
// @Produce json
// @Param planId path string true "Plan ID"
// @Success 200 {object} InflowDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid plan id"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId}/material [get]
func (h *Handler) GetInflow(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting material inflow")
	planId, err := uuid.Parse(mux.Vars(r)["planId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid plan id", err.Error())
		return
	}

	inflow, err := h.service.GetInflow(r.Context(), planId)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, inflowToDTO(inflow))
}

// SetCell godoc
// @Summary Set one material inflow cell
// @Description Stores the quantity arriving on a day and shift. A null quantity clears the cell.
// @Tags Material
// @Accept json
// @Produce json
// @Param planId path string true "Plan ID"
// @Param cell body CellDTO true "Cell"
// @Success 200 {object} InflowDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid cell"
// @Failure 404 {object} rest.ErrorResponse "Plan not found"
// @Router /api/plan/{planId}/material [put]
func (h *Handler) SetCell(w http.ResponseWriter, r *http.Request) {
	log.Debug("Setting material inflow cell")
	planId, err := uuid.Parse(mux.Vars(r)["planId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid plan id", err.Error())
		return
	}
	var cellDTO CellDTO
	if err := json.NewDecoder(r.Body).Decode(&cellDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	inflow, err := h.service.SetCell(r.Context(), planId, Cell{
		Kind:     Kind(cellDTO.Kind),
		Day:      cellDTO.Day,
		Shift:    cellDTO.Shift,
		Quantity: cellDTO.Quantity,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, inflowToDTO(inflow))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		rest.WriteError(w, http.StatusNotFound, "Plan not found", "")
	case errors.Is(err, ErrInvalidCell):
		rest.WriteError(w, http.StatusBadRequest, "Invalid material cell", err.Error())
	default:
		log.Errorf("material request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

func inflowToDTO(inflow Inflow) InflowDTO {
	return InflowDTO{
		PlanId:           inflow.PlanId.String(),
		Days:             len(inflow.InMaterial),
		InMaterial:       inflow.InMaterial,
		AktualInMaterial: inflow.AktualInMaterial,
		TotalIn:          inflow.InMaterial.Total(),
		TotalAktual:      inflow.AktualInMaterial.Total(),
	}
}
