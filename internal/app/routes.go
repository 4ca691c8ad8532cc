package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Plans
	r.HandleFunc("/api/plan", deps.PlanHandler.ListPlans).Methods("GET")
	r.HandleFunc("/api/plan", deps.PlanHandler.CreatePlan).Methods("POST")
	r.HandleFunc("/api/plan/{planId}", deps.PlanHandler.GetPlan).Methods("GET")
	r.HandleFunc("/api/plan/{planId}", deps.PlanHandler.UpdatePlan).Methods("PUT")
	r.HandleFunc("/api/plan/{planId}", deps.PlanHandler.DeletePlan).Methods("DELETE")

	// Schedule slots
	r.HandleFunc("/api/plan/{planId}/slot/{slotId}", deps.PlanHandler.EditSlot).Methods("PATCH")

	// Ledger and export
	r.HandleFunc("/api/plan/{planId}/ledger", deps.PlanHandler.GetLedger).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/export", deps.PlanHandler.Export).Methods("GET")

	// Material inflow
	r.HandleFunc("/api/plan/{planId}/material", deps.MaterialHandler.GetInflow).Methods("GET")
	r.HandleFunc("/api/plan/{planId}/material", deps.MaterialHandler.SetCell).Methods("PUT")
}
