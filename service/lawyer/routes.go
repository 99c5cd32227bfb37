package lawyer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type Handler struct {
	directory Directory
}

func NewHandler(directory Directory) *Handler {
	return &Handler{directory: directory}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/lawyers/{id:[0-9]+}", h.GetLawyer).Methods("GET")
}

// GetLawyer returns one verified or unverified profile by ID, with the joined
// user display fields. Listing (verified-only, filtered) lives on the booking
// facade.
func (h *Handler) GetLawyer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	profileID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lawyer ID", http.StatusBadRequest)
		return
	}

	profile, err := h.directory.Get(uint(profileID))
	if err != nil {
		if errors.Is(err, ErrLawyerNotFound) {
			http.Error(w, "Lawyer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error retrieving lawyer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
