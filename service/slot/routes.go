package slot

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/legalease/legalease-server/cmd/models"
	"gorm.io/gorm"
)

// Handler exposes the scheduling surface: creating, listing and removing a
// lawyer's slots. Availability flips (claim/release) only ever go through the
// Store, never through these routes.
type Handler struct {
	db    *gorm.DB
	store Store
}

func NewHandler(db *gorm.DB, store Store) *Handler {
	return &Handler{db: db, store: store}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/lawyers/{lawyerId}/slots", h.CreateSlot).Methods("POST")
	router.HandleFunc("/lawyers/{lawyerId}/slots", h.GetSlots).Methods("GET")
	router.HandleFunc("/lawyers/{lawyerId}/slots/{id}", h.DeleteSlot).Methods("DELETE")
}

func (h *Handler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lawyerID, err := strconv.ParseUint(vars["lawyerId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lawyer ID", http.StatusBadRequest)
		return
	}

	var request struct {
		Date      string                  `json:"date"`
		StartTime string                  `json:"start_time"`
		EndTime   string                  `json:"end_time"`
		Price     int64                   `json:"price"`
		Mode      models.ConsultationMode `json:"consultation_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", request.Date)
	if err != nil {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("15:04", request.StartTime); err != nil {
		http.Error(w, "Invalid start time. Use HH:MM", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("15:04", request.EndTime); err != nil {
		http.Error(w, "Invalid end time. Use HH:MM", http.StatusBadRequest)
		return
	}
	if request.EndTime <= request.StartTime {
		http.Error(w, "End time must be after start time", http.StatusBadRequest)
		return
	}
	if !request.Mode.Valid() {
		http.Error(w, "Invalid consultation mode", http.StatusBadRequest)
		return
	}
	if request.Price < 0 {
		http.Error(w, "Price must not be negative", http.StatusBadRequest)
		return
	}

	var profile models.LawyerProfile
	if err := h.db.Where("user_id = ?", lawyerID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Lawyer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if !profile.SupportsMode(request.Mode) {
		http.Error(w, "Lawyer does not offer this consultation mode", http.StatusBadRequest)
		return
	}

	// Reject overlapping windows for the same lawyer, date and mode.
	var existing models.AvailabilitySlot
	overlap := h.db.Where(
		"lawyer_id = ? AND date = ? AND consultation_mode = ? AND start_time < ? AND end_time > ?",
		lawyerID, date, request.Mode, request.EndTime, request.StartTime,
	).First(&existing)
	if overlap.Error != nil && !errors.Is(overlap.Error, gorm.ErrRecordNotFound) {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if overlap.Error == nil {
		http.Error(w, "Time slot overlaps with an existing slot", http.StatusConflict)
		return
	}

	slot := models.AvailabilitySlot{
		LawyerID:    uint(lawyerID),
		Date:        date,
		StartTime:   request.StartTime,
		EndTime:     request.EndTime,
		IsAvailable: true,
		Price:       request.Price,
		Mode:        request.Mode,
	}
	if err := h.db.Create(&slot).Error; err != nil {
		http.Error(w, "Error creating slot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(slot)
}

func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lawyerID, err := strconv.ParseUint(vars["lawyerId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lawyer ID", http.StatusBadRequest)
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	mode := r.URL.Query().Get("mode")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 50

	query := h.db.Model(&models.AvailabilitySlot{}).Where("lawyer_id = ?", lawyerID)
	if startDate != "" {
		query = query.Where("date >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("date <= ?", endDate)
	}
	if mode != "" {
		query = query.Where("consultation_mode = ?", mode)
	}

	var total int64
	query.Count(&total)

	var slots []models.AvailabilitySlot
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("date ASC, start_time ASC").Find(&slots).Error; err != nil {
		http.Error(w, "Error retrieving slots", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"slots":       slots,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lawyerID, err := strconv.ParseUint(vars["lawyerId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lawyer ID", http.StatusBadRequest)
		return
	}
	slotID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid slot ID", http.StatusBadRequest)
		return
	}

	result := h.db.Where("id = ? AND lawyer_id = ?", slotID, lawyerID).Delete(&models.AvailabilitySlot{})
	if result.Error != nil {
		http.Error(w, "Error deleting slot", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Slot not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Slot deleted successfully",
	})
}
