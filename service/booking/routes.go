package booking

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/legalease/legalease-server/cmd/models"
	"github.com/legalease/legalease-server/service/appointment"
	"github.com/legalease/legalease-server/service/lawyer"
	"github.com/legalease/legalease-server/service/notify"
	"github.com/legalease/legalease-server/service/slot"
	"gorm.io/gorm"
)

// Handler is the public booking facade: list bookable lawyers, list a
// lawyer's open slots, book one. Failures always come back as a JSON
// {"error": ...} payload with a non-2xx status, never as a bare body, so
// remote callers can tell "no data" from "call failed".
type Handler struct {
	lawyers      lawyer.Directory
	slots        slot.Store
	appointments *appointment.Service
	db           *gorm.DB       // optional, resolves client contact for mail
	mailer       *notify.Mailer // optional, nil when SMTP is not configured
}

func NewHandler(lawyers lawyer.Directory, slots slot.Store, appointments *appointment.Service, db *gorm.DB, mailer *notify.Mailer) *Handler {
	return &Handler{
		lawyers:      lawyers,
		slots:        slots,
		appointments: appointments,
		db:           db,
		mailer:       mailer,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/lawyers", h.GetLawyers).Methods("GET")
	router.HandleFunc("/availability/{lawyerId}", h.GetAvailableSlots).Methods("GET")
	router.HandleFunc("/appointments", h.BookAppointment).Methods("POST")
}

func (h *Handler) GetLawyers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := lawyer.Filter{
		SearchTerm:     query.Get("search"),
		Specialization: query.Get("specialization"),
		Location:       query.Get("location"),
	}
	if raw := query.Get("min_rating"); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_rating")
			return
		}
		filter.MinRating = minRating
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	profiles, err := h.lawyers.List(filter)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, try again")
		return
	}

	total := len(profiles)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"lawyers":     profiles[start:end],
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

func (h *Handler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lawyerID, err := strconv.ParseUint(vars["lawyerId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lawyer ID")
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date is required in YYYY-MM-DD format")
		return
	}

	slots, err := h.slots.ListAvailable(uint(lawyerID), date)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, try again")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"slots": slots,
		"total": len(slots),
	})
}

func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var request struct {
		appointment.BookingRequest
		ClientID uint `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.ClientID == 0 || request.LawyerProfileID == 0 || request.SlotID == 0 {
		writeError(w, http.StatusBadRequest, "client_id, lawyer_profile_id and slot_id are required")
		return
	}
	if request.Mode != "" && !request.Mode.Valid() {
		writeError(w, http.StatusBadRequest, "invalid consultation mode")
		return
	}
	switch request.Urgency {
	case "", "low", "medium", "high":
	default:
		writeError(w, http.StatusBadRequest, "urgency must be low, medium or high")
		return
	}

	created, err := h.appointments.Book(request.BookingRequest, request.ClientID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	if h.mailer != nil && h.db != nil {
		go h.sendConfirmation(created)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lawyer.ErrLawyerNotFound):
		writeError(w, http.StatusNotFound, "lawyer not found")
	case errors.Is(err, slot.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot not found")
	case errors.Is(err, slot.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot no longer available")
	case errors.Is(err, appointment.ErrAmountMismatch):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, try again")
	}
}

func (h *Handler) sendConfirmation(a *models.Appointment) {
	var client models.User
	if err := h.db.First(&client, a.ClientID).Error; err != nil {
		log.Printf("confirmation mail skipped, client %d not found: %v", a.ClientID, err)
		return
	}
	if err := h.mailer.SendBookingConfirmation(client.Email, client.FullName, a); err != nil {
		log.Printf("error sending confirmation for appointment %d: %v", a.ID, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
