package appointment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/legalease/legalease-server/cmd/models"
	"github.com/legalease/legalease-server/cmd/utils"
	"github.com/legalease/legalease-server/service/notify"
	"gorm.io/gorm"
)

type Handler struct {
	service *Service
	db      *gorm.DB       // optional, resolves payer contact for mail
	mailer  *notify.Mailer // optional, nil when SMTP is not configured
}

func NewHandler(service *Service, db *gorm.DB, mailer *notify.Mailer) *Handler {
	return &Handler{service: service, db: db, mailer: mailer}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/appointments/{id:[0-9]+}", h.GetAppointment).Methods("GET")
	router.HandleFunc("/appointments/user", utils.AuthMiddleware(h.GetUserAppointments)).Methods("GET")
	router.HandleFunc("/appointments/{id:[0-9]+}/status", utils.AuthMiddleware(h.UpdateStatus)).Methods("PATCH")
	router.HandleFunc("/appointments/{id:[0-9]+}/payment-status", utils.AuthMiddleware(h.UpdatePaymentStatus)).Methods("PATCH")
	router.HandleFunc("/appointments/{id:[0-9]+}/payments", utils.AuthMiddleware(h.RecordPayment)).Methods("POST")
	router.HandleFunc("/appointments/{id:[0-9]+}/payments", utils.AuthMiddleware(h.GetPayments)).Methods("GET")
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	appointment, err := h.service.Get(uint(appointmentID))
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "Appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error retrieving appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

// GetUserAppointments lists appointments for the authenticated caller. The
// user ID always comes from the verified token, never from the request, so a
// caller cannot read another user's history.
func (h *Handler) GetUserAppointments(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		role = RoleClient
	}

	appointments, err := h.service.ListForUser(userID, role)
	if err != nil {
		if errors.Is(err, ErrInvalidRole) {
			http.Error(w, "Role must be client or lawyer", http.StatusBadRequest)
			return
		}
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"appointments": appointments,
		"total":        len(appointments),
	})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var request struct {
		Status models.AppointmentStatus `json:"status"`
		Notes  string                   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appointment, err := h.service.UpdateStatus(uint(appointmentID), request.Status, request.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, "Appointment not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Error updating appointment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var request struct {
		PaymentStatus models.PaymentStatus `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appointment, err := h.service.UpdatePaymentStatus(uint(appointmentID), request.PaymentStatus)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, "Appointment not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidPaymentTransition):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Error updating payment status", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	payerID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var request struct {
		Amount           int64  `json:"amount"`
		Method           string `json:"method"`
		GatewayOrderID   string `json:"gateway_order_id"`
		GatewayPaymentID string `json:"gateway_payment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.Method == "" {
		http.Error(w, "Payment method required", http.StatusBadRequest)
		return
	}

	payment, err := h.service.RecordPayment(
		uint(appointmentID), payerID, request.Amount,
		request.Method, request.GatewayOrderID, request.GatewayPaymentID,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, "Appointment not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidPaymentTransition):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Error recording payment", http.StatusInternalServerError)
		}
		return
	}

	if h.mailer != nil && h.db != nil {
		go h.sendReceipt(payment)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(payment)
}

func (h *Handler) sendReceipt(p *models.AppointmentPayment) {
	appointment, err := h.service.Get(p.AppointmentID)
	if err != nil {
		log.Printf("receipt mail skipped, appointment %d not found: %v", p.AppointmentID, err)
		return
	}
	var payer models.User
	if err := h.db.First(&payer, p.PayerID).Error; err != nil {
		log.Printf("receipt mail skipped, payer %d not found: %v", p.PayerID, err)
		return
	}
	if err := h.mailer.SendPaymentReceipt(payer.Email, payer.FullName, appointment, p); err != nil {
		log.Printf("error sending receipt for payment %d: %v", p.ID, err)
	}
}

func (h *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	payments, err := h.service.ListPayments(uint(appointmentID))
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "Appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error retrieving payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"payments": payments,
		"total":    len(payments),
	})
}
