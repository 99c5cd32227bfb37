package api

import (
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/legalease/legalease-server/service/appointment"
	"github.com/legalease/legalease-server/service/booking"
	"github.com/legalease/legalease-server/service/lawyer"
	"github.com/legalease/legalease-server/service/notify"
	"github.com/legalease/legalease-server/service/slot"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	slotStore := slot.NewGormStore(s.db)
	directory := lawyer.NewGormDirectory(s.db)
	appointmentService := appointment.NewService(appointment.NewGormStore(s.db), slotStore, directory)

	mailer, err := notify.NewMailerFromEnv()
	if err != nil {
		log.Printf("Mail disabled: %v", err)
		mailer = nil
	}

	lawyer.NewHandler(directory).RegisterRoutes(subrouter)
	slot.NewHandler(s.db, slotStore).RegisterRoutes(subrouter)
	appointment.NewHandler(appointmentService, s.db, mailer).RegisterRoutes(subrouter)
	booking.NewHandler(directory, slotStore, appointmentService, s.db, mailer).RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(router))
}
