package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/legalease/legalease-server/cmd/models"
	"github.com/legalease/legalease-server/service/appointment"
	"github.com/legalease/legalease-server/service/lawyer"
	"github.com/legalease/legalease-server/service/slot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router    *mux.Router
	slots     *slot.MemoryStore
	profileID uint
	slotID    uint
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	lawyers := lawyer.NewMemoryDirectory()
	profileID := lawyers.Add(&models.LawyerProfile{
		UserID:          100,
		Specializations: []string{"Property Law"},
		Rating:          4.9,
		IsVerified:      true,
		Modes:           []string{"video", "phone"},
		User:            &models.User{FullName: "Priya Sharma", Email: "priya@example.com"},
	})
	lawyers.Add(&models.LawyerProfile{
		UserID:          101,
		Specializations: []string{"Family Law"},
		Rating:          4.4,
		IsVerified:      true,
		Modes:           []string{"in-person"},
		User:            &models.User{FullName: "Arjun Mehta"},
	})

	slots := slot.NewMemoryStore()
	slotID := slots.Add(&models.AvailabilitySlot{
		LawyerID:    100,
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "10:00",
		IsAvailable: true,
		Price:       250000,
		Mode:        models.ModeVideo,
	})

	service := appointment.NewService(appointment.NewMemoryStore(), slots, lawyers)

	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()
	NewHandler(lawyers, slots, service, nil, nil).RegisterRoutes(subrouter)

	return &testEnv{router: router, slots: slots, profileID: profileID, slotID: slotID}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func bookingPayload(e *testEnv) map[string]interface{} {
	return map[string]interface{}{
		"client_id":         7,
		"lawyer_profile_id": e.profileID,
		"slot_id":           e.slotID,
		"scheduled_date":    "2024-02-01",
		"scheduled_time":    "09:00",
		"consultation_mode": "video",
		"urgency":           "low",
		"amount":            250000,
	}
}

func TestGetLawyers(t *testing.T) {
	e := setupTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/lawyers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Lawyers    []models.LawyerProfile `json:"lawyers"`
		Total      int                    `json:"total"`
		Page       int                    `json:"page"`
		PageSize   int                    `json:"page_size"`
		TotalPages int                    `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, 4.9, response.Lawyers[0].Rating)
	assert.Equal(t, 1, response.Page)
	assert.Equal(t, 20, response.PageSize)
	assert.Equal(t, 1, response.TotalPages)
}

func TestGetLawyersPagination(t *testing.T) {
	e := setupTestEnv(t)

	var response struct {
		Lawyers    []models.LawyerProfile `json:"lawyers"`
		Total      int                    `json:"total"`
		Page       int                    `json:"page"`
		PageSize   int                    `json:"page_size"`
		TotalPages int                    `json:"total_pages"`
	}

	w := e.do(t, http.MethodGet, "/api/v1/lawyers?page=2&page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Lawyers, 1)
	// Page 2 of size 1 holds the second-best rating.
	assert.Equal(t, 4.4, response.Lawyers[0].Rating)
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, 2, response.Page)
	assert.Equal(t, 1, response.PageSize)
	assert.Equal(t, 2, response.TotalPages)

	// A page past the end is empty, not an error.
	w = e.do(t, http.MethodGet, "/api/v1/lawyers?page=9&page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Lawyers)
	assert.Equal(t, 2, response.Total)
}

func TestGetLawyersWithFilters(t *testing.T) {
	e := setupTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/lawyers?specialization=Family+Law", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Lawyers []models.LawyerProfile `json:"lawyers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Lawyers, 1)
	assert.Equal(t, uint(101), response.Lawyers[0].UserID)

	w = e.do(t, http.MethodGet, "/api/v1/lawyers?min_rating=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorPayload(t, w)
}

func TestGetAvailableSlots(t *testing.T) {
	e := setupTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/availability/100?date=2024-02-01", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Slots []models.AvailabilitySlot `json:"slots"`
		Total int                       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 1, response.Total)
	assert.Equal(t, e.slotID, response.Slots[0].ID)

	// No matches is an empty list, not an error.
	w = e.do(t, http.MethodGet, "/api/v1/availability/100?date=2024-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Total)
}

func TestGetAvailableSlotsRequiresDate(t *testing.T) {
	e := setupTestEnv(t)
	w := e.do(t, http.MethodGet, "/api/v1/availability/100", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorPayload(t, w)
}

func TestBookAppointment(t *testing.T) {
	e := setupTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/v1/appointments", bookingPayload(e))
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusScheduled, created.Status)
	assert.Equal(t, models.PaymentPending, created.PaymentStatus)
	assert.Equal(t, int64(250000), created.Amount)

	stored, err := e.slots.Get(e.slotID)
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable)
}

func TestBookAppointmentConflict(t *testing.T) {
	e := setupTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/v1/appointments", bookingPayload(e))
	require.Equal(t, http.StatusCreated, w.Code)

	// A second client racing for the same slot gets a conflict.
	payload := bookingPayload(e)
	payload["client_id"] = 8
	w = e.do(t, http.MethodPost, "/api/v1/appointments", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "slot no longer available", assertErrorPayload(t, w))
}

func TestBookAppointmentUnknownLawyer(t *testing.T) {
	e := setupTestEnv(t)

	payload := bookingPayload(e)
	payload["lawyer_profile_id"] = 99
	w := e.do(t, http.MethodPost, "/api/v1/appointments", payload)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "lawyer not found", assertErrorPayload(t, w))
}

func TestBookAppointmentValidation(t *testing.T) {
	e := setupTestEnv(t)

	tests := []struct {
		name    string
		mutate  func(map[string]interface{})
		message string
	}{
		{
			name:    "missing client",
			mutate:  func(p map[string]interface{}) { delete(p, "client_id") },
			message: "client_id, lawyer_profile_id and slot_id are required",
		},
		{
			name:    "bad mode",
			mutate:  func(p map[string]interface{}) { p["consultation_mode"] = "telepathy" },
			message: "invalid consultation mode",
		},
		{
			name:    "bad urgency",
			mutate:  func(p map[string]interface{}) { p["urgency"] = "asap" },
			message: "urgency must be low, medium or high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bookingPayload(e)
			tt.mutate(payload)
			w := e.do(t, http.MethodPost, "/api/v1/appointments", payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, assertErrorPayload(t, w))
		})
	}
}

func TestBookAppointmentAmountMismatch(t *testing.T) {
	e := setupTestEnv(t)

	payload := bookingPayload(e)
	payload["amount"] = 100
	w := e.do(t, http.MethodPost, "/api/v1/appointments", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assertErrorPayload(t, w)

	// The failed booking must not consume the slot.
	stored, err := e.slots.Get(e.slotID)
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable)
}

// assertErrorPayload checks the {"error": ...} failure shape and returns the
// message.
func assertErrorPayload(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload),
		fmt.Sprintf("body: %s", w.Body.String()))
	require.NotEmpty(t, payload["error"])
	return payload["error"]
}
