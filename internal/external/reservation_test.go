package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ReservationClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewReservationClient(ReservationConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestBatchReserve(t *testing.T) {
	expiresAt := time.Date(2025, 3, 1, 12, 10, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/reservations/batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req BatchReserveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "event-1", req.EventID)
		assert.Equal(t, []string{"101", "102"}, req.SeatIDs)
		assert.Equal(t, "session-1", req.SessionID)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"reservationId":"res-1","expiresAt":"2025-03-01T12:10:00Z","totalPrice":150.5,"seatsCount":2,"reservedSeats":["101","102"]}`))
	})

	resp, err := client.BatchReserve(context.Background(), BatchReserveRequest{
		EventID: "event-1", SeatIDs: []string{"101", "102"}, SessionID: "session-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "res-1", resp.ReservationID)
	assert.True(t, expiresAt.Equal(resp.ExpiresAt))
	assert.True(t, decimal.RequireFromString("150.5").Equal(resp.TotalPrice))
	assert.Equal(t, 2, resp.SeatsCount)
}

func TestBatchReserveConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"seat 102 is held"}`))
	})

	_, err := client.BatchReserve(context.Background(), BatchReserveRequest{EventID: "event-1", SeatIDs: []string{"102"}})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Contains(t, err.Error(), "seat 102 is held")
}

func TestCheckAvailability(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/seats/availability", r.URL.Path)
		_, _ = w.Write([]byte(`{"availableSeatIds":["101"],"unavailableSeatIds":["102"],"unavailableDetails":[{"seatId":"102","reason":"reserved"}]}`))
	})

	resp, err := client.CheckAvailability(context.Background(), AvailabilityRequest{EventID: "event-1", SeatIDs: []string{"101", "102"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"101"}, resp.AvailableSeatIDs)
	assert.Equal(t, []string{"102"}, resp.UnavailableSeatIDs)
	require.Len(t, resp.UnavailableDetails, 1)
	assert.Equal(t, "reserved", resp.UnavailableDetails[0].Reason)
}

func TestReleaseIsIdempotent(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reservations/release", r.URL.Path)
		code := int(status.Load())
		w.WriteHeader(code)
		if code == http.StatusOK {
			_, _ = w.Write([]byte(`{"releasedSeatsCount":2}`))
		}
	})

	resp, err := client.Release(context.Background(), ReleaseRequest{SessionID: "session-1", ReservationID: "res-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.ReleasedSeatsCount)

	status.Store(http.StatusNotFound)
	resp, err = client.Release(context.Background(), ReleaseRequest{SessionID: "session-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.ReleasedSeatsCount)

	status.Store(http.StatusInternalServerError)
	_, err = client.Release(context.Background(), ReleaseRequest{SessionID: "session-1"})
	assert.Error(t, err)
}

func TestSessionStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/api/reservations/session/session-1":
			_, _ = w.Write([]byte(`{"active":true,"reservation":{"reservationId":"res-1","eventId":"event-1","seatIds":["101"],"expiresAt":"2025-03-01T12:10:00Z","totalPrice":"75.00","seatsCount":1}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	resp, err := client.SessionStatus(context.Background(), "session-1")
	require.NoError(t, err)
	assert.True(t, resp.Active)
	require.NotNil(t, resp.Reservation)
	assert.Equal(t, []string{"101"}, resp.Reservation.SeatIDs)

	resp, err = client.SessionStatus(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.Nil(t, resp.Reservation)
}

func TestConfirm(t *testing.T) {
	var confirmed atomic.Bool
	confirmed.Store(true)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pay-1", req.PaymentReference)
		_ = json.NewEncoder(w).Encode(ConfirmResponse{Confirmed: confirmed.Load(), BookingID: "b-1"})
	})

	resp, err := client.Confirm(context.Background(), ConfirmRequest{ReservationID: "res-1", SessionID: "session-1", PaymentReference: "pay-1", BuyerEmail: "a@b.kz"})
	require.NoError(t, err)
	assert.Equal(t, "b-1", resp.BookingID)

	confirmed.Store(false)
	_, err = client.Confirm(context.Background(), ConfirmRequest{ReservationID: "res-1", PaymentReference: "pay-1"})
	assert.Error(t, err)
}

func TestTransportFailure(t *testing.T) {
	client := NewReservationClient(ReservationConfig{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})

	_, err := client.CheckAvailability(context.Background(), AvailabilityRequest{EventID: "event-1"})
	assert.Error(t, err)
}
