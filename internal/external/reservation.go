package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationClient struct {
	baseURL    string
	httpClient *http.Client
}

type ReservationConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Seat reservation API models
type BatchReserveRequest struct {
	EventID   string   `json:"eventId"`
	SeatIDs   []string `json:"seatIds"`
	SessionID string   `json:"sessionId"`
	UserID    string   `json:"userId,omitempty"`
}

type BatchReserveResponse struct {
	ReservationID string          `json:"reservationId"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	SeatsCount    int             `json:"seatsCount"`
	ReservedSeats []string        `json:"reservedSeats"`
}

type AvailabilityRequest struct {
	EventID string   `json:"eventId"`
	SeatIDs []string `json:"seatIds"`
}

type UnavailableDetail struct {
	SeatID string `json:"seatId"`
	Reason string `json:"reason"`
}

type AvailabilityResponse struct {
	AvailableSeatIDs   []string            `json:"availableSeatIds"`
	UnavailableSeatIDs []string            `json:"unavailableSeatIds"`
	UnavailableDetails []UnavailableDetail `json:"unavailableDetails"`
}

type ReleaseRequest struct {
	SessionID     string `json:"sessionId"`
	ReservationID string `json:"reservationId,omitempty"`
}

type ReleaseResponse struct {
	ReleasedSeatsCount int `json:"releasedSeatsCount"`
}

type SessionStatusResponse struct {
	Active      bool                `json:"active"`
	Reservation *SessionReservation `json:"reservation,omitempty"`
}

type SessionReservation struct {
	ReservationID string          `json:"reservationId"`
	EventID       string          `json:"eventId"`
	SeatIDs       []string        `json:"seatIds"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	SeatsCount    int             `json:"seatsCount"`
}

type ConfirmRequest struct {
	ReservationID    string `json:"reservationId"`
	SessionID        string `json:"sessionId"`
	PaymentReference string `json:"paymentReference"`
	BuyerEmail       string `json:"buyerEmail"`
}

type ConfirmResponse struct {
	Confirmed bool   `json:"confirmed"`
	BookingID string `json:"bookingId,omitempty"`
}

// StatusError is returned when the seat authority answers with an unexpected status code
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}

func NewReservationClient(cfg ReservationConfig) *ReservationClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &ReservationClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (rc *ReservationClient) BatchReserve(ctx context.Context, req BatchReserveRequest) (*BatchReserveResponse, error) {
	var result BatchReserveResponse
	if err := rc.do(ctx, http.MethodPost, "/api/reservations/batch", req, &result, http.StatusOK, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("failed to reserve seats: %w", err)
	}
	return &result, nil
}

func (rc *ReservationClient) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	var result AvailabilityResponse
	if err := rc.do(ctx, http.MethodPost, "/api/seats/availability", req, &result, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	return &result, nil
}

// Release treats 404 and 410 as an already released hold
func (rc *ReservationClient) Release(ctx context.Context, req ReleaseRequest) (*ReleaseResponse, error) {
	var result ReleaseResponse
	err := rc.do(ctx, http.MethodPost, "/api/reservations/release", req, &result, http.StatusOK, http.StatusNoContent)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusGone) {
			return &ReleaseResponse{}, nil
		}
		return nil, fmt.Errorf("failed to release reservation: %w", err)
	}
	return &result, nil
}

func (rc *ReservationClient) SessionStatus(ctx context.Context, sessionID string) (*SessionStatusResponse, error) {
	var result SessionStatusResponse
	path := "/api/reservations/session/" + url.PathEscape(sessionID)
	err := rc.do(ctx, http.MethodGet, path, nil, &result, http.StatusOK)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return &SessionStatusResponse{Active: false}, nil
		}
		return nil, fmt.Errorf("failed to get session status: %w", err)
	}
	return &result, nil
}

func (rc *ReservationClient) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	var result ConfirmResponse
	if err := rc.do(ctx, http.MethodPost, "/api/reservations/confirm", req, &result, http.StatusOK, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("failed to confirm reservation: %w", err)
	}
	if !result.Confirmed {
		return nil, fmt.Errorf("reservation %s was not confirmed", req.ReservationID)
	}
	return &result, nil
}

func (rc *ReservationClient) do(ctx context.Context, method, path string, body, out any, okStatus ...int) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, rc.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, okStatus) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusIn(code int, allowed []int) bool {
	for _, c := range allowed {
		if c == code {
			return true
		}
	}
	return false
}
