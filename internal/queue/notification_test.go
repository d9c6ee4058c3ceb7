package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/car-rental-reservation/internal/model"
)

type stubUsers map[uint64]model.User

func (s stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s[id]
	if !ok {
		return model.User{}, errors.New("not found")
	}
	return u, nil
}

type stubCars map[uint64]model.Car

func (s stubCars) GetByID(_ context.Context, id uint64) (model.Car, error) {
	c, ok := s[id]
	if !ok {
		return model.Car{}, errors.New("not found")
	}
	return c, nil
}

type stubLocations map[uint64]model.Location

func (s stubLocations) GetByID(_ context.Context, id uint64) (model.Location, error) {
	l, ok := s[id]
	if !ok {
		return model.Location{}, errors.New("not found")
	}
	return l, nil
}

type captureMailer struct {
	sent []Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func sampleEvent() ReservationEvent {
	return ReservationEvent{
		Event:             "CREATED",
		ReservationID:     7,
		ReservationNumber: "RES-7",
		MemberID:          1,
		CarID:             10,
		PickupLocationID:  20,
		DropoffLocationID: 21,
		StartDate:         "2025-07-01",
		EndDate:           "2025-07-04",
		Status:            "ACTIVE",
		TotalCost:         "345.00",
	}
}

func newHandler(mailer Mailer, settings Settings) (*NotificationHandler, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	return &NotificationHandler{
		Users:     stubUsers{1: {ID: 1, Email: "ada@example.com"}, 2: {ID: 2}},
		Cars:      stubCars{10: {Make: "Toyota", Model: "Corolla", LicensePlate: "AB-123"}},
		Locations: stubLocations{20: {Name: "Airport", Code: "APT"}, 21: {Name: "Downtown", Code: "DTN"}},
		Mailer:    mailer,
		Settings:  settings,
		Log:       log,
	}, buf
}

func encode(t *testing.T, ev ReservationEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "CRMS Reservation CANCELED", Subject("", "CANCELED"))
	assert.Equal(t, "Acme UPDATED", Subject(" Acme ", "UPDATED"))
}

func TestBody(t *testing.T) {
	body := Body(sampleEvent(), Details{Car: "Toyota Corolla (AB-123)", Pickup: "Airport (APT)"})
	assert.Contains(t, body, "Event: CREATED\n")
	assert.Contains(t, body, "Reservation number: RES-7\n")
	assert.Contains(t, body, "Car: Toyota Corolla (AB-123)\n")
	assert.Contains(t, body, "Pickup: Airport (APT)\n")
	assert.Contains(t, body, "Dropoff: -\n")
	assert.Contains(t, body, "Dates: 2025-07-01 to 2025-07-04\n")
	assert.Contains(t, body, "Total cost: 345.00\n")
}

func TestHandleSendsEnrichedEmail(t *testing.T) {
	mailer := &captureMailer{}
	h, _ := newHandler(mailer, Settings{Enabled: true, SenderEmail: "noreply@crms.test", SenderName: "CRMS"})

	require.NoError(t, h.Handle(context.Background(), encode(t, sampleEvent())))
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "noreply@crms.test", msg.FromEmail)
	assert.Equal(t, "CRMS Reservation CREATED", msg.Subject)
	assert.Contains(t, msg.Text, "Dropoff: Downtown (DTN)")
}

func TestHandleSkips(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		memberID uint64
		reason   string
	}{
		{"disabled", Settings{Enabled: false, SenderEmail: "noreply@crms.test"}, 1, "disabled"},
		{"no sender", Settings{Enabled: true}, 1, "sender address not configured"},
		{"no recipient", Settings{Enabled: true, SenderEmail: "noreply@crms.test"}, 2, "member has no email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &captureMailer{}
			h, logs := newHandler(mailer, tt.settings)
			ev := sampleEvent()
			ev.MemberID = tt.memberID

			require.NoError(t, h.Handle(context.Background(), encode(t, ev)))
			assert.Empty(t, mailer.sent)
			assert.Contains(t, logs.String(), "notification skipped")
			assert.Contains(t, logs.String(), tt.reason)
		})
	}
}

func TestHandleErrors(t *testing.T) {
	mailer := &captureMailer{err: errors.New("smtp down")}
	h, _ := newHandler(mailer, Settings{Enabled: true, SenderEmail: "noreply@crms.test"})

	assert.Error(t, h.Handle(context.Background(), []byte("{not json")))
	assert.Error(t, h.Handle(context.Background(), encode(t, sampleEvent())))

	ev := sampleEvent()
	ev.MemberID = 404
	assert.Error(t, h.Handle(context.Background(), encode(t, ev)))
}

func TestNewMailjetMailerRequiresCredentials(t *testing.T) {
	_, err := NewMailjetMailer("", "secret")
	assert.Error(t, err)
	m, err := NewMailjetMailer("key", "secret")
	require.NoError(t, err)
	assert.NotNil(t, m)
}
