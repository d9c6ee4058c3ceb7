package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/car-rental-reservation/internal/model"
	"github.com/iliyamo/car-rental-reservation/internal/repository"
)

// memStore is an in-memory implementation of every store interface.
type memStore struct {
	mu           sync.Mutex
	members      map[uint64]model.User
	cars         map[uint64]model.Car
	locations    map[uint64]model.Location
	services     map[uint64]model.AdditionalService
	equipment    map[uint64]model.Equipment
	reservations map[uint64]model.Reservation
	nextID       uint64
	saves        int
	saveErr      error
}

func newMemStore() *memStore {
	return &memStore{
		members:      map[uint64]model.User{},
		cars:         map[uint64]model.Car{},
		locations:    map[uint64]model.Location{},
		services:     map[uint64]model.AdditionalService{},
		equipment:    map[uint64]model.Equipment{},
		reservations: map[uint64]model.Reservation{},
	}
}

type memberStore struct{ *memStore }
type carStore struct{ *memStore }
type locationStore struct{ *memStore }
type serviceStore struct{ *memStore }
type equipmentStore struct{ *memStore }
type reservationStore struct{ *memStore }

func (s *memStore) stores() Stores {
	return Stores{
		Members:      memberStore{s},
		Cars:         carStore{s},
		Locations:    locationStore{s},
		Services:     serviceStore{s},
		Equipment:    equipmentStore{s},
		Reservations: reservationStore{s},
	}
}

func (s memberStore) GetMemberByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok || m.Role != model.RoleMember {
		return model.User{}, repository.ErrNotFound
	}
	return m, nil
}

func (s carStore) GetByID(_ context.Context, id uint64) (model.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cars[id]
	if !ok {
		return model.Car{}, repository.ErrNotFound
	}
	return c, nil
}

func (s locationStore) GetByID(_ context.Context, id uint64) (model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[id]
	if !ok {
		return model.Location{}, repository.ErrNotFound
	}
	return l, nil
}

func (s serviceStore) FindAllByID(_ context.Context, ids []uint64) ([]model.AdditionalService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.AdditionalService{}
	for _, id := range ids {
		if v, ok := s.services[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s equipmentStore) FindAllByID(_ context.Context, ids []uint64) ([]model.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Equipment{}
	for _, id := range ids {
		if v, ok := s.equipment[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s reservationStore) ExistsOverlapping(_ context.Context, carID uint64, status model.ReservationStatus, start, end model.Date, excludeID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.CarID != carID || r.Status != status || (excludeID != 0 && r.ID == excludeID) {
			continue
		}
		if RangesOverlap(r.StartDate, r.EndDate, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (s reservationStore) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return r, nil
}

func (s reservationStore) Save(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if res.ID == 0 {
		s.nextID++
		res.ID = s.nextID
	}
	s.saves++
	s.reservations[res.ID] = *res
	return nil
}

func (s reservationStore) List(_ context.Context, status *model.ReservationStatus) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for id := uint64(1); id <= s.nextID; id++ {
		r, ok := s.reservations[id]
		if ok && (status == nil || r.Status == *status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s reservationStore) ListByMember(_ context.Context, memberID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for id := uint64(1); id <= s.nextID; id++ {
		if r, ok := s.reservations[id]; ok && r.MemberID == memberID {
			out = append(out, r)
		}
	}
	return out, nil
}

// directTx runs fn without a real transaction.
type directTx struct{ calls int }

func (t *directTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type sentEvent struct {
	Reservation model.Reservation
	Event       string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, res model.Reservation, event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{Reservation: res, Event: event})
	return n.err
}

var errBoom = errors.New("boom")

// fixture seeds a member with a license, a car at 100/day, two locations,
// a service at 10/day and equipment at 5/day.  Today is 2025-01-01.
type fixture struct {
	store    *memStore
	tx       *directTx
	notifier *recordingNotifier
	svc      *ReservationService
	today    model.Date
}

func newFixture() *fixture {
	st := newMemStore()
	st.members[1] = model.User{ID: 1, Email: "ada@example.com", Role: model.RoleMember, DrivingLicenseNumber: "DL-1", IsActive: true}
	st.members[2] = model.User{ID: 2, Email: "bob@example.com", Role: model.RoleMember, IsActive: true}
	st.members[9] = model.User{ID: 9, Email: "admin@example.com", Role: model.RoleAdmin, IsActive: true}
	st.cars[10] = model.Car{ID: 10, Make: "Toyota", Model: "Corolla", LicensePlate: "AB-123", DailyRate: decimal.NewFromInt(100)}
	st.cars[11] = model.Car{ID: 11, Make: "Fiat", Model: "Egea", LicensePlate: "CD-456", DailyRate: decimal.RequireFromString("45.50")}
	st.locations[20] = model.Location{ID: 20, Name: "Airport", Code: "APT"}
	st.locations[21] = model.Location{ID: 21, Name: "Downtown", Code: "DTN"}
	st.services[30] = model.AdditionalService{ID: 30, Name: "Insurance", DailyPrice: decimal.NewFromInt(10)}
	st.equipment[40] = model.Equipment{ID: 40, Name: "GPS", DailyPrice: decimal.NewFromInt(5)}

	today := model.NewDate(2025, time.January, 1)
	f := &fixture{store: st, tx: &directTx{}, notifier: &recordingNotifier{}, today: today}
	f.svc = NewReservationService(st.stores(), f.tx, f.notifier, nil,
		WithClock(func() time.Time { return today.Add(10 * time.Hour) }),
		WithNumberGenerator(sequentialNumbers()),
	)
	return f
}

func sequentialNumbers() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "RES-" + strconv.Itoa(n)
	}
}

// request books car 10 from today+startOffset to today+endOffset.
func (f *fixture) request(startOffset, endOffset int) model.ReservationRequest {
	start := f.today.AddDays(startOffset)
	end := f.today.AddDays(endOffset)
	return model.ReservationRequest{
		MemberID:          1,
		CarID:             10,
		PickupLocationID:  20,
		DropoffLocationID: 21,
		StartDate:         &start,
		EndDate:           &end,
	}
}
