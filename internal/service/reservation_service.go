package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-rental-reservation/internal/model"
	"github.com/iliyamo/car-rental-reservation/internal/repository"
)

// Notification event types.
const (
	EventCreated  = "CREATED"
	EventUpdated  = "UPDATED"
	EventCanceled = "CANCELED"
)

// MemberStore resolves members by id.
type MemberStore interface {
	GetMemberByID(ctx context.Context, id uint64) (model.User, error)
}

// CarStore resolves cars by id.  Implementations backed by a database
// lock the car row when called inside a transaction.
type CarStore interface {
	GetByID(ctx context.Context, id uint64) (model.Car, error)
}

// LocationStore resolves branches by id.
type LocationStore interface {
	GetByID(ctx context.Context, id uint64) (model.Location, error)
}

// ServiceStore resolves additional services; unknown ids are skipped.
type ServiceStore interface {
	FindAllByID(ctx context.Context, ids []uint64) ([]model.AdditionalService, error)
}

// EquipmentStore resolves equipment; unknown ids are skipped.
type EquipmentStore interface {
	FindAllByID(ctx context.Context, ids []uint64) ([]model.Equipment, error)
}

// ReservationStore persists reservations.
type ReservationStore interface {
	OverlapFinder
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	Save(ctx context.Context, res *model.Reservation) error
	List(ctx context.Context, status *model.ReservationStatus) ([]model.Reservation, error)
	ListByMember(ctx context.Context, memberID uint64) ([]model.Reservation, error)
}

// Notifier delivers reservation events.  Errors are logged by the caller
// and never fail the operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, res model.Reservation, eventType string) error
}

// AvailabilityCache forgets cached availability answers for a car.
type AvailabilityCache interface {
	InvalidateCar(ctx context.Context, carID uint64) error
}

// Transactor runs fn as one atomic unit of work.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores groups the lookups the reservation service depends on.
type Stores struct {
	Members      MemberStore
	Cars         CarStore
	Locations    LocationStore
	Services     ServiceStore
	Equipment    EquipmentStore
	Reservations ReservationStore
}

// ReservationService drives the reservation lifecycle: quote, create,
// update, cancel and complete.  Every operation validates and resolves
// all inputs before the first write, runs inside one transaction and
// notifies only after that transaction has committed.
type ReservationService struct {
	stores       Stores
	availability *AvailabilityChecker
	tx           Transactor
	notifier     Notifier
	cache        AvailabilityCache
	metrics      *Metrics
	log          logrus.FieldLogger
	now          func() time.Time
	newNumber    func() string
}

// Option customizes a ReservationService.
type Option func(*ReservationService)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) { s.now = now }
}

// WithNumberGenerator replaces the UUID reservation number generator.
func WithNumberGenerator(gen func() string) Option {
	return func(s *ReservationService) { s.newNumber = gen }
}

// WithMetrics records lifecycle counters.
func WithMetrics(m *Metrics) Option {
	return func(s *ReservationService) { s.metrics = m }
}

// WithAvailabilityCache invalidates a car's cached availability after
// every committed change to its reservations.
func WithAvailabilityCache(c AvailabilityCache) Option {
	return func(s *ReservationService) { s.cache = c }
}

// NewReservationService wires the service.  notifier may be nil, in which
// case no events are sent.
func NewReservationService(stores Stores, tx Transactor, notifier Notifier, log logrus.FieldLogger, opts ...Option) *ReservationService {
	if stores.Members == nil || stores.Cars == nil || stores.Locations == nil ||
		stores.Services == nil || stores.Equipment == nil || stores.Reservations == nil || tx == nil {
		panic("nil dependency passed to NewReservationService")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &ReservationService{
		stores:       stores,
		availability: NewAvailabilityChecker(stores.Reservations),
		tx:           tx,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
		newNumber:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// booking holds every entity a request resolves to.
type booking struct {
	member    model.User
	car       model.Car
	pickup    model.Location
	dropoff   model.Location
	services  []model.AdditionalService
	equipment []model.Equipment
	start     model.Date
	end       model.Date
}

func (b booking) total() decimal.Decimal {
	return ComputeTotal(b.car.DailyRate, servicePrices(b.services), equipmentPrices(b.equipment), b.start, b.end)
}

func (b booking) serviceIDs() []uint64 {
	ids := make([]uint64, 0, len(b.services))
	for _, s := range b.services {
		ids = append(ids, s.ID)
	}
	return model.IDSet(ids)
}

func (b booking) equipmentIDs() []uint64 {
	ids := make([]uint64, 0, len(b.equipment))
	for _, e := range b.equipment {
		ids = append(ids, e.ID)
	}
	return model.IDSet(ids)
}

// apply copies the resolved booking onto res and recomputes its cost.
func (b booking) apply(res *model.Reservation) {
	res.MemberID = b.member.ID
	res.CarID = b.car.ID
	res.PickupLocationID = b.pickup.ID
	res.DropoffLocationID = b.dropoff.ID
	res.StartDate = b.start
	res.EndDate = b.end
	res.AdditionalServiceIDs = b.serviceIDs()
	res.EquipmentIDs = b.equipmentIDs()
	res.TotalCost = b.total()
}

// Quote runs the create path without persisting and returns the price.
func (s *ReservationService) Quote(ctx context.Context, req model.ReservationRequest) (model.ReservationQuote, error) {
	start, end, err := validateDates(req.StartDate, req.EndDate)
	if err != nil {
		return model.ReservationQuote{}, err
	}
	var quote model.ReservationQuote
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.resolve(ctx, req, start, end, 0)
		if err != nil {
			return err
		}
		quote = model.ReservationQuote{
			MemberID:             b.member.ID,
			CarID:                b.car.ID,
			PickupLocationID:     b.pickup.ID,
			DropoffLocationID:    b.dropoff.ID,
			StartDate:            b.start,
			EndDate:              b.end,
			AdditionalServiceIDs: b.serviceIDs(),
			EquipmentIDs:         b.equipmentIDs(),
			RentalDays:           RentalDays(b.start, b.end),
			TotalCost:            b.total(),
		}
		return nil
	})
	if err != nil {
		return model.ReservationQuote{}, err
	}
	return quote, nil
}

// Create books a car and returns the persisted ACTIVE reservation.
func (s *ReservationService) Create(ctx context.Context, req model.ReservationRequest) (model.Reservation, error) {
	start, end, err := validateDates(req.StartDate, req.EndDate)
	if err != nil {
		return model.Reservation{}, err
	}
	var saved model.Reservation
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.resolve(ctx, req, start, end, 0)
		if err != nil {
			return err
		}
		res := model.Reservation{
			ReservationNumber: s.newNumber(),
			Status:            model.StatusActive,
		}
		b.apply(&res)
		if err := s.stores.Reservations.Save(ctx, &res); err != nil {
			return fmt.Errorf("save reservation: %w", err)
		}
		saved = res
		return nil
	})
	if err != nil {
		s.metrics.rejected("create", err)
		return model.Reservation{}, err
	}
	s.metrics.transitioned(EventCreated)
	s.log.WithFields(logrus.Fields{
		"reservation_id":     saved.ID,
		"reservation_number": saved.ReservationNumber,
		"car_id":             saved.CarID,
	}).Info("reservation created")
	s.invalidate(ctx, saved.CarID)
	s.notify(ctx, saved, EventCreated)
	return saved, nil
}

// Update replaces the dates, car, locations and add-ons of a reservation
// that is still modifiable and recomputes its cost.
func (s *ReservationService) Update(ctx context.Context, id uint64, req model.ReservationRequest) (model.Reservation, error) {
	start, end, err := validateDates(req.StartDate, req.EndDate)
	if err != nil {
		return model.Reservation{}, err
	}
	var (
		saved   model.Reservation
		prevCar uint64
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		res, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := s.ensureModifiable(res); err != nil {
			return err
		}
		prevCar = res.CarID
		b, err := s.resolve(ctx, req, start, end, res.ID)
		if err != nil {
			return err
		}
		b.apply(&res)
		if err := s.stores.Reservations.Save(ctx, &res); err != nil {
			return fmt.Errorf("save reservation %d: %w", res.ID, err)
		}
		saved = res
		return nil
	})
	if err != nil {
		s.metrics.rejected("update", err)
		return model.Reservation{}, err
	}
	s.metrics.transitioned(EventUpdated)
	s.invalidate(ctx, prevCar, saved.CarID)
	s.notify(ctx, saved, EventUpdated)
	return saved, nil
}

// Cancel moves a modifiable ACTIVE reservation to CANCELED.
func (s *ReservationService) Cancel(ctx context.Context, id uint64) (model.Reservation, error) {
	var saved model.Reservation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		res, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := s.ensureModifiable(res); err != nil {
			return err
		}
		res.Status = model.StatusCanceled
		if err := s.stores.Reservations.Save(ctx, &res); err != nil {
			return fmt.Errorf("save reservation %d: %w", res.ID, err)
		}
		saved = res
		return nil
	})
	if err != nil {
		s.metrics.rejected("cancel", err)
		return model.Reservation{}, err
	}
	s.metrics.transitioned(EventCanceled)
	s.invalidate(ctx, saved.CarID)
	s.notify(ctx, saved, EventCanceled)
	return saved, nil
}

// Complete moves an ACTIVE reservation to COMPLETED.  Rentals are
// completed after the fact, so no pick-up date guard applies.
func (s *ReservationService) Complete(ctx context.Context, id uint64) (model.Reservation, error) {
	var saved model.Reservation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		res, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		switch res.Status {
		case model.StatusCompleted:
			return conflictError(msgAlreadyComplete)
		case model.StatusCanceled:
			return conflictError(msgNotActive)
		}
		res.Status = model.StatusCompleted
		if err := s.stores.Reservations.Save(ctx, &res); err != nil {
			return fmt.Errorf("save reservation %d: %w", res.ID, err)
		}
		saved = res
		return nil
	})
	if err != nil {
		s.metrics.rejected("complete", err)
		return model.Reservation{}, err
	}
	s.metrics.transitioned(string(model.StatusCompleted))
	s.invalidate(ctx, saved.CarID)
	return saved, nil
}

// Get returns one reservation.
func (s *ReservationService) Get(ctx context.Context, id uint64) (model.Reservation, error) {
	return s.load(ctx, id)
}

// List returns all reservations, optionally filtered by status, newest
// start date first.
func (s *ReservationService) List(ctx context.Context, status *model.ReservationStatus) ([]model.Reservation, error) {
	list, err := s.stores.Reservations.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

// ListByMember returns the reservations of an existing member.
func (s *ReservationService) ListByMember(ctx context.Context, memberID uint64) ([]model.Reservation, error) {
	if _, err := s.findMember(ctx, memberID); err != nil {
		return nil, err
	}
	list, err := s.stores.Reservations.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list reservations of member %d: %w", memberID, err)
	}
	return list, nil
}

// CheckAvailability reports whether an existing car is free over the
// requested dates.
func (s *ReservationService) CheckAvailability(ctx context.Context, carID uint64, startDate, endDate *model.Date) (bool, error) {
	start, end, err := validateDates(startDate, endDate)
	if err != nil {
		return false, err
	}
	if _, err := s.findCar(ctx, carID); err != nil {
		return false, err
	}
	available, err := s.availability.IsAvailable(ctx, carID, start, end)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return available, nil
}

// resolve turns a request into entities, in the order: member and its
// license, car, availability, locations, add-ons.
func (s *ReservationService) resolve(ctx context.Context, req model.ReservationRequest, start, end model.Date, excludeID uint64) (booking, error) {
	b := booking{start: start, end: end}
	var err error
	if b.member, err = s.findMember(ctx, req.MemberID); err != nil {
		return booking{}, err
	}
	if !b.member.HasDrivingLicense() {
		return booking{}, conflictError(msgLicenseRequired)
	}
	if b.car, err = s.findCar(ctx, req.CarID); err != nil {
		return booking{}, err
	}
	overlapping, err := s.availability.IsOverlapping(ctx, b.car.ID, model.StatusActive, start, end, excludeID)
	if err != nil {
		return booking{}, fmt.Errorf("check availability: %w", err)
	}
	if overlapping {
		return booking{}, &Error{Kind: ErrCarUnavailable, Message: msgCarUnavailable}
	}
	if b.pickup, err = s.findLocation(ctx, req.PickupLocationID); err != nil {
		return booking{}, err
	}
	if b.dropoff, err = s.findLocation(ctx, req.DropoffLocationID); err != nil {
		return booking{}, err
	}
	if ids := model.IDSet(req.AdditionalServiceIDs); len(ids) > 0 {
		if b.services, err = s.stores.Services.FindAllByID(ctx, ids); err != nil {
			return booking{}, fmt.Errorf("resolve services: %w", err)
		}
	}
	if ids := model.IDSet(req.EquipmentIDs); len(ids) > 0 {
		if b.equipment, err = s.stores.Equipment.FindAllByID(ctx, ids); err != nil {
			return booking{}, fmt.Errorf("resolve equipment: %w", err)
		}
	}
	return b, nil
}

// ensureModifiable rejects changes once the pick-up date has been reached
// and changes to canceled or completed reservations.  The date guard is
// checked first.
func (s *ReservationService) ensureModifiable(res model.Reservation) error {
	today := model.DateOf(s.now())
	if !res.StartDate.After(today) {
		return conflictError(msgNotModifiable)
	}
	if res.Status.Terminal() {
		if res.Status == model.StatusCompleted {
			return conflictError(msgAlreadyComplete)
		}
		return conflictError(msgAlreadyCanceled)
	}
	return nil
}

func validateDates(start, end *model.Date) (model.Date, model.Date, error) {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return model.Date{}, model.Date{}, validationError(msgDatesRequired)
	}
	if end.Before(*start) {
		return model.Date{}, model.Date{}, validationError(msgEndBeforeStart)
	}
	return *start, *end, nil
}

func (s *ReservationService) load(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := s.stores.Reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, lookupError(err, "Reservation", id)
	}
	return res, nil
}

func (s *ReservationService) findMember(ctx context.Context, id uint64) (model.User, error) {
	m, err := s.stores.Members.GetMemberByID(ctx, id)
	if err != nil {
		return model.User{}, lookupError(err, "Member", id)
	}
	return m, nil
}

func (s *ReservationService) findCar(ctx context.Context, id uint64) (model.Car, error) {
	c, err := s.stores.Cars.GetByID(ctx, id)
	if err != nil {
		return model.Car{}, lookupError(err, "Car", id)
	}
	return c, nil
}

func (s *ReservationService) findLocation(ctx context.Context, id uint64) (model.Location, error) {
	l, err := s.stores.Locations.GetByID(ctx, id)
	if err != nil {
		return model.Location{}, lookupError(err, "Location", id)
	}
	return l, nil
}

func lookupError(err error, what string, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError("%s not found: %d", what, id)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}

// invalidate drops cached availability of the given cars.  Failures are
// logged; cached answers then expire with their TTL.
func (s *ReservationService) invalidate(ctx context.Context, carIDs ...uint64) {
	if s.cache == nil {
		return
	}
	seen := make(map[uint64]bool, len(carIDs))
	for _, id := range carIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		if err := s.cache.InvalidateCar(ctx, id); err != nil {
			s.log.WithError(err).WithField("car_id", id).Warn("availability cache invalidation failed")
		}
	}
}

// notify sends an event after a committed write.  Failures are logged.
func (s *ReservationService) notify(ctx context.Context, res model.Reservation, event string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, res, event); err != nil {
		s.metrics.notificationFailed()
		s.log.WithError(err).WithFields(logrus.Fields{
			"reservation_id":     res.ID,
			"reservation_number": res.ReservationNumber,
			"event":              event,
		}).Warn("reservation notification failed")
	}
}
