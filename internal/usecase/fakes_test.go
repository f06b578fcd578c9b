package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/pkg/timeutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errStoreDown = errors.New("store unavailable")

// newTestDB returns a gorm handle that fakes never query; it only has to
// survive WithContext and Begin.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// fakeAvailabilityRepo keeps one record per (doctor, day)
type fakeAvailabilityRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]map[entity.DayOfWeek]entity.WeeklyAvailability
	failOn  map[entity.DayOfWeek]bool
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{
		records: map[uuid.UUID]map[entity.DayOfWeek]entity.WeeklyAvailability{},
		failOn:  map[entity.DayOfWeek]bool{},
	}
}

func (f *fakeAvailabilityRepo) FindByDoctorAndDay(_ *gorm.DB, doctorID uuid.UUID, day entity.DayOfWeek) (*entity.WeeklyAvailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.records[doctorID][day]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeAvailabilityRepo) FindByDoctorID(_ *gorm.DB, doctorID uuid.UUID) ([]entity.WeeklyAvailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.WeeklyAvailability{}
	for _, a := range f.records[doctorID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

func (f *fakeAvailabilityRepo) Upsert(_ *gorm.DB, a *entity.WeeklyAvailability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[a.DayOfWeek] {
		return errStoreDown
	}
	if f.records[a.DoctorID] == nil {
		f.records[a.DoctorID] = map[entity.DayOfWeek]entity.WeeklyAvailability{}
	}
	f.records[a.DoctorID][a.DayOfWeek] = *a
	return nil
}

func (f *fakeAvailabilityRepo) put(a entity.WeeklyAvailability) {
	_ = f.Upsert(nil, &a)
}

// fakeAppointmentRepo stores appointments in insertion order
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments []entity.Appointment
	doctors      map[uuid.UUID]entity.DoctorProfile
	patients     map[uuid.UUID]entity.PatientProfile
	createErr    error
	// staleUpdates makes UpdateStatus report zero rows, as if another
	// request changed the status first
	staleUpdates bool
	// lastFilter is the most recent FindAll/Count filter
	lastFilter *entity.AppointmentFilter
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		doctors:  map[uuid.UUID]entity.DoctorProfile{},
		patients: map[uuid.UUID]entity.PatientProfile{},
	}
}

func (f *fakeAppointmentRepo) Create(_ *gorm.DB, a *entity.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	stored.Doctor, stored.Patient = entity.DoctorProfile{}, entity.PatientProfile{}
	f.appointments = append(f.appointments, stored)
	return nil
}

func (f *fakeAppointmentRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.ID == id {
			a.Doctor = f.doctors[a.DoctorID]
			a.Patient = f.patients[a.PatientID]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) FindActiveByDoctorAndDate(_ *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Appointment{}
	for _, a := range f.appointments {
		if a.DoctorID == doctorID && timeutil.FormatDate(a.AppointmentDate) == timeutil.FormatDate(date) && a.Status.IsBlocking() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) matches(a entity.Appointment, filter *entity.AppointmentFilter) bool {
	if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
		return false
	}
	if filter.PatientID != nil && a.PatientID != *filter.PatientID {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if s == a.Status {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if filter.StartDate != nil && a.AppointmentDate.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && a.AppointmentDate.After(*filter.EndDate) {
		return false
	}
	return true
}

func (f *fakeAppointmentRepo) FindAll(_ *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	out := []entity.Appointment{}
	for _, a := range f.appointments {
		if f.matches(a, filter) {
			out = append(out, a)
		}
	}
	if filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else {
		out = out[:0]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Count(_ *gorm.DB, filter *entity.AppointmentFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, a := range f.appointments {
		if f.matches(a, filter) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, notes *string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleUpdates {
		return 0, nil
	}
	for i := range f.appointments {
		a := &f.appointments[i]
		if a.ID == id && a.Status == from {
			a.Status = to
			if notes != nil && *notes != "" {
				n := *notes
				a.Notes = &n
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeAppointmentRepo) seed(a entity.Appointment) entity.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.appointments = append(f.appointments, a)
	return a
}

func (f *fakeAppointmentRepo) statusOf(id uuid.UUID) entity.AppointmentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.ID == id {
			return a.Status
		}
	}
	return ""
}

// fakeDoctorRepo also serves profiles to fakeAppointmentRepo preloads
type fakeDoctorRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]entity.DoctorProfile
	findErr  error
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{profiles: map[uuid.UUID]entity.DoctorProfile{}}
}

func (f *fakeDoctorRepo) Create(_ *gorm.DB, p *entity.DoctorProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = *p
	return nil
}

func (f *fakeDoctorRepo) FindByUserID(_ *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeDoctorRepo) Update(_ *gorm.DB, p *entity.DoctorProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.profiles[p.UserID] = *p
	return nil
}

func (f *fakeDoctorRepo) active(filter *entity.DoctorFilter) []entity.DoctorProfile {
	out := []entity.DoctorProfile{}
	for _, p := range f.profiles {
		if !p.User.Active() {
			continue
		}
		if filter.Specialization != "" && p.Specialization != filter.Specialization {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.FullName < out[j].User.FullName })
	return out
}

func (f *fakeDoctorRepo) FindAllActive(_ *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.active(filter)
	if filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else {
		out = out[:0]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeDoctorRepo) CountActive(_ *gorm.DB, filter *entity.DoctorFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.active(filter))), nil
}

func (f *fakeDoctorRepo) FindSpecializations(*gorm.DB) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range f.profiles {
		if !seen[p.Specialization] {
			seen[p.Specialization] = true
			out = append(out, p.Specialization)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]entity.PatientProfile
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{profiles: map[uuid.UUID]entity.PatientProfile{}}
}

func (f *fakePatientRepo) Create(_ *gorm.DB, p *entity.PatientProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = *p
	return nil
}

func (f *fakePatientRepo) FindByUserID(_ *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePatientRepo) Update(_ *gorm.DB, p *entity.PatientProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.profiles[p.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.PhoneNumber = p.PhoneNumber
	stored.Address = p.Address
	f.profiles[p.UserID] = stored
	return nil
}

type auditEntry struct {
	actorID  *uuid.UUID
	action   string
	entityID string
}

type fakeAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
	err     error
}

func (f *fakeAuditService) LogCreate(_ context.Context, _ *gorm.DB, actorID *uuid.UUID, action, _, entityID string, _ interface{}) error {
	return f.record(actorID, action, entityID)
}

func (f *fakeAuditService) LogUpdate(_ context.Context, _ *gorm.DB, actorID *uuid.UUID, action, _, entityID string, _, _ interface{}) error {
	return f.record(actorID, action, entityID)
}

func (f *fakeAuditService) record(actorID *uuid.UUID, action, entityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, auditEntry{actorID: actorID, action: action, entityID: entityID})
	return nil
}

func (f *fakeAuditService) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.action
	}
	return out
}

type sentNotification struct {
	userID   uuid.UUID
	title    string
	message  string
	category string
	metadata entity.JSON
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(_ context.Context, userID uuid.UUID, title, message, category string, metadata entity.JSON) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{userID: userID, title: title, message: message, category: category, metadata: metadata})
}

func (f *fakeNotifier) all() []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentNotification(nil), f.sent...)
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func newDoctor(name, specialization string) entity.DoctorProfile {
	id := uuid.New()
	return entity.DoctorProfile{
		UserID:         id,
		STRNumber:      "STR-" + id.String()[:8],
		Specialization: specialization,
		User: entity.User{
			ID:       id,
			RoleID:   entity.RoleIDDoctor,
			Email:    id.String()[:8] + "@clinic.test",
			FullName: name,
			IsActive: boolPtr(true),
		},
	}
}

func newPatient(name string) entity.PatientProfile {
	id := uuid.New()
	return entity.PatientProfile{
		UserID: id,
		NIK:    "3174000000000001",
		Gender: entity.GenderFemale,
		User: entity.User{
			ID:       id,
			RoleID:   entity.RoleIDPatient,
			Email:    id.String()[:8] + "@mail.test",
			FullName: name,
			IsActive: boolPtr(true),
		},
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutil.ParseDate(s)
	require.NoError(t, err)
	return d
}
