package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go-medical-appointment/config"
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/pkg/jwt"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]entity.User
	byEmail map[string]uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]entity.User{}, byEmail: map[string]uuid.UUID{}}
}

func (f *fakeUserRepo) Create(_ *gorm.DB, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[user.Email]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.byID[user.ID] = *user
	f.byEmail[user.Email] = user.ID
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := f.byID[id]
	return &u, nil
}

func (f *fakeUserRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUserRepo) update(id uuid.UUID, apply func(*entity.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	apply(&u)
	f.byID[id] = u
	return nil
}

func (f *fakeUserRepo) UpdateFullName(_ *gorm.DB, id uuid.UUID, fullName string) error {
	return f.update(id, func(u *entity.User) { u.FullName = fullName })
}

func (f *fakeUserRepo) UpdatePassword(_ *gorm.DB, id uuid.UUID, hashedPassword string) error {
	return f.update(id, func(u *entity.User) { u.Password = hashedPassword })
}

func (f *fakeUserRepo) UpdateActive(_ *gorm.DB, id uuid.UUID, active bool) error {
	return f.update(id, func(u *entity.User) { u.IsActive = &active })
}

// put stores a user as is, keeping its ID
func (f *fakeUserRepo) put(u entity.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u.ID
}

// nikCheckingPatientRepo rejects a NIK that is already registered
type nikCheckingPatientRepo struct {
	*fakePatientRepo
}

func (r nikCheckingPatientRepo) Create(db *gorm.DB, p *entity.PatientProfile) error {
	r.mu.Lock()
	for _, existing := range r.profiles {
		if existing.NIK == p.NIK {
			r.mu.Unlock()
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_patient_profiles_nik"}
		}
	}
	r.mu.Unlock()
	return r.fakePatientRepo.Create(db, p)
}

type authFixture struct {
	usecase  AuthUsecase
	mock     sqlmock.Sqlmock
	redis    *miniredis.Miniredis
	jwt      *jwt.JWTService
	users    *fakeUserRepo
	doctors  *fakeDoctorRepo
	patients *fakePatientRepo
	audit    *fakeAuditService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db, mock := newTestDB(t)
	log, _ := newTestLogger()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := &authFixture{
		mock:     mock,
		redis:    mr,
		jwt:      jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: 15 * time.Minute, RefreshExpiry: time.Hour}),
		users:    newFakeUserRepo(),
		doctors:  newFakeDoctorRepo(),
		patients: newFakePatientRepo(),
		audit:    &fakeAuditService{},
	}
	f.usecase = NewAuthUsecase(db, log, f.users, f.doctors, nikCheckingPatientRepo{f.patients}, f.audit, f.jwt, client)
	return f
}

func patientRegistration(email string) *dto.RegisterPatientRequest {
	return &dto.RegisterPatientRequest{
		Email:       email,
		Password:    "secret123",
		FullName:    "Andi Wijaya",
		NIK:         "3174000000000001",
		DateOfBirth: "1990-04-12",
		Gender:      entity.GenderMale,
	}
}

func TestAuthUsecase_RegisterPatient(t *testing.T) {
	f := newAuthFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	user, err := f.usecase.RegisterPatient(context.Background(), patientRegistration(" Andi@Mail.test "))
	require.NoError(t, err)

	assert.Equal(t, "andi@mail.test", user.Email)
	assert.Equal(t, entity.RolePatient, user.Role)
	require.NotNil(t, user.PatientProfile)
	assert.Equal(t, "1990-04-12", user.PatientProfile.DateOfBirth)
	assert.Equal(t, []string{entity.AuditActionUserRegister}, f.audit.actions())

	stored, err := f.users.FindByEmail(nil, "andi@mail.test")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, stored.Active())

	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAuthUsecase_RegisterPatient_Duplicates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.usecase.RegisterPatient(ctx, patientRegistration("andi@mail.test"))
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.usecase.RegisterPatient(ctx, patientRegistration("andi@mail.test"))
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.usecase.RegisterPatient(ctx, patientRegistration("other@mail.test"))
	assert.ErrorIs(t, err, ErrNIKAlreadyExists)

	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAuthUsecase_RegisterPatient_BadDate(t *testing.T) {
	f := newAuthFixture(t)
	req := patientRegistration("andi@mail.test")
	req.DateOfBirth = "12/04/1990"

	_, err := f.usecase.RegisterPatient(context.Background(), req)
	assert.Error(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet(), "no transaction is opened")
}

func TestAuthUsecase_RegisterDoctor(t *testing.T) {
	f := newAuthFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	fee := decimal.RequireFromString("150000.456")
	user, err := f.usecase.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
		Email:           "siti@clinic.test",
		Password:        "secret123",
		FullName:        "Siti Rahma",
		STRNumber:       "STR-001",
		Specialization:  " Cardiology ",
		ConsultationFee: &fee,
		ExperienceYears: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleDoctor, user.Role)
	require.NotNil(t, user.DoctorProfile)
	assert.Equal(t, "Cardiology", user.DoctorProfile.Specialization)
	assert.True(t, decimal.RequireFromString("150000.46").Equal(user.DoctorProfile.ConsultationFee))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAuthUsecase_LoginRefreshLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	registered, err := f.usecase.RegisterPatient(ctx, patientRegistration("andi@mail.test"))
	require.NoError(t, err)

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "ANDI@mail.test", Password: "secret123"})
	require.NoError(t, err)
	assert.EqualValues(t, 900, tokens.ExpiresIn)

	access, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleIDPatient, access.RoleID)
	assert.True(t, f.redis.Exists(jwt.AccessTokenKey(registered.ID, access.TokenID)))

	refresh, err := f.jwt.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)
	ttl := f.redis.TTL(jwt.RefreshTokenKey(registered.ID, refresh.TokenID))
	assert.Equal(t, time.Hour, ttl)

	rotated, err := f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.False(t, f.redis.Exists(jwt.RefreshTokenKey(registered.ID, refresh.TokenID)))

	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	newAccess, err := f.jwt.ValidateToken(rotated.AccessToken)
	require.NoError(t, err)
	newRefresh, err := f.jwt.ValidateToken(rotated.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.usecase.Logout(ctx, registered.ID, newAccess.TokenID, newRefresh.TokenID))
	assert.False(t, f.redis.Exists(jwt.AccessTokenKey(registered.ID, newAccess.TokenID)))
	assert.False(t, f.redis.Exists(jwt.RefreshTokenKey(registered.ID, newRefresh.TokenID)))
	// the first access token is untouched
	assert.True(t, f.redis.Exists(jwt.AccessTokenKey(registered.ID, access.TokenID)))
}

func TestAuthUsecase_Login_Rejects(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	registered, err := f.usecase.RegisterPatient(ctx, patientRegistration("andi@mail.test"))
	require.NoError(t, err)

	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "andi@mail.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "nobody@mail.test", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	f.users.mu.Lock()
	u := f.users.byID[registered.ID]
	u.IsActive = boolPtr(false)
	f.users.byID[registered.ID] = u
	f.users.mu.Unlock()

	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "andi@mail.test", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthUsecase_RefreshToken_Garbage(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.usecase.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: strings.Repeat("x", 40)})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthUsecase_GetCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	registered, err := f.usecase.RegisterPatient(ctx, patientRegistration("andi@mail.test"))
	require.NoError(t, err)

	me, err := f.usecase.GetCurrentUser(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "andi@mail.test", me.Email)
	require.NotNil(t, me.PatientProfile)
	assert.Nil(t, me.DoctorProfile)

	_, err = f.usecase.GetCurrentUser(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthUsecase_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	registered, err := f.usecase.RegisterPatient(ctx, patientRegistration("andi@mail.test"))
	require.NoError(t, err)

	first, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "andi@mail.test", Password: "secret123"})
	require.NoError(t, err)
	second, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "andi@mail.test", Password: "secret123"})
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		err := f.usecase.ChangePassword(ctx, registered.ID, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "Newsecret1"})
		assert.ErrorIs(t, err, ErrInvalidCurrentPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		err := f.usecase.ChangePassword(ctx, uuid.New(), &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "Newsecret1"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.usecase.ChangePassword(ctx, registered.ID, &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "Newsecret1"}))
	assert.Contains(t, f.audit.actions(), entity.AuditActionPasswordChange)

	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "andi@mail.test", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "andi@mail.test", Password: "Newsecret1"})
	require.NoError(t, err)

	// refresh tokens issued before the change no longer work
	for _, tokens := range []*dto.TokenResponse{first, second} {
		_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
		assert.ErrorIs(t, err, ErrTokenRevoked)
	}
	// access tokens live until they expire
	access, err := f.jwt.ValidateToken(first.AccessToken)
	require.NoError(t, err)
	assert.True(t, f.redis.Exists(jwt.AccessTokenKey(registered.ID, access.TokenID)))

	require.NoError(t, f.mock.ExpectationsWereMet())
}
