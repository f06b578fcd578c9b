package repository

import (
	"testing"

	"go-medical-appointment/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientProfileRepository_FindByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientProfileRepository()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "patient_profiles" WHERE user_id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "nik", "gender"}).
			AddRow(userID.String(), "3171234567890001", "F"))
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name"}).
			AddRow(userID.String(), "siti@example.com", "Siti Rahma"))

	profile, err := repo.FindByUserID(db, userID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Siti Rahma", profile.User.FullName)
	assert.Empty(t, profile.User.Password)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientProfileRepository_FindByUserID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientProfileRepository()

	mock.ExpectQuery(`SELECT \* FROM "patient_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	profile, err := repo.FindByUserID(db, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestPatientProfileRepository_Update_ContactOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientProfileRepository()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE "patient_profiles" SET "phone_number"=\$1,"address"=\$2 WHERE "patient_profiles"."user_id" = \$3`).
		WithArgs("081200000001", "", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(db, &entity.PatientProfile{UserID: userID, NIK: "3174000000000001", PhoneNumber: "081200000001"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
