package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPatientProfile_AgeOn(t *testing.T) {
	p := &PatientProfile{DateOfBirth: time.Date(1990, 10, 20, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 35, p.AgeOn(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 36, p.AgeOn(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, p.AgeOn(time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, (&PatientProfile{}).AgeOn(time.Now()))
}
