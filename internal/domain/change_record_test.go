package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

func TestChangeRecord_ConflictsWith_SameEntityDifferentDevice(t *testing.T) {
	a := domain.ChangeRecord{EntityKind: domain.EntityBook, EntityID: "book-1", DeviceID: "device-a"}
	b := domain.ChangeRecord{EntityKind: domain.EntityBook, EntityID: "book-1", DeviceID: "device-b"}
	assert.True(t, a.ConflictsWith(b))
}

func TestChangeRecord_ConflictsWith_SameDeviceNoConflict(t *testing.T) {
	a := domain.ChangeRecord{EntityKind: domain.EntityBook, EntityID: "book-1", DeviceID: "device-a"}
	b := domain.ChangeRecord{EntityKind: domain.EntityBook, EntityID: "book-1", DeviceID: "device-a"}
	assert.False(t, a.ConflictsWith(b))
}

func TestChangeRecord_ConflictsWith_DifferentEntity(t *testing.T) {
	a := domain.ChangeRecord{EntityKind: domain.EntityBook, EntityID: "book-1", DeviceID: "device-a"}
	b := domain.ChangeRecord{EntityKind: domain.EntityBook, EntityID: "book-2", DeviceID: "device-b"}
	assert.False(t, a.ConflictsWith(b))
}
