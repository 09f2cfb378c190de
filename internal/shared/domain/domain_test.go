package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrzs/Timeboard/internal/shared/domain"
)

func TestNewBaseEntity(t *testing.T) {
	before := time.Now().UTC()
	entity := domain.NewBaseEntity()
	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, entity.ID())
	require.False(t, entity.CreatedAt().Before(before))
	require.False(t, entity.CreatedAt().After(after))
	assert.Equal(t, entity.CreatedAt(), entity.UpdatedAt())
}

func TestBaseEntityTouch(t *testing.T) {
	entity := domain.NewBaseEntity()
	original := entity.UpdatedAt()

	time.Sleep(time.Millisecond)
	entity.Touch()

	assert.True(t, entity.UpdatedAt().After(original))
}

func TestRehydrateBaseEntity(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	entity := domain.RehydrateBaseEntity(id, created, updated)
	assert.Equal(t, id, entity.ID())
	assert.Equal(t, created, entity.CreatedAt())
	assert.Equal(t, updated, entity.UpdatedAt())
}

func TestAggregateEventRecording(t *testing.T) {
	agg := domain.NewBaseAggregateRoot()
	require.Empty(t, agg.DomainEvents())

	event := domain.NewBaseEvent(agg.ID(), "task", "task.created")
	agg.AddDomainEvent(event)
	require.Len(t, agg.DomainEvents(), 1)
	assert.Equal(t, "task.created", agg.DomainEvents()[0].RoutingKey())

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestAggregateVersioning(t *testing.T) {
	agg := domain.NewBaseAggregateRoot()
	assert.Zero(t, agg.Version())
	agg.IncrementVersion()
	assert.Equal(t, 1, agg.Version())

	rehydrated := domain.RehydrateBaseAggregateRoot(domain.NewBaseEntity(), 7)
	assert.Equal(t, 7, rehydrated.Version())
	assert.Empty(t, rehydrated.DomainEvents())
}

func TestBaseEventEnvelope(t *testing.T) {
	aggregateID := uuid.New()
	event := domain.NewBaseEvent(aggregateID, "calendar", "calendar.synced")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "calendar", event.AggregateType())
	assert.Equal(t, "calendar.synced", event.RoutingKey())
	assert.False(t, event.OccurredAt().IsZero())
}
