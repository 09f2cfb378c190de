package domain

import "github.com/google/uuid"

// AggregateRoot is the consistency boundary of a cluster of entities.
// Aggregates record domain events that are published after a successful commit.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides event recording and optimistic versioning.
type BaseAggregateRoot struct {
	BaseEntity
	domainEvents []DomainEvent
	version      int
}

// NewBaseAggregateRoot creates an aggregate root with a fresh identity.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// NewBaseAggregateRootWithID creates an aggregate root with the given ID.
func NewBaseAggregateRootWithID(id uuid.UUID) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntityWithID(id)}
}

// RehydrateBaseAggregateRoot rebuilds an aggregate from persisted state.
// Rehydrated aggregates start with no pending events.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

// DomainEvents returns the uncommitted events recorded on this aggregate.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops all recorded events, typically after publishing.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// AddDomainEvent records an event to be published on commit.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// Version returns the aggregate version for optimistic concurrency.
func (a *BaseAggregateRoot) Version() int { return a.version }

// IncrementVersion bumps the aggregate version.
func (a *BaseAggregateRoot) IncrementVersion() { a.version++ }
