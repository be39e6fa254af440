// Package repository holds the in-memory stores behind the services.
// Nothing here touches disk: persistence is deliberately out of scope,
// state exists only for the lifetime of the process.
package repository

import (
	"context"
	"time"

	"chargectl"
)

type StateRepo interface {
	Save(ctx context.Context, s chargectl.ChargerStatus) error
	Load(ctx context.Context) (chargectl.ChargerStatus, error)
}

type EventRepo interface {
	Append(ctx context.Context, e chargectl.ChargerEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]chargectl.ChargerEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
}

// defaultEventCapacity bounds the in-memory event ring.
const defaultEventCapacity = 1000

func NewRepository() *Repository {
	return &Repository{
		StateRepo: NewStateMemory(),
		EventRepo: NewEventMemory(defaultEventCapacity),
	}
}
