package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"busticket-backend/internal/infrastructure/cache"
)

// SeatLocker fences a (trip, seat) pair for the duration of the
// booking transaction. Fast-fail only: the tickets unique index is the
// authoritative guard, the lock just keeps racing requests from both
// reaching the insert.
type SeatLocker interface {
	// LockSeats takes every seat or none. Returns the conflicting seat
	// when one is already held.
	LockSeats(ctx context.Context, tripID uuid.UUID, seats []string, owner string) (conflict string, err error)
	UnlockSeats(ctx context.Context, tripID uuid.UUID, seats []string, owner string)
}

type redisSeatLocker struct {
	redis *cache.RedisClient
	ttl   time.Duration
}

func NewRedisSeatLocker(redis *cache.RedisClient, ttl time.Duration) SeatLocker {
	return &redisSeatLocker{redis: redis, ttl: ttl}
}

func seatLockKey(tripID uuid.UUID, seat string) string {
	return fmt.Sprintf("seatlock:%s:%s", tripID, seat)
}

func (l *redisSeatLocker) LockSeats(ctx context.Context, tripID uuid.UUID, seats []string, owner string) (string, error) {
	acquired := make([]string, 0, len(seats))
	for _, seat := range seats {
		ok, err := l.redis.AcquireLock(ctx, seatLockKey(tripID, seat), owner, l.ttl)
		if err != nil {
			l.UnlockSeats(ctx, tripID, acquired, owner)
			return "", err
		}
		if !ok {
			l.UnlockSeats(ctx, tripID, acquired, owner)
			return seat, nil
		}
		acquired = append(acquired, seat)
	}
	return "", nil
}

func (l *redisSeatLocker) UnlockSeats(ctx context.Context, tripID uuid.UUID, seats []string, owner string) {
	for _, seat := range seats {
		// Best effort: an unreleased lock expires on its own
		_ = l.redis.ReleaseLock(ctx, seatLockKey(tripID, seat), owner)
	}
}
