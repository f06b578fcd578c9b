package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go-medical-appointment/pkg/timeutil"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultLockIdleTTL is how long a (doctor, date) lock must be unused before it is reaped
	DefaultLockIdleTTL = 10 * time.Minute

	defaultLockCleanupInterval = 10 * time.Minute
)

// BookingLocker serializes booking attempts for the same doctor and calendar date.
//
// The check-then-insert sequence (list appointments, detect conflict, insert)
// must run under Lock for its (doctor, date) key. Locks for different keys
// never contend. Idle locks are reaped in the background; call Stop on shutdown.
type BookingLocker struct {
	log             *logrus.Logger
	idleTTL         time.Duration
	cleanupInterval time.Duration

	locks sync.Map // map[bookingLockKey]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type bookingLockKey struct {
	doctorID uuid.UUID
	date     string
}

func (k bookingLockKey) String() string {
	return fmt.Sprintf("%s@%s", k.doctorID, k.date)
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // unix nanos
}

// NewBookingLocker starts the cleanup goroutine. A non-positive idleTTL uses DefaultLockIdleTTL.
func NewBookingLocker(log *logrus.Logger, idleTTL time.Duration) *BookingLocker {
	if idleTTL <= 0 {
		idleTTL = DefaultLockIdleTTL
	}
	interval := defaultLockCleanupInterval
	if idleTTL < interval {
		interval = idleTTL
	}

	l := &BookingLocker{
		log:             log,
		idleTTL:         idleTTL,
		cleanupInterval: interval,
		stopChan:        make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Stop shuts down the cleanup goroutine. Safe to call multiple times.
func (l *BookingLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("BookingLocker stopped")
	}
}

// Lock blocks until the caller holds the lock for (doctorID, date) and returns the release func.
func (l *BookingLocker) Lock(doctorID uuid.UUID, date time.Time) func() {
	key := bookingLockKey{doctorID: doctorID, date: timeutil.FormatDate(date)}

	for {
		value, _ := l.locks.LoadOrStore(key, &mutexWithTimestamp{})
		mt := value.(*mutexWithTimestamp)
		mt.mu.Lock()

		// The reaper may have removed this mutex between LoadOrStore and Lock.
		// Holding a mutex that is no longer in the map would not exclude anyone.
		if current, ok := l.locks.Load(key); !ok || current != mt {
			mt.mu.Unlock()
			continue
		}

		mt.lastUsed.Store(time.Now().UnixNano())
		return func() {
			mt.lastUsed.Store(time.Now().UnixNano())
			mt.mu.Unlock()
		}
	}
}

// Len returns the number of tracked locks
func (l *BookingLocker) Len() int {
	n := 0
	l.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (l *BookingLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			l.log.Debug("Booking lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			l.reapIdle(time.Now())
		}
	}
}

// reapIdle removes locks unused since now-idleTTL. Locks currently held are skipped.
func (l *BookingLocker) reapIdle(now time.Time) int {
	cutoff := now.Add(-l.idleTTL).UnixNano()
	var reaped int

	l.locks.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff && l.locks.CompareAndDelete(key, mt) {
				reaped++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if reaped > 0 {
		l.log.Debugf("Reaped %d idle booking locks", reaped)
	}
	return reaped
}
