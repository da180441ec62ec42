package quota

import (
	"context"
	"log"
	"sync"
	"time"
)

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

type Config struct {
	Window       time.Duration
	MaxRequests  int
	StoreTimeout time.Duration // Deadline for the count query (default: 3s)
	Exempt       []string      // Action names that never consume quota
	QueueSize    int           // Pending append buffer (default: 256)
}

// Ledger decides admission from a windowed count of past requests and
// records admitted ones through a detached writer, so a slow or failing
// append never holds up the response path.
type Ledger struct {
	store        Store
	window       time.Duration
	maxRequests  int
	storeTimeout time.Duration
	exempt       map[string]struct{}

	writes chan Record
	errs   chan error
	wg     sync.WaitGroup

	closeOnce sync.Once
}

func NewLedger(store Store, cfg Config) *Ledger {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 3 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}

	exempt := make(map[string]struct{}, len(cfg.Exempt))
	for _, action := range cfg.Exempt {
		exempt[action] = struct{}{}
	}

	l := &Ledger{
		store:        store,
		window:       cfg.Window,
		maxRequests:  cfg.MaxRequests,
		storeTimeout: cfg.StoreTimeout,
		exempt:       exempt,
		writes:       make(chan Record, cfg.QueueSize),
		errs:         make(chan error, 1),
	}

	l.wg.Add(1)
	go l.writer()

	return l
}

// Admit decides whether a request from identity may proceed. Exempt
// actions are always allowed and leave no record. The check-then-append
// sequence is deliberately not atomic: concurrent requests can overshoot
// the cap by at most the number in flight, which is acceptable for an
// abuse deterrent.
//
// If the count query fails the ledger fails open: availability of the
// mentoring flow outweighs strict enforcement.
func (l *Ledger) Admit(ctx context.Context, identity, action string) Decision {
	if l.Exempt(action) {
		return Allow
	}

	now := time.Now()

	countCtx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	count, err := l.store.CountSince(countCtx, identity, now.Add(-l.window))
	if err != nil {
		log.Printf("quota: count failed for %s, failing open: %v", identity, err)
		l.enqueue(Record{Identity: identity, Action: action, At: now})
		return Allow
	}

	if count >= int64(l.maxRequests) {
		log.Printf("quota: %s over limit (%d/%d in %v)", identity, count, l.maxRequests, l.window)
		return Deny
	}

	l.enqueue(Record{Identity: identity, Action: action, At: now})
	return Allow
}

// Reports whether action bypasses quota entirely.
func (l *Ledger) Exempt(action string) bool {
	_, ok := l.exempt[action]
	return ok
}

// Usage returns the current windowed count for one identity.
func (l *Ledger) Usage(ctx context.Context, identity string) (int64, error) {
	countCtx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	return l.store.CountSince(countCtx, identity, time.Now().Add(-l.window))
}

func (l *Ledger) Window() time.Duration {
	return l.window
}

func (l *Ledger) MaxRequests() int {
	return l.maxRequests
}

// AppendErrors exposes failed writes for observation. The channel is
// never closed while the ledger is open and sends are non-blocking.
func (l *Ledger) AppendErrors() <-chan error {
	return l.errs
}

// Close stops accepting writes and drains the pending queue.
func (l *Ledger) Close() {
	l.closeOnce.Do(func() {
		close(l.writes)
	})
	l.wg.Wait()
}

func (l *Ledger) enqueue(record Record) {
	select {
	case l.writes <- record:
	default:
		// Queue full: drop the record rather than block the request.
		log.Printf("quota: append queue full, dropping record for %s", record.Identity)
	}
}

func (l *Ledger) writer() {
	defer l.wg.Done()

	for record := range l.writes {
		ctx, cancel := context.WithTimeout(context.Background(), l.storeTimeout)
		err := l.store.Append(ctx, record)
		cancel()

		if err != nil {
			log.Printf("quota: append failed for %s: %v", record.Identity, err)
			select {
			case l.errs <- err:
			default:
			}
		}
	}
}
