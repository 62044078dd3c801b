package fetcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rostra-dev/rostra/pkg/codec"
	"github.com/rostra-dev/rostra/pkg/engine"
	"github.com/rostra-dev/rostra/pkg/events"
	rostralog "github.com/rostra-dev/rostra/pkg/log"
	"github.com/rostra-dev/rostra/pkg/metrics"
	"github.com/rostra-dev/rostra/pkg/storage"
	"github.com/rostra-dev/rostra/pkg/transport"
	"github.com/rostra-dev/rostra/pkg/types"
)

// Default concurrency limits, overridable via Config.
const (
	defaultGlobalFanout = 16
	defaultPerAuthor    = 4
	defaultFetchTimeout = 30 * time.Second
)

// Config tunes a Fetcher's concurrency. Zero values fall back to defaults.
type Config struct {
	GlobalFanout int
	PerAuthor    int
	FetchTimeout time.Duration
}

// Fetcher is the single cooperative task described in the missing-content
// fetcher algorithm: peek the earliest (next_attempt, event_id), sleep or
// act, repeat.
type Fetcher struct {
	engine    *engine.Engine
	store     *storage.Store
	transport transport.Fetcher
	broker    *events.Broker
	log       zerolog.Logger

	globalFanout int
	perAuthor    int
	fetchTimeout time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup

	global chan struct{}

	mu        sync.Mutex
	inFlight  map[types.EventID]bool
	perAuthCh map[types.AuthorID]chan struct{}
}

// New wires a Fetcher to the engine it reports results to, the store it
// reads the schedule from, the transport collaborator it fetches through,
// and the broker it wakes on.
func New(eng *engine.Engine, store *storage.Store, tp transport.Fetcher, broker *events.Broker, cfg Config) *Fetcher {
	if cfg.GlobalFanout <= 0 {
		cfg.GlobalFanout = defaultGlobalFanout
	}
	if cfg.PerAuthor <= 0 {
		cfg.PerAuthor = defaultPerAuthor
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}

	return &Fetcher{
		engine:       eng,
		store:        store,
		transport:    tp,
		broker:       broker,
		log:          rostralog.WithComponent("fetcher"),
		globalFanout: cfg.GlobalFanout,
		perAuthor:    cfg.PerAuthor,
		fetchTimeout: cfg.FetchTimeout,
		stopCh:       make(chan struct{}),
		global:       make(chan struct{}, cfg.GlobalFanout),
		inFlight:     make(map[types.EventID]bool),
		perAuthCh:    make(map[types.AuthorID]chan struct{}),
	}
}

// Start begins the fetcher's loop in a background goroutine.
func (f *Fetcher) Start() {
	f.wg.Add(1)
	go f.run()
}

// Stop signals the loop to exit and waits for in-flight fetches to settle.
func (f *Fetcher) Stop() {
	close(f.stopCh)
	f.wg.Wait()
}

func (f *Fetcher) run() {
	defer f.wg.Done()

	sub := f.broker.Subscribe()
	defer f.broker.Unsubscribe(sub)

	for {
		nextAttempt, id, ok, err := f.peek()
		if err != nil {
			f.log.Error().Err(err).Msg("peek missing-content queue failed")
			if !f.sleepOrWake(sub, 5*time.Second) {
				return
			}
			continue
		}

		if !ok {
			select {
			case <-sub:
				continue
			case <-f.stopCh:
				return
			}
		}

		now := uint64(time.Now().Unix())
		if nextAttempt > now {
			if !f.sleepOrWake(sub, time.Duration(nextAttempt-now)*time.Second) {
				return
			}
			continue
		}

		if !f.dispatch(id) {
			// Already in flight or no fanout slot free; avoid busy-looping
			// on the same head-of-queue entry.
			if !f.sleepOrWake(sub, 100*time.Millisecond) {
				return
			}
		}
	}
}

// sleepOrWake blocks for d or until a wake notification or stop arrives.
// Returns false if the caller should exit (stop fired).
func (f *Fetcher) sleepOrWake(sub events.Subscriber, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-sub:
		return true
	case <-f.stopCh:
		return false
	}
}

func (f *Fetcher) peek() (nextAttempt uint64, id types.EventID, ok bool, err error) {
	err = f.store.View(func(tx *storage.Tx) error {
		nextAttempt, id, ok = tx.PeekEarliestContentFetch()
		return nil
	})
	return
}

// dispatch fans id out to a goroutine if a global and per-author slot are
// free and id is not already being attempted. Returns false if it declined
// to dispatch.
func (f *Fetcher) dispatch(id types.EventID) bool {
	f.mu.Lock()
	if f.inFlight[id] {
		f.mu.Unlock()
		return false
	}

	raw, err := f.getEventRaw(id)
	if err != nil {
		f.mu.Unlock()
		f.log.Error().Err(err).Msg("read event for fetch dispatch failed")
		return false
	}
	env, _, err := codec.Decode(raw)
	if err != nil {
		f.mu.Unlock()
		f.log.Error().Err(err).Msg("decode event for fetch dispatch failed")
		return false
	}

	authCh, exists := f.perAuthCh[env.Author]
	if !exists {
		authCh = make(chan struct{}, f.perAuthor)
		f.perAuthCh[env.Author] = authCh
	}
	f.inFlight[id] = true
	f.mu.Unlock()

	select {
	case f.global <- struct{}{}:
	default:
		f.clearInFlight(id)
		return false
	}
	select {
	case authCh <- struct{}{}:
	default:
		<-f.global
		f.clearInFlight(id)
		return false
	}

	f.wg.Add(1)
	go f.attempt(id, env.ContentHash, env.ContentLen, authCh)
	return true
}

func (f *Fetcher) clearInFlight(id types.EventID) {
	f.mu.Lock()
	delete(f.inFlight, id)
	f.mu.Unlock()
}

func (f *Fetcher) getEventRaw(id types.EventID) ([]byte, error) {
	var raw []byte
	err := f.store.View(func(tx *storage.Tx) error {
		var err error
		raw, err = tx.GetEvent(id)
		return err
	})
	return raw, err
}

func (f *Fetcher) attempt(id types.EventID, hash types.ContentHash, contentLen uint32, authCh chan struct{}) {
	defer f.wg.Done()
	defer func() {
		<-authCh
		<-f.global
		f.clearInFlight(id)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), f.fetchTimeout)
	defer cancel()

	timer := metrics.NewTimer()
	data, err := f.transport.Fetch(ctx, hash, contentLen)
	timer.ObserveDuration(metrics.FetchDuration)

	if err != nil {
		metrics.FetchAttemptsTotal.WithLabelValues("failure").Inc()
		if rerr := f.engine.RecordFailedContentFetch(id, time.Now()); rerr != nil && !errors.Is(rerr, engine.ErrUnknownEvent) {
			f.log.Error().Err(rerr).Msg("record failed content fetch failed")
		}
		return
	}

	if perr := f.engine.ProcessEventContent(id, data); perr != nil {
		switch {
		case errors.Is(perr, engine.ErrHashMismatch), errors.Is(perr, engine.ErrInvalidContent):
			// Verified-wrong or unparseable bytes: state already moved to
			// Invalid; nothing left to retry.
		case errors.Is(perr, engine.ErrAlreadyProcessed):
			// Another attempt (or an out-of-band insert) won the race.
		default:
			f.log.Error().Err(perr).Msg("process fetched content failed")
		}
		return
	}

	metrics.FetchAttemptsTotal.WithLabelValues("success").Inc()
}
