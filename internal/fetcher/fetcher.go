// Package fetcher implements the throttled refresh pipeline that turns the
// latest Nightscout entry into a compact status string such as "5.0→".
package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/glucobar/internal/glucose"
	"github.com/five82/glucobar/internal/logging"
	"github.com/five82/glucobar/internal/nightscout"
	"github.com/five82/glucobar/internal/state"
)

// DefaultRefreshPeriod is the minimum reporting interval of most CGMs.
const DefaultRefreshPeriod = 60 * time.Second

// Outcome describes what a refresh call did.
type Outcome int

const (
	OutcomeRefreshed Outcome = iota
	OutcomeThrottled
	OutcomeBusy
	OutcomeTransportError
	OutcomeParseError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRefreshed:
		return "refreshed"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeBusy:
		return "busy"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Options configure a Fetcher.
type Options struct {
	Client        nightscout.LatestFetcher
	Unit          glucose.Unit
	Policy        glucose.Policy
	RefreshPeriod time.Duration    // zero uses DefaultRefreshPeriod
	Now           func() time.Time // nil uses time.Now
	Logger        *slog.Logger     // nil discards
	Store         *state.Store     // nil creates a private store
}

// Fetcher polls the latest entry and keeps the rendered display text.
type Fetcher struct {
	client        nightscout.LatestFetcher
	unit          glucose.Unit
	policy        glucose.Policy
	refreshPeriod time.Duration
	now           func() time.Time
	logger        *slog.Logger
	store         *state.Store

	inFlight atomic.Bool

	mu              sync.Mutex
	lastRefreshedAt time.Time
}

// New builds a Fetcher. The first Refresh always reaches the network.
func New(opts Options) *Fetcher {
	period := opts.RefreshPeriod
	if period <= 0 {
		period = DefaultRefreshPeriod
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	policy := opts.Policy
	if policy == (glucose.Policy{}) {
		policy = glucose.DefaultPolicy()
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore(opts.Unit, policy.StaleAfter)
	}
	return &Fetcher{
		client:        opts.Client,
		unit:          opts.Unit,
		policy:        policy,
		refreshPeriod: period,
		now:           now,
		logger:        logger,
		store:         store,
	}
}

// Refresh fetches a new reading unless one was fetched within the refresh
// period or another refresh is running. Failures are recorded in the store,
// never returned.
func (f *Fetcher) Refresh(ctx context.Context) Outcome {
	return f.refresh(ctx, false)
}

// ForceRefresh is Refresh without the throttle.
func (f *Fetcher) ForceRefresh(ctx context.Context) Outcome {
	return f.refresh(ctx, true)
}

// Text returns the last rendered display text.
func (f *Fetcher) Text() string {
	return f.store.Snapshot().Text
}

// LastRefreshed returns when the last successful fetch happened.
func (f *Fetcher) LastRefreshed() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRefreshedAt
}

// Store exposes the snapshot store the fetcher writes to.
func (f *Fetcher) Store() *state.Store {
	return f.store
}

func (f *Fetcher) refresh(ctx context.Context, force bool) Outcome {
	if !f.inFlight.CompareAndSwap(false, true) {
		f.logger.Debug("skipping refresh, previous fetch still running")
		return OutcomeBusy
	}
	defer f.inFlight.Store(false)

	now := f.now()
	if !force && !f.needsRefresh(now) {
		f.logger.Debug("skipping refresh", "since_last", now.Sub(f.LastRefreshed()).Round(time.Second))
		return OutcomeThrottled
	}

	entry, err := f.client.FetchLatest(ctx)
	if err != nil {
		return f.fail(err)
	}

	fetchedAt := f.now()
	reading := glucose.NewReading(entry.SGV, entry.Direction, entry.Time, fetchedAt, f.policy)
	text := reading.Text(f.unit)

	f.mu.Lock()
	f.lastRefreshedAt = fetchedAt
	f.mu.Unlock()
	f.store.Update(reading, text)

	f.logger.Info("reading refreshed",
		"text", text,
		"mgdl", reading.Mgdl,
		"mmol", glucose.FormatMmol(reading.Mgdl),
		"direction", string(reading.Direction),
		"timestamp", reading.Timestamp,
		"stale", reading.Stale,
		"range", reading.Range.String(),
	)
	if !reading.Direction.Known() {
		f.logger.Warn("unknown trend code", "direction", string(reading.Direction))
	}
	return OutcomeRefreshed
}

func (f *Fetcher) needsRefresh(now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return now.Sub(f.lastRefreshedAt) >= f.refreshPeriod
}

func (f *Fetcher) fail(err error) Outcome {
	var pe *nightscout.ParseError
	if errors.As(err, &pe) {
		f.store.Fail(err)
		f.logger.Warn("nightscout response unusable, keeping last reading", "error", err)
		return OutcomeParseError
	}
	f.store.FailWith(err, state.ErrorMarker)
	f.logger.Warn("nightscout request failed", "error", err)
	return OutcomeTransportError
}
