package pager

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"imobiliaria/server/internal/models"
)

// ErrRateLimited is returned by a Fetcher when the server answers 429.
// The pager keeps its page marker so the same page is retried later.
var ErrRateLimited = errors.New("rate limited")

// State describes where an incremental feed currently stands.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateExhausted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateExhausted:
		return "exhausted"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Result is one fetched page. Legacy responses that return a bare array
// instead of the pagination envelope come back with Paginated=false and
// count as exactly one page.
type Result struct {
	Items     []models.Property
	Total     int
	HasMore   bool
	Paginated bool
}

// Fetcher retrieves one page of properties for a query.
type Fetcher interface {
	FetchPage(ctx context.Context, query url.Values, page, limit int) (*Result, error)
}

// Options tunes a Pager. Zero values fall back to the defaults.
type Options struct {
	Limit    int
	Throttle time.Duration
	Cooldown time.Duration

	// OnTotal, when set, receives the matching-row total after each
	// successful first-page load. Drives the dashboard counter.
	OnTotal func(total int)
}

const (
	defaultThrottle = 500 * time.Millisecond
	defaultCooldown = 300 * time.Millisecond
)

// Pager accumulates pages of search results the way the infinite-scroll
// views do: one page in flight at a time, viewport triggers throttled,
// append on scroll and replace on filter change. All invariants live
// behind one mutex instead of independently mutated flags.
type Pager struct {
	fetcher Fetcher
	logger  *logrus.Logger
	opts    Options

	mu          sync.Mutex
	state       State
	items       []models.Property
	query       url.Values
	generation  int
	page        int // last successfully loaded page, 0 before the first
	total       int
	hasMore     bool
	inFlight    bool
	cooling     bool
	lastTrigger time.Time
}

func New(fetcher Fetcher, logger *logrus.Logger, opts Options) *Pager {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.Limit <= 0 {
		opts.Limit = 12
	}
	if opts.Throttle <= 0 {
		opts.Throttle = defaultThrottle
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = defaultCooldown
	}
	return &Pager{
		fetcher: fetcher,
		logger:  logger,
		opts:    opts,
		state:   StateIdle,
	}
}

// Reset clears the accumulated results and loads the first page for the
// given query. It is the entry point for mount and for every filter or
// search change. A response still in flight for the previous query is
// discarded by the generation check when it lands.
func (p *Pager) Reset(ctx context.Context, query url.Values) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.query = cloneValues(query)
	p.items = nil
	p.page = 0
	p.total = 0
	p.hasMore = true
	p.inFlight = true
	p.state = StateLoading
	p.mu.Unlock()

	p.fetch(ctx, gen, p.query, 1, false)
}

// Trigger requests the next page, as when the viewport sentinel becomes
// visible. The fetch only starts when no request is in flight, the
// cooldown has expired, more pages exist, and the throttle interval has
// elapsed since the last accepted trigger. Reports whether a fetch ran.
func (p *Pager) Trigger(ctx context.Context) bool {
	p.mu.Lock()
	if p.inFlight || p.cooling || !p.hasMore || p.page == 0 {
		p.mu.Unlock()
		return false
	}
	if time.Since(p.lastTrigger) < p.opts.Throttle {
		p.mu.Unlock()
		return false
	}

	next := p.page + 1
	p.lastTrigger = time.Now()
	p.inFlight = true
	p.state = StateLoading
	gen := p.generation
	query := p.query
	p.mu.Unlock()

	p.fetch(ctx, gen, query, next, true)
	return true
}

// fetch performs one page request and applies the resulting transition.
// Every outcome ends in a state change; nothing propagates to the caller.
func (p *Pager) fetch(ctx context.Context, gen int, query url.Values, page int, appendMode bool) {
	res, err := p.fetcher.FetchPage(ctx, query, page, p.opts.Limit)

	var notifyTotal = -1

	p.mu.Lock()
	if gen != p.generation {
		// Stale response for an abandoned query; the reset that
		// replaced it owns the flags now.
		p.mu.Unlock()
		return
	}

	p.inFlight = false
	p.startCooldown()

	switch {
	case errors.Is(err, ErrRateLimited):
		// Keep the page marker so the next trigger retries this page.
		p.logger.WithField("page", page).Debug("Page fetch rate limited, will retry")
		if p.page == 0 {
			p.state = StateIdle
		} else {
			p.state = StateLoaded
		}
	case err != nil:
		if !appendMode {
			p.items = nil
		}
		p.state = StateErrored
		p.logger.WithError(err).WithField("page", page).Error("Page fetch failed")
	default:
		if appendMode {
			p.items = append(p.items, res.Items...)
		} else {
			p.items = res.Items
			if p.opts.OnTotal != nil {
				notifyTotal = res.Total
			}
		}
		p.page = page
		p.total = res.Total
		p.hasMore = res.HasMore
		if p.hasMore {
			p.state = StateLoaded
		} else {
			p.state = StateExhausted
		}
	}
	p.mu.Unlock()

	if notifyTotal >= 0 {
		p.opts.OnTotal(notifyTotal)
	}
}

// startCooldown holds trigger capacity for a short moment after a fetch
// completes, absorbing bursts of overlapping sentinel events. Caller
// must hold the mutex.
func (p *Pager) startCooldown() {
	p.cooling = true
	time.AfterFunc(p.opts.Cooldown, func() {
		p.mu.Lock()
		p.cooling = false
		p.mu.Unlock()
	})
}

// Items returns a copy of the accumulated results in arrival order.
func (p *Pager) Items() []models.Property {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Property, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Page returns the last successfully loaded page number, 0 before the
// first load completes.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Total returns the matching-row total reported by the last successful
// fetch. For legacy bare-array responses this equals the item count.
func (p *Pager) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
