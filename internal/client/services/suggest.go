package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/grocerycompare/internal/client/cache"
	"github.com/dmitrijs2005/grocerycompare/internal/client/models"
	"github.com/dmitrijs2005/grocerycompare/internal/logging"
)

const (
	DefaultSuggestDelay     = 300 * time.Millisecond
	DefaultSuggestMinLength = 2
)

// SuggestFetcher is the backend call behind the autocomplete.
type SuggestFetcher interface {
	Suggest(ctx context.Context, query string) ([]models.Suggestion, error)
}

// Snapshot is the autocomplete state handed to OnChange. Index is -1 when
// nothing is highlighted.
type Snapshot struct {
	Query   string
	Items   []models.Suggestion
	Index   int
	Visible bool
}

type SuggesterOptions struct {
	Delay     time.Duration
	MinLength int
	Cache     *cache.Suggestions
	Log       logging.Logger
	// OnChange is called after every list or selection change, outside the
	// suggester's lock.
	OnChange func(Snapshot)
}

type stopper interface {
	Stop() bool
}

// Suggester debounces keystrokes into suggestion fetches. Only the latest
// scheduled fetch is issued per burst, and a response is applied only if
// no Update happened since it was scheduled.
type Suggester struct {
	fetch     SuggestFetcher
	delay     time.Duration
	minLength int
	cache     *cache.Suggestions
	log       logging.Logger
	onChange  func(Snapshot)
	afterFunc func(time.Duration, func()) stopper

	ctx    context.Context
	cancel context.CancelFunc
	fence  Fence

	mu      sync.Mutex
	timer   stopper
	query   string
	items   []models.Suggestion
	index   int
	visible bool
}

func NewSuggester(f SuggestFetcher, opts SuggesterOptions) *Suggester {
	if opts.Delay <= 0 {
		opts.Delay = DefaultSuggestDelay
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultSuggestMinLength
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Suggester{
		fetch:     f,
		delay:     opts.Delay,
		minLength: opts.MinLength,
		cache:     opts.Cache,
		log:       opts.Log,
		onChange:  opts.OnChange,
		afterFunc: func(d time.Duration, fn func()) stopper { return time.AfterFunc(d, fn) },
		ctx:       ctx,
		cancel:    cancel,
		index:     -1,
	}
}

// Update handles an input change.
func (s *Suggester) Update(query string) {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	gen := s.fence.Next()
	s.query = q

	if utf8.RuneCountInString(q) < s.minLength {
		s.items = nil
		s.visible = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return
	}

	s.timer = s.afterFunc(s.delay, func() { s.run(gen, q) })
	s.mu.Unlock()
}

func (s *Suggester) run(gen uint64, q string) {
	if !s.fence.IsCurrent(gen) {
		return
	}

	items, cached := s.cache.Get(s.ctx, q)
	var err error
	if !cached {
		items, err = s.fetch.Suggest(s.ctx, q)
		if err == nil {
			if cerr := s.cache.Put(s.ctx, q, items); cerr != nil {
				s.log.Debug(s.ctx, "cache suggestions", "error", cerr)
			}
		}
	}

	s.mu.Lock()
	if !s.fence.IsCurrent(gen) {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if err != nil {
		s.log.Warn(s.ctx, "fetch suggestions", "query", q, "error", err)
		s.items = nil
	} else {
		s.items = items
		s.visible = true
		s.index = -1
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Next moves the highlight down, stopping at the last item.
func (s *Suggester) Next() {
	s.move(func(i, n int) int {
		if i < n-1 {
			return i + 1
		}
		return i
	})
}

// Prev moves the highlight up; from the first item it clears the highlight.
func (s *Suggester) Prev() {
	s.move(func(i, n int) int {
		if i > 0 {
			return i - 1
		}
		return -1
	})
}

func (s *Suggester) move(step func(i, n int) int) {
	s.mu.Lock()
	if !s.visible || len(s.items) == 0 {
		s.mu.Unlock()
		return
	}
	s.index = step(s.index, len(s.items))
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Selected returns the highlighted suggestion, if any.
func (s *Suggester) Selected() (models.Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible || s.index < 0 || s.index >= len(s.items) {
		return models.Suggestion{}, false
	}
	return s.items[s.index], true
}

// Reset hides the list and clears the highlight, keeping the items.
func (s *Suggester) Reset() {
	s.mu.Lock()
	s.visible = false
	s.index = -1
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Suggester) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close cancels the pending timer and any in-flight fetch. Later responses
// are discarded.
func (s *Suggester) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.fence.Close()
	s.mu.Unlock()
	s.cancel()
}

func (s *Suggester) snapshotLocked() Snapshot {
	items := make([]models.Suggestion, len(s.items))
	copy(items, s.items)
	return Snapshot{Query: s.query, Items: items, Index: s.index, Visible: s.visible}
}

func (s *Suggester) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
