// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package forecast

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/apex/log"
)

const (
	// DefaultDebounce is how long the keyword must be stable before a search.
	DefaultDebounce = 500 * time.Millisecond
	// MinKeywordLength is the shortest non-empty keyword that is searched.
	MinKeywordLength = 3
)

// SearchResult is one emission of a Searcher. A cleared result (empty
// keyword) has a nil Forecast and a nil Err.
type SearchResult struct {
	Keyword  string
	Forecast *CityForecast
	Err      error
}

// Cleared reports whether r is the answer to an empty keyword.
func (r SearchResult) Cleared() bool {
	return r.Keyword == "" && r.Forecast == nil && r.Err == nil
}

// SearchOption customizes a Searcher.
type SearchOption func(*Searcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) SearchOption {
	return func(s *Searcher) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithDays sets the day count of every query.
func WithDays(days int) SearchOption {
	return func(s *Searcher) { s.days = days }
}

// Searcher turns a stream of raw keywords into forecast results. Keywords
// shorter than MinKeywordLength are ignored unless empty, consecutive
// duplicates are dropped, and a search starts only after the debounce period.
// A newer search cancels the one in flight, whose result is never emitted.
type Searcher struct {
	exec     Executor
	debounce time.Duration
	days     int

	in         chan string
	out        chan SearchResult
	done       chan struct{}
	finish     chan struct{}
	stopped    chan struct{}
	once       sync.Once
	finishOnce sync.Once
}

// NewSearcher starts a Searcher over exec. Close must be called to release it.
func NewSearcher(exec Executor, opts ...SearchOption) *Searcher {
	s := &Searcher{
		exec:     exec,
		debounce: DefaultDebounce,
		days:     DefaultNumberOfDay,
		in:       make(chan string),
		out:      make(chan SearchResult, 1),
		done:     make(chan struct{}),
		finish:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s
}

// Submit feeds a keyword. It is a no-op after Finish or Close.
func (s *Searcher) Submit(keyword string) {
	select {
	case s.in <- keyword:
	case <-s.finish:
	case <-s.done:
	}
}

// Results delivers search outcomes. It is closed after Close.
func (s *Searcher) Results() <-chan SearchResult {
	return s.out
}

// Finish ends the input. A keyword still inside its debounce period is
// searched at once, the search in flight is allowed to complete, and Results
// is closed after its outcome is delivered.
func (s *Searcher) Finish() {
	s.finishOnce.Do(func() { close(s.finish) })
}

// Close cancels any in-flight search and stops the Searcher.
func (s *Searcher) Close() {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
}

func accepted(keyword string) bool {
	return keyword == "" || utf8.RuneCountInString(keyword) >= MinKeywordLength
}

func (s *Searcher) run() {
	defer close(s.stopped)
	defer close(s.out)

	var (
		last      string
		haveLast  bool
		pending   string
		timer     *time.Timer
		timerC    <-chan time.Time
		current   *Task[CityForecast]
		currentK  string
		taskDone  <-chan struct{}
		in        = s.in
		finishC   = (<-chan struct{})(s.finish)
		finishing bool
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		if current != nil {
			current.Cancel()
		}
	}()

	// fire starts the search for the pending keyword, cancelling the one in
	// flight. It reports false once the Searcher is closed.
	fire := func() bool {
		timerC = nil
		if current != nil {
			current.Cancel()
			current, taskDone = nil, nil
		}

		if pending == "" {
			return s.emit(SearchResult{})
		}

		q := NewQuery(pending, s.days)
		log.Debugf("searching for %q", q.Key())
		currentK = pending
		current = Go(context.Background(), func(ctx context.Context) (CityForecast, error) {
			return s.exec.Execute(ctx, q)
		})
		taskDone = current.Done()
		return true
	}

	for {
		if finishing && timerC == nil && current == nil {
			return
		}

		select {
		case <-s.done:
			return

		case <-finishC:
			finishing, finishC, in = true, nil, nil
			if timerC != nil {
				timer.Stop()
				if !fire() {
					return
				}
			}

		case kw := <-in:
			if !accepted(kw) || (haveLast && kw == last) {
				continue
			}
			last, haveLast = kw, true
			pending = kw
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Stop()
				timer.Reset(s.debounce)
			}
			timerC = timer.C

		case <-timerC:
			if !fire() {
				return
			}

		case <-taskDone:
			f, err := current.Result()
			current, taskDone = nil, nil

			res := SearchResult{Keyword: currentK}
			if err != nil {
				res.Err = Classify(err)
				if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
					res.Err = ErrSomethingWentWrong
				}
			} else {
				res.Forecast = &f
			}
			if !s.emit(res) {
				return
			}
		}
	}
}

func (s *Searcher) emit(r SearchResult) bool {
	select {
	case s.out <- r:
		return true
	case <-s.done:
		return false
	}
}
