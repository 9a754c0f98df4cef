package network

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Event is one connectivity transition. Subscribers get exactly one
// event per observed transition; the monitor does no debouncing.
type Event struct {
	Online bool
	At     time.Time
}

// Probe answers whether the backend is currently reachable.
type Probe interface {
	Check(ctx context.Context) bool
}

// HTTPProbe checks connectivity by issuing a HEAD request. Any HTTP
// response at all counts as online; only transport failure is offline.
type HTTPProbe struct {
	client *http.Client
	url    string
}

// NewHTTPProbe creates a probe against the given URL.
// PRE: rawURL is a valid URL
// POST: Returns a probe with a bounded per-check timeout
func NewHTTPProbe(rawURL string, timeout time.Duration) *HTTPProbe {
	return &HTTPProbe{
		client: &http.Client{Timeout: timeout},
		url:    rawURL,
	}
}

// Check reports reachability of the probe URL.
func (p *HTTPProbe) Check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Monitor is the single source of truth for connectivity: a current
// boolean plus a fan-out of transition events. It holds no persisted
// state; it lives and dies with the process.
type Monitor struct {
	probe    Probe
	interval time.Duration

	online atomic.Bool

	mu      sync.Mutex
	subs    map[int]chan Event
	nextSub int

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewMonitor creates a monitor polling the probe at the given interval.
// The initial status is probed synchronously on Start.
func NewMonitor(probe Probe, interval time.Duration) *Monitor {
	return &Monitor{
		probe:    probe,
		interval: interval,
		subs:     make(map[int]chan Event),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Online returns the current connectivity status.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Subscribe registers for transition events. The returned cancel
// function must be called to release the subscription. Events are
// delivered on a buffered channel; a subscriber that falls far behind
// loses the oldest events rather than wedging the poll loop.
func (m *Monitor) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Event, 16)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Start probes once to establish the initial status, then polls in the
// background until Stop is called. The initial probe produces no event;
// only transitions do.
// POST: Online() reflects the probe result at subscription time
func (m *Monitor) Start(ctx context.Context) {
	m.online.Store(m.probe.Check(ctx))
	slog.Info("network_event", "event", "monitor_started", "online", m.online.Load())

	go func() {
		defer close(m.doneCh)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.poll(ctx)
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop halts the poll loop and waits for it to exit. Subscriptions are
// left open; subscribers simply see no further events.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.doneCh
	slog.Info("network_event", "event", "monitor_stopped")
}

func (m *Monitor) poll(ctx context.Context) {
	current := m.probe.Check(ctx)
	previous := m.online.Swap(current)
	if current == previous {
		return
	}

	ev := Event{Online: current, At: time.Now()}
	if current {
		slog.Info("network_event", "event", "went_online")
	} else {
		slog.Info("network_event", "event", "went_offline")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			// Drop the oldest event to make room for the newest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
