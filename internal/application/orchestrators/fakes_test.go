package orchestrators

import (
	"context"
	"errors"
	"sync"

	"courier/internal/adapters/network"
	"courier/internal/domain/action"
	"courier/internal/domain/order"
)

// fakeOrderStore is an in-memory order store for orchestrator tests.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]order.Order

	saveErr   error
	updateErr error
	deleteErr error

	saves   int
	updates int
	deletes int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]order.Order)}
}

func (s *fakeOrderStore) Get(_ context.Context, id string) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (s *fakeOrderStore) Save(_ context.Context, o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.orders[o.ID] = o
	return nil
}

func (s *fakeOrderStore) Update(_ context.Context, id string, patch order.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	patch.Apply(&o)
	s.orders[id] = o
	return nil
}

func (s *fakeOrderStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.orders, id)
	return nil
}

func (s *fakeOrderStore) get(id string) (order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

// fakeQueue is an in-memory pending-action queue.
type fakeQueue struct {
	mu      sync.Mutex
	actions []action.Action
	nextID  int64

	enqueueErr error
	listErr    error
	ackErr     error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{nextID: 1}
}

func (q *fakeQueue) Enqueue(_ context.Context, a action.Action) (action.Action, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return action.Action{}, q.enqueueErr
	}
	a.ID = q.nextID
	q.nextID++
	q.actions = append(q.actions, a)
	return a, nil
}

func (q *fakeQueue) ListPending(_ context.Context) ([]action.Action, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.listErr != nil {
		return nil, q.listErr
	}
	out := make([]action.Action, len(q.actions))
	copy(out, q.actions)
	return out, nil
}

func (q *fakeQueue) Acknowledge(_ context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ackErr != nil {
		return q.ackErr
	}
	for i, a := range q.actions {
		if a.ID == id {
			q.actions = append(q.actions[:i], q.actions[i+1:]...)
			break
		}
	}
	return nil
}

func (q *fakeQueue) pending() []action.Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]action.Action, len(q.actions))
	copy(out, q.actions)
	return out
}

// fakeNetwork reports a settable connectivity status and lets tests
// push transition events.
type fakeNetwork struct {
	mu     sync.Mutex
	online bool
	events chan network.Event
}

func newFakeNetwork(online bool) *fakeNetwork {
	return &fakeNetwork{online: online, events: make(chan network.Event, 4)}
}

func (n *fakeNetwork) Online() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

func (n *fakeNetwork) Subscribe() (<-chan network.Event, func()) {
	return n.events, func() {}
}

func (n *fakeNetwork) goOnline() {
	n.mu.Lock()
	n.online = true
	n.mu.Unlock()
	n.events <- network.Event{Online: true}
}

// fakeGeocoder returns fixed coordinates or a scripted error.
type fakeGeocoder struct {
	coords order.Coordinates
	err    error
	calls  int
}

func (g *fakeGeocoder) Resolve(_ context.Context, _ string) (order.Coordinates, error) {
	g.calls++
	if g.err != nil {
		return order.Coordinates{}, g.err
	}
	return g.coords, nil
}

// fakeObserver records selection notifications.
type fakeObserver struct {
	accepted []order.Location
	rejected []string
}

func (o *fakeObserver) OrderAccepted(loc order.Location) { o.accepted = append(o.accepted, loc) }
func (o *fakeObserver) OrderRejected(id string)          { o.rejected = append(o.rejected, id) }

var errStorage = errors.New("simulated storage failure")
