package usecase

import (
	"context"
	"sync"

	"github.com/forest33/arena/business/entity"
)

// MockPeer records outbound messages instead of writing them to a socket
type MockPeer struct {
	Addr     string
	SendErr  error
	mux      sync.Mutex
	messages []*entity.Message
	closed   bool
}

func (p *MockPeer) Send(msg *entity.Message) error {
	p.mux.Lock()
	defer p.mux.Unlock()

	if p.closed {
		return entity.ErrConnectionClosed
	}
	if p.SendErr != nil {
		return p.SendErr
	}
	p.messages = append(p.messages, msg)

	return nil
}

func (p *MockPeer) Close() error {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.closed = true
	return nil
}

func (p *MockPeer) RemoteAddr() string {
	return p.Addr
}

func (p *MockPeer) IsClosed() bool {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.closed
}

// Messages returns the sent messages of type t, all of them if t is empty
func (p *MockPeer) Messages(t entity.MessageType) []*entity.Message {
	p.mux.Lock()
	defer p.mux.Unlock()

	out := make([]*entity.Message, 0, len(p.messages))
	for _, m := range p.messages {
		if t == "" || m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the latest sent message of type t or nil
func (p *MockPeer) Last(t entity.MessageType) *entity.Message {
	msgs := p.Messages(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// MockLedger stores what it receives, the first FailFirst calls of each kind fail
type MockLedger struct {
	FailFirst int
	mux       sync.Mutex
	outcomes  []*entity.MatchOutcome
	stats     []*entity.PlayerStats
	calls     int
	done      chan struct{}
}

func NewMockLedger(failFirst int) *MockLedger {
	return &MockLedger{
		FailFirst: failFirst,
		done:      make(chan struct{}, 16),
	}
}

func (l *MockLedger) RecordMatch(_ context.Context, o *entity.MatchOutcome) error {
	l.mux.Lock()
	defer l.mux.Unlock()

	l.calls++
	if l.calls <= l.FailFirst {
		return entity.ErrLedgerUnavailable
	}
	l.outcomes = append(l.outcomes, o)

	return nil
}

func (l *MockLedger) UpsertPlayerStats(_ context.Context, st *entity.PlayerStats) error {
	l.mux.Lock()
	defer l.mux.Unlock()

	l.stats = append(l.stats, st)
	l.done <- struct{}{}

	return nil
}

func (l *MockLedger) Outcomes() []*entity.MatchOutcome {
	l.mux.Lock()
	defer l.mux.Unlock()
	return append([]*entity.MatchOutcome(nil), l.outcomes...)
}

func (l *MockLedger) Stats() []*entity.PlayerStats {
	l.mux.Lock()
	defer l.mux.Unlock()
	return append([]*entity.PlayerStats(nil), l.stats...)
}

// Done signals every stored stats upsert
func (l *MockLedger) Done() <-chan struct{} {
	return l.done
}

// MockCosmetics resolves every item to "asset/<item>" unless Err is set
type MockCosmetics struct {
	Err error
}

func (c *MockCosmetics) Resolve(_ context.Context, items []string) (map[string]string, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	refs := make(map[string]string, len(items))
	for _, it := range items {
		refs[it] = "asset/" + it
	}
	return refs, nil
}
