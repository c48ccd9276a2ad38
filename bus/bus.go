// Package bus is a small in-process pub/sub broker with retained messages
// and MQTT-style topic wildcards. It is the wiring between services; the
// hardware core never depends on it.
package bus

import (
	"sync"
)

// Topic is a slash-free token path, e.g. T("monitor", "stats").
// "+" matches exactly one token, "#" matches any remainder.
type Topic []string

// T builds a Topic from tokens.
func T(tokens ...string) Topic { return Topic(tokens) }

const (
	WildcardOne = "+"
	WildcardAll = "#"
)

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	pattern Topic
	ch      chan *Message
	conn    *Connection
}

func (s *Subscription) Pattern() Topic            { return s.pattern }
func (s *Subscription) Channel() <-chan *Message  { return s.ch }
func (s *Subscription) Unsubscribe()              { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie
// -----------------------------------------------------------------------------

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok string, create bool) *node {
	if n.children == nil {
		if !create {
			return nil
		}
		n.children = make(map[string]*node)
	}
	c, ok := n.children[tok]
	if !ok {
		if !create {
			return nil
		}
		c = &node{}
		n.children[tok] = c
	}
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
}

// NewBus creates a bus whose subscriber queues hold queueLen messages.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

// Publish delivers msg to every matching subscriber. Retained messages are
// stored at their concrete topic node; publishing a retained nil payload
// clears the slot.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.deliver(b.root, msg.Topic, msg)

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
}

// deliver walks subscription patterns against the concrete topic.
func (b *Bus) deliver(n *node, toks []string, msg *Message) {
	if n == nil {
		return
	}
	if all := n.child(WildcardAll, false); all != nil {
		for _, s := range all.subs {
			push(s.ch, msg)
		}
	}
	if len(toks) == 0 {
		for _, s := range n.subs {
			push(s.ch, msg)
		}
		return
	}
	b.deliver(n.child(toks[0], false), toks[1:], msg)
	b.deliver(n.child(WildcardOne, false), toks[1:], msg)
}

// push enqueues without blocking, dropping the oldest message when full.
func push(ch chan *Message, msg *Message) {
	select {
	case ch <- msg:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- msg:
		default:
		}
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.pattern {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	// Replay retained messages matching the pattern.
	b.replayRetained(b.root, sub.pattern, sub.ch)
}

func (b *Bus) replayRetained(n *node, pattern []string, ch chan *Message) {
	if n == nil {
		return
	}
	if len(pattern) == 0 {
		if n.retained != nil {
			push(ch, n.retained)
		}
		return
	}
	switch pattern[0] {
	case WildcardAll:
		b.replayAll(n, ch)
	case WildcardOne:
		for _, c := range n.children {
			b.replayRetained(c, pattern[1:], ch)
		}
	default:
		b.replayRetained(n.child(pattern[0], false), pattern[1:], ch)
	}
}

func (b *Bus) replayAll(n *node, ch chan *Message) {
	if n.retained != nil {
		push(ch, n.retained)
	}
	for _, c := range n.children {
		b.replayAll(c, ch)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, tok := range sub.pattern {
		c := n.child(tok, false)
		if c == nil {
			return
		}
		stack = append(stack, n)
		n = c
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	// Prune empty branches.
	for i := len(sub.pattern) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.pattern[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection scopes subscriptions to one service so Disconnect can tear
// them all down at once.
type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
	id   string
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) NewMessage(t Topic, payload any, retained bool) *Message {
	return &Message{Topic: t, Payload: payload, Retained: retained}
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Reply publishes payload to req.ReplyTo; it is a no-op when the request
// did not ask for a reply.
func (c *Connection) Reply(req *Message, payload any) {
	if len(req.ReplyTo) == 0 {
		return
	}
	c.bus.Publish(&Message{Topic: req.ReplyTo, Payload: payload})
}

func (c *Connection) Subscribe(pattern Topic) *Subscription {
	sub := &Subscription{
		pattern: pattern,
		ch:      make(chan *Message, c.bus.qLen),
		conn:    c,
	}
	c.bus.addSubscription(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions owned by this connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
