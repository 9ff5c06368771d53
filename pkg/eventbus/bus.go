// Package eventbus implements a small topic-based publish/subscribe bus used to fan out
// monitoring events (per-step statistics, alarms, failures) to interested subscribers
package eventbus

import (
	"context"
	"sync"
)

// EventType identifies the kind of event being passed on the bus so that handlers can
// filter which events they respond to
type EventType string

// Event is passed on the event bus to every subscriber on the topic
type Event struct {
	Type EventType
	Data interface{}
}

// Topic creates a group of subscribers that only receive events published to that channel
type Topic string

const defaultTopic Topic = "__default__"

// EventBus dispatches events to all subscribers on one or more topics.  Subscribers
// without an explicit topic join a default channel that receives every event published
// on any topic.
type EventBus struct {
	subscribers map[Topic][]chan Event
	done        []chan struct{}
	sends       sync.WaitGroup
	mutex       sync.RWMutex
}

// New returns a new event bus
func New() *EventBus {
	return &EventBus{
		subscribers: make(map[Topic][]chan Event),
	}
}

// Subscribe registers a subscriber on zero or more topics.  With no topic the
// subscriber joins the default channel and receives all events.  The first returned
// channel delivers events and is closed when the bus shuts down; subscribers should
// treat the close as a shutdown signal, finish any outstanding work and then close the
// second (done) channel to report that they have exited.
func (e *EventBus) Subscribe(topics ...Topic) (chan Event, chan struct{}) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	c := make(chan Event, 1)
	done := make(chan struct{})
	e.done = append(e.done, done)

	if len(topics) == 0 {
		topics = []Topic{defaultTopic}
	}
	for _, topic := range topics {
		e.subscribers[topic] = append(e.subscribers[topic], c)
	}
	return c, done
}

// Dispatch sends the event to subscribers of the given topics.  Events are always also
// broadcast to default channel subscribers.  Topics without subscribers silently drop
// the event.
func (e *EventBus) Dispatch(event Event, topics ...Topic) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	topics = append(topics, defaultTopic)
	for _, topic := range topics {
		channels := e.subscribers[topic]
		if len(channels) == 0 {
			continue
		}
		chs := append([]chan Event{}, channels...)
		e.sends.Add(1)
		go func(event Event, chs []chan Event) {
			defer e.sends.Done()
			for _, ch := range chs {
				ch <- event
			}
		}(event, chs)
	}
}

// Shutdown waits for in-flight dispatches to deliver, then closes all subscriber
// channels and blocks until every subscriber has closed its done channel or the context
// expires.  Returns ErrShutdownTimeout when subscribers did not exit in time.
func (e *EventBus) Shutdown(ctx context.Context) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	// subscribers are still draining their channels at this point, so pending sends
	// complete as long as the channels are not yet closed
	pending := make(chan struct{})
	go func() {
		e.sends.Wait()
		close(pending)
	}()
	select {
	case <-ctx.Done():
		return ErrShutdownTimeout
	case <-pending:
	}

	done := make(chan struct{})
	go shutdownNotify(done, append([]chan struct{}{}, e.done...))

	closed := make(map[chan Event]bool)
	for _, chs := range e.subscribers {
		for _, ch := range chs {
			if closed[ch] {
				continue
			}
			closed[ch] = true
			close(ch)
		}
	}

	select {
	case <-ctx.Done():
		return ErrShutdownTimeout
	case <-done:
		return nil
	}
}

// shutdownNotify closes done after every subscriber has closed its own done channel
func shutdownNotify(done chan struct{}, all []chan struct{}) {
	var wg sync.WaitGroup
	for _, ch := range all {
		wg.Add(1)
		go func(c chan struct{}) {
			<-c
			wg.Done()
		}(ch)
	}
	wg.Wait()
	close(done)
}
