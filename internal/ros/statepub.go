package ros

import (
	"log"
	"time"
)

// StatePublisher periodically publishes the kiosk state on TopicState so the
// robot side can follow along.
type StatePublisher struct {
	bridge   Bridge
	interval time.Duration
	snapshot func() StateMessage
	stop     chan struct{}
	done     chan struct{}
}

// NewStatePublisher advertises the state topic. hz is the publish rate;
// snapshot is called once per tick to read the current kiosk state.
func NewStatePublisher(bridge Bridge, hz float64, snapshot func() StateMessage) (*StatePublisher, error) {
	if err := bridge.Advertise(TopicState, MsgTypeState); err != nil {
		return nil, err
	}
	if hz <= 0 {
		hz = 1
	}
	return &StatePublisher{
		bridge:   bridge,
		interval: time.Duration(float64(time.Second) / hz),
		snapshot: snapshot,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the publishing goroutine.
func (p *StatePublisher) Start() {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				if err := p.bridge.Publish(TopicState, p.snapshot()); err != nil {
					log.Printf("could not publish kiosk state: %v", err)
				}
			}
		}
	}()
}

// Stop terminates the publishing goroutine and waits for it to exit.
func (p *StatePublisher) Stop() {
	close(p.stop)
	<-p.done
}
