package ros

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is a Bridge over the rosbridge v2 JSON protocol.
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex // gorilla allows one concurrent writer

	mu       sync.RWMutex
	handlers map[string]func(json.RawMessage)
	closed   bool
}

// operation is the rosbridge protocol frame.
type operation struct {
	Op    string          `json:"op"`
	Topic string          `json:"topic,omitempty"`
	Type  string          `json:"type,omitempty"`
	Msg   json.RawMessage `json:"msg,omitempty"`
}

// Dial connects to a rosbridge server and starts the read loop.
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not connect to rosbridge at %s: %w", url, err)
	}

	c := &Client{
		conn:     conn,
		handlers: make(map[string]func(json.RawMessage)),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	for {
		var frame operation
		if err := c.conn.ReadJSON(&frame); err != nil {
			c.mu.RLock()
			closed := c.closed
			c.mu.RUnlock()
			if !closed {
				log.Printf("rosbridge read loop terminated: %v", err)
			}
			return
		}

		if frame.Op != "publish" {
			continue
		}

		c.mu.RLock()
		handler := c.handlers[frame.Topic]
		c.mu.RUnlock()

		if handler != nil {
			handler(frame.Msg)
		}
	}
}

func (c *Client) send(frame any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("could not write rosbridge frame: %w", err)
	}
	return nil
}

// Advertise announces a topic so subsequent publishes are accepted.
func (c *Client) Advertise(topic, msgType string) error {
	return c.send(operation{Op: "advertise", Topic: topic, Type: msgType})
}

// Publish sends a message on an advertised topic.
func (c *Client) Publish(topic string, msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("could not marshal rosbridge message: %w", err)
	}
	return c.send(operation{Op: "publish", Topic: topic, Msg: raw})
}

// Subscribe registers a handler for inbound messages on a topic. The handler
// runs on the read-loop goroutine.
func (c *Client) Subscribe(topic, msgType string, fn func(json.RawMessage)) error {
	c.mu.Lock()
	c.handlers[topic] = fn
	c.mu.Unlock()
	return c.send(operation{Op: "subscribe", Topic: topic, Type: msgType})
}

// Close shuts the websocket connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("closing rosbridge connection: %w", err)
	}
	return nil
}
