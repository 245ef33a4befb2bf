package kiosk

import (
	"context"
	"fmt"
	"log"

	"github.com/kozaktomas/face-kiosk/internal/config"
	"github.com/kozaktomas/face-kiosk/internal/faceapi"
	"github.com/kozaktomas/face-kiosk/internal/profile"
)

// Controller wires the dispatcher, the profile store, the face gateway and
// the UI together. All state handlers are methods on it; the session is a
// plain field, created fresh with each controller.
type Controller struct {
	cfg        *config.Config
	dispatcher *Dispatcher
	store      *profile.Store
	gateway    faceapi.Gateway
	ui         UI
	session    Session
}

func NewController(cfg *config.Config, store *profile.Store, gateway faceapi.Gateway, ui UI) *Controller {
	c := &Controller{
		cfg:        cfg,
		dispatcher: NewDispatcher(),
		store:      store,
		gateway:    gateway,
		ui:         ui,
	}
	c.registerHandlers()
	return c
}

// Dispatcher exposes the task queue so transports can enqueue work and the
// main loop can tick it.
func (c *Controller) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// Enqueue adds a task to the controller's queue.
func (c *Controller) Enqueue(state State, params Params) {
	c.dispatcher.Enqueue(state, params)
}

// Snapshot reports the current state and the logged-in display name, empty
// when nobody is logged in. Used by the robot-side state topic.
func (c *Controller) Snapshot() (State, string) {
	name := ""
	if c.session.LoggedIn != nil {
		name = c.session.LoggedIn.DisplayName
	}
	return c.dispatcher.State(), name
}

// param pulls a typed value out of the task payload. A missing or mistyped
// key is logged, surfaces as a single parsing error screen and aborts the
// calling handler.
func param[T any](c *Controller, params Params, key string) (T, bool) {
	var zero T
	v, ok := params[key]
	if !ok {
		log.Printf("state %s: missing parameter %q", c.dispatcher.State(), key)
		c.dispatcher.Enqueue(StateInternalErrorParsing, nil)
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		log.Printf("state %s: parameter %q has unexpected type %T", c.dispatcher.State(), key, v)
		c.dispatcher.Enqueue(StateInternalErrorParsing, nil)
		return zero, false
	}
	return t, true
}

// apiFailure logs a gateway error and queues the matching error screen.
func (c *Controller) apiFailure(state State, err error) {
	if err != nil {
		log.Printf("face API call failed: %v", err)
	}
	c.dispatcher.Enqueue(state, nil)
}

// errorScreen builds a handler that shows an error prompt with the given
// description.
func (c *Controller) errorScreen(format, desc string) Handler {
	return func(_ context.Context, _ Params) {
		c.ui.PromptOKDialog(fmt.Sprintf(format, desc))
	}
}
