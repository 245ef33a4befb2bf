// Package ros relays kiosk traffic over a rosbridge websocket: face API
// request/response envelopes outbound, named commands inbound.
package ros

import "encoding/json"

// Topics and message types used on the robot side.
const (
	TopicEvent        = "/faceid_event"
	TopicState        = "/faceid_state"
	TopicAPIRequests  = "/faceapi_requests"
	TopicAPIResponses = "/faceapi_responses"
	TopicCommand      = "/faceid_command"

	MsgTypeEvent       = "unity_game_msgs/FaceIDEvent"
	MsgTypeState       = "unity_game_msgs/FaceIDState"
	MsgTypeAPIRequest  = "face_msgs/FaceAPIRequest"
	MsgTypeAPIResponse = "face_msgs/FaceAPIResponse"
	MsgTypeCommand     = "unity_game_msgs/FaceIDCommand"
)

// Inbound command names delivered on TopicCommand.
const (
	CommandHelloWorldAck = "hello_world_ack"
)

// Outbound event names published on TopicEvent.
const (
	EventHelloWorld = "hello_world"
)

// Command is the payload of an inbound kiosk command.
type Command struct {
	Command string `json:"command"`
}

// EventMessage is the payload of an outbound kiosk event.
type EventMessage struct {
	Event string `json:"event"`
}

// StateMessage is the periodically published kiosk state.
type StateMessage struct {
	State    string `json:"state"`
	LoggedIn string `json:"logged_in,omitempty"`
}

// Bridge is the pub/sub surface the kiosk uses. Implementations deliver
// subscription callbacks on their own goroutine; callbacks must hand work
// off to the dispatcher queue instead of executing it inline.
type Bridge interface {
	Advertise(topic, msgType string) error
	Publish(topic string, msg any) error
	Subscribe(topic, msgType string, fn func(json.RawMessage)) error
	Close() error
}
