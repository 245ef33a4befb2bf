package ros

import (
	"log"

	"github.com/kozaktomas/face-kiosk/internal/faceapi"
)

// APIMirror publishes face API request/response envelopes to the robot bus.
// It implements faceapi.Recorder. Publish failures are logged, never
// surfaced: mirroring is diagnostics, not control flow.
type APIMirror struct {
	bridge Bridge
}

// NewAPIMirror advertises the request/response topics and returns the mirror.
func NewAPIMirror(bridge Bridge) (*APIMirror, error) {
	if err := bridge.Advertise(TopicAPIRequests, MsgTypeAPIRequest); err != nil {
		return nil, err
	}
	if err := bridge.Advertise(TopicAPIResponses, MsgTypeAPIResponse); err != nil {
		return nil, err
	}
	return &APIMirror{bridge: bridge}, nil
}

func (m *APIMirror) RecordRequest(req faceapi.Request) {
	if err := m.bridge.Publish(TopicAPIRequests, req); err != nil {
		log.Printf("could not mirror face API request %s: %v", req.ID, err)
	}
}

func (m *APIMirror) RecordResponse(resp faceapi.Response) {
	if err := m.bridge.Publish(TopicAPIResponses, resp); err != nil {
		log.Printf("could not mirror face API response for %s: %v", resp.RequestID, err)
	}
}
