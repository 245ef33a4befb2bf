package faceapi

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// CallType names the face API operation carried by an envelope.
type CallType string

const (
	CallCreatePerson   CallType = "create_person"
	CallCountFaces     CallType = "count_faces"
	CallAddFace        CallType = "add_face"
	CallDeleteFace     CallType = "delete_face"
	CallDetectFaces    CallType = "detect_faces"
	CallIdentify       CallType = "identify"
	CallStartTraining  CallType = "start_training"
	CallTrainingStatus CallType = "training_status"
)

// ContentType distinguishes JSON request bodies from raw image streams.
type ContentType string

const (
	ContentJSON   ContentType = "application/json"
	ContentStream ContentType = "application/octet-stream"
)

// Request is the envelope describing an outgoing face API call. Image
// streams are carried base64-encoded so the envelope stays printable.
type Request struct {
	ID          string            `json:"id"`
	Method      string            `json:"method"`
	CallType    CallType          `json:"call_type"`
	ContentType ContentType       `json:"content_type"`
	Params      map[string]string `json:"params,omitempty"`
	Body        string            `json:"body,omitempty"`
}

// ResponseType marks an envelope as carrying a success or an error body.
type ResponseType string

const (
	ResponseSuccess ResponseType = "success"
	ResponseError   ResponseType = "error"
)

// Response is the envelope describing the outcome of a face API call.
type Response struct {
	RequestID string       `json:"request_id"`
	Type      ResponseType `json:"response_type"`
	Status    int          `json:"status,omitempty"`
	Body      string       `json:"body,omitempty"`
}

// Recorder receives a Request envelope before each call executes and the
// matching Response envelope after it completes. Implementations must not
// block for long; they run on the calling handler's goroutine.
type Recorder interface {
	RecordRequest(Request)
	RecordResponse(Response)
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(Request)   {}
func (nopRecorder) RecordResponse(Response) {}

// newRequest builds an envelope for an outgoing call.
func newRequest(method string, ct CallType, contentType ContentType, params map[string]string, body []byte) Request {
	req := Request{
		ID:          uuid.NewString(),
		Method:      method,
		CallType:    ct,
		ContentType: contentType,
		Params:      params,
	}
	if len(body) > 0 {
		if contentType == ContentStream {
			req.Body = base64.StdEncoding.EncodeToString(body)
		} else {
			req.Body = string(body)
		}
	}
	return req
}
