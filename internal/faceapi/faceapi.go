// Package faceapi implements the cloud face-recognition gateway: person
// CRUD, face detection/identification and person-group training.
package faceapi

import (
	"context"
	"fmt"
	"net/url"
)

// TrainingStatus is the state of a person-group training run.
type TrainingStatus string

const (
	TrainingSucceeded TrainingStatus = "succeeded"
	TrainingFailed    TrainingStatus = "failed"
	TrainingPending   TrainingStatus = "pending"
	TrainingAPIError  TrainingStatus = "api_error"
)

// Gateway is the face-service surface consumed by the kiosk. Payloads are
// only meaningful when the error is nil; callers still reject unusable
// payloads (empty ids, nil maps) on their own.
type Gateway interface {
	// CreatePerson registers a person in the group and returns its person id.
	CreatePerson(ctx context.Context, name string) (string, error)
	// CountFaces returns the number of faces detected in the image.
	CountFaces(ctx context.Context, image []byte) (int, error)
	// AddFace enrolls image bytes for a person and returns the persisted face id.
	AddFace(ctx context.Context, personID string, image []byte) (string, error)
	// DeleteFace removes a previously enrolled face.
	DeleteFace(ctx context.Context, personID, persistedFaceID string) (bool, error)
	// DetectFaces returns the detected face ids, primary face first.
	DetectFaces(ctx context.Context, image []byte) ([]string, error)
	// Identify maps candidate person ids to confidence scores for a face id.
	Identify(ctx context.Context, faceID string) (map[string]float64, error)
	// StartTraining kicks off retraining of the person group.
	StartTraining(ctx context.Context) error
	// GetTrainingStatus reports the current training state.
	GetTrainingStatus(ctx context.Context) (TrainingStatus, error)
}

// Client is an HTTP implementation of Gateway against a face API service.
type Client struct {
	parsedURL   *url.URL
	accessKey   string
	personGroup string
	recorder    Recorder
}

// New creates a face API client. The recorder may be nil, in which case
// request/response envelopes are not mirrored anywhere.
func New(endpoint, accessKey, personGroup string, recorder Recorder) (*Client, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid face API endpoint: %w", err)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Client{
		parsedURL:   parsed,
		accessKey:   accessKey,
		personGroup: personGroup,
		recorder:    recorder,
	}, nil
}

// resolveURL builds a full URL from the base API URL and the given path segments.
func (c *Client) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return c.parsedURL.String()
	}
	return c.parsedURL.JoinPath(pathSegments...).String()
}
