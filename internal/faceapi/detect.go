package faceapi

import (
	"context"
	"net/http"
)

type detectedFace struct {
	FaceID string `json:"faceId"`
}

// DetectFaces returns the face ids detected in the image. The service
// orders the list by face rectangle size, so the primary face comes first.
func (c *Client) DetectFaces(ctx context.Context, image []byte) ([]string, error) {
	result, err := doStream[[]detectedFace](ctx, c, "detect", CallDetectFaces, nil, image)
	if err != nil {
		return nil, err
	}

	faceIDs := make([]string, len(*result))
	for i, f := range *result {
		faceIDs[i] = f.FaceID
	}
	return faceIDs, nil
}

// CountFaces returns the number of faces detected in the image.
func (c *Client) CountFaces(ctx context.Context, image []byte) (int, error) {
	result, err := doStream[[]detectedFace](ctx, c, "detect", CallCountFaces, nil, image)
	if err != nil {
		return 0, err
	}
	return len(*result), nil
}

type identifyRequest struct {
	FaceIDs            []string `json:"faceIds"`
	LargePersonGroupID string   `json:"largePersonGroupId"`
}

type identifyResult struct {
	FaceID     string `json:"faceId"`
	Candidates []struct {
		PersonID   string  `json:"personId"`
		Confidence float64 `json:"confidence"`
	} `json:"candidates"`
}

// Identify maps candidate person ids to confidence scores for a face id.
// An empty (non-nil) map means the service recognized nobody.
func (c *Client) Identify(ctx context.Context, faceID string) (map[string]float64, error) {
	params := map[string]string{"faceId": faceID, "largePersonGroupId": c.personGroup}

	result, err := doJSON[[]identifyResult](ctx, c, http.MethodPost, "identify", CallIdentify, params,
		identifyRequest{FaceIDs: []string{faceID}, LargePersonGroupID: c.personGroup})
	if err != nil {
		return nil, err
	}

	guesses := make(map[string]float64)
	for _, r := range *result {
		for _, cand := range r.Candidates {
			guesses[cand.PersonID] = cand.Confidence
		}
	}
	return guesses, nil
}
