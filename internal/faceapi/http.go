package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

// doJSON performs a request with an optional JSON body and unmarshals the
// JSON response into the result type. Every call is mirrored through the
// recorder: the request envelope before execution, the response envelope
// after.
func doJSON[T any](ctx context.Context, c *Client, method, endpoint string, ct CallType, params map[string]string, requestBody any, expectedStatuses ...int) (*T, error) {
	var jsonBody []byte
	if requestBody != nil {
		var err error
		jsonBody, err = json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request body: %w", err)
		}
	}
	return doCall[T](ctx, c, method, endpoint, ct, ContentJSON, params, jsonBody, expectedStatuses)
}

// doStream performs a POST with raw image bytes as the body.
func doStream[T any](ctx context.Context, c *Client, endpoint string, ct CallType, params map[string]string, image []byte, expectedStatuses ...int) (*T, error) {
	return doCall[T](ctx, c, http.MethodPost, endpoint, ct, ContentStream, params, image, expectedStatuses)
}

func doCall[T any](ctx context.Context, c *Client, method, endpoint string, ct CallType, contentType ContentType, params map[string]string, body []byte, expectedStatuses []int) (*T, error) {
	url := c.resolveURL(endpoint)

	envelope := newRequest(method, ct, contentType, params, body)
	c.recorder.RecordRequest(envelope)

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		c.recorder.RecordResponse(Response{RequestID: envelope.ID, Type: ResponseError, Body: err.Error()})
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.accessKey)
	if len(body) > 0 {
		req.Header.Set("Content-Type", string(contentType))
	}

	resp, err := http.DefaultClient.Do(req) //nolint:gosec // URL constructed from validated parsedURL via resolveURL
	if err != nil {
		c.recorder.RecordResponse(Response{RequestID: envelope.ID, Type: ResponseError, Body: err.Error()})
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recorder.RecordResponse(Response{RequestID: envelope.ID, Type: ResponseError, Status: resp.StatusCode, Body: err.Error()})
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if len(expectedStatuses) == 0 {
		expectedStatuses = []int{http.StatusOK}
	}
	if !slices.Contains(expectedStatuses, resp.StatusCode) {
		c.recorder.RecordResponse(Response{RequestID: envelope.ID, Type: ResponseError, Status: resp.StatusCode, Body: string(respBody)})
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	c.recorder.RecordResponse(Response{RequestID: envelope.ID, Type: ResponseSuccess, Status: resp.StatusCode, Body: string(respBody)})

	var result T
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("could not unmarshal response: %w", err)
		}
	}
	return &result, nil
}
