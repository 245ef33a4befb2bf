package faceapi

import (
	"context"
	"fmt"
	"net/http"
)

type createPersonResponse struct {
	PersonID string `json:"personId"`
}

// CreatePerson registers a person in the group and returns its person id.
func (c *Client) CreatePerson(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("largepersongroups/%s/persons", c.personGroup)
	params := map[string]string{"name": name, "largePersonGroupId": c.personGroup}

	result, err := doJSON[createPersonResponse](ctx, c, http.MethodPost, endpoint, CallCreatePerson, params,
		map[string]string{"name": name})
	if err != nil {
		return "", err
	}
	return result.PersonID, nil
}

type addFaceResponse struct {
	PersistedFaceID string `json:"persistedFaceId"`
}

// AddFace enrolls image bytes for a person and returns the persisted face id.
func (c *Client) AddFace(ctx context.Context, personID string, image []byte) (string, error) {
	endpoint := fmt.Sprintf("largepersongroups/%s/persons/%s/persistedfaces", c.personGroup, personID)
	params := map[string]string{"personId": personID, "largePersonGroupId": c.personGroup}

	result, err := doStream[addFaceResponse](ctx, c, endpoint, CallAddFace, params, image)
	if err != nil {
		return "", err
	}
	return result.PersistedFaceID, nil
}

// DeleteFace removes a previously enrolled face. The returned bool reports
// whether the service acknowledged the deletion.
func (c *Client) DeleteFace(ctx context.Context, personID, persistedFaceID string) (bool, error) {
	endpoint := fmt.Sprintf("largepersongroups/%s/persons/%s/persistedfaces/%s", c.personGroup, personID, persistedFaceID)
	params := map[string]string{"personId": personID, "persistedFaceId": persistedFaceID}

	_, err := doJSON[struct{}](ctx, c, http.MethodDelete, endpoint, CallDeleteFace, params, nil)
	if err != nil {
		return false, err
	}
	return true, nil
}
