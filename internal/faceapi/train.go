package faceapi

import (
	"context"
	"fmt"
	"net/http"
)

// StartTraining kicks off retraining of the person group. Required after
// every add-face or delete-face before identification reflects the change.
func (c *Client) StartTraining(ctx context.Context) error {
	endpoint := fmt.Sprintf("largepersongroups/%s/train", c.personGroup)
	params := map[string]string{"largePersonGroupId": c.personGroup}

	_, err := doJSON[struct{}](ctx, c, http.MethodPost, endpoint, CallStartTraining, params, nil,
		http.StatusOK, http.StatusAccepted)
	return err
}

type trainingStatusResponse struct {
	Status string `json:"status"`
}

// GetTrainingStatus reports the current training state of the person group.
func (c *Client) GetTrainingStatus(ctx context.Context) (TrainingStatus, error) {
	endpoint := fmt.Sprintf("largepersongroups/%s/training", c.personGroup)
	params := map[string]string{"largePersonGroupId": c.personGroup}

	result, err := doJSON[trainingStatusResponse](ctx, c, http.MethodGet, endpoint, CallTrainingStatus, params, nil)
	if err != nil {
		return TrainingAPIError, err
	}

	switch result.Status {
	case "succeeded":
		return TrainingSucceeded, nil
	case "failed":
		return TrainingFailed, nil
	case "running", "notstarted":
		return TrainingPending, nil
	default:
		return TrainingAPIError, fmt.Errorf("unknown training status %q", result.Status)
	}
}
