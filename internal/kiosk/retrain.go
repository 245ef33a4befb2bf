package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kozaktomas/face-kiosk/internal/faceapi"
)

// RetrainOptions bounds the training status poll loop.
type RetrainOptions struct {
	PollInterval time.Duration
	MaxPolls     int
	// OnPoll is called after every status check, e.g. to drive a progress
	// display. May be nil.
	OnPoll func(attempt int, status faceapi.TrainingStatus)
}

// Retrain starts a person-group training run and polls its status until it
// settles. It fails immediately on a failed or unreadable status and gives
// up after MaxPolls checks so a stuck training run cannot block the kiosk
// forever.
func Retrain(ctx context.Context, gw faceapi.Gateway, opts RetrainOptions) error {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.MaxPolls <= 0 {
		opts.MaxPolls = 60
	}

	if err := gw.StartTraining(ctx); err != nil {
		return fmt.Errorf("could not start training: %w", err)
	}

	for attempt := 1; attempt <= opts.MaxPolls; attempt++ {
		status, err := gw.GetTrainingStatus(ctx)
		if err != nil {
			return fmt.Errorf("could not read training status: %w", err)
		}
		if opts.OnPoll != nil {
			opts.OnPoll(attempt, status)
		}

		switch status {
		case faceapi.TrainingSucceeded:
			return nil
		case faceapi.TrainingFailed:
			return errors.New("training run failed")
		case faceapi.TrainingAPIError:
			return errors.New("training status unavailable")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.PollInterval):
		}
	}

	return fmt.Errorf("training still pending after %d checks", opts.MaxPolls)
}

// retrainProfiles retrains after an enrollment change. On failure the
// training error screen is queued and the caller must not continue its flow.
func (c *Controller) retrainProfiles(ctx context.Context) bool {
	err := Retrain(ctx, c.gateway, RetrainOptions{
		PollInterval: c.cfg.Training.PollInterval,
		MaxPolls:     c.cfg.Training.MaxPolls,
	})
	if err != nil {
		log.Printf("retraining failed: %v", err)
		c.dispatcher.Enqueue(StateAPIErrorTrainingStatus, nil)
		return false
	}
	return true
}
