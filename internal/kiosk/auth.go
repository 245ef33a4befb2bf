package kiosk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/face-kiosk/internal/profile"
)

// authRequired reports whether the profile carries enough enrolled images
// for live face verification to be meaningful.
func (c *Controller) authRequired(p *profile.Profile) bool {
	return len(p.Images) >= c.cfg.Auth.MinImages
}

// authenticateThenDo runs then() immediately when the profile is below the
// verification threshold, otherwise only after a successful live
// verification. A gateway failure lands on the identify error screen; a
// clean rejection queues the rejection prompt when showRejection is set and
// otherwise drops the action silently.
//
// frame may carry an already captured image to verify against; when nil a
// fresh frame is grabbed from the webcam after a short warmup.
func (c *Controller) authenticateThenDo(ctx context.Context, target *profile.Profile, frame []byte, showRejection bool, then func()) {
	if target == nil || !c.authRequired(target) {
		then()
		return
	}

	ok, err := c.verify(ctx, target, frame, showRejection)
	if err != nil {
		c.apiFailure(StateAPIErrorIdentifying, err)
		return
	}
	if ok {
		then()
	}
}

// verify captures a frame if needed, detects the primary face and checks
// that the face service identifies it as the target person with sufficient
// confidence. The threshold comparison is inclusive.
func (c *Controller) verify(ctx context.Context, target *profile.Profile, frame []byte, showRejection bool) (bool, error) {
	if frame == nil {
		c.ui.HideAll()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(c.cfg.Auth.CameraWarmup):
		}

		var err error
		frame, err = c.ui.CaptureFrame(ctx)
		if err != nil {
			return false, fmt.Errorf("could not capture frame: %w", err)
		}
	}

	c.ui.PromptNoButtonPopup(fmt.Sprintf(c.cfg.Prompts.Thinking, "I'm verifying it's really you."))

	faceIDs, err := c.gateway.DetectFaces(ctx, frame)
	if err != nil {
		return false, err
	}
	if len(faceIDs) == 0 {
		return false, errors.New("no face detected in frame")
	}

	// the first detected face is the primary one
	guesses, err := c.gateway.Identify(ctx, faceIDs[0])
	if err != nil {
		return false, err
	}

	if conf, found := guesses[target.PersonID]; found && conf >= c.cfg.Auth.ConfidenceThreshold {
		return true, nil
	}

	if showRejection {
		c.dispatcher.Enqueue(StateRejectionPrompt, Params{
			ParamName:    target.DisplayName,
			ParamGuesses: guesses,
		})
	}
	return false, nil
}
