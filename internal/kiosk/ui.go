package kiosk

import (
	"context"

	"github.com/kozaktomas/face-kiosk/internal/profile"
)

// UI is the display surface the state handlers drive. Every call replaces
// whatever the kiosk currently shows; answers come back asynchronously as
// enqueued tasks, never as return values.
type UI interface {
	// AskQuestion shows a yes/no question.
	AskQuestion(text string)
	// PromptOKDialog shows a message with a single OK button.
	PromptOKDialog(text string)
	// PromptInputText shows a message with a free-text input field.
	PromptInputText(text string)
	// PromptNoButtonPopup shows a message the user cannot dismiss, used
	// while a cloud call is in flight.
	PromptNoButtonPopup(text string)
	// ShowPicture displays a stored image with a caption and two choice buttons.
	ShowPicture(imagePath, text, yesLabel, noLabel string)
	// ShowCapture displays a just-captured frame with two choice buttons.
	ShowCapture(frame []byte, text, yesLabel, noLabel string)
	// ListImages shows the photo listing of the logged-in profile.
	ListImages(text string, images []profile.Image)
	// ListProfiles shows the profile selection listing.
	ListProfiles(text string, profiles []*profile.Profile)
	// ShowWebcam shows the live webcam feed with a capture button.
	ShowWebcam(text string)
	// ConnectionReady unlocks the connection screen once the robot side
	// acknowledged the hello message.
	ConnectionReady()
	// HideAll clears the screen.
	HideAll()
	// CaptureFrame grabs a frame from the webcam.
	CaptureFrame(ctx context.Context) ([]byte, error)
}
