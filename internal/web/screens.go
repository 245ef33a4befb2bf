// Package web serves the kiosk display: a JSON screen model pushed over SSE
// plus input endpoints that feed the task queue.
package web

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/kozaktomas/face-kiosk/internal/profile"
)

const (
	eventChannelBuffer = 64
	captureTimeout     = 15 * time.Second
)

// ScreenKind tells the display which layout to render.
type ScreenKind string

const (
	ScreenBlank       ScreenKind = "blank"
	ScreenQuestion    ScreenKind = "question"
	ScreenMessage     ScreenKind = "message"
	ScreenInput       ScreenKind = "input"
	ScreenBusy        ScreenKind = "busy"
	ScreenPicture     ScreenKind = "picture"
	ScreenImageList   ScreenKind = "image_list"
	ScreenProfileList ScreenKind = "profile_list"
	ScreenWebcam      ScreenKind = "webcam"
)

// ScreenImage is one entry in the photo listing.
type ScreenImage struct {
	Index int    `json:"index"` // position in the listing, used for selection
	Label string `json:"label"`
}

// ScreenProfile is one entry in the profile listing.
type ScreenProfile struct {
	Folder string `json:"folder"`
	Name   string `json:"name"`
}

// Screen is the full description of what the display shows right now.
type Screen struct {
	Kind     ScreenKind      `json:"kind"`
	Text     string          `json:"text,omitempty"`
	YesLabel string          `json:"yes_label,omitempty"`
	NoLabel  string          `json:"no_label,omitempty"`
	// HasPicture tells the display to fetch /screen/picture.
	HasPicture bool `json:"has_picture,omitempty"`
	// Frame carries a just-captured image inline, base64-encoded PNG.
	Frame    string          `json:"frame,omitempty"`
	Images   []ScreenImage   `json:"images,omitempty"`
	Profiles []ScreenProfile `json:"profiles,omitempty"`
}

// ScreenEvent is one SSE message pushed to the display.
type ScreenEvent struct {
	Type   string  `json:"type"` // "screen", "capture" or "connected"
	Screen *Screen `json:"screen,omitempty"`
}

// Screens is the display surface the state handlers draw on. It keeps the
// current screen, pushes updates to connected displays and remembers the
// listings behind selectable screens so inputs can reference them.
type Screens struct {
	mu        sync.RWMutex
	current   Screen
	listeners []chan ScreenEvent
	connected bool

	picturePath     string
	approvalFrame   []byte
	listedImages    []profile.Image
	listedProfiles  []*profile.Profile
	selectedProfile *profile.Profile
	selectedImage   *profile.Image

	frameMu     sync.Mutex
	frameWaiter chan []byte
}

func NewScreens() *Screens {
	return &Screens{
		current: Screen{Kind: ScreenBlank},
	}
}

// AddListener registers an SSE consumer.
func (s *Screens) AddListener() chan ScreenEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan ScreenEvent, eventChannelBuffer)
	s.listeners = append(s.listeners, ch)
	return ch
}

// RemoveListener unregisters an SSE consumer and closes its channel.
func (s *Screens) RemoveListener(ch chan ScreenEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, listener := range s.listeners {
		if listener == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// sendEvent pushes an event to all listeners. Callers must hold the lock.
func (s *Screens) sendEvent(event ScreenEvent) {
	for _, listener := range s.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

func (s *Screens) setScreen(screen Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = screen
	copied := screen
	s.sendEvent(ScreenEvent{Type: "screen", Screen: &copied})
}

// Current returns the screen the display should show.
func (s *Screens) Current() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Connected reports whether the robot side acknowledged the hello message.
func (s *Screens) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// AskQuestion shows a yes/no question.
func (s *Screens) AskQuestion(text string) {
	s.setScreen(Screen{Kind: ScreenQuestion, Text: text, YesLabel: "Yes", NoLabel: "No"})
}

// PromptOKDialog shows a message with a single OK button.
func (s *Screens) PromptOKDialog(text string) {
	s.setScreen(Screen{Kind: ScreenMessage, Text: text})
}

// PromptInputText shows a message with a free-text input field.
func (s *Screens) PromptInputText(text string) {
	s.setScreen(Screen{Kind: ScreenInput, Text: text})
}

// PromptNoButtonPopup shows a message without any buttons.
func (s *Screens) PromptNoButtonPopup(text string) {
	s.setScreen(Screen{Kind: ScreenBusy, Text: text})
}

// ShowPicture displays a stored image with two choice buttons.
func (s *Screens) ShowPicture(imagePath, text, yesLabel, noLabel string) {
	s.mu.Lock()
	s.picturePath = imagePath
	s.mu.Unlock()
	s.setScreen(Screen{
		Kind:       ScreenPicture,
		Text:       text,
		YesLabel:   yesLabel,
		NoLabel:    noLabel,
		HasPicture: imagePath != "" && imagePath != profile.NoPicture,
	})
}

// ShowCapture displays a just-captured frame with two choice buttons. The
// frame is kept so an approval can enqueue it for saving.
func (s *Screens) ShowCapture(frame []byte, text, yesLabel, noLabel string) {
	s.mu.Lock()
	s.approvalFrame = frame
	s.mu.Unlock()
	s.setScreen(Screen{
		Kind:     ScreenPicture,
		Text:     text,
		YesLabel: yesLabel,
		NoLabel:  noLabel,
		Frame:    base64.StdEncoding.EncodeToString(frame),
	})
}

// ListImages shows the photo listing of the logged-in profile.
func (s *Screens) ListImages(text string, images []profile.Image) {
	entries := make([]ScreenImage, len(images))
	for i, img := range images {
		entries[i] = ScreenImage{Index: i, Label: img.DisplayName()}
	}
	s.mu.Lock()
	s.listedImages = images
	s.mu.Unlock()
	s.setScreen(Screen{Kind: ScreenImageList, Text: text, Images: entries})
}

// ListProfiles shows the profile selection listing.
func (s *Screens) ListProfiles(text string, profiles []*profile.Profile) {
	entries := make([]ScreenProfile, len(profiles))
	for i, p := range profiles {
		entries[i] = ScreenProfile{Folder: p.FolderName, Name: p.DisplayName}
	}
	s.mu.Lock()
	s.listedProfiles = profiles
	s.mu.Unlock()
	s.setScreen(Screen{Kind: ScreenProfileList, Text: text, Profiles: entries})
}

// ShowWebcam shows the live webcam feed with a capture button.
func (s *Screens) ShowWebcam(text string) {
	s.setScreen(Screen{Kind: ScreenWebcam, Text: text})
}

// ConnectionReady marks the robot link as established.
func (s *Screens) ConnectionReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	s.sendEvent(ScreenEvent{Type: "connected"})
}

// HideAll clears the screen.
func (s *Screens) HideAll() {
	s.setScreen(Screen{Kind: ScreenBlank})
}

// CaptureFrame asks the display for a fresh webcam frame and waits for it to
// arrive via DeliverFrame.
func (s *Screens) CaptureFrame(ctx context.Context) ([]byte, error) {
	waiter := make(chan []byte, 1)

	s.frameMu.Lock()
	s.frameWaiter = waiter
	s.frameMu.Unlock()

	defer func() {
		s.frameMu.Lock()
		s.frameWaiter = nil
		s.frameMu.Unlock()
	}()

	s.mu.Lock()
	s.sendEvent(ScreenEvent{Type: "capture"})
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(captureTimeout):
		return nil, errors.New("no frame arrived from the display")
	case frame := <-waiter:
		return frame, nil
	}
}

// DeliverFrame hands a display-posted frame to a pending CaptureFrame call.
// It reports whether the frame was consumed by a waiter.
func (s *Screens) DeliverFrame(frame []byte) bool {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.frameWaiter == nil {
		return false
	}
	select {
	case s.frameWaiter <- frame:
	default:
	}
	s.frameWaiter = nil
	return true
}

// PicturePath returns the path behind the current picture screen.
func (s *Screens) PicturePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.picturePath
}

// ApprovalFrame returns the frame shown on the approval screen.
func (s *Screens) ApprovalFrame() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvalFrame
}

// SelectImage records the image picked from the last listing.
func (s *Screens) SelectImage(index int) (profile.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.listedImages) {
		return profile.Image{}, false
	}
	img := s.listedImages[index]
	s.selectedImage = &img
	return img, true
}

// SelectProfile records the profile picked from the last listing.
func (s *Screens) SelectProfile(folder string) (*profile.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.listedProfiles {
		if p.FolderName == folder {
			s.selectedProfile = p
			return p, true
		}
	}
	return nil, false
}

// SelectedProfile returns the profile behind the login confirmation screen.
func (s *Screens) SelectedProfile() *profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedProfile
}

// SelectedImage returns the image behind the photo detail screen.
func (s *Screens) SelectedImage() *profile.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedImage
}
