package kiosk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kozaktomas/face-kiosk/internal/profile"
)

func profileWithImages(n int) *profile.Profile {
	return &profile.Profile{
		DisplayName: "ann",
		FolderName:  "ann",
		PersonID:    "person-ann",
		ImageCount:  n,
		Images:      make([]profile.Image, n),
	}
}

func TestLogIn_SkipsVerificationBelowImageThreshold(t *testing.T) {
	c, gw, _, _ := newTestController(t)
	p := profileWithImages(4)

	c.Enqueue(StateLoggingIn, Params{ParamProfile: p})
	drain(t, c)

	if gw.DetectFacesCalls != 0 {
		t.Errorf("expected no verification for 4 images, got %d detect calls", gw.DetectFacesCalls)
	}
	if c.session.LoggedIn != p {
		t.Error("expected login to succeed without verification")
	}
}

func TestLogIn_VerifiesAtImageThreshold(t *testing.T) {
	c, gw, ui, _ := newTestController(t)
	p := profileWithImages(5)
	gw.Guesses = map[string]float64{"person-ann": 0.70}

	c.Enqueue(StateLoggingIn, Params{ParamProfile: p})
	drain(t, c)

	if gw.DetectFacesCalls != 1 {
		t.Fatalf("expected 1 detect call for 5 images, got %d", gw.DetectFacesCalls)
	}
	if gw.IdentifyCalls != 1 {
		t.Fatalf("expected 1 identify call, got %d", gw.IdentifyCalls)
	}
	if c.session.LoggedIn != p {
		t.Error("expected login to succeed at exactly the confidence threshold")
	}
	if len(ui.okDialogs) == 0 || !strings.Contains(ui.okDialogs[len(ui.okDialogs)-1], "Welcome") {
		t.Errorf("expected a welcome dialog, got %v", ui.okDialogs)
	}
}

func TestLogIn_RejectsBelowConfidenceThreshold(t *testing.T) {
	c, gw, ui, store := newTestController(t)
	if _, err := store.Create("mary", "person-mary"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Create("ann", "person-ann"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := profileWithImages(5)
	gw.Guesses = map[string]float64{
		"person-ann":  0.6999,
		"person-mary": 0.95,
	}

	c.Enqueue(StateLoggingIn, Params{ParamProfile: p})
	drain(t, c)

	if c.session.LoggedIn != nil {
		t.Error("expected login to be rejected below the threshold")
	}
	if len(ui.okDialogs) != 1 {
		t.Fatalf("expected the rejection dialog, got %v", ui.okDialogs)
	}
	if !strings.Contains(ui.okDialogs[0], "Sorry ann") {
		t.Errorf("expected the rejection message, got %q", ui.okDialogs[0])
	}
	if !strings.Contains(ui.okDialogs[0], "mary") {
		t.Errorf("expected the stronger candidate to be named, got %q", ui.okDialogs[0])
	}
}

func TestLogIn_UnknownFaceGetsRejection(t *testing.T) {
	c, gw, ui, _ := newTestController(t)
	p := profileWithImages(5)
	gw.Guesses = map[string]float64{} // service recognized nobody

	c.Enqueue(StateLoggingIn, Params{ParamProfile: p})
	drain(t, c)

	if c.session.LoggedIn != nil {
		t.Error("expected login to be rejected")
	}
	if len(ui.okDialogs) != 1 || !strings.Contains(ui.okDialogs[0], "don't recognize you") {
		t.Errorf("expected the no-match rejection, got %v", ui.okDialogs)
	}
}

func TestLogIn_GatewayFailureShowsIdentifyError(t *testing.T) {
	c, gw, ui, _ := newTestController(t)
	p := profileWithImages(5)
	gw.DetectFacesError = errors.New("service unavailable")

	c.Enqueue(StateLoggingIn, Params{ParamProfile: p})
	drain(t, c)

	if c.session.LoggedIn != nil {
		t.Error("expected login to fail")
	}
	if len(ui.okDialogs) != 1 || !strings.Contains(ui.okDialogs[0], "API Error") {
		t.Errorf("expected the identify error screen, got %v", ui.okDialogs)
	}
}

func TestLogIn_NoFaceInFrameShowsIdentifyError(t *testing.T) {
	c, gw, ui, _ := newTestController(t)
	p := profileWithImages(5)
	gw.FaceIDs = []string{}

	c.Enqueue(StateLoggingIn, Params{ParamProfile: p})
	drain(t, c)

	if c.session.LoggedIn != nil {
		t.Error("expected login to fail")
	}
	if len(ui.okDialogs) != 1 || !strings.Contains(ui.okDialogs[0], "API Error") {
		t.Errorf("expected the identify error screen, got %v", ui.okDialogs)
	}
}

func TestLogIn_CaptureFailureShowsIdentifyError(t *testing.T) {
	c, _, ui, _ := newTestController(t)
	p := profileWithImages(5)
	ui.captureErr = errors.New("no webcam")

	c.Enqueue(StateLoggingIn, Params{ParamProfile: p})
	drain(t, c)

	if c.session.LoggedIn != nil {
		t.Error("expected login to fail")
	}
	if len(ui.okDialogs) != 1 || !strings.Contains(ui.okDialogs[0], "API Error") {
		t.Errorf("expected the identify error screen, got %v", ui.okDialogs)
	}
}

func TestVerify_ReusesProvidedFrame(t *testing.T) {
	c, gw, ui, _ := newTestController(t)
	p := profileWithImages(5)
	gw.Guesses = map[string]float64{"person-ann": 0.9}

	ok, err := c.verify(context.Background(), p, []byte("existing frame"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected verification to pass")
	}
	if ui.hidden != 0 {
		t.Errorf("expected no fresh capture sequence, screen hidden %d times", ui.hidden)
	}
}
