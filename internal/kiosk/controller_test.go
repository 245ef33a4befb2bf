package kiosk

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-kiosk/internal/config"
	"github.com/kozaktomas/face-kiosk/internal/faceapi/mock"
	"github.com/kozaktomas/face-kiosk/internal/profile"
)

// fakeUI records every display call for assertions.
type fakeUI struct {
	questions     []string
	okDialogs     []string
	inputPrompts  []string
	popups        []string
	pictures      []string
	captures      [][]byte
	imageListings int
	profiles      int
	webcamShown   int
	ready         int
	hidden        int

	frame      []byte
	captureErr error
}

func (f *fakeUI) AskQuestion(text string)         { f.questions = append(f.questions, text) }
func (f *fakeUI) PromptOKDialog(text string)      { f.okDialogs = append(f.okDialogs, text) }
func (f *fakeUI) PromptInputText(text string)     { f.inputPrompts = append(f.inputPrompts, text) }
func (f *fakeUI) PromptNoButtonPopup(text string) { f.popups = append(f.popups, text) }
func (f *fakeUI) ShowPicture(imagePath, text, yesLabel, noLabel string) {
	f.pictures = append(f.pictures, imagePath)
}
func (f *fakeUI) ShowCapture(frame []byte, text, yesLabel, noLabel string) {
	f.captures = append(f.captures, frame)
}
func (f *fakeUI) ListImages(text string, images []profile.Image)      { f.imageListings++ }
func (f *fakeUI) ListProfiles(text string, ps []*profile.Profile)     { f.profiles++ }
func (f *fakeUI) ShowWebcam(text string)                              { f.webcamShown++ }
func (f *fakeUI) ConnectionReady()                                    { f.ready++ }
func (f *fakeUI) HideAll()                                            { f.hidden++ }
func (f *fakeUI) CaptureFrame(ctx context.Context) ([]byte, error) {
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.frame, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			MinImages:           5,
			ConfidenceThreshold: 0.70,
			CameraWarmup:        time.Millisecond,
		},
		Training: config.TrainingConfig{
			PollInterval: time.Millisecond,
			MaxPolls:     5,
		},
		Prompts: config.PromptsConfig{
			Started:        "Hi! Are you new here?",
			NewProfile:     "Would you like to make a profile?",
			MustLogin:      "You must be logged in.",
			EnterName:      "What is your name?",
			Thinking:       "Hold on, I'm thinking... %s",
			ListImages:     "Here is your photo listing:",
			ListProfiles:   "Here are the existing profiles:",
			TakePicture:    "Take a picture!",
			PicApproval:    "I like it! What do you think?",
			PicDisapproval: "Can we try again?",
			LoginConfirm:   "Log in as %s?",
			Welcome:        "Welcome, %s!",
			PhotoSelected:  "Nice picture!",
			APIError:       "API Error\n%s",
			InternalError:  "Internal Error\n%s",
		},
	}
}

func newTestController(t *testing.T) (*Controller, *mock.MockGateway, *fakeUI, *profile.Store) {
	t.Helper()
	store, err := profile.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gw := mock.NewMockGateway()
	ui := &fakeUI{frame: []byte("frame")}
	c := NewController(testConfig(), store, gw, ui)
	return c, gw, ui, store
}

// drain runs queued tasks until the queue is empty.
func drain(t *testing.T, c *Controller) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if !c.dispatcher.RunOnce(context.Background()) {
			return
		}
	}
	t.Fatal("queue did not drain")
}

func TestEvaluateTypedName_InvalidNameLoopsBack(t *testing.T) {
	c, gw, ui, _ := newTestController(t)

	c.Enqueue(StateEvaluatingTypedName, Params{ParamTypedName: "ann3"})
	drain(t, c)

	if gw.CreatePersonCalls != 0 {
		t.Errorf("expected no person creation, got %d calls", gw.CreatePersonCalls)
	}
	if len(ui.inputPrompts) != 1 {
		t.Errorf("expected the name prompt to reopen, got %d prompts", len(ui.inputPrompts))
	}
}

func TestEvaluateTypedName_CreatesProfileAndLogsIn(t *testing.T) {
	c, gw, ui, store := newTestController(t)
	gw.PersonID = "person-ann"

	c.Enqueue(StateEvaluatingTypedName, Params{ParamTypedName: "ann"})
	drain(t, c)

	if gw.CreatePersonCalls != 1 {
		t.Fatalf("expected 1 person creation, got %d", gw.CreatePersonCalls)
	}
	if c.session.LoggedIn == nil || c.session.LoggedIn.DisplayName != "ann" {
		t.Fatalf("expected ann to be logged in, got %+v", c.session.LoggedIn)
	}
	// the fresh profile has no images so no verification happened
	if gw.DetectFacesCalls != 0 {
		t.Errorf("expected no verification for an empty profile, got %d detect calls", gw.DetectFacesCalls)
	}
	if len(ui.okDialogs) == 0 || !strings.Contains(ui.okDialogs[len(ui.okDialogs)-1], "Welcome, ann!") {
		t.Errorf("expected a welcome dialog, got %v", ui.okDialogs)
	}

	loaded, err := store.Load("ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.PersonID != "person-ann" {
		t.Errorf("expected person id 'person-ann', got '%s'", loaded.PersonID)
	}
}

func TestEvaluateTypedName_StoreFailureLogsOrphanedPerson(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	store, err := profile.NewStore(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// replace the storage root with a plain file so Create cannot make
	// the profile folder
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(root, []byte("not a directory"), 0600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gw := mock.NewMockGateway()
	gw.PersonID = "person-ann"
	ui := &fakeUI{frame: []byte("frame")}
	c := NewController(testConfig(), store, gw, ui)

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	c.Enqueue(StateEvaluatingTypedName, Params{ParamTypedName: "ann"})
	drain(t, c)

	if gw.CreatePersonCalls != 1 {
		t.Fatalf("expected the cloud person to be created first, got %d calls", gw.CreatePersonCalls)
	}
	if c.session.LoggedIn != nil {
		t.Error("expected no login after a failed profile write")
	}
	if len(ui.inputPrompts) != 1 {
		t.Errorf("expected the name prompt to reopen, got %d prompts", len(ui.inputPrompts))
	}
	if !strings.Contains(logs.String(), "person-ann") {
		t.Errorf("expected the orphaned person id in the log, got %q", logs.String())
	}
}

func TestMissingParam_QueuesSingleParsingError(t *testing.T) {
	c, gw, ui, _ := newTestController(t)

	c.Enqueue(StateEvaluatingTypedName, nil)
	if !c.dispatcher.RunOnce(context.Background()) {
		t.Fatal("expected the task to run")
	}

	if c.dispatcher.QueueLen() != 1 {
		t.Fatalf("expected exactly one follow-up task, got %d", c.dispatcher.QueueLen())
	}
	drain(t, c)

	if gw.CreatePersonCalls != 0 {
		t.Errorf("expected no person creation, got %d calls", gw.CreatePersonCalls)
	}
	if len(ui.okDialogs) != 1 || !strings.Contains(ui.okDialogs[0], "Internal Error") {
		t.Errorf("expected a single internal error dialog, got %v", ui.okDialogs)
	}
}

func TestCheckTakenPic_NoFaceBouncesFrame(t *testing.T) {
	c, gw, ui, _ := newTestController(t)
	gw.FaceCount = 0

	c.Enqueue(StateCheckingTakenPic, Params{ParamPhoto: []byte("frame")})
	drain(t, c)

	if len(ui.okDialogs) != 1 || !strings.Contains(ui.okDialogs[0], "try again") {
		t.Errorf("expected the disapproval dialog, got %v", ui.okDialogs)
	}
	if len(ui.captures) != 0 {
		t.Errorf("expected no approval screen, got %d", len(ui.captures))
	}
}

func TestCheckTakenPic_FaceFoundMovesToApproval(t *testing.T) {
	c, _, ui, store := newTestController(t)
	p, err := store.Create("ann", "person-ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.session.LoggedIn = p

	c.Enqueue(StateCheckingTakenPic, Params{ParamPhoto: []byte("frame")})
	drain(t, c)

	if len(ui.captures) != 1 {
		t.Fatalf("expected the approval screen, got %d captures", len(ui.captures))
	}
	if string(ui.captures[0]) != "frame" {
		t.Errorf("expected the captured frame on the approval screen")
	}
}

func TestSavePic_EnrollsStoresAndRetrains(t *testing.T) {
	c, gw, ui, store := newTestController(t)
	p, err := store.Create("ann", "person-ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.session.LoggedIn = p

	c.Enqueue(StateSavingPic, Params{ParamPhoto: []byte("png-bytes")})
	drain(t, c)

	if gw.AddFaceCalls != 1 {
		t.Errorf("expected 1 enrollment call, got %d", gw.AddFaceCalls)
	}
	if gw.StartTrainingCalls != 1 {
		t.Errorf("expected retraining, got %d start calls", gw.StartTrainingCalls)
	}
	if len(p.Images) != 1 {
		t.Fatalf("expected 1 stored image, got %d", len(p.Images))
	}
	if ui.imageListings != 1 {
		t.Errorf("expected the image listing, got %d", ui.imageListings)
	}
}

func TestSavePic_EnrollFailureShowsErrorScreen(t *testing.T) {
	c, gw, ui, store := newTestController(t)
	p, err := store.Create("ann", "person-ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.session.LoggedIn = p
	gw.AddFaceError = context.DeadlineExceeded

	c.Enqueue(StateSavingPic, Params{ParamPhoto: []byte("png-bytes")})
	drain(t, c)

	if len(p.Images) != 0 {
		t.Errorf("expected no stored image, got %d", len(p.Images))
	}
	if gw.StartTrainingCalls != 0 {
		t.Errorf("expected no retraining, got %d start calls", gw.StartTrainingCalls)
	}
	if len(ui.okDialogs) != 1 || !strings.Contains(ui.okDialogs[0], "API Error") {
		t.Errorf("expected an API error dialog, got %v", ui.okDialogs)
	}
}

func TestDeletePhoto_RemovesFaceAndRetrains(t *testing.T) {
	c, gw, ui, store := newTestController(t)
	p, err := store.Create("ann", "person-ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := store.AddImage(p, []byte("png-bytes"), "face-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.session.LoggedIn = p

	c.Enqueue(StateDeletingPhoto, Params{ParamProfileImage: img})
	drain(t, c)

	if gw.DeleteFaceCalls != 1 {
		t.Errorf("expected 1 delete call, got %d", gw.DeleteFaceCalls)
	}
	if len(p.Images) != 0 {
		t.Errorf("expected no images left, got %d", len(p.Images))
	}
	if p.ImageCount != 1 {
		t.Errorf("expected the slot counter untouched, got %d", p.ImageCount)
	}
	if gw.StartTrainingCalls != 1 {
		t.Errorf("expected retraining, got %d start calls", gw.StartTrainingCalls)
	}
	if ui.imageListings != 1 {
		t.Errorf("expected the image listing, got %d", ui.imageListings)
	}
}

func TestRejectionPrompt_NamesTheStrongestGuess(t *testing.T) {
	c, _, ui, store := newTestController(t)
	if _, err := store.Create("mary", "person-mary"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Enqueue(StateRejectionPrompt, Params{
		ParamName:    "ann",
		ParamGuesses: map[string]float64{"person-mary": 0.9},
	})
	drain(t, c)

	if len(ui.okDialogs) != 1 {
		t.Fatalf("expected 1 dialog, got %d", len(ui.okDialogs))
	}
	msg := ui.okDialogs[0]
	if !strings.Contains(msg, "Sorry ann") {
		t.Errorf("expected the attempted name in the message, got %q", msg)
	}
	if !strings.Contains(msg, "90% sure you are actually mary") {
		t.Errorf("expected the guess in the message, got %q", msg)
	}
}

func TestRejectionPrompt_UnknownPersonQueuesNameError(t *testing.T) {
	c, _, ui, _ := newTestController(t)

	c.Enqueue(StateRejectionPrompt, Params{
		ParamName:    "ann",
		ParamGuesses: map[string]float64{"person-unknown": 0.8},
	})
	drain(t, c)

	found := false
	for _, msg := range ui.okDialogs {
		if strings.Contains(msg, "Internal Error") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the name lookup error screen, got %v", ui.okDialogs)
	}
}

func TestCancelLogin_ClearsSessionAndListsProfiles(t *testing.T) {
	c, _, ui, store := newTestController(t)
	p, err := store.Create("ann", "person-ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.session.LoggedIn = p

	c.Enqueue(StateCancellingLogin, nil)
	drain(t, c)

	if c.session.LoggedIn != nil {
		t.Error("expected the session to be cleared")
	}
	if ui.profiles != 1 {
		t.Errorf("expected the profile listing, got %d", ui.profiles)
	}
}

func TestSnapshot_ReportsStateAndLogin(t *testing.T) {
	c, _, _, store := newTestController(t)

	state, name := c.Snapshot()
	if state != "" || name != "" {
		t.Errorf("expected an empty snapshot, got %s/%s", state, name)
	}

	p, err := store.Create("ann", "person-ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.session.LoggedIn = p
	c.Enqueue(StateStarted, nil)
	drain(t, c)

	state, name = c.Snapshot()
	if state != StateStarted {
		t.Errorf("expected state STARTED, got %s", state)
	}
	if name != "ann" {
		t.Errorf("expected logged-in name 'ann', got '%s'", name)
	}
}
