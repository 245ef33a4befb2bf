package kiosk

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/kozaktomas/face-kiosk/internal/profile"
)

func (c *Controller) registerHandlers() {
	c.dispatcher.Register(StateROSConnection, c.openConnectionScreen)
	c.dispatcher.Register(StateROSHelloWorldAck, c.acknowledgeHello)

	c.dispatcher.Register(StateStarted, c.openStartScreen)
	c.dispatcher.Register(StateNewProfilePrompt, c.askNewProfile)
	c.dispatcher.Register(StateMustLoginPrompt, c.explainMustLogin)
	c.dispatcher.Register(StateEnterNamePrompt, c.askForName)
	c.dispatcher.Register(StateEvaluatingTypedName, c.evaluateTypedName)
	c.dispatcher.Register(StateListingImages, c.listImages)
	c.dispatcher.Register(StateTakingWebcamPic, c.openWebcam)
	c.dispatcher.Register(StateCheckingTakenPic, c.checkTakenPic)
	c.dispatcher.Register(StatePicApproval, c.askPicApproval)
	c.dispatcher.Register(StatePicDisapproval, c.rejectPic)
	c.dispatcher.Register(StateSavingPic, c.savePic)
	c.dispatcher.Register(StateListingProfiles, c.listProfiles)
	c.dispatcher.Register(StateLoginDoubleCheck, c.confirmLogin)
	c.dispatcher.Register(StateLoggingIn, c.logIn)
	c.dispatcher.Register(StateCancellingLogin, c.cancelLogin)
	c.dispatcher.Register(StateWelcomeScreen, c.welcome)
	c.dispatcher.Register(StateShowingSelectedPic, c.showSelectedPhoto)
	c.dispatcher.Register(StateDeletingPhoto, c.deletePhoto)
	c.dispatcher.Register(StateRejectionPrompt, c.rejectLogin)

	apiErr := c.cfg.Prompts.APIError
	c.dispatcher.Register(StateAPIErrorCreate, c.errorScreen(apiErr, "Could not create the profile."))
	c.dispatcher.Register(StateAPIErrorCountingFaces, c.errorScreen(apiErr, "Could not check the picture for faces."))
	c.dispatcher.Register(StateAPIErrorAddingFace, c.errorScreen(apiErr, "Could not enroll the picture."))
	c.dispatcher.Register(StateAPIErrorIdentifying, c.errorScreen(apiErr, "Could not verify who you are."))
	c.dispatcher.Register(StateAPIErrorGetName, c.errorScreen(apiErr, "Could not look up a profile name."))
	c.dispatcher.Register(StateAPIErrorTrainingStatus, c.errorScreen(apiErr, "Could not retrain the profiles."))
	c.dispatcher.Register(StateAPIErrorDeletingFace, c.errorScreen(apiErr, "Could not delete the picture."))

	intErr := c.cfg.Prompts.InternalError
	c.dispatcher.Register(StateInternalErrorParsing, c.errorScreen(intErr, "Could not read the task parameters."))
	c.dispatcher.Register(StateInternalErrorNameFromID, c.errorScreen(intErr, "Could not match a person to a profile."))
}

func (c *Controller) openConnectionScreen(_ context.Context, _ Params) {
	c.session.Clear()
	c.ui.HideAll()
}

func (c *Controller) acknowledgeHello(_ context.Context, _ Params) {
	c.ui.ConnectionReady()
}

func (c *Controller) openStartScreen(_ context.Context, _ Params) {
	c.ui.AskQuestion(c.cfg.Prompts.Started)
}

func (c *Controller) askNewProfile(_ context.Context, _ Params) {
	c.ui.AskQuestion(c.cfg.Prompts.NewProfile)
}

func (c *Controller) explainMustLogin(_ context.Context, _ Params) {
	c.ui.PromptOKDialog(c.cfg.Prompts.MustLogin)
}

func (c *Controller) askForName(_ context.Context, _ Params) {
	c.ui.PromptInputText(c.cfg.Prompts.EnterName)
}

// evaluateTypedName validates the typed name, registers the person with the
// face service and hands the new profile over to the login flow. An invalid
// name loops back to the name prompt.
func (c *Controller) evaluateTypedName(ctx context.Context, params Params) {
	name, ok := param[string](c, params, ParamTypedName)
	if !ok {
		return
	}

	if !ValidName(name) {
		c.dispatcher.Enqueue(StateEnterNamePrompt, nil)
		return
	}

	c.ui.PromptNoButtonPopup(fmt.Sprintf(c.cfg.Prompts.Thinking, "I'm creating your profile."))

	personID, err := c.gateway.CreatePerson(ctx, name)
	if err != nil || personID == "" {
		c.apiFailure(StateAPIErrorCreate, err)
		return
	}

	p, err := c.store.Create(name, personID)
	if err != nil {
		// the cloud person outlives the failed local record and needs
		// manual cleanup in the person group
		log.Printf("could not persist new profile, orphaning person %s: %v", personID, err)
		c.dispatcher.Enqueue(StateEnterNamePrompt, nil)
		return
	}

	c.dispatcher.Enqueue(StateLoggingIn, Params{ParamProfile: p})
}

func (c *Controller) listImages(_ context.Context, _ Params) {
	if c.session.LoggedIn == nil {
		log.Print("cannot list images without a logged-in profile")
		return
	}
	c.ui.ListImages(c.cfg.Prompts.ListImages, c.session.LoggedIn.Images)
}

func (c *Controller) openWebcam(ctx context.Context, _ Params) {
	c.authenticateThenDo(ctx, c.session.LoggedIn, nil, false, func() {
		c.ui.ShowWebcam(c.cfg.Prompts.TakePicture)
	})
}

// checkTakenPic asks the face service how many faces the captured frame
// holds. Frames without a face are bounced; usable frames move on to the
// approval screen, re-verifying the user with the very frame they just took.
func (c *Controller) checkTakenPic(ctx context.Context, params Params) {
	frame, ok := param[[]byte](c, params, ParamPhoto)
	if !ok {
		return
	}

	c.ui.PromptNoButtonPopup(fmt.Sprintf(c.cfg.Prompts.Thinking, "I'm checking your picture."))

	count, err := c.gateway.CountFaces(ctx, frame)
	if err != nil {
		c.apiFailure(StateAPIErrorCountingFaces, err)
		return
	}
	if count < 1 {
		c.dispatcher.Enqueue(StatePicDisapproval, nil)
		return
	}

	c.authenticateThenDo(ctx, c.session.LoggedIn, frame, false, func() {
		c.dispatcher.Enqueue(StatePicApproval, Params{ParamPhoto: frame})
	})
}

func (c *Controller) askPicApproval(_ context.Context, params Params) {
	frame, ok := param[[]byte](c, params, ParamPhoto)
	if !ok {
		return
	}
	c.ui.ShowCapture(frame, c.cfg.Prompts.PicApproval, "Save it", "Try again")
}

func (c *Controller) rejectPic(_ context.Context, _ Params) {
	c.ui.PromptOKDialog(c.cfg.Prompts.PicDisapproval)
}

// savePic enrolls the approved frame with the face service, stores it in the
// profile folder and retrains the person group.
func (c *Controller) savePic(ctx context.Context, params Params) {
	frame, ok := param[[]byte](c, params, ParamPhoto)
	if !ok {
		return
	}
	if c.session.LoggedIn == nil {
		log.Print("cannot save a picture without a logged-in profile")
		return
	}

	c.ui.PromptNoButtonPopup(fmt.Sprintf(c.cfg.Prompts.Thinking, "I'm saving your picture."))

	faceID, err := c.gateway.AddFace(ctx, c.session.LoggedIn.PersonID, frame)
	if err != nil || faceID == "" {
		c.apiFailure(StateAPIErrorAddingFace, err)
		return
	}

	if _, err := c.store.AddImage(c.session.LoggedIn, frame, faceID); err != nil {
		log.Printf("could not store image: %v", err)
		return
	}

	if !c.retrainProfiles(ctx) {
		return
	}

	c.dispatcher.Enqueue(StateListingImages, nil)
}

func (c *Controller) listProfiles(_ context.Context, _ Params) {
	profiles, err := c.store.LoadAll()
	if err != nil {
		log.Printf("could not load profiles: %v", err)
		return
	}
	c.ui.ListProfiles(c.cfg.Prompts.ListProfiles, profiles)
}

func (c *Controller) confirmLogin(_ context.Context, params Params) {
	p, ok := param[*profile.Profile](c, params, ParamAttemptedLogin)
	if !ok {
		return
	}
	c.session.Selected = p
	text := fmt.Sprintf(c.cfg.Prompts.LoginConfirm, p.DisplayName)
	c.ui.ShowPicture(c.store.PicturePath(p), text, "Log in", "Back")
}

// logIn verifies the user against the profile when it carries enough images
// and completes the login on success. A failed verification queues the
// rejection prompt from inside the verifier.
func (c *Controller) logIn(ctx context.Context, params Params) {
	p, ok := param[*profile.Profile](c, params, ParamProfile)
	if !ok {
		return
	}

	c.authenticateThenDo(ctx, p, nil, true, func() {
		c.session.LoggedIn = p
		c.dispatcher.Enqueue(StateWelcomeScreen, nil)
	})
}

func (c *Controller) cancelLogin(_ context.Context, _ Params) {
	if c.session.LoggedIn != nil {
		if err := c.store.Save(c.session.LoggedIn); err != nil {
			log.Printf("could not persist profile on logout: %v", err)
		}
	}
	c.session.Clear()
	c.dispatcher.Enqueue(StateListingProfiles, nil)
}

func (c *Controller) welcome(_ context.Context, _ Params) {
	if c.session.LoggedIn == nil {
		log.Print("welcome screen requested without a logged-in profile")
		return
	}
	c.ui.PromptOKDialog(fmt.Sprintf(c.cfg.Prompts.Welcome, c.session.LoggedIn.DisplayName))
}

func (c *Controller) showSelectedPhoto(_ context.Context, params Params) {
	img, ok := param[profile.Image](c, params, ParamProfileImage)
	if !ok {
		return
	}
	c.session.SelectedImage = &img
	c.ui.ShowPicture(img.Path, c.cfg.Prompts.PhotoSelected, "Delete it", "Keep it")
}

// deletePhoto removes an enrolled face from the cloud and from disk, then
// retrains so the deleted face stops matching.
func (c *Controller) deletePhoto(ctx context.Context, params Params) {
	img, ok := param[profile.Image](c, params, ParamProfileImage)
	if !ok {
		return
	}
	if c.session.LoggedIn == nil {
		log.Print("cannot delete a picture without a logged-in profile")
		return
	}

	c.authenticateThenDo(ctx, c.session.LoggedIn, nil, false, func() {
		c.ui.PromptNoButtonPopup(fmt.Sprintf(c.cfg.Prompts.Thinking, "I'm deleting your picture."))

		deleted, err := c.gateway.DeleteFace(ctx, c.session.LoggedIn.PersonID, img.PersistedFaceID)
		if err != nil || !deleted {
			c.apiFailure(StateAPIErrorDeletingFace, err)
			return
		}

		if err := c.store.DeleteImage(c.session.LoggedIn, img); err != nil {
			log.Printf("could not delete image: %v", err)
			return
		}

		if !c.retrainProfiles(ctx) {
			return
		}

		c.session.SelectedImage = nil
		c.dispatcher.Enqueue(StateListingImages, nil)
	})
}

// rejectLogin tells the user who the face service thinks they are instead of
// the profile they picked.
func (c *Controller) rejectLogin(_ context.Context, params Params) {
	name, ok := param[string](c, params, ParamName)
	if !ok {
		return
	}
	guesses, ok := param[map[string]float64](c, params, ParamGuesses)
	if !ok {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sorry %s, I don't believe you!", name)
	for _, guess := range sortGuesses(guesses) {
		guessedName, found := c.store.NameForPersonID(guess.personID)
		if !found {
			log.Printf("no local profile for person id %s", guess.personID)
			c.dispatcher.Enqueue(StateInternalErrorNameFromID, nil)
			continue
		}
		fmt.Fprintf(&b, "\nI am %.0f%% sure you are actually %s.", guess.confidence*100, guessedName)
	}
	if len(guesses) == 0 {
		b.WriteString("\nI don't recognize you at all.")
	}

	c.ui.PromptOKDialog(b.String())
}

type guess struct {
	personID   string
	confidence float64
}

// sortGuesses orders identification candidates by descending confidence so
// the rejection message leads with the strongest match.
func sortGuesses(guesses map[string]float64) []guess {
	out := make([]guess, 0, len(guesses))
	for id, conf := range guesses {
		out = append(out, guess{personID: id, confidence: conf})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].confidence != out[j].confidence {
			return out[i].confidence > out[j].confidence
		}
		return out[i].personID < out[j].personID
	})
	return out
}
