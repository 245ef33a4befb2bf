package web

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/kozaktomas/face-kiosk/internal/imaging"
	"github.com/kozaktomas/face-kiosk/internal/kiosk"
	"github.com/kozaktomas/face-kiosk/internal/profile"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// maxFrameBytes caps uploaded webcam frames.
const maxFrameBytes = 8 << 20

// frameMaxEdge is the longest edge frames are downscaled to before they hit
// storage or the face service.
const frameMaxEdge = 1280

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// handleHealthCheck handles the health check endpoint.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handlePair exchanges the setup code for a display session cookie.
func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code  string `json:"code"`
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Code), []byte(s.config.Web.SetupCode)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid setup code")
		return
	}

	session, err := s.sessionManager.CreateSession(r.Context(), req.Label)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	s.sessionManager.SetSessionCookie(w, session)

	respondJSON(w, http.StatusOK, map[string]string{
		"session_id": session.ID,
		"expires_at": session.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// handleUnpair drops the display session.
func (s *Server) handleUnpair(w http.ResponseWriter, r *http.Request) {
	if session := s.sessionManager.GetSessionFromRequest(r); session != nil {
		s.sessionManager.DeleteSession(r.Context(), session.ID)
	}
	s.sessionManager.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"paired": false})
}

// handleAuthStatus reports whether the request carries a valid pairing.
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	session := s.sessionManager.GetSessionFromRequest(r)
	respondJSON(w, http.StatusOK, map[string]bool{"paired": session != nil})
}

// handleScreen returns the current screen plus kiosk status.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	state, loggedIn := s.controller.Snapshot()
	respondJSON(w, http.StatusOK, map[string]any{
		"screen":    s.screens.Current(),
		"state":     state,
		"logged_in": loggedIn,
		"connected": s.screens.Connected(),
	})
}

// handleScreenPicture serves the image behind the current picture screen.
func (s *Server) handleScreenPicture(w http.ResponseWriter, r *http.Request) {
	path := s.screens.PicturePath()
	if path == "" || path == profile.NoPicture {
		respondError(w, http.StatusNotFound, "no picture on screen")
		return
	}
	http.ServeFile(w, r, path)
}

// handleEvents streams screen updates as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventCh := s.screens.AddListener()
	defer s.screens.RemoveListener(eventCh)

	current := s.screens.Current()
	sendSSEEvent(w, flusher, "screen", ScreenEvent{Type: "screen", Screen: &current})

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
		}
	}
}

// sendSSEEvent writes one event to the stream.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("could not marshal SSE event: %v", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	flusher.Flush()
}

// handleAnswer routes a yes/no answer based on the question on screen.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Answer != "yes" && req.Answer != "no" {
		respondError(w, http.StatusBadRequest, "answer must be yes or no")
		return
	}
	yes := req.Answer == "yes"

	state, _ := s.controller.Snapshot()
	switch state {
	case kiosk.StateStarted:
		if yes {
			s.controller.Enqueue(kiosk.StateNewProfilePrompt, nil)
		} else {
			s.controller.Enqueue(kiosk.StateListingProfiles, nil)
		}
	case kiosk.StateNewProfilePrompt:
		if yes {
			s.controller.Enqueue(kiosk.StateEnterNamePrompt, nil)
		} else {
			s.controller.Enqueue(kiosk.StateMustLoginPrompt, nil)
		}
	case kiosk.StateLoginDoubleCheck:
		if yes {
			p := s.screens.SelectedProfile()
			if p == nil {
				respondError(w, http.StatusConflict, "no profile selected")
				return
			}
			s.controller.Enqueue(kiosk.StateLoggingIn, kiosk.Params{kiosk.ParamProfile: p})
		} else {
			s.controller.Enqueue(kiosk.StateCancellingLogin, nil)
		}
	case kiosk.StatePicApproval:
		if yes {
			frame := s.screens.ApprovalFrame()
			if frame == nil {
				respondError(w, http.StatusConflict, "no captured frame")
				return
			}
			s.controller.Enqueue(kiosk.StateSavingPic, kiosk.Params{kiosk.ParamPhoto: frame})
		} else {
			s.controller.Enqueue(kiosk.StateTakingWebcamPic, nil)
		}
	case kiosk.StateShowingSelectedPic:
		if yes {
			img := s.screens.SelectedImage()
			if img == nil {
				respondError(w, http.StatusConflict, "no photo selected")
				return
			}
			s.controller.Enqueue(kiosk.StateDeletingPhoto, kiosk.Params{kiosk.ParamProfileImage: *img})
		} else {
			s.controller.Enqueue(kiosk.StateListingImages, nil)
		}
	default:
		respondError(w, http.StatusConflict, "no question on screen")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// handleOK routes the OK button based on the message on screen.
func (s *Server) handleOK(w http.ResponseWriter, r *http.Request) {
	state, _ := s.controller.Snapshot()
	switch state {
	case kiosk.StateROSConnection:
		// continue button on the connection screen
		s.controller.Enqueue(kiosk.StateStarted, nil)
	case kiosk.StateMustLoginPrompt:
		s.controller.Enqueue(kiosk.StateListingProfiles, nil)
	case kiosk.StatePicDisapproval:
		s.controller.Enqueue(kiosk.StateTakingWebcamPic, nil)
	case kiosk.StateWelcomeScreen:
		s.controller.Enqueue(kiosk.StateListingImages, nil)
	case kiosk.StateRejectionPrompt,
		kiosk.StateAPIErrorCreate,
		kiosk.StateAPIErrorCountingFaces,
		kiosk.StateAPIErrorAddingFace,
		kiosk.StateAPIErrorIdentifying,
		kiosk.StateAPIErrorGetName,
		kiosk.StateAPIErrorTrainingStatus,
		kiosk.StateAPIErrorDeletingFace,
		kiosk.StateInternalErrorParsing,
		kiosk.StateInternalErrorNameFromID:
		s.controller.Enqueue(kiosk.StateCancellingLogin, nil)
	default:
		respondError(w, http.StatusConflict, "nothing to confirm")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// handleText submits the typed profile name.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	state, _ := s.controller.Snapshot()
	if state != kiosk.StateEnterNamePrompt {
		respondError(w, http.StatusConflict, "no input field on screen")
		return
	}

	s.controller.Enqueue(kiosk.StateEvaluatingTypedName, kiosk.Params{kiosk.ParamTypedName: req.Text})
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// handleSelectProfile picks a profile from the listing and opens the login
// confirmation.
func (s *Server) handleSelectProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Folder string `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	p, ok := s.screens.SelectProfile(req.Folder)
	if !ok {
		respondError(w, http.StatusNotFound, "profile not listed")
		return
	}

	s.controller.Enqueue(kiosk.StateLoginDoubleCheck, kiosk.Params{kiosk.ParamAttemptedLogin: p})
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// handleSelectImage picks a photo from the listing and opens its detail view.
func (s *Server) handleSelectImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	img, ok := s.screens.SelectImage(req.Index)
	if !ok {
		respondError(w, http.StatusNotFound, "photo not listed")
		return
	}

	s.controller.Enqueue(kiosk.StateShowingSelectedPic, kiosk.Params{kiosk.ParamProfileImage: img})
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// handleNewPicture opens the webcam from the photo listing.
func (s *Server) handleNewPicture(w http.ResponseWriter, r *http.Request) {
	s.controller.Enqueue(kiosk.StateTakingWebcamPic, nil)
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// handleNewProfile opens the name prompt from the profile listing.
func (s *Server) handleNewProfile(w http.ResponseWriter, r *http.Request) {
	s.controller.Enqueue(kiosk.StateEnterNamePrompt, nil)
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// handleLogout logs the current profile out.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.controller.Enqueue(kiosk.StateCancellingLogin, nil)
	respondJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

// handleFrame receives a webcam frame from the display. A pending
// verification capture consumes it; otherwise it is treated as a picture the
// user just took and goes through the face check.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read frame")
		return
	}

	normalized, err := imaging.Normalize(data, frameMaxEdge)
	if err != nil {
		respondError(w, http.StatusBadRequest, "frame is not a decodable image")
		return
	}

	if s.screens.DeliverFrame(normalized) {
		respondJSON(w, http.StatusAccepted, map[string]string{"frame": "consumed"})
		return
	}

	s.controller.Enqueue(kiosk.StateCheckingTakenPic, kiosk.Params{kiosk.ParamPhoto: normalized})
	respondJSON(w, http.StatusAccepted, map[string]string{"frame": "queued"})
}
