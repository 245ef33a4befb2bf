package kiosk

import "github.com/kozaktomas/face-kiosk/internal/profile"

// Session holds the mutable login state of the kiosk. It lives on the
// controller and is only touched from the dispatcher goroutine, so it needs
// no locking of its own.
type Session struct {
	LoggedIn      *profile.Profile // nil while nobody is logged in
	Selected      *profile.Profile // profile highlighted in the login listing
	SelectedImage *profile.Image   // photo highlighted in the image listing
}

// Clear drops all login state.
func (s *Session) Clear() {
	s.LoggedIn = nil
	s.Selected = nil
	s.SelectedImage = nil
}
