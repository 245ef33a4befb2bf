package kiosk

// Params carries the payload of a queued task. Producers (web handlers, the
// ROS command listener, the handlers themselves) attach whatever the target
// state needs under well known keys.
type Params map[string]any

// Task is one unit of work in the dispatcher queue.
type Task struct {
	State  State
	Params Params
}

// Parameter keys shared between task producers and handlers.
const (
	ParamTypedName      = "typedName"
	ParamPhoto          = "photo"
	ParamProfile        = "profile"
	ParamAttemptedLogin = "attemptedLogin"
	ParamProfileImage   = "profileImg"
	ParamName           = "name"
	ParamGuesses        = "guesses"
)
