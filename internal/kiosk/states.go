// Package kiosk implements the task-queue-driven state machine at the heart
// of the face-ID kiosk: screen sequencing, authentication gating, enrollment
// and retraining.
package kiosk

// State identifies the screen or operation the kiosk is executing. The
// queued task carries the state to execute next; the dispatcher's current
// state is advisory bookkeeping used for diagnostics and the robot-side
// state topic.
type State string

const (
	StateROSConnection    State = "ROS_CONNECTION"
	StateROSHelloWorldAck State = "ROS_HELLO_WORLD_ACK"

	StateStarted             State = "STARTED"
	StateNewProfilePrompt    State = "NEW_PROFILE_PROMPT"
	StateMustLoginPrompt     State = "MUST_LOGIN_PROMPT"
	StateEnterNamePrompt     State = "ENTER_NAME_PROMPT"
	StateEvaluatingTypedName State = "EVALUATING_TYPED_NAME"
	StateListingImages       State = "LISTING_IMAGES"
	StateTakingWebcamPic     State = "TAKING_WEBCAM_PIC"
	StateCheckingTakenPic    State = "CHECKING_TAKEN_PIC"
	StatePicApproval         State = "PIC_APPROVAL"
	StatePicDisapproval      State = "PIC_DISAPPROVAL"
	StateSavingPic           State = "SAVING_PIC"
	StateListingProfiles     State = "LISTING_PROFILES"
	StateLoginDoubleCheck    State = "LOGIN_DOUBLE_CHECK"
	StateLoggingIn           State = "LOGGING_IN"
	StateCancellingLogin     State = "CANCELLING_LOGIN"
	StateWelcomeScreen       State = "WELCOME_SCREEN"
	StateShowingSelectedPic  State = "SHOWING_SELECTED_PHOTO"
	StateDeletingPhoto       State = "DELETING_PHOTO"
	StateRejectionPrompt     State = "REJECTION_PROMPT"

	StateAPIErrorCreate         State = "API_ERROR_CREATE"
	StateAPIErrorCountingFaces  State = "API_ERROR_COUNTING_FACES"
	StateAPIErrorAddingFace     State = "API_ERROR_ADDING_FACE"
	StateAPIErrorIdentifying    State = "API_ERROR_IDENTIFYING"
	StateAPIErrorGetName        State = "API_ERROR_GET_NAME"
	StateAPIErrorTrainingStatus State = "API_ERROR_TRAINING_STATUS"
	StateAPIErrorDeletingFace   State = "API_ERROR_DELETING_FACE"

	StateInternalErrorParsing    State = "INTERNAL_ERROR_PARSING"
	StateInternalErrorNameFromID State = "INTERNAL_ERROR_NAME_FROM_ID"
)
