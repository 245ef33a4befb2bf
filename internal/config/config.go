package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

type Config struct {
	Storage  StorageConfig
	FaceAPI  FaceAPIConfig
	Auth     AuthConfig
	Training TrainingConfig
	ROS      ROSConfig
	Web      WebConfig
	Database DatabaseConfig
	Prompts  PromptsConfig
}

type StorageConfig struct {
	Root string // directory holding one folder per profile, created if absent
}

type FaceAPIConfig struct {
	Endpoint    string // base URL of the face service
	AccessKey   string
	PersonGroup string // namespace for persons on the cloud side
}

type AuthConfig struct {
	MinImages           int           // live verification kicks in at this many enrolled images
	ConfidenceThreshold float64       // identify confidence required for acceptance
	CameraWarmup        time.Duration // delay before grabbing a fresh webcam frame
}

type TrainingConfig struct {
	PollInterval time.Duration // delay between training status checks
	MaxPolls     int           // status checks before giving up
}

type ROSConfig struct {
	BridgeURL      string  // rosbridge websocket URL, empty disables the bridge
	StatePublishHz float64 // kiosk state publish rate
}

type WebConfig struct {
	Port          int
	Host          string
	SessionSecret string // HMAC secret for session cookies
	SetupCode     string // code a kiosk display enters once to pair itself
}

type DatabaseConfig struct {
	URL          string // PostgreSQL URL for web session persistence (optional)
	MaxOpenConns int    // Maximum open connections (default 10)
	MaxIdleConns int    // Maximum idle connections (default 2)
}

// PromptsConfig holds the kiosk dialogue texts, loaded from the embedded
// prompts.yaml so wording can be tweaked without touching handler code.
type PromptsConfig struct {
	Started        string `yaml:"started"`
	NewProfile     string `yaml:"new_profile"`
	MustLogin      string `yaml:"must_login"`
	EnterName      string `yaml:"enter_name"`
	Thinking       string `yaml:"thinking"`
	ListImages     string `yaml:"list_images"`
	ListProfiles   string `yaml:"list_profiles"`
	TakePicture    string `yaml:"take_picture"`
	PicApproval    string `yaml:"pic_approval"`
	PicDisapproval string `yaml:"pic_disapproval"`
	LoginConfirm   string `yaml:"login_confirm"`
	Welcome        string `yaml:"welcome"`
	PhotoSelected  string `yaml:"photo_selected"`
	APIError       string `yaml:"api_error"`
	InternalError  string `yaml:"internal_error"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var prompts PromptsConfig
	if err := yaml.Unmarshal(promptsYAML, &prompts); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prompts.yaml: " + err.Error())
	}

	defaultRoot := filepath.Join(".", "ProfileData")

	return &Config{
		Storage: StorageConfig{
			Root: envString("KIOSK_STORAGE_ROOT", defaultRoot),
		},
		FaceAPI: FaceAPIConfig{
			Endpoint:    os.Getenv("FACEAPI_ENDPOINT"),
			AccessKey:   os.Getenv("FACEAPI_ACCESS_KEY"),
			PersonGroup: envString("FACEAPI_PERSON_GROUP", "kiosk"),
		},
		Auth: AuthConfig{
			MinImages:           envInt("AUTH_MIN_IMAGES", 5),
			ConfidenceThreshold: envFloat("AUTH_CONFIDENCE_THRESHOLD", 0.70),
			CameraWarmup:        time.Duration(envInt("AUTH_CAMERA_WARMUP_MS", 2000)) * time.Millisecond,
		},
		Training: TrainingConfig{
			PollInterval: time.Duration(envInt("TRAINING_POLL_INTERVAL_MS", 1000)) * time.Millisecond,
			MaxPolls:     envInt("TRAINING_MAX_POLLS", 60),
		},
		ROS: ROSConfig{
			BridgeURL:      os.Getenv("ROSBRIDGE_URL"),
			StatePublishHz: envFloat("ROS_STATE_PUBLISH_HZ", 3.0),
		},
		Web: WebConfig{
			Port:          envInt("KIOSK_WEB_PORT", 8080),
			Host:          envString("KIOSK_WEB_HOST", "0.0.0.0"),
			SessionSecret: os.Getenv("KIOSK_SESSION_SECRET"),
			SetupCode:     envString("KIOSK_SETUP_CODE", "letmein"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Prompts: prompts,
	}
}
