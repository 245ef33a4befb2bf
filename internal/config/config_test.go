package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("AUTH_MIN_IMAGES")
	os.Unsetenv("AUTH_CONFIDENCE_THRESHOLD")
	os.Unsetenv("TRAINING_MAX_POLLS")

	cfg := Load()

	if cfg.Auth.MinImages != 5 {
		t.Errorf("expected MinImages 5, got %d", cfg.Auth.MinImages)
	}

	if cfg.Auth.ConfidenceThreshold != 0.70 {
		t.Errorf("expected ConfidenceThreshold 0.70, got %f", cfg.Auth.ConfidenceThreshold)
	}

	if cfg.Training.MaxPolls != 60 {
		t.Errorf("expected MaxPolls 60, got %d", cfg.Training.MaxPolls)
	}

	if cfg.Training.PollInterval != time.Second {
		t.Errorf("expected PollInterval 1s, got %s", cfg.Training.PollInterval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MIN_IMAGES", "3")
	t.Setenv("AUTH_CONFIDENCE_THRESHOLD", "0.85")
	t.Setenv("FACEAPI_PERSON_GROUP", "lab")

	cfg := Load()

	if cfg.Auth.MinImages != 3 {
		t.Errorf("expected MinImages 3, got %d", cfg.Auth.MinImages)
	}

	if cfg.Auth.ConfidenceThreshold != 0.85 {
		t.Errorf("expected ConfidenceThreshold 0.85, got %f", cfg.Auth.ConfidenceThreshold)
	}

	if cfg.FaceAPI.PersonGroup != "lab" {
		t.Errorf("expected PersonGroup 'lab', got '%s'", cfg.FaceAPI.PersonGroup)
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("AUTH_MIN_IMAGES", "not-a-number")
	t.Setenv("AUTH_CONFIDENCE_THRESHOLD", "-1")

	cfg := Load()

	if cfg.Auth.MinImages != 5 {
		t.Errorf("expected fallback MinImages 5, got %d", cfg.Auth.MinImages)
	}

	if cfg.Auth.ConfidenceThreshold != 0.70 {
		t.Errorf("expected fallback ConfidenceThreshold 0.70, got %f", cfg.Auth.ConfidenceThreshold)
	}
}

func TestLoad_Prompts(t *testing.T) {
	cfg := Load()

	if cfg.Prompts.Started == "" {
		t.Error("expected embedded started prompt to be non-empty")
	}

	if cfg.Prompts.Welcome == "" {
		t.Error("expected embedded welcome prompt to be non-empty")
	}
}
