// Package mock provides a mock face API gateway for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/face-kiosk/internal/faceapi"
)

// MockGateway is an in-memory implementation of faceapi.Gateway with
// injectable errors and scripted results.
type MockGateway struct {
	mu sync.Mutex

	// Scripted results
	PersonID        string
	FaceCount       int
	PersistedFaceID string
	DeleteResult    bool
	FaceIDs         []string
	Guesses         map[string]float64
	Statuses        []faceapi.TrainingStatus // consumed one per GetTrainingStatus call

	// Error injection
	CreatePersonError   error
	CountFacesError     error
	AddFaceError        error
	DeleteFaceError     error
	DetectFacesError    error
	IdentifyError       error
	StartTrainingError  error
	TrainingStatusError error

	// Call counters
	CreatePersonCalls   int
	CountFacesCalls     int
	AddFaceCalls        int
	DeleteFaceCalls     int
	DetectFacesCalls    int
	IdentifyCalls       int
	StartTrainingCalls  int
	TrainingStatusCalls int
}

// NewMockGateway creates a mock gateway with benign defaults.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		PersonID:        "person-1",
		FaceCount:       1,
		PersistedFaceID: "face-1",
		DeleteResult:    true,
		FaceIDs:         []string{"detected-1"},
		Guesses:         map[string]float64{},
		Statuses:        []faceapi.TrainingStatus{faceapi.TrainingSucceeded},
	}
}

func (m *MockGateway) CreatePerson(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatePersonCalls++
	if m.CreatePersonError != nil {
		return "", m.CreatePersonError
	}
	return m.PersonID, nil
}

func (m *MockGateway) CountFaces(ctx context.Context, image []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CountFacesCalls++
	if m.CountFacesError != nil {
		return 0, m.CountFacesError
	}
	return m.FaceCount, nil
}

func (m *MockGateway) AddFace(ctx context.Context, personID string, image []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddFaceCalls++
	if m.AddFaceError != nil {
		return "", m.AddFaceError
	}
	return m.PersistedFaceID, nil
}

func (m *MockGateway) DeleteFace(ctx context.Context, personID, persistedFaceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteFaceCalls++
	if m.DeleteFaceError != nil {
		return false, m.DeleteFaceError
	}
	return m.DeleteResult, nil
}

func (m *MockGateway) DetectFaces(ctx context.Context, image []byte) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DetectFacesCalls++
	if m.DetectFacesError != nil {
		return nil, m.DetectFacesError
	}
	return m.FaceIDs, nil
}

func (m *MockGateway) Identify(ctx context.Context, faceID string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IdentifyCalls++
	if m.IdentifyError != nil {
		return nil, m.IdentifyError
	}
	return m.Guesses, nil
}

func (m *MockGateway) StartTraining(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartTrainingCalls++
	return m.StartTrainingError
}

// GetTrainingStatus pops the next scripted status; the last one repeats.
func (m *MockGateway) GetTrainingStatus(ctx context.Context) (faceapi.TrainingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrainingStatusCalls++
	if m.TrainingStatusError != nil {
		return faceapi.TrainingAPIError, m.TrainingStatusError
	}
	if len(m.Statuses) == 0 {
		return faceapi.TrainingSucceeded, nil
	}
	status := m.Statuses[0]
	if len(m.Statuses) > 1 {
		m.Statuses = m.Statuses[1:]
	}
	return status, nil
}
