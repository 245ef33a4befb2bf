// Package profile implements the per-user profile records and their
// directory-per-user JSON persistence.
package profile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NoPicture is the profilePic value for profiles without an enrolled photo.
const NoPicture = "none"

const (
	infoFile     = "info.json"
	imageLabel   = "Image"
	deletedLabel = "deleted"
)

// Profile is the identity record for one enrolled user.
type Profile struct {
	DisplayName string
	FolderName  string // disambiguated on collision by appending a counter
	PersonID    string // cloud-assigned person identifier
	ImageCount  int    // slots ever allocated, including deleted ones
	Images      []Image // live images only
	ProfilePic  string // path, or NoPicture
}

// Image is one enrolled face image of a profile. The owner is referenced by
// folder name rather than a pointer so a reloaded profile cannot carry a
// stale back-reference.
type Image struct {
	OwnerFolder     string
	IndexNumber     int    // stable slot position, never reused after deletion
	Number          int    // 0-based position among live images, recomputed on load
	Path            string
	PersistedFaceID string // cloud-assigned id, required to delete the face later
}

// DisplayName returns the label shown to the user ("Photo 1", "Photo 2", ...).
func (img Image) DisplayName() string {
	return fmt.Sprintf("Photo %d", img.Number+1)
}

// SlotName returns the stable storage identifier of the image.
func (img Image) SlotName() string {
	return filepath.Join(img.OwnerFolder, fmt.Sprintf("%s %d", imageLabel, img.IndexNumber))
}

// LoginName derives the display name from a folder name by stripping the
// collision counter suffix ("Sam (1)" -> "Sam").
func LoginName(folderName string) string {
	if i := strings.Index(folderName, "("); i > 0 {
		return strings.TrimRight(folderName[:i], " ")
	}
	return folderName
}

func (p *Profile) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Display Name: %s\n", p.DisplayName)
	fmt.Fprintf(&b, "Folder Name: %s\n", p.FolderName)
	fmt.Fprintf(&b, "personId: %s\n", p.PersonID)
	fmt.Fprintf(&b, "Image Count: %d\n", p.ImageCount)
	fmt.Fprintf(&b, "Profile Picture: %s\n", p.ProfilePic)
	for _, img := range p.Images {
		fmt.Fprintf(&b, "  %s (%s)\n", img.SlotName(), img.PersistedFaceID)
	}
	return b.String()
}
