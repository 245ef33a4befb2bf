package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store loads and saves profiles under a single root directory, one folder
// per profile with an info file describing the enrolled images.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, creating the directory if absent.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("could not create storage root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Create allocates a folder for a new profile and persists its initial record.
// On a folder name collision the name gets a counter suffix: the n-th profile
// sharing the prefix becomes "<name> (<n>)".
func (s *Store) Create(displayName, personID string) (*Profile, error) {
	folderName := folderBase(displayName)
	if _, err := os.Stat(filepath.Join(s.root, folderName)); err == nil {
		n, err := s.countFoldersWithPrefix(folderName)
		if err != nil {
			return nil, err
		}
		folderName = fmt.Sprintf("%s (%d)", folderBase(displayName), n)
	}

	if err := os.MkdirAll(filepath.Join(s.root, folderName), 0750); err != nil {
		return nil, fmt.Errorf("could not create profile folder: %w", err)
	}

	p := &Profile{
		DisplayName: displayName,
		FolderName:  folderName,
		PersonID:    personID,
		ImageCount:  0,
		Images:      []Image{},
		ProfilePic:  NoPicture,
	}

	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) countFoldersWithPrefix(prefix string) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("could not read storage root: %w", err)
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			count++
		}
	}
	return count, nil
}

// imageEntry is the on-disk shape of one live image slot.
type imageEntry struct {
	Path            string `json:"path"`
	PersistedFaceID string `json:"persistedFaceId"`
}

// infoRecord is the on-disk shape of a profile. The images mapping is keyed
// by "Image <index>"; deleted slots hold the literal string "deleted" so
// index numbers are never reused.
type infoRecord struct {
	PersonID    string                     `json:"personId"`
	DisplayName string                     `json:"displayName"`
	Count       int                        `json:"count"`
	ProfilePic  string                     `json:"profilePic"`
	Images      map[string]json.RawMessage `json:"images"`
}

// Save writes the profile record to its folder's info file.
func (s *Store) Save(p *Profile) error {
	rec := infoRecord{
		PersonID:    p.PersonID,
		DisplayName: p.DisplayName,
		Count:       p.ImageCount,
		ProfilePic:  p.ProfilePic,
		Images:      make(map[string]json.RawMessage, p.ImageCount),
	}
	if rec.ProfilePic == "" {
		rec.ProfilePic = NoPicture
	}

	live := make(map[int]Image, len(p.Images))
	for _, img := range p.Images {
		live[img.IndexNumber] = img
	}

	for i := 0; i < p.ImageCount; i++ {
		key := fmt.Sprintf("%s %d", imageLabel, i)
		img, ok := live[i]
		if !ok {
			rec.Images[key], _ = json.Marshal(deletedLabel)
			continue
		}
		entry, err := json.Marshal(imageEntry{Path: img.Path, PersistedFaceID: img.PersistedFaceID})
		if err != nil {
			return fmt.Errorf("could not marshal image entry: %w", err)
		}
		rec.Images[key] = entry
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal profile: %w", err)
	}

	path := filepath.Join(s.root, p.FolderName, infoFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("could not write profile info: %w", err)
	}
	return nil
}

// Load reads one profile from its folder. Live images are ordered by slot
// index and their Number field is recomputed to skip deleted slots.
func (s *Store) Load(folderName string) (*Profile, error) {
	data, err := os.ReadFile(filepath.Join(s.root, folderName, infoFile))
	if err != nil {
		return nil, fmt.Errorf("could not read profile info: %w", err)
	}

	var rec infoRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("could not unmarshal profile info: %w", err)
	}

	p := &Profile{
		DisplayName: rec.DisplayName,
		FolderName:  folderName,
		PersonID:    rec.PersonID,
		ImageCount:  rec.Count,
		ProfilePic:  rec.ProfilePic,
		Images:      []Image{},
	}

	for i := 0; i < rec.Count; i++ {
		raw, ok := rec.Images[fmt.Sprintf("%s %d", imageLabel, i)]
		if !ok {
			return nil, fmt.Errorf("profile %s: missing image slot %d", folderName, i)
		}

		var deleted string
		if err := json.Unmarshal(raw, &deleted); err == nil {
			if deleted != deletedLabel {
				return nil, fmt.Errorf("profile %s: unexpected image slot value %q", folderName, deleted)
			}
			continue
		}

		var entry imageEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("profile %s: could not unmarshal image slot %d: %w", folderName, i, err)
		}

		p.Images = append(p.Images, Image{
			OwnerFolder:     folderName,
			IndexNumber:     i,
			Number:          len(p.Images),
			Path:            entry.Path,
			PersistedFaceID: entry.PersistedFaceID,
		})
	}

	return p, nil
}

// LoadAll scans the storage root and loads every folder carrying an info
// file. Unreadable profiles are logged by the caller's error and skipped.
func (s *Store) LoadAll() ([]*Profile, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("could not read storage root: %w", err)
	}

	var profiles []*Profile
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), infoFile)); err != nil {
			continue
		}
		p, err := s.Load(e.Name())
		if err != nil {
			// a corrupt profile must not take the whole listing down
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// NameForPersonID resolves a cloud person id to a display name using the
// local profile records. The comparison is case-insensitive.
func (s *Store) NameForPersonID(personID string) (string, bool) {
	profiles, err := s.LoadAll()
	if err != nil {
		return "", false
	}
	for _, p := range profiles {
		if strings.EqualFold(p.PersonID, personID) {
			return p.DisplayName, true
		}
	}
	return "", false
}

// AddImage persists new image bytes into the next slot of the profile and
// saves the updated record. The slot index comes from ImageCount, which only
// ever grows, so deleted slots are never reused.
func (s *Store) AddImage(p *Profile, data []byte, persistedFaceID string) (Image, error) {
	idx := p.ImageCount
	img := Image{
		OwnerFolder:     p.FolderName,
		IndexNumber:     idx,
		Number:          len(p.Images),
		Path:            filepath.Join(s.root, p.FolderName, fmt.Sprintf("%s %d.png", imageLabel, idx)),
		PersistedFaceID: persistedFaceID,
	}

	if err := os.WriteFile(img.Path, data, 0600); err != nil {
		return Image{}, fmt.Errorf("could not write image file: %w", err)
	}

	p.ImageCount = idx + 1
	p.Images = append(p.Images, img)

	if err := s.Save(p); err != nil {
		return Image{}, err
	}
	return img, nil
}

// DeleteImage removes an image from the profile, saves the record (the slot
// is exported as "deleted") and removes the file from disk.
func (s *Store) DeleteImage(p *Profile, img Image) error {
	kept := p.Images[:0]
	for _, cur := range p.Images {
		if cur.IndexNumber != img.IndexNumber {
			kept = append(kept, cur)
		}
	}
	p.Images = kept

	if err := s.Save(p); err != nil {
		return err
	}

	if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not remove image file: %w", err)
	}
	return nil
}

// PicturePath returns a displayable picture for the profile: the first PNG in
// its folder, or NoPicture when the profile has no photos yet.
func (s *Store) PicturePath(p *Profile) string {
	matches, err := filepath.Glob(filepath.Join(s.root, p.FolderName, "*.png"))
	if err != nil || len(matches) == 0 {
		return NoPicture
	}
	return matches[0]
}
