// Package store keeps composed pieces as timestamped snapshots grouped into
// project folders:
//
//	<root>/<project>/2006-01-02_15-04-05[_name].mpk
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"go-markov/debug"
	"go-markov/music"
)

const (
	ext             = ".mpk"
	timestampLayout = "2006-01-02_15-04-05"
	// DefaultProject receives saves made without a project name
	DefaultProject = "untitled"
)

var ErrNoSaves = errors.New("no saves found")

// Snapshot is what a save file holds: the piece and the seed that produced it
type Snapshot struct {
	Seed    uint64       `msgpack:"seed"`
	Created time.Time    `msgpack:"created"`
	Piece   *music.Piece `msgpack:"piece"`
}

// SaveInfo represents a saved piece file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Store reads and writes snapshots under Root
type Store struct {
	Root string
	// Now stamps new saves; defaults to time.Now
	Now func() time.Time
}

// New creates a store rooted at dir
func New(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Open creates a store at the default projects directory
func Open() (*Store, error) {
	dir, err := ProjectsDir()
	if err != nil {
		return nil, err
	}
	return New(dir), nil
}

// ProjectsDir returns the default projects directory path
func ProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-markov", "projects"), nil
}

// ProjectDir returns the path to a specific project
func (s *Store) ProjectDir(project string) string {
	return filepath.Join(s.Root, project)
}

// ListProjects returns all project folder names
func (s *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func (s *Store) ListSaves(project string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(s.ProjectDir(project))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, ok := parseFilename(entry.Name())
		if !ok {
			continue
		}
		saves = append(saves, info)
	}

	sort.SliceStable(saves, func(i, j int) bool {
		if !saves[i].Timestamp.Equal(saves[j].Timestamp) {
			return saves[i].Timestamp.After(saves[j].Timestamp)
		}
		return saves[i].Filename > saves[j].Filename
	})
	return saves, nil
}

// parseFilename splits 2024-01-15_14-30-00.mpk or 2024-01-15_14-30-00_name.mpk
func parseFilename(filename string) (SaveInfo, bool) {
	base, found := strings.CutSuffix(filename, ext)
	if !found || len(base) < len(timestampLayout) {
		return SaveInfo{}, false
	}
	ts, err := time.Parse(timestampLayout, base[:len(timestampLayout)])
	if err != nil {
		return SaveInfo{}, false
	}
	name := ""
	if rest := base[len(timestampLayout):]; rest != "" {
		if rest[0] != '_' {
			return SaveInfo{}, false
		}
		name = rest[1:]
	}
	return SaveInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

func filenameFor(ts time.Time, name string) string {
	stamp := ts.Format(timestampLayout)
	if name = sanitizeFilename(name); name == "" {
		return stamp + ext
	}
	return stamp + "_" + name + ext
}

// Save writes a snapshot of the piece into project and returns its listing entry
func (s *Store) Save(project, name string, p *music.Piece, seed uint64) (SaveInfo, error) {
	if p == nil {
		return SaveInfo{}, music.ErrEmptyPiece
	}
	if project == "" {
		project = DefaultProject
	}
	project = sanitizeFilename(project)

	dir := s.ProjectDir(project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SaveInfo{}, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	created := now()

	data, err := msgpack.Marshal(&Snapshot{Seed: seed, Created: created, Piece: p})
	if err != nil {
		return SaveInfo{}, fmt.Errorf("encode snapshot: %w", err)
	}

	filename := filenameFor(created, name)
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return SaveInfo{}, err
	}

	debug.Log("store", "saved %s/%s (%d notes, %d bytes)", project, filename, len(p.Notes), len(data))
	info, _ := parseFilename(filename)
	return info, nil
}

// Load reads a specific save (or the most recent if filename is empty)
func (s *Store) Load(project, filename string) (*Snapshot, error) {
	if filename == "" {
		saves, err := s.ListSaves(project)
		if err != nil {
			return nil, err
		}
		if len(saves) == 0 {
			return nil, fmt.Errorf("%w in project %s", ErrNoSaves, project)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(s.ProjectDir(project), filename))
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	if snap.Piece == nil {
		return nil, fmt.Errorf("%s: %w", filename, music.ErrEmptyPiece)
	}
	return &snap, nil
}

// CreateProject creates a new empty project folder
func (s *Store) CreateProject(name string) error {
	return os.MkdirAll(s.ProjectDir(sanitizeFilename(name)), 0755)
}

// DeleteSave deletes a specific save file
func (s *Store) DeleteSave(project, filename string) error {
	return os.Remove(filepath.Join(s.ProjectDir(project), filename))
}

// RenameSave changes the name part of a save, keeping its timestamp
func (s *Store) RenameSave(project, oldFilename, newName string) (string, error) {
	info, ok := parseFilename(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}
	newFilename := filenameFor(info.Timestamp, newName)

	dir := s.ProjectDir(project)
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

// DeleteProject deletes an entire project folder
func (s *Store) DeleteProject(name string) error {
	if name == "" {
		return errors.New("empty project name")
	}
	return os.RemoveAll(s.ProjectDir(name))
}

// RenameProject renames a project folder
func (s *Store) RenameProject(oldName, newName string) error {
	return os.Rename(s.ProjectDir(oldName), s.ProjectDir(sanitizeFilename(newName)))
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	).Replace(name)
	return strings.Trim(name, ".")
}
