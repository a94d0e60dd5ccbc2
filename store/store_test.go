package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go-markov/music"
)

func testPiece() *music.Piece {
	p := music.NewPiece(100)
	p.Key = 2
	p.TimeSignature = 3
	p.AddSequence([]music.Step{{Pitch: 0, Duration: 1}, {Pitch: 4, Offset: 0.5, Duration: 1.5}}, "violin")
	p.AddSequence([]music.Step{{Pitch: -12, Duration: 3}}, "cello")
	return p
}

// clock returns a store whose saves are stamped one second apart
func clock(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	ts := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	s.Now = func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := clock(t)
	p := testPiece()
	info, err := s.Save("demo", "first take", p, 42)
	if err != nil {
		t.Fatal(err)
	}
	if info.Filename != "2024-01-15_14-30-01_first-take.mpk" || info.Name != "first-take" {
		t.Errorf("info = %+v", info)
	}

	snap, err := s.Load("demo", info.Filename)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Seed != 42 {
		t.Errorf("seed = %d", snap.Seed)
	}
	if !reflect.DeepEqual(snap.Piece, p) {
		t.Errorf("piece = %+v, want %+v", snap.Piece, p)
	}
}

func TestLoadMostRecent(t *testing.T) {
	s := clock(t)
	for i, name := range []string{"a", "", "c"} {
		p := music.NewPiece(float64(60 + i))
		p.AddSequence([]music.Step{{Duration: 1}}, "piano")
		if _, err := s.Save("demo", name, p, uint64(i)); err != nil {
			t.Fatal(err)
		}
	}
	snap, err := s.Load("demo", "")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Seed != 2 || snap.Piece.Tempo != 62 {
		t.Errorf("loaded seed %d tempo %g, want the newest save", snap.Seed, snap.Piece.Tempo)
	}

	if _, err := s.Load("empty", ""); !errors.Is(err, ErrNoSaves) {
		t.Errorf("err = %v, want ErrNoSaves", err)
	}
}

func TestListSaves(t *testing.T) {
	s := clock(t)
	s.Save("demo", "one", testPiece(), 1)
	s.Save("demo", "", testPiece(), 2)
	s.Save("demo", "three", testPiece(), 3)

	dir := s.ProjectDir("demo")
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "garbage.mpk"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(dir, "sub"), 0755)

	saves, err := s.ListSaves("demo")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, sv := range saves {
		names = append(names, sv.Name)
	}
	if !reflect.DeepEqual(names, []string{"three", "", "one"}) {
		t.Errorf("names = %q, want newest first", names)
	}

	missing, err := s.ListSaves("nope")
	if err != nil || len(missing) != 0 {
		t.Errorf("missing project: %v %v", missing, err)
	}
}

func TestProjects(t *testing.T) {
	s := clock(t)
	if projects, err := s.ListProjects(); err != nil || len(projects) != 0 {
		t.Fatalf("empty root: %v %v", projects, err)
	}

	s.Save("beta", "", testPiece(), 0)
	s.Save("", "", testPiece(), 0)
	if err := s.CreateProject("alpha"); err != nil {
		t.Fatal(err)
	}

	projects, err := s.ListProjects()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(projects, []string{"alpha", "beta", DefaultProject}) {
		t.Errorf("projects = %v", projects)
	}

	if err := s.RenameProject("beta", "gamma"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProject("alpha"); err != nil {
		t.Fatal(err)
	}
	projects, _ = s.ListProjects()
	if !reflect.DeepEqual(projects, []string{"gamma", DefaultProject}) {
		t.Errorf("projects = %v", projects)
	}
	if err := s.DeleteProject(""); err == nil {
		t.Error("deleting the empty project name should fail")
	}
}

func TestRenameAndDeleteSave(t *testing.T) {
	s := clock(t)
	info, _ := s.Save("demo", "draft", testPiece(), 7)

	renamed, err := s.RenameSave("demo", info.Filename, "final: mix")
	if err != nil {
		t.Fatal(err)
	}
	if renamed != "2024-01-15_14-30-01_final--mix.mpk" {
		t.Errorf("renamed = %q", renamed)
	}
	if snap, err := s.Load("demo", renamed); err != nil || snap.Seed != 7 {
		t.Errorf("load renamed: %v", err)
	}

	unnamed, err := s.RenameSave("demo", renamed, "")
	if err != nil || unnamed != "2024-01-15_14-30-01.mpk" {
		t.Errorf("unnamed = %q, %v", unnamed, err)
	}

	if _, err := s.RenameSave("demo", "bogus.mpk", "x"); err == nil {
		t.Error("expected error for a non-timestamped filename")
	}

	if err := s.DeleteSave("demo", unnamed); err != nil {
		t.Fatal(err)
	}
	if saves, _ := s.ListSaves("demo"); len(saves) != 0 {
		t.Errorf("saves left: %v", saves)
	}
}

func TestLoadCorrupt(t *testing.T) {
	s := New(t.TempDir())
	s.CreateProject("demo")
	name := "2024-01-15_14-30-00.mpk"
	os.WriteFile(filepath.Join(s.ProjectDir("demo"), name), []byte{0xc1}, 0644)
	if _, err := s.Load("demo", name); err == nil {
		t.Error("expected decode error")
	}
}

func TestSaveNilPiece(t *testing.T) {
	if _, err := New(t.TempDir()).Save("demo", "", nil, 0); !errors.Is(err, music.ErrEmptyPiece) {
		t.Errorf("err = %v", err)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		in   string
		name string
		ok   bool
	}{
		{"2024-01-15_14-30-00.mpk", "", true},
		{"2024-01-15_14-30-00_take-2.mpk", "take-2", true},
		{"2024-01-15_14-30-00.json", "", false},
		{"2024-01-15_14-30-00x.mpk", "", false},
		{"short.mpk", "", false},
		{"2024-13-15_14-30-00.mpk", "", false},
	}
	for _, tt := range tests {
		info, ok := parseFilename(tt.in)
		if ok != tt.ok || info.Name != tt.name {
			t.Errorf("parseFilename(%q) = %+v, %v", tt.in, info, ok)
		}
	}
}
