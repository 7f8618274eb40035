package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/endless-road/vmath"
)

// MirrorSuffix is appended to the id of generated mirror twins
const MirrorSuffix = ".mirror"

// catalogFile is the TOML shape of a catalog
//
//	[[piece]]
//	id = "Curve90L"
//	kind = "curve"      # straight | curve | anchors (default)
//	radius = 20.0
//	angle = 90.0
//	width = 4.0
//	turn = "left"
//	mirror = true       # also registers "Curve90L.mirror"
type catalogFile struct {
	Pieces []pieceSpec `toml:"piece"`
}

type pieceSpec struct {
	ID       string `toml:"id"`
	Kind     string `toml:"kind"`
	Category string `toml:"category"`

	Length float64 `toml:"length"`
	Width  float64 `toml:"width"`
	Radius float64 `toml:"radius"`
	Angle  float64 `toml:"angle"`
	Turn   string  `toml:"turn"`

	BeginLeft  []float64 `toml:"begin_left"`
	BeginRight []float64 `toml:"begin_right"`
	EndLeft    []float64 `toml:"end_left"`
	EndRight   []float64 `toml:"end_right"`

	Mirror  bool              `toml:"mirror"`
	Payload map[string]string `toml:"payload"`
}

// Decode parses a TOML catalog into templates, mirror twins follow their source
// Unknown keys are rejected so typos don't silently fall back to zero values
func Decode(r io.Reader) ([]*Template, error) {
	var file catalogFile
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalidTemplate, strings.Join(keys, ", "))
	}

	templates := make([]*Template, 0, len(file.Pieces))
	for i, spec := range file.Pieces {
		t, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("piece %d: %w", i, err)
		}
		templates = append(templates, t)
		if spec.Mirror {
			templates = append(templates, t.Mirrored(t.ID+MirrorSuffix))
		}
	}
	return templates, nil
}

func (s pieceSpec) build() (*Template, error) {
	payload := s.Payload

	switch strings.ToLower(s.Kind) {
	case "straight":
		t, err := NewStraight(s.ID, s.Length, s.Width)
		if err != nil {
			return nil, err
		}
		return withPayload(t, payload)

	case "curve", "curved":
		turn, err := ParseTurn(s.Turn)
		if err != nil {
			return nil, err
		}
		t, err := NewCurve(s.ID, s.Radius, s.Angle, s.Width, turn)
		if err != nil {
			return nil, err
		}
		return withPayload(t, payload)

	case "", "anchors":
		category, err := ParseCategory(s.Category)
		if err != nil {
			return nil, err
		}
		var a Anchors
		for _, f := range []struct {
			name string
			in   []float64
			out  *vmath.Vec3F
		}{
			{"begin_left", s.BeginLeft, &a.BeginLeft},
			{"begin_right", s.BeginRight, &a.BeginRight},
			{"end_left", s.EndLeft, &a.EndLeft},
			{"end_right", s.EndRight, &a.EndRight},
		} {
			if len(f.in) != 3 {
				return nil, fmt.Errorf("%w: %s: %s needs 3 components, got %d", ErrInvalidTemplate, s.ID, f.name, len(f.in))
			}
			*f.out = vmath.Vec3F{X: f.in[0], Y: f.in[1], Z: f.in[2]}
		}
		return NewTemplate(s.ID, category, a, payload)
	}

	return nil, fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidTemplate, s.ID, s.Kind)
}

func withPayload(t *Template, payload map[string]string) (*Template, error) {
	if len(payload) == 0 {
		return t, nil
	}
	merged := make(map[string]string, len(t.Payload)+len(payload))
	for k, v := range t.Payload {
		merged[k] = v
	}
	for k, v := range payload {
		merged[k] = v
	}
	return NewTemplate(t.ID, t.Category, t.Anchors, merged)
}

// LoadFile loads a catalog from a TOML file, or from every *.toml file of a directory
// Directory entries load in name order; hidden files are skipped
func LoadFile(path string) (*Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog directory: %w", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".toml") {
				continue
			}
			files = append(files, filepath.Join(path, name))
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}

	var templates []*Template
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		ts, err := Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		templates = append(templates, ts...)
	}

	return NewLibrary(templates)
}
