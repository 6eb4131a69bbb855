// Package gesture loads scripted gestures and plays them as a sequence of
// chained trajectories.
//
// A gesture file lists trajectories in playback order. Each may name the
// trajectory it follows with "after"; its first waypoint on every channel is
// then that trajectory's final waypoint, so consecutive segments join without
// a jump.
package gesture

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-dreamer/pkg/trajectory"
)

//go:embed data/*.yaml
var embedded embed.FS

var (
	// ErrUnknownPredecessor is returned when "after" names no earlier trajectory.
	ErrUnknownPredecessor = errors.New("unknown predecessor trajectory")

	// ErrUnknownGesture is returned by LoadEmbedded for a missing name.
	ErrUnknownGesture = errors.New("unknown gesture")
)

// File is the on-disk form of a gesture.
type File struct {
	Name           string           `yaml:"name"`
	StartPrompt    string           `yaml:"start_prompt"`
	DefaultPosture []float64        `yaml:"default_posture"`
	Trajectories   []TrajectoryFile `yaml:"trajectories"`
}

// TrajectoryFile is one trajectory in a gesture file. Channel keys are
// rh_position, rh_orientation, lh_position, lh_orientation and posture.
type TrajectoryFile struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"`
	After    string  `yaml:"after,omitempty"`
	Repeat   bool    `yaml:"repeat,omitempty"`
	Prompt   string  `yaml:"prompt,omitempty"`

	// Initial sets the first waypoint of standalone trajectories.
	Initial map[string][]float64 `yaml:"initial,omitempty"`

	// Hold repeats the predecessor's final waypoint n times on a channel,
	// before any listed waypoints.
	Hold map[string]int `yaml:"hold,omitempty"`

	Waypoints map[string][][]float64 `yaml:"waypoints"`
}

// Step is one trajectory of a gesture and how the sequence treats it.
type Step struct {
	Trajectory *trajectory.Trajectory
	Repeat     bool
	Prompt     string
}

// Gesture is a loaded, validated gesture ready for playback.
type Gesture struct {
	Name           string
	StartPrompt    string
	DefaultPosture trajectory.Waypoint
	Steps          []Step
}

// Trajectory returns a step's trajectory by name, or nil.
func (g *Gesture) Trajectory(name string) *trajectory.Trajectory {
	for _, s := range g.Steps {
		if s.Trajectory.Name() == name {
			return s.Trajectory
		}
	}
	return nil
}

// Load decodes and builds a gesture. Unknown fields are rejected.
func Load(r io.Reader) (*Gesture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode gesture: %w", err)
	}
	return f.Build()
}

// LoadFile loads a gesture from disk.
func LoadFile(p string) (*Gesture, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	g, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return g, nil
}

// LoadEmbedded loads one of the built-in gestures.
func LoadEmbedded(name string) (*Gesture, error) {
	data, err := embedded.ReadFile(path.Join("data", name+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGesture, name)
		}
		return nil, err
	}
	return Load(bytes.NewReader(data))
}

// ListEmbedded returns the names of the built-in gestures, sorted.
func ListEmbedded() []string {
	entries, _ := fs.ReadDir(embedded, "data")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, n)
		}
	}
	return names
}

// Build turns the file form into trajectories, resolving predecessors in file
// order. Every trajectory is validated for playback.
func (f *File) Build() (*Gesture, error) {
	if len(f.Trajectories) == 0 {
		return nil, fmt.Errorf("gesture %q has no trajectories", f.Name)
	}

	g := &Gesture{Name: f.Name, StartPrompt: f.StartPrompt}
	if len(f.DefaultPosture) > 0 {
		if len(f.DefaultPosture) != trajectory.PostureDOF {
			return nil, fmt.Errorf("%w: default_posture has %d values, want %d",
				trajectory.ErrInvalidDimension, len(f.DefaultPosture), trajectory.PostureDOF)
		}
		g.DefaultPosture = trajectory.Waypoint(f.DefaultPosture).Clone()
	}

	built := make(map[string]*trajectory.Trajectory, len(f.Trajectories))
	for i := range f.Trajectories {
		tf := &f.Trajectories[i]
		if _, dup := built[tf.Name]; dup {
			return nil, fmt.Errorf("duplicate trajectory %q", tf.Name)
		}
		tr, err := tf.build(built)
		if err != nil {
			return nil, fmt.Errorf("trajectory %q: %w", tf.Name, err)
		}
		built[tf.Name] = tr
		g.Steps = append(g.Steps, Step{Trajectory: tr, Repeat: tf.Repeat, Prompt: tf.Prompt})
	}
	return g, nil
}

func (tf *TrajectoryFile) build(prior map[string]*trajectory.Trajectory) (*trajectory.Trajectory, error) {
	tr, err := trajectory.New(tf.Name, tf.Duration)
	if err != nil {
		return nil, err
	}

	var prev *trajectory.Trajectory
	if tf.After != "" {
		prev = prior[tf.After]
		if prev == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPredecessor, tf.After)
		}
	}

	for key, n := range tf.Hold {
		ch, err := trajectory.ParseChannel(key)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			return nil, fmt.Errorf("hold on %s needs an \"after\" trajectory", ch)
		}
		if err := tr.Hold(ch, prev, n); err != nil {
			return nil, err
		}
	}

	for key, wps := range tf.Waypoints {
		ch, err := trajectory.ParseChannel(key)
		if err != nil {
			return nil, err
		}
		for _, wp := range wps {
			if err := tr.AddWaypoint(ch, wp); err != nil {
				return nil, err
			}
		}
	}

	for key, wp := range tf.Initial {
		ch, err := trajectory.ParseChannel(key)
		if err != nil {
			return nil, err
		}
		if err := tr.SetInitialWaypoint(ch, wp); err != nil {
			return nil, err
		}
	}

	if prev != nil {
		if err := tr.SetPredecessor(prev); err != nil {
			return nil, err
		}
	}

	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}
