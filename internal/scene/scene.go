// Package scene reads YAML scene descriptions: materials, a skeleton, a
// hierarchy of shape components and keyframed bone animation. Build turns a
// scene into an analyzed model.Object and an Animator for its skeleton.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/transform"
)

// ErrEmpty is returned for a document without a scene.
var ErrEmpty = errors.New("empty scene document")

// Scene is the root of a scene file.
type Scene struct {
	Name       string      `yaml:"name"`
	Materials  []Material  `yaml:"materials"`
	Bones      []Bone      `yaml:"bones"`
	Components []Component `yaml:"components"`
	Animations []Channel   `yaml:"animations"`
}

// Transform is a partial transformation. Omitted parts keep the value they
// are applied over.
type Transform struct {
	Translation []float64 `yaml:"translation,omitempty"`
	// Rotation is Euler XYZ in degrees.
	Rotation []float64 `yaml:"rotation,omitempty"`
	Scale    []float64 `yaml:"scale,omitempty"`
}

// Material is a flat or textured material.
type Material struct {
	Name string `yaml:"name"`
	// Color is #rrggbb or #rrggbbaa; white when empty.
	Color     string   `yaml:"color"`
	Texture   string   `yaml:"texture"`
	Metallic  float32  `yaml:"metallic"`
	Roughness *float32 `yaml:"roughness"`
}

// Bone is one skeleton bone with its rest transformation.
type Bone struct {
	Name      string `yaml:"name"`
	Parent    string `yaml:"parent"`
	Transform `yaml:",inline"`
}

// Component is one node of the component hierarchy. A component without a
// shape only contributes its transformation to its children.
type Component struct {
	Name string `yaml:"name"`
	// Parent names a component declared earlier in the file.
	Parent    string     `yaml:"parent"`
	Transform *Transform `yaml:"transform"`
	Shape     *Shape     `yaml:"shape"`
	Material  string     `yaml:"material"`
}

// Shape selects a builder from package shapes.
type Shape struct {
	Type string    `yaml:"type"` // triangle, tetrahedron or box
	Size float32   `yaml:"size"`
	Min  []float32 `yaml:"min"`
	Max  []float32 `yaml:"max"`
	// Bone rigidly attaches every vertex of the shape to a bone.
	Bone string `yaml:"bone"`
}

// Channel animates one bone through keyframes.
type Channel struct {
	Bone string `yaml:"bone"`
	Loop bool   `yaml:"loop"`
	Keys []Key  `yaml:"keys"`
}

// Key is the bone's local transformation at a tick, applied over the bone's
// rest transformation.
type Key struct {
	Tick      uint64 `yaml:"tick"`
	Transform `yaml:",inline"`
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scene document. Unknown fields are errors.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scene
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scene: %w", ErrEmpty)
		}
		return nil, fmt.Errorf("scene: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Apply returns base with the parts set in t replaced.
func (t Transform) Apply(base transform.Transformation) transform.Transformation {
	if len(t.Translation) == 3 {
		base = base.WithTranslation(mathutil.Vec3{t.Translation[0], t.Translation[1], t.Translation[2]})
	}
	if len(t.Rotation) == 3 {
		base = base.WithRotation(mathutil.EulerToQuat(
			mathutil.Deg2Rad(t.Rotation[0]),
			mathutil.Deg2Rad(t.Rotation[1]),
			mathutil.Deg2Rad(t.Rotation[2]),
		))
	}
	if len(t.Scale) == 3 {
		base = base.WithScale(mathutil.Vec3{t.Scale[0], t.Scale[1], t.Scale[2]})
	}
	return base
}
