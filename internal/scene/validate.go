package scene

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"mod3d-renderer/internal/postprocess"
	"mod3d-renderer/internal/transform"
)

// ErrInvalid wraps every problem reported by Validate.
var ErrInvalid = errors.New("invalid scene")

// Validate checks names, references, vectors and keyframe order, and reports
// every problem found.
func (s *Scene) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	materials := map[string]bool{}
	for i, m := range s.Materials {
		switch {
		case m.Name == "":
			add("material %d has no name", i)
		case materials[m.Name]:
			add("material %q declared twice", m.Name)
		}
		materials[m.Name] = true
		if m.Color != "" {
			if _, err := postprocess.ParseColor(m.Color); err != nil {
				add("material %q: %v", m.Name, err)
			}
		}
		if m.Metallic < 0 || m.Metallic > 1 {
			add("material %q: metallic %v outside [0, 1]", m.Name, m.Metallic)
		}
		if m.Roughness != nil && (*m.Roughness < 0 || *m.Roughness > 1) {
			add("material %q: roughness %v outside [0, 1]", m.Name, *m.Roughness)
		}
	}

	bones := map[string]int{}
	for i, b := range s.Bones {
		switch {
		case b.Name == "":
			add("bone %d has no name", i)
		case hasKey(bones, b.Name):
			add("bone %q declared twice", b.Name)
		default:
			bones[b.Name] = i
		}
		if err := b.Transform.check(); err != nil {
			add("bone %q: %v", b.Name, err)
		}
	}
	for _, b := range s.Bones {
		if b.Parent == "" {
			continue
		}
		if !hasKey(bones, b.Parent) {
			add("bone %q: unknown parent %q", b.Name, b.Parent)
		} else if s.boneCycle(b.Name, bones) {
			add("bone %q is its own ancestor", b.Name)
		}
	}

	components := map[string]bool{}
	for i, c := range s.Components {
		label := c.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if c.Parent != "" && !components[c.Parent] {
			add("component %s: parent %q is not declared before it", label, c.Parent)
		}
		if c.Name != "" {
			if components[c.Name] {
				add("component %q declared twice", c.Name)
			}
			components[c.Name] = true
		}
		if c.Transform != nil {
			if err := c.Transform.check(); err != nil {
				add("component %s: %v", label, err)
			}
		}
		if c.Material != "" && !materials[c.Material] {
			add("component %s: unknown material %q", label, c.Material)
		}
		if c.Shape != nil {
			if err := c.Shape.check(bones); err != nil {
				add("component %s: %v", label, err)
			}
		}
	}
	if len(s.Components) == 0 {
		add("no components")
	}

	for i, ch := range s.Animations {
		if !hasKey(bones, ch.Bone) {
			add("animation %d: unknown bone %q", i, ch.Bone)
		}
		if len(ch.Keys) == 0 {
			add("animation %d: no keys", i)
		}
		for k, key := range ch.Keys {
			if k > 0 && key.Tick <= ch.Keys[k-1].Tick {
				add("animation %d key %d: tick %d does not follow %d", i, k, key.Tick, ch.Keys[k-1].Tick)
			}
			if err := key.Transform.check(); err != nil {
				add("animation %d key %d: %v", i, k, err)
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	return nil
}

func hasKey[V any](m map[string]V, k string) bool {
	_, ok := m[k]
	return ok
}

// boneCycle follows parents from name and reports whether it comes back.
func (s *Scene) boneCycle(name string, bones map[string]int) bool {
	cur := name
	for range len(s.Bones) {
		i, ok := bones[cur]
		if !ok {
			return false
		}
		cur = s.Bones[i].Parent
		if cur == "" {
			return false
		}
		if cur == name {
			return true
		}
	}
	return true
}

func (t Transform) check() error {
	for _, v := range []struct {
		name string
		n    int
	}{{"translation", len(t.Translation)}, {"rotation", len(t.Rotation)}, {"scale", len(t.Scale)}} {
		if v.n != 0 && v.n != 3 {
			return fmt.Errorf("%s has %d components, want 3", v.name, v.n)
		}
	}
	return t.Apply(transform.New()).Validate()
}

func (sh *Shape) check(bones map[string]int) error {
	switch sh.Type {
	case "triangle", "tetrahedron":
		if sh.Size <= 0 {
			return fmt.Errorf("%s size %v must be positive", sh.Type, sh.Size)
		}
	case "box":
		if len(sh.Min) != 3 || len(sh.Max) != 3 {
			return errors.New("box needs 3-component min and max")
		}
		for k := 0; k < 3; k++ {
			if sh.Min[k] >= sh.Max[k] {
				return fmt.Errorf("box min %v is not below max %v", sh.Min, sh.Max)
			}
		}
	default:
		return fmt.Errorf("unknown shape type %q", sh.Type)
	}
	if sh.Bone != "" && !hasKey(bones, sh.Bone) {
		return fmt.Errorf("unknown bone %q", sh.Bone)
	}
	return nil
}
