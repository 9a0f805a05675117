package scene

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"mod3d-renderer/internal/model"
	"mod3d-renderer/internal/postprocess"
	"mod3d-renderer/internal/shapes"
	"mod3d-renderer/internal/skeleton"
	"mod3d-renderer/internal/transform"
)

// Build creates the analyzed Object described by s and the Animator for its
// bones. Bone i of the scene owns bone matrix slot i.
func (s *Scene) Build() (*model.Object, *Animator, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	obj := model.NewObject()

	materials := make(map[string]int, len(s.Materials))
	for _, m := range s.Materials {
		materials[m.Name] = obj.AddMaterial(buildMaterial(m))
	}

	bones := make(map[string]int, len(s.Bones))
	rest := make([]transform.Transformation, len(s.Bones))
	if len(s.Bones) > 0 {
		sk := skeleton.New()
		for i, b := range s.Bones {
			rest[i] = b.Transform.Apply(transform.New())
			idx, err := sk.AddBone(rest[i], i)
			if err != nil {
				return nil, nil, fmt.Errorf("scene: bone %q: %w", b.Name, err)
			}
			bones[b.Name] = idx
		}
		for _, b := range s.Bones {
			if b.Parent == "" {
				continue
			}
			if err := sk.Relate(bones[b.Parent], bones[b.Name]); err != nil {
				return nil, nil, fmt.Errorf("scene: bone %q: %w", b.Name, err)
			}
		}
		obj.SetSkeleton(sk)
	}

	components := make(map[string]int, len(s.Components))
	for i, c := range s.Components {
		var mesh model.Mesh
		if c.Shape != nil {
			shape := buildShape(c.Shape, bones)
			material := -1
			if c.Material != "" {
				material = materials[c.Material]
			}
			mesh = shape.Mesh(obj.AddVertices(shape.Vertices), material)
		}

		var t *transform.Transformation
		if c.Transform != nil {
			ct := c.Transform.Apply(transform.New())
			t = &ct
		}
		parent := model.NoParent
		if c.Parent != "" {
			parent = components[c.Parent]
		}
		idx, err := obj.AddComponent(parent, t, mesh)
		if err != nil {
			return nil, nil, fmt.Errorf("scene: component %d: %w", i, err)
		}
		if c.Name != "" {
			components[c.Name] = idx
		}
	}

	if err := obj.Analyze(); err != nil {
		return nil, nil, fmt.Errorf("scene: %w", err)
	}

	anim := &Animator{channels: make([]channel, 0, len(s.Animations))}
	for _, ch := range s.Animations {
		bone := bones[ch.Bone]
		c := channel{bone: bone, loop: ch.Loop, keys: make([]keyframe, len(ch.Keys))}
		for k, key := range ch.Keys {
			c.keys[k] = keyframe{tick: key.Tick, t: key.Transform.Apply(rest[bone])}
		}
		anim.channels = append(anim.channels, c)
	}

	logrus.WithFields(logrus.Fields{
		"scene":      s.Name,
		"components": len(s.Components),
		"bones":      len(s.Bones),
		"channels":   len(anim.channels),
	}).Debug("scene built")
	return obj, anim, nil
}

func buildMaterial(m Material) model.Material {
	rgba := uint32(0xffffffff)
	if m.Color != "" {
		// checked by Validate
		c, _ := postprocess.ParseColor(m.Color)
		rgba = uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
	}
	roughness := float32(1)
	if m.Roughness != nil {
		roughness = *m.Roughness
	}
	if m.Texture != "" {
		tm := model.NewTexturedMaterial(rgba, m.Texture)
		tm.WithMR(m.Metallic, roughness)
		return tm
	}
	return model.NewBaseMaterial(rgba).WithMR(m.Metallic, roughness)
}

func buildShape(sh *Shape, bones map[string]int) shapes.Shape {
	slot := int16(-1)
	if sh.Bone != "" {
		slot = int16(bones[sh.Bone])
	}

	var shape shapes.Shape
	switch sh.Type {
	case "triangle":
		shape = shapes.Triangle(sh.Size)
	case "tetrahedron":
		shape = shapes.Tetrahedron(sh.Size)
	case "box":
		shape = shapes.Box([3]float32(sh.Min), [3]float32(sh.Max), slot)
		return shape
	}
	if slot >= 0 {
		shape.Vertices.Bones = make([]int16, shape.Vertices.Len())
		for i := range shape.Vertices.Bones {
			shape.Vertices.Bones[i] = slot
		}
	}
	return shape
}
