package model

import "fmt"

// MaterialAspect names one texture slot of a material.
type MaterialAspect uint8

const (
	AspectColor MaterialAspect = iota
	AspectNormal
	AspectMetallicRoughness
	AspectOcclusion
	AspectEmission
)

var aspectNames = [...]string{"color", "normal", "metallic_roughness", "occlusion", "emission"}

func (a MaterialAspect) String() string {
	if int(a) < len(aspectNames) {
		return aspectNames[a]
	}
	return fmt.Sprintf("MaterialAspect(%d)", uint8(a))
}

// ParseMaterialAspect is the inverse of String.
func ParseMaterialAspect(s string) (MaterialAspect, error) {
	for i, n := range aspectNames {
		if n == s {
			return MaterialAspect(i), nil
		}
	}
	return 0, fmt.Errorf("model: unknown material aspect %q", s)
}

// BaseData is the untextured part of every material.
type BaseData struct {
	RGBA      [4]float32
	Metallic  float32
	Roughness float32
}

// Material is anything a backend can turn into a material client.
type Material interface {
	Base() BaseData
	// Texture returns the texture name bound to an aspect.
	Texture(aspect MaterialAspect) (string, bool)
}

// BaseMaterial is a flat colour.
type BaseMaterial struct {
	Data BaseData
}

// NewBaseMaterial creates a material from a packed 0xRRGGBBAA colour, fully
// rough and not metallic.
func NewBaseMaterial(rgba uint32) *BaseMaterial {
	return &BaseMaterial{Data: BaseData{
		RGBA: [4]float32{
			float32(rgba>>24&0xff) / 255,
			float32(rgba>>16&0xff) / 255,
			float32(rgba>>8&0xff) / 255,
			float32(rgba&0xff) / 255,
		},
		Roughness: 1,
	}}
}

// WithMR sets metallic and roughness.
func (m *BaseMaterial) WithMR(metallic, roughness float32) *BaseMaterial {
	m.Data.Metallic, m.Data.Roughness = metallic, roughness
	return m
}

// Base implements Material.
func (m *BaseMaterial) Base() BaseData { return m.Data }

// Texture implements Material; a BaseMaterial has none.
func (m *BaseMaterial) Texture(MaterialAspect) (string, bool) { return "", false }

// TexturedMaterial adds named textures per aspect.
type TexturedMaterial struct {
	BaseMaterial
	Textures map[MaterialAspect]string
}

// NewTexturedMaterial creates a material tinted by rgba with a colour texture.
func NewTexturedMaterial(rgba uint32, color string) *TexturedMaterial {
	return &TexturedMaterial{
		BaseMaterial: *NewBaseMaterial(rgba),
		Textures:     map[MaterialAspect]string{AspectColor: color},
	}
}

// Texture implements Material.
func (m *TexturedMaterial) Texture(aspect MaterialAspect) (string, bool) {
	name, ok := m.Textures[aspect]
	return name, ok && name != ""
}
