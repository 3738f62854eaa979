package bindings

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Manifest is the TOML form of a shader's bind group layouts, written next
// to the WGSL output when reflection is enabled.
type Manifest struct {
	Shader  string          `toml:"shader"`
	Entries []ManifestEntry `toml:"binding"`
}

// ManifestEntry describes one binding. Kind is one of "buffer", "sampler",
// "texture" or "storage_texture"; only the fields of that kind are set.
type ManifestEntry struct {
	Name       string `toml:"name"`
	Group      uint32 `toml:"group"`
	Binding    uint32 `toml:"binding"`
	Visibility string `toml:"visibility"`
	Kind       string `toml:"kind"`

	Type           string `toml:"type,omitempty"`
	MinBindingSize uint64 `toml:"min_binding_size,omitempty"`
	SampleType     string `toml:"sample_type,omitempty"`
	ViewDimension  string `toml:"view_dimension,omitempty"`
	Multisampled   bool   `toml:"multisampled,omitempty"`
	Access         string `toml:"access,omitempty"`
	Format         string `toml:"format,omitempty"`
}

// NewManifest builds the manifest of the bindings returned by Collect.
func NewManifest(shader string, list []Binding) *Manifest {
	m := &Manifest{Shader: shader, Entries: make([]ManifestEntry, 0, len(list))}
	for _, b := range list {
		e := ManifestEntry{
			Name:       b.Name,
			Group:      b.Group,
			Binding:    b.Entry.Binding,
			Visibility: b.Entry.Visibility.String(),
		}
		switch {
		case b.Entry.Buffer != nil:
			e.Kind = "buffer"
			e.Type = b.Entry.Buffer.Type.String()
			e.MinBindingSize = b.Entry.Buffer.MinBindingSize
		case b.Entry.Sampler != nil:
			e.Kind = "sampler"
			e.Type = b.Entry.Sampler.Type.String()
		case b.Entry.Texture != nil:
			e.Kind = "texture"
			e.SampleType = b.Entry.Texture.SampleType.String()
			e.ViewDimension = b.Entry.Texture.ViewDimension.String()
			e.Multisampled = b.Entry.Texture.Multisampled
		case b.Entry.StorageTexture != nil:
			e.Kind = "storage_texture"
			e.Access = b.Entry.StorageTexture.Access.String()
			e.Format = b.Entry.StorageTexture.Format.String()
			e.ViewDimension = b.Entry.StorageTexture.ViewDimension.String()
		}
		m.Entries = append(m.Entries, e)
	}
	return m
}

// Marshal encodes the manifest as TOML.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("bindings: encode manifest: %w", err)
	}
	return data, nil
}

// ParseManifest decodes a manifest. Unknown keys are an error.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("bindings: decode manifest: %w", err)
	}
	return &m, nil
}
