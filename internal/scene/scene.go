// Package scene loads zone layout documents and builds them into an arena.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"seehuhn.de/go/geom/vec"

	"github.com/Faultbox/blendzones/internal/listener"
	"github.com/Faultbox/blendzones/internal/zone"
	"github.com/Faultbox/blendzones/pkg/geometry"
	"github.com/Faultbox/blendzones/pkg/math"
)

// ErrInvalid is wrapped by every error reporting a malformed document.
var ErrInvalid = errors.New("invalid scene")

// Document is a parsed scene.
type Document struct {
	Zones     []ZoneSpec     `yaml:"zones"`
	Consumers []ConsumerSpec `yaml:"consumers"`
	Listener  *ListenerSpec  `yaml:"listener"`

	// Dir is the directory relative sound paths are resolved against.
	Dir string `yaml:"-"`
}

// ZoneSpec describes one zone.
type ZoneSpec struct {
	ID               string      `yaml:"id"`
	Name             string      `yaml:"name"`
	Kind             string      `yaml:"kind"`
	Priority         int         `yaml:"priority"`
	BlendDistance    float64     `yaml:"blend_distance"`
	BlendStartHeight float64     `yaml:"blend_start_height"`
	Points           [][]float64 `yaml:"points"`
}

// ConsumerSpec binds a named consumer to zones and optionally a sound.
type ConsumerSpec struct {
	Name               string   `yaml:"name"`
	Zones              []string `yaml:"zones"`
	Sound              string   `yaml:"sound"`
	Gain               *float64 `yaml:"gain"`
	Loop               bool     `yaml:"loop"`
	StopWhenZeroWeight bool     `yaml:"stop_when_zero_weight"`
}

// GainOrDefault returns the configured gain, 1 when unset.
func (c ConsumerSpec) GainOrDefault() float64 {
	if c.Gain == nil {
		return 1
	}
	return *c.Gain
}

// ListenerSpec describes how the listener moves.
type ListenerSpec struct {
	Speed     float64     `yaml:"speed"`
	Loop      bool        `yaml:"loop"`
	Waypoints [][]float64 `yaml:"waypoints"`
}

// Load reads and parses a scene file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Dir = filepath.Dir(path)
	return doc, nil
}

// Parse decodes a YAML scene, validates it against the scene schema and
// checks cross references.
func Parse(data []byte) (*Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing scene YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	problems, err := newValidator().validate(raw)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, invalid(problems)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing scene YAML: %w", err)
	}
	if err := doc.Check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Check reports duplicate zone or consumer names, polygons too tall for the
// containment ray and consumers bound to zones that do not exist.
func (d *Document) Check() error {
	var problems []string

	zones := make(map[string]bool, len(d.Zones))
	for i, z := range d.Zones {
		if zones[z.Name] {
			problems = append(problems, fmt.Sprintf("zones.%d: duplicate zone name %q", i, z.Name))
		}
		zones[z.Name] = true
		if _, err := zone.ParseKind(z.Kind); err != nil {
			problems = append(problems, fmt.Sprintf("zones.%d: %v", i, err))
		}
		if z.ID != "" {
			if _, err := uuid.Parse(z.ID); err != nil {
				problems = append(problems, fmt.Sprintf("zones.%d: bad id: %v", i, err))
			}
		}
		poly, err := z.polygon()
		if err != nil {
			problems = append(problems, fmt.Sprintf("zones.%d: %v", i, err))
			continue
		}
		// Containment casts a ray up to RayLength; anything at or beyond it
		// is never crossed.
		if _, hi, ok := poly.Bounds(); ok && hi.Y >= geometry.RayLength {
			problems = append(problems, fmt.Sprintf("zones.%d: polygon reaches y=%g, must stay below %g",
				i, hi.Y, geometry.RayLength))
		}
	}

	consumers := make(map[string]bool, len(d.Consumers))
	for i, c := range d.Consumers {
		if consumers[c.Name] {
			problems = append(problems, fmt.Sprintf("consumers.%d: duplicate consumer name %q", i, c.Name))
		}
		consumers[c.Name] = true
		for _, name := range c.Zones {
			if !zones[name] {
				problems = append(problems, fmt.Sprintf("consumers.%d: unknown zone %q", i, name))
			}
		}
	}

	if len(problems) > 0 {
		return invalid(problems)
	}
	return nil
}

func invalid(problems []string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}

// Build adds every zone of the document to arena and returns the handles by
// zone name.
func Build(doc *Document, arena *zone.Arena) (map[string]zone.Handle, error) {
	handles := make(map[string]zone.Handle, len(doc.Zones))
	for _, spec := range doc.Zones {
		z, err := spec.zone()
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w", spec.Name, err)
		}
		handles[spec.Name] = arena.Add(z)
	}
	return handles, nil
}

func (s ZoneSpec) zone() (*zone.Zone, error) {
	kind, err := zone.ParseKind(s.Kind)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	if s.ID != "" {
		if id, err = uuid.Parse(s.ID); err != nil {
			return nil, err
		}
	}

	poly, err := s.polygon()
	if err != nil {
		return nil, err
	}

	return zone.New(zone.Params{
		ID:               id,
		Name:             s.Name,
		Kind:             kind,
		Polygon:          poly,
		Priority:         s.Priority,
		BlendDistance:    s.BlendDistance,
		BlendStartHeight: s.BlendStartHeight,
	}), nil
}

func (s ZoneSpec) polygon() (geometry.Polygon, error) {
	pts := make([]vec.Vec2, 0, len(s.Points))
	for _, p := range s.Points {
		if len(p) < 2 {
			return geometry.Polygon{}, fmt.Errorf("point %v needs two coordinates", p)
		}
		pts = append(pts, vec.Vec2{X: p[0], Y: p[1]})
	}
	return geometry.New(pts...), nil
}

// Resolve returns path relative to the document directory. Absolute paths
// are returned unchanged.
func (d *Document) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || d.Dir == "" {
		return path
	}
	return filepath.Join(d.Dir, path)
}

// NewListener creates the listener described by the document. A document
// without waypoints yields a fixed listener at the origin; a single waypoint
// pins it there.
func (d *Document) NewListener() listener.Provider {
	if d.Listener == nil || len(d.Listener.Waypoints) == 0 {
		return listener.NewFixed(math.Vec3{})
	}

	wps := make([]math.Vec3, 0, len(d.Listener.Waypoints))
	for _, p := range d.Listener.Waypoints {
		wps = append(wps, toVec3(p))
	}
	if len(wps) == 1 {
		return listener.NewFixed(wps[0])
	}
	return listener.NewPath(wps, d.Listener.Speed, d.Listener.Loop)
}

func toVec3(p []float64) math.Vec3 {
	var v math.Vec3
	if len(p) > 0 {
		v.X = p[0]
	}
	if len(p) > 1 {
		v.Y = p[1]
	}
	if len(p) > 2 {
		v.Z = p[2]
	}
	return v
}
