package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
	"github.com/gazed/physics/phy"
)

// sceneFile is a YAML scene description for physdemo -scene, grounded on
// the teacher's load/shd.go yaml-struct-tag convention: a string-based,
// hand-readable config format rather than a binary one.
type sceneFile struct {
	Gravity []float64 `yaml:"gravity"`
	Rate    float64   `yaml:"rate"`
	Parts   []struct {
		Shape       string    `yaml:"shape"` // "cube", "sphere", or "cylinder"
		Size        []float64 `yaml:"size"`
		Density     float64   `yaml:"density"`
		Friction    float64   `yaml:"friction"`
		Restitution float64   `yaml:"restitution"`
		Position    []float64 `yaml:"position"`
		Terrain     bool      `yaml:"terrain"`
	} `yaml:"parts"`
}

// loadScene reads path as a YAML sceneFile and builds a World and Ticker
// from it.
func loadScene(path string) (*phy.World, *phy.Ticker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loadScene: %w", err)
	}
	var sf sceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, nil, fmt.Errorf("loadScene: %w", err)
	}

	gravity := lin.V3{}
	if len(sf.Gravity) == 3 {
		gravity = lin.V3{X: sf.Gravity[0], Y: sf.Gravity[1], Z: sf.Gravity[2]}
	}
	rate := sf.Rate
	if rate <= 0 {
		rate = 120
	}

	world := phy.NewWorld(gravity)
	for _, p := range sf.Parts {
		shape, err := sceneShape(p.Shape, p.Size)
		if err != nil {
			return nil, nil, err
		}
		part := phy.NewPart(shape, p.Density, p.Friction, p.Restitution)
		if len(p.Position) == 3 {
			part.SetCFrame(frameAt(p.Position[0], p.Position[1], p.Position[2]))
		}
		if p.Terrain {
			world.AddTerrainPart(part)
		} else {
			world.AddPart(part)
		}
	}

	return world, phy.NewTicker(world, rate), nil
}

func sceneShape(kind string, size []float64) (geom.Shape, error) {
	switch kind {
	case "cube":
		if len(size) != 1 {
			return geom.Shape{}, fmt.Errorf("loadScene: cube needs a single size value")
		}
		return geom.NewCube(size[0]), nil
	case "sphere":
		if len(size) != 1 {
			return geom.Shape{}, fmt.Errorf("loadScene: sphere needs a single size value")
		}
		return geom.NewSphere(size[0]), nil
	case "cylinder":
		if len(size) != 2 {
			return geom.Shape{}, fmt.Errorf("loadScene: cylinder needs [diameter, height]")
		}
		return geom.NewCylinder(size[0], size[1]), nil
	default:
		return geom.Shape{}, fmt.Errorf("loadScene: unknown shape %q", kind)
	}
}
