package kinematics

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrNoGeometryInformation is used when there is no geometry information to parse.
var ErrNoGeometryInformation = errors.New("no geometry information")

// PlanarVectorConfig is a point in the z=0 plane.
type PlanarVectorConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SubChainConfig is the JSON form of a SubChain. A zero LinkLength inherits the geometry-wide
// link length.
type SubChainConfig struct {
	Name                 string             `json:"name,omitempty"`
	DriveJoint           int                `json:"drive_joint"`
	DistalJoint          int                `json:"distal_joint"`
	Anchor               PlanarVectorConfig `json:"anchor"`
	LinkLength           float64            `json:"link_length,omitempty"`
	PositionBias         float64            `json:"position_bias"`
	ProximalRotationBias float64            `json:"proximal_rotation_bias"`
	DistalRotationBias   float64            `json:"distal_rotation_bias"`
}

// ChainGeometryConfig represents all supported fields in a chain geometry JSON file.
type ChainGeometryConfig struct {
	Name       string           `json:"name"`
	LinkLength float64          `json:"link_length"`
	SubChains  []SubChainConfig `json:"sub_chains"`
}

// ParseConfig converts the config into a validated ChainGeometry.
func (cfg *ChainGeometryConfig) ParseConfig() (ChainGeometry, error) {
	if len(cfg.SubChains) != NumSubChains {
		return ChainGeometry{}, errors.Errorf("expected %d sub-chains, got %d", NumSubChains, len(cfg.SubChains))
	}
	geometry := ChainGeometry{Name: cfg.Name}
	for i, scc := range cfg.SubChains {
		length := scc.LinkLength
		if length == 0 {
			length = cfg.LinkLength
		}
		geometry.SubChains[i] = SubChain{
			Name:                 scc.Name,
			DriveJoint:           scc.DriveJoint,
			DistalJoint:          scc.DistalJoint,
			Anchor:               r3.Vector{X: scc.Anchor.X, Y: scc.Anchor.Y},
			LinkLength:           length,
			PositionBias:         scc.PositionBias,
			ProximalRotationBias: scc.ProximalRotationBias,
			DistalRotationBias:   scc.DistalRotationBias,
		}
	}
	if err := geometry.Validate(); err != nil {
		return ChainGeometry{}, errors.Wrapf(err, "invalid geometry %q", cfg.Name)
	}
	return geometry, nil
}

// Config returns the JSON form of the geometry. Every sub-chain carries its own link length.
func (g ChainGeometry) Config() *ChainGeometryConfig {
	cfg := &ChainGeometryConfig{Name: g.Name, SubChains: make([]SubChainConfig, 0, NumSubChains)}
	for _, sc := range g.SubChains {
		cfg.SubChains = append(cfg.SubChains, SubChainConfig{
			Name:                 sc.Name,
			DriveJoint:           sc.DriveJoint,
			DistalJoint:          sc.DistalJoint,
			Anchor:               PlanarVectorConfig{X: sc.Anchor.X, Y: sc.Anchor.Y},
			LinkLength:           sc.LinkLength,
			PositionBias:         sc.PositionBias,
			ProximalRotationBias: sc.ProximalRotationBias,
			DistalRotationBias:   sc.DistalRotationBias,
		})
	}
	return cfg
}

// UnmarshalChainGeometryJSON parses the given JSON data into a geometry.
func UnmarshalChainGeometryJSON(jsonData []byte) (ChainGeometry, error) {
	if len(jsonData) == 0 {
		return ChainGeometry{}, ErrNoGeometryInformation
	}
	cfg := &ChainGeometryConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return ChainGeometry{}, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig()
}

// ParseChainGeometryFile will read a given file and then parse the contained JSON data.
func ParseChainGeometryFile(filename string) (ChainGeometry, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return ChainGeometry{}, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalChainGeometryJSON(jsonData)
}
