package cli

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/config"
	"go.viam.com/planararm/kinematics"
)

// Schema targets besides the registered arm models.
const (
	schemaConfig   = "config"
	schemaGeometry = "geometry"
)

// lookupSchema returns the JSON schema for a process config, a geometry file or the attributes of
// a registered arm model.
func lookupSchema(target string) (*jsonschema.Schema, error) {
	switch target {
	case schemaConfig:
		return jsonschema.Reflect(&config.Config{}), nil
	case schemaGeometry:
		return jsonschema.Reflect(&kinematics.ChainGeometryConfig{}), nil
	default:
		schema, ok := arm.AttributeSchema(target)
		if !ok {
			return nil, errors.Errorf("no schema for %q, expected %q, %q or one of the arm models %v",
				target, schemaConfig, schemaGeometry, arm.RegisteredModels())
		}
		return schema, nil
	}
}

func (a *app) schemaAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one schema target")
	}
	schema, err := lookupSchema(c.Args().First())
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(c.App.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(schema)
}
