package arm

import (
	"context"
	"encoding/json"
	"testing"

	"go.viam.com/test"

	"go.viam.com/planararm/logging"
)

type decodeTarget struct {
	ModelFilePath string    `json:"model-path,omitempty"`
	Speed         float64   `json:"speed,omitempty"`
	InitialJoints []float64 `json:"initial-joints,omitempty"`
}

func TestDecodeAttributes(t *testing.T) {
	conf, err := DecodeAttributes[decodeTarget](map[string]interface{}{
		"model-path":     "arm.json",
		"speed":          "2.5",
		"initial-joints": []interface{}{1, 2.0, 3, 4, 5, 6},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.ModelFilePath, test.ShouldEqual, "arm.json")
	test.That(t, conf.Speed, test.ShouldEqual, 2.5)
	test.That(t, conf.InitialJoints, test.ShouldResemble, []float64{1, 2, 3, 4, 5, 6})

	conf, err = DecodeAttributes[decodeTarget](nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, &decodeTarget{})

	_, err = DecodeAttributes[decodeTarget](map[string]interface{}{"sped": 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sped")
}

func TestRegistry(t *testing.T) {
	var built string
	RegisterModel("registry-test", func(_ context.Context, name string, _ map[string]interface{}, _ logging.Logger) (Arm, error) {
		built = name
		return nil, nil
	})
	test.That(t, RegisteredModels(), test.ShouldContain, "registry-test")
	test.That(t, func() {
		RegisterModel("registry-test", nil)
	}, test.ShouldPanic)

	_, err := New(context.Background(), "registry-test", "arm1", nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, built, test.ShouldEqual, "arm1")

	_, err = New(context.Background(), "nope", "arm1", nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown arm model "nope"`)
}

func TestAttributeSchema(t *testing.T) {
	_, ok := AttributeSchema("schema-test")
	test.That(t, ok, test.ShouldBeFalse)

	RegisterAttributeSchema("schema-test", &decodeTarget{})
	schema, ok := AttributeSchema("schema-test")
	test.That(t, ok, test.ShouldBeTrue)
	out, err := json.Marshal(schema)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, `"model-path"`)
}
