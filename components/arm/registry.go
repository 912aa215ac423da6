package arm

import (
	"context"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"go.viam.com/planararm/logging"
)

// Constructor builds an arm of one model from its raw attributes.
type Constructor func(ctx context.Context, name string, attributes map[string]interface{}, logger logging.Logger) (Arm, error)

// Reconfigurable is implemented by arms that can apply new attributes in place. Arms that do not
// implement it are rebuilt on every config change.
type Reconfigurable interface {
	Reconfigure(ctx context.Context, attributes map[string]interface{}) error
}

var (
	registryMu       sync.RWMutex
	registry         = map[string]Constructor{}
	attributeSchemas = map[string]*jsonschema.Schema{}
)

// RegisterModel registers a model constructor. It panics on duplicate registration since that is
// always a programming error caught at init time.
func RegisterModel(model string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[model]; ok {
		panic(errors.Errorf("arm model %q already registered", model))
	}
	registry[model] = constructor
}

// RegisterAttributeSchema records the JSON schema of a model's attributes, reflected from an
// empty model config such as &fake.Config{}.
func RegisterAttributeSchema(model string, sampleConfig interface{}) {
	registryMu.Lock()
	defer registryMu.Unlock()
	attributeSchemas[model] = jsonschema.Reflect(sampleConfig)
}

// AttributeSchema returns the attribute schema registered for model.
func AttributeSchema(model string) (*jsonschema.Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	schema, ok := attributeSchemas[model]
	return schema, ok
}

// RegisteredModels returns the sorted names of every registered model.
func RegisteredModels() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	models := make([]string, 0, len(registry))
	for model := range registry {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// New builds an arm of the given model.
func New(ctx context.Context, model, name string, attributes map[string]interface{}, logger logging.Logger) (Arm, error) {
	registryMu.RLock()
	constructor, ok := registry[model]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown arm model %q, expected one of %v", model, RegisteredModels())
	}
	return constructor(ctx, name, attributes, logger)
}

// DecodeAttributes decodes raw attributes into a model config, honoring its json tags. Unknown
// attributes are an error.
func DecodeAttributes[T any](attributes map[string]interface{}) (*T, error) {
	var conf T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "error decoding arm attributes")
	}
	return &conf, nil
}
