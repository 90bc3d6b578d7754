package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/veedubyou/timbre/src/shared/lib/jsonlib"
)

const (
	envPrefix    = "TIMBRE"
	keyDelimiter = "__"
)

var validate = validator.New()

// LoadPipeline resolves the pipeline configuration in increasing priority:
// DefaultPipeline(root, workingDir), the optional config file, then
// TIMBRE_ prefixed env vars using "__" for nesting,
// e.g. TIMBRE_POSTPROCESS__TRIM_DURATION=10
func LoadPipeline(root string, workingDir string, configFile string) (Pipeline, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setDefaults(v, DefaultPipeline(root, workingDir)); err != nil {
		return Pipeline{}, errors.Wrap(err, "Failed to set pipeline defaults")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Pipeline{}, errors.Wrapf(err, "Failed to read config file %s", configFile)
		}
	}

	pipeline := Pipeline{}
	if err := v.Unmarshal(&pipeline); err != nil {
		return Pipeline{}, errors.Wrap(err, "Failed to unmarshal pipeline config")
	}

	if err := Validate(pipeline); err != nil {
		return Pipeline{}, err
	}

	return pipeline, nil
}

func Validate(config any) error {
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "Pipeline config is invalid")
	}

	return nil
}

func setDefaults(v *viper.Viper, defaults Pipeline) error {
	defaultMap, err := jsonlib.StructToMap(defaults)
	if err != nil {
		return err
	}

	// nested maps are flattened into "stage__field" keys by viper, which is
	// what lets AutomaticEnv see them
	for key, value := range defaultMap {
		v.SetDefault(key, value)
	}

	return nil
}
