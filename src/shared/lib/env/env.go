package env

import (
	"github.com/veedubyou/timbre/src/shared/config/envvar"
)

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Test        Environment = "test"
)

func Get() Environment {
	environment := envvar.MustGet(envvar.ENVIRONMENT)

	switch Environment(environment) {
	case Production, Development, Test:
		return Environment(environment)
	default:
		panic("Invalid environment is set: " + environment)
	}
}
