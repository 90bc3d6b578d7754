package testing

import (
	"os"

	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/config/envvar"
	"github.com/veedubyou/timbre/src/shared/lib/env"
)

func SetTestEnv() {
	err := os.Setenv(envvar.ENVIRONMENT, string(env.Test))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
}
