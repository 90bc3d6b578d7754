package testing

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/gomega"
)

func ExpectSuccess[T any](t T, err error) T {
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return t
}

func ExpectType[T any](thing any) T {
	ExpectWithOffset(1, thing).NotTo(BeNil())
	realThing, ok := thing.(T)
	ExpectWithOffset(1, ok).To(BeTrue())
	return realThing
}

// ExpectMarked checks for a cockroachdb mark anywhere in the error chain
func ExpectMarked(err error, mark error) {
	ExpectWithOffset(1, err).To(HaveOccurred())
	ExpectWithOffset(1, errors.Is(err, mark)).To(BeTrue(), "expected %q to be marked with %q", err, mark)
}
