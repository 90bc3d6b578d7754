package testing

import (
	. "github.com/onsi/gomega"
	"github.com/sbinet/npyio/npz"
)

// WriteNPZ writes a numpy archive holding each value under <name>.npy
func WriteNPZ(path string, arrays map[string]any) {
	archive, err := npz.Create(path)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	for name, value := range arrays {
		ExpectWithOffset(1, archive.Write(name+".npy", value)).To(Succeed())
	}

	ExpectWithOffset(1, archive.Close()).To(Succeed())
}
