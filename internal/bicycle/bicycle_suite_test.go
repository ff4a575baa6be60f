package bicycle_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBicycle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bicycle Suite")
}
