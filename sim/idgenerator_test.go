package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	It("should generate sequential ids", func() {
		g := &sequentialIDGenerator{}

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should generate unique ids in parallel mode", func() {
		g := parallelIDGenerator{}

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
	})

	It("should only allow reselecting the generator in use", func() {
		GetIDGenerator()

		Expect(UseSequentialIDGenerator).NotTo(Panic())
		Expect(UseParallelIDGenerator).To(Panic())
	})
})
