package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenizedName", func() {
	It("should parse name", func() {
		name := ParseName("Net.STA[3]")
		Expect(name.Tokens[0].ElemName).To(Equal("Net"))
		Expect(name.Tokens[0].Index).To(BeEmpty())
		Expect(name.Tokens[1].ElemName).To(Equal("STA"))
		Expect(name.Tokens[1].Index).To(Equal([]int{3}))
	})

	It("should parse multi-dimensional index", func() {
		name := ParseName("Grid[0][1]")
		Expect(name.Tokens[0].Index).To(Equal([]int{0, 1}))
	})

	It("should panic if the name is empty", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should panic if name include underscore", func() {
		Expect(func() { NameMustBeValid("STA_0") }).To(Panic())
	})

	It("should panic if name include dash", func() {
		Expect(func() { NameMustBeValid("STA-0") }).To(Panic())
	})

	It("should panic if name is not capitalized", func() {
		Expect(func() { NameMustBeValid("sta0") }).To(Panic())
	})

	It("should have paired square brackets", func() {
		Expect(func() { NameMustBeValid("STA[0") }).To(Panic())
		Expect(func() { NameMustBeValid("STA0]") }).To(Panic())
	})

	It("should panic if element name is empty", func() {
		Expect(func() { NameMustBeValid("Net..AP") }).To(Panic())
	})

	It("should accept well-formed names", func() {
		Expect(func() { NameMustBeValid("Net.STA[11].Queue") }).NotTo(Panic())
	})

	It("should build name", func() {
		Expect(BuildName("", "Net")).To(Equal("Net"))
		Expect(BuildName("Net", "AP")).To(Equal("Net.AP"))
	})

	It("should build name with index", func() {
		Expect(BuildNameWithIndex("", "STA", 0)).To(Equal("STA[0]"))
		Expect(BuildNameWithIndex("Net", "STA", 7)).To(Equal("Net.STA[7]"))
	})
})
