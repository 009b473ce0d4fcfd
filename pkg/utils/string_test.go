package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns short strings untouched", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns exact-length strings untouched", func() {
		Expect(Truncate("exactly", 7)).To(Equal("exactly"))
	})

	It("cuts long strings and appends an ellipsis", func() {
		Expect(Truncate("a longer sentence", 8)).To(Equal("a longer..."))
	})

	It("counts runes, not bytes", func() {
		Expect(Truncate("héllo wörld", 5)).To(Equal("héllo..."))
	})
})
