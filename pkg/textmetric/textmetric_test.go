package textmetric

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Normalize", func() {
	It("lowercases and collapses whitespace", func() {
		Expect(Normalize("Parse   THE  Tokens")).To(Equal("parse tokens"))
	})

	It("strips stop words and fillers", func() {
		Expect(Normalize("this is really just a cache lookup")).To(Equal("cache lookup"))
	})

	It("strips stop words from multiple languages", func() {
		Expect(Normalize("la cache und der index")).To(Equal("cache index"))
	})

	It("returns empty for pure stop-word text", func() {
		Expect(Normalize("the and or but")).To(Equal(""))
	})
})

var _ = Describe("Analyzer", func() {
	var analyzer *Analyzer

	BeforeEach(func() {
		analyzer = NewAnalyzer()
	})

	Describe("Jaccard", func() {
		It("returns 1 for identical qualifying text", func() {
			s := "compare token overlap between reasoning steps"
			Expect(analyzer.Jaccard(s, s)).To(Equal(1.0))
		})

		It("returns 0 for disjoint vocabularies", func() {
			Expect(analyzer.Jaccard("alpha bravo charlie", "delta echo foxtrot")).To(Equal(0.0))
		})

		It("is symmetric", func() {
			x := "validate branch source before admitting"
			y := "admitting requires branch target checks"
			Expect(analyzer.Jaccard(x, y)).To(Equal(analyzer.Jaccard(y, x)))
		})

		It("returns 0 when either side has no qualifying tokens", func() {
			Expect(analyzer.Jaccard("", "some qualifying text here")).To(Equal(0.0))
			Expect(analyzer.Jaccard("the and of", "some qualifying text here")).To(Equal(0.0))
		})

		It("computes intersection over union", func() {
			// tokens: {alpha, bravo} vs {alpha, charlie}: 1 shared of 3 total
			got := analyzer.Jaccard("alpha bravo", "alpha charlie")
			Expect(got).To(BeNumerically("~", 1.0/3.0, 1e-9))
		})

		It("ignores stop words when comparing", func() {
			Expect(analyzer.Jaccard("the cache lookup", "a cache lookup")).To(Equal(1.0))
		})

		It("counts short technical terms", func() {
			Expect(analyzer.Jaccard("api", "api")).To(Equal(1.0))
		})

		It("drops short non-technical tokens", func() {
			// "xy" is two runes and not in the allow list
			Expect(analyzer.Jaccard("xy", "xy")).To(Equal(0.0))
		})

		It("stays within [0,1]", func() {
			x := "session engine validates incoming thoughts against history"
			y := "history of validated thoughts grows with each session"
			got := analyzer.Jaccard(x, y)
			Expect(got).To(BeNumerically(">=", 0.0))
			Expect(got).To(BeNumerically("<=", 1.0))
		})
	})

	Describe("Entropy", func() {
		It("returns 1 when all qualifying tokens are distinct", func() {
			Expect(analyzer.Entropy("alpha bravo charlie delta")).To(Equal(1.0))
		})

		It("drops toward 0 as tokens repeat", func() {
			Expect(analyzer.Entropy("loop loop loop loop")).To(Equal(0.25))
		})

		It("returns 0 for text with no qualifying tokens", func() {
			Expect(analyzer.Entropy("")).To(Equal(0.0))
			Expect(analyzer.Entropy("a b c")).To(Equal(0.0))
		})

		It("counts stop words as qualifying tokens", func() {
			// Entropy reads the raw text, not the normalized form, so
			// "then" and "when" both count.
			Expect(analyzer.Entropy("then when then when")).To(Equal(0.5))
		})
	})

	Describe("cache", func() {
		It("caches token sets per raw string", func() {
			analyzer.Jaccard("one distinct string", "another distinct string")
			Expect(analyzer.CacheLen()).To(Equal(2))

			analyzer.Jaccard("one distinct string", "another distinct string")
			Expect(analyzer.CacheLen()).To(Equal(2))
		})

		It("evicts the oldest entry at capacity", func() {
			for i := 0; i < defaultCacheSize; i++ {
				analyzer.Entropy("warm") // no cache interaction
				analyzer.Jaccard(fmt.Sprintf("unique filler text number %d", i), "probe text fragment")
			}
			Expect(analyzer.CacheLen()).To(Equal(defaultCacheSize))

			analyzer.Jaccard("one more past capacity", "probe text fragment")
			Expect(analyzer.CacheLen()).To(Equal(defaultCacheSize))
		})

		It("clears on Reset", func() {
			analyzer.Jaccard("first string cached", "second string cached")
			Expect(analyzer.CacheLen()).To(BeNumerically(">", 0))

			analyzer.Reset()
			Expect(analyzer.CacheLen()).To(Equal(0))
		})
	})
})
