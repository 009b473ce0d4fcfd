package validate

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/weft/pkg/textmetric"
	"github.com/papercomputeco/weft/pkg/thought"
)

func intp(n int) *int { return &n }

func existing(number int, text string) *thought.Thought {
	return &thought.Thought{Number: number, Text: text}
}

var _ = Describe("CheckDuplicate", func() {
	session := []*thought.Thought{
		existing(1, "first step of the analysis"),
		existing(2, "second step of the analysis"),
	}

	It("rejects a fresh thought reusing a taken number", func() {
		in := &thought.Input{ThoughtNumber: 2, Thought: "something else entirely"}
		err := CheckDuplicate(in, session)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(Equal("duplicate thought number 2"))
	})

	It("admits a fresh thought with a new number", func() {
		in := &thought.Input{ThoughtNumber: 3, Thought: "third step of the analysis"}
		Expect(CheckDuplicate(in, session)).To(Succeed())
	})

	It("lets revisions reuse their target number", func() {
		in := &thought.Input{ThoughtNumber: 2, IsRevision: true, RevisesThought: intp(2)}
		Expect(CheckDuplicate(in, session)).To(Succeed())
	})

	It("ignores stored revisions when checking numbers", func() {
		withRevision := append([]*thought.Thought{}, session...)
		withRevision = append(withRevision, &thought.Thought{Number: 3, IsRevision: true, RevisesThought: intp(1)})

		in := &thought.Input{ThoughtNumber: 3, Thought: "fresh thought at three"}
		Expect(CheckDuplicate(in, withRevision)).To(Succeed())
	})
})

var _ = Describe("CheckBranchSource", func() {
	session := []*thought.Thought{
		existing(1, "root of the chain"),
		existing(2, "second link in the chain"),
	}

	It("rejects branches from a missing source", func() {
		in := &thought.Input{ThoughtNumber: 3, BranchFromThought: intp(9), BranchID: "alt"}
		err := CheckBranchSource(in, session)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(Equal("invalid branch: source thought 9 does not exist"))
	})

	It("admits branches from an existing source", func() {
		in := &thought.Input{ThoughtNumber: 3, BranchFromThought: intp(2), BranchID: "alt"}
		Expect(CheckBranchSource(in, session)).To(Succeed())
	})

	It("skips non-branch thoughts", func() {
		in := &thought.Input{ThoughtNumber: 3}
		Expect(CheckBranchSource(in, session)).To(Succeed())
	})
})

var _ = Describe("CheckSequence", func() {
	var metrics *textmetric.Analyzer

	session := []*thought.Thought{
		existing(1, "investigate the cache eviction policy for expired entries"),
		existing(2, "measure hit rates under the current eviction policy"),
	}

	BeforeEach(func() {
		metrics = textmetric.NewAnalyzer()
	})

	It("passes an in-order fresh thought", func() {
		in := &thought.Input{ThoughtNumber: 3, Thought: "compare against a segmented eviction design"}
		warnings, err := CheckSequence(in, session, 2, metrics)
		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(BeEmpty())
	})

	It("warns on an out-of-order fresh thought without rejecting", func() {
		in := &thought.Input{ThoughtNumber: 5, Thought: "jump ahead to the conclusion"}
		warnings, err := CheckSequence(in, session, 2, metrics)
		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(ConsistOf("sequence break: expected thought 3, got 5"))
	})

	It("exempts branch continuations from ordering", func() {
		in := &thought.Input{ThoughtNumber: 7, BranchFromThought: intp(1), BranchID: "alt"}
		warnings, err := CheckSequence(in, session, 2, metrics)
		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(BeEmpty())
	})

	Describe("revisions", func() {
		It("rejects a revision with no declared target", func() {
			in := &thought.Input{ThoughtNumber: 3, IsRevision: true}
			_, err := CheckSequence(in, session, 2, metrics)
			Expect(err).To(MatchError("invalid revision: thought 3 declares no target"))
		})

		It("rejects a revision of a missing thought", func() {
			in := &thought.Input{ThoughtNumber: 3, IsRevision: true, RevisesThought: intp(8)}
			_, err := CheckSequence(in, session, 2, metrics)
			Expect(err).To(MatchError("invalid revision: thought 8 does not exist"))
		})

		It("rejects a shallow revision of near-identical text", func() {
			in := &thought.Input{
				ThoughtNumber:  3,
				IsRevision:     true,
				RevisesThought: intp(2),
				Thought:        "measure hit rates under the current eviction policy",
			}
			_, err := CheckSequence(in, session, 2, metrics)
			Expect(err).To(MatchError("shallow revision: thought 3 is too similar to its target 2"))
		})

		It("rejects a circular revision matching an earlier thought", func() {
			in := &thought.Input{
				ThoughtNumber:  3,
				IsRevision:     true,
				RevisesThought: intp(2),
				Thought:        "investigate the cache eviction policy for expired entries",
			}
			_, err := CheckSequence(in, session, 2, metrics)
			Expect(err).To(MatchError("circular revision: thought 3 closely matches earlier thought 1"))
		})

		It("admits a substantive revision", func() {
			in := &thought.Input{
				ThoughtNumber:  3,
				IsRevision:     true,
				RevisesThought: intp(2),
				Thought:        "profile allocation pressure instead, hit rates alone mislead",
			}
			warnings, err := CheckSequence(in, session, 2, metrics)
			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(BeEmpty())
		})

		It("only compares against thoughts strictly before the target", func() {
			extended := append([]*thought.Thought{}, session...)
			extended = append(extended, existing(3, "draft a conclusion from the measurements"))

			// Matches thought 3 exactly, but 3 is not before target 2.
			in := &thought.Input{
				ThoughtNumber:  4,
				IsRevision:     true,
				RevisesThought: intp(2),
				Thought:        "draft a conclusion from the measurements",
			}
			warnings, err := CheckSequence(in, extended, 3, metrics)
			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(BeEmpty())
		})
	})
})
