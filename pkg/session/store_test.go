package session

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/weft/pkg/persist"
	"github.com/papercomputeco/weft/pkg/thought"
)

func intp(n int) *int { return &n }

var _ = Describe("Store", func() {
	var store *Store

	BeforeEach(func() {
		store = NewStore()
	})

	It("starts empty with a timestamped session id", func() {
		Expect(store.SessionID()).To(MatchRegexp(`^session-\d+-[0-9a-f]{8}$`))
		Expect(store.History()).To(BeEmpty())
		Expect(store.ThoughtCount()).To(BeZero())
		Expect(store.LastNumber()).To(BeZero())
	})

	Describe("Append", func() {
		It("advances the last number on non-revisions only", func() {
			store.Append(&thought.Thought{Number: 1, Text: "first", SessionID: store.SessionID()})
			store.Append(&thought.Thought{Number: 2, Text: "second", SessionID: store.SessionID()})
			Expect(store.LastNumber()).To(Equal(2))

			store.Append(&thought.Thought{
				Number: 3, Text: "rework", SessionID: store.SessionID(),
				IsRevision: true, RevisesThought: intp(1),
			})
			Expect(store.LastNumber()).To(Equal(2))
		})

		It("indexes branches in first-seen order", func() {
			one := 1
			store.Append(&thought.Thought{Number: 1, Text: "root", SessionID: store.SessionID()})
			store.Append(&thought.Thought{Number: 2, Text: "alt a", BranchID: "a", BranchFromThought: &one, SessionID: store.SessionID()})
			store.Append(&thought.Thought{Number: 3, Text: "alt b", BranchID: "b", BranchFromThought: &one, SessionID: store.SessionID()})
			store.Append(&thought.Thought{Number: 4, Text: "alt a again", BranchID: "a", BranchFromThought: &one, SessionID: store.SessionID()})

			Expect(store.BranchCount()).To(Equal(2))

			snap := store.Snapshot(time.Now())
			Expect(snap.Branches).To(HaveLen(2))
			Expect(snap.Branches[0].ID).To(Equal("a"))
			Expect(snap.Branches[0].Thoughts).To(HaveLen(2))
			Expect(snap.Branches[1].ID).To(Equal("b"))
		})
	})

	Describe("SessionThoughts", func() {
		It("filters out thoughts owned by other sessions", func() {
			store.Append(&thought.Thought{Number: 1, Text: "stale", SessionID: "session-0-deadbeef"})
			store.Append(&thought.Thought{Number: 1, Text: "current", SessionID: store.SessionID()})

			Expect(store.History()).To(HaveLen(2))
			Expect(store.SessionThoughts()).To(HaveLen(1))
			Expect(store.SessionThoughts()[0].Text).To(Equal("current"))
			Expect(store.ThoughtCount()).To(Equal(1))
		})
	})

	Describe("RecordDeadEnd", func() {
		It("records and deduplicates by path within the session", func() {
			now := time.Now()
			Expect(store.RecordDeadEnd([]int{1, 2}, "first try", now)).To(BeTrue())
			Expect(store.RecordDeadEnd([]int{1, 2}, "second try", now)).To(BeFalse())
			Expect(store.RecordDeadEnd([]int{1, 3}, "other path", now)).To(BeTrue())

			Expect(store.DeadEnds()).To(HaveLen(2))
			Expect(store.DeadEnds()[0].Reason).To(Equal("first try"))
		})

		It("evicts the oldest entries past the cap", func() {
			now := time.Now()
			for i := 0; i < DeadEndCap+5; i++ {
				Expect(store.RecordDeadEnd([]int{i}, fmt.Sprintf("attempt %d", i), now)).To(BeTrue())
			}

			deadEnds := store.DeadEnds()
			Expect(deadEnds).To(HaveLen(DeadEndCap))
			Expect(deadEnds[0].Path).To(Equal([]int{5}))
			Expect(deadEnds[len(deadEnds)-1].Path).To(Equal([]int{DeadEndCap + 4}))
		})

		It("honors a configured cap override", func() {
			now := time.Now()
			store.SetDeadEndCap(2)
			for i := 0; i < 4; i++ {
				Expect(store.RecordDeadEnd([]int{i}, fmt.Sprintf("attempt %d", i), now)).To(BeTrue())
			}

			deadEnds := store.DeadEnds()
			Expect(deadEnds).To(HaveLen(2))
			Expect(deadEnds[0].Path).To(Equal([]int{2}))
			Expect(deadEnds[1].Path).To(Equal([]int{3}))
		})

		It("ignores cap overrides below one", func() {
			store.SetDeadEndCap(0)
			now := time.Now()
			for i := 0; i < DeadEndCap+1; i++ {
				Expect(store.RecordDeadEnd([]int{i}, "attempt", now)).To(BeTrue())
			}
			Expect(store.DeadEnds()).To(HaveLen(DeadEndCap))
		})

		It("copies the path so later caller mutation is invisible", func() {
			path := []int{1, 2, 3}
			Expect(store.RecordDeadEnd(path, "why", time.Now())).To(BeTrue())

			path[0] = 9
			Expect(store.DeadEnds()[0].Path).To(Equal([]int{1, 2, 3}))
		})
	})

	Describe("Reset", func() {
		It("wipes everything and assigns a fresh session id", func() {
			oldID := store.SessionID()
			one := 1
			store.SetGoal("sort the backlog")
			store.Append(&thought.Thought{Number: 1, Text: "first", SessionID: oldID})
			store.Append(&thought.Thought{Number: 2, Text: "alt", BranchID: "a", BranchFromThought: &one, SessionID: oldID})
			store.RecordDeadEnd([]int{1}, "nope", time.Now())

			thoughts, branches := store.Reset()
			Expect(thoughts).To(Equal(2))
			Expect(branches).To(Equal(1))

			Expect(store.SessionID()).NotTo(Equal(oldID))
			Expect(store.History()).To(BeEmpty())
			Expect(store.BranchCount()).To(BeZero())
			Expect(store.DeadEnds()).To(BeEmpty())
			Expect(store.Goal()).To(BeEmpty())
			Expect(store.LastNumber()).To(BeZero())
		})
	})

	Describe("ReplaceAll", func() {
		It("swaps state atomically and re-owns the thoughts", func() {
			store.Append(&thought.Thought{Number: 1, Text: "old line", SessionID: store.SessionID()})
			oldID := store.SessionID()

			store.ReplaceAll("new goal text", []*thought.Thought{
				{Number: 1, Text: "fresh start"},
				{Number: 2, Text: "fresh follow-up"},
			})

			Expect(store.SessionID()).NotTo(Equal(oldID))
			Expect(store.Goal()).To(Equal("new goal text"))
			Expect(store.ThoughtCount()).To(Equal(2))
			Expect(store.LastNumber()).To(Equal(2))
			for _, t := range store.History() {
				Expect(t.SessionID).To(Equal(store.SessionID()))
			}
		})
	})

	Describe("Snapshot and Restore", func() {
		It("round-trips the full store state", func() {
			one := 1
			store.SetGoal("stabilize the flaky suite")
			store.Append(&thought.Thought{Number: 1, Text: "catalogue the flakes", SessionID: store.SessionID()})
			store.Append(&thought.Thought{Number: 2, Text: "quarantine the worst", SessionID: store.SessionID()})
			store.Append(&thought.Thought{Number: 3, Text: "timing based alternative", BranchID: "timing", BranchFromThought: &one, SessionID: store.SessionID()})
			store.RecordDeadEnd([]int{1, 3}, "timing rewrite stalled", time.Now())

			snap := store.Snapshot(time.Now())

			restored := NewStore()
			restored.Restore(snap)

			Expect(restored.SessionID()).To(Equal(store.SessionID()))
			Expect(restored.Goal()).To(Equal("stabilize the flaky suite"))
			Expect(restored.History()).To(HaveLen(3))
			Expect(restored.LastNumber()).To(Equal(3))
			Expect(restored.BranchCount()).To(Equal(1))
			Expect(restored.DeadEnds()).To(HaveLen(1))
		})

		It("keeps its own id when the snapshot carries none", func() {
			id := store.SessionID()
			store.Restore(&persist.Snapshot{})
			Expect(store.SessionID()).To(Equal(id))
		})
	})
})
