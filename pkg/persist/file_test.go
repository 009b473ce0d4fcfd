package persist

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/weft/pkg/thought"
)

func sampleSnapshot() *Snapshot {
	two := 2
	return &Snapshot{
		History: []*thought.Thought{
			{Number: 1, Text: "map the dependency graph of the build", SessionID: "session-1-abc"},
			{Number: 2, Text: "isolate the cyclic imports first", SessionID: "session-1-abc"},
		},
		Branches: []BranchEntry{
			{
				ID: "alt",
				Thoughts: []*thought.Thought{
					{Number: 3, Text: "try splitting the shared package instead", BranchFromThought: &two, BranchID: "alt", SessionID: "session-1-abc"},
				},
			},
		},
		LastThoughtNumber: 2,
		SavedAt:           time.Now().UTC().Truncate(time.Second),
		Goal:              "untangle the build graph",
		CurrentSessionID:  "session-1-abc",
		DeadEnds: []thought.DeadEnd{
			{Path: []int{1, 2}, Reason: "premature", SessionID: "session-1-abc"},
		},
	}
}

var _ = Describe("FileDriver", func() {
	var (
		ctx    context.Context
		path   string
		driver *FileDriver
	)

	BeforeEach(func() {
		ctx = context.Background()
		path = filepath.Join(GinkgoT().TempDir(), "session.json")
		driver = NewFileDriver(path, time.Hour)
	})

	It("returns nil for an absent snapshot", func() {
		snap, err := driver.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap).To(BeNil())
	})

	It("round-trips a snapshot", func() {
		saved := sampleSnapshot()
		Expect(driver.Save(ctx, saved)).To(Succeed())

		loaded, err := driver.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).NotTo(BeNil())
		Expect(loaded.CurrentSessionID).To(Equal(saved.CurrentSessionID))
		Expect(loaded.Goal).To(Equal(saved.Goal))
		Expect(loaded.LastThoughtNumber).To(Equal(2))
		Expect(loaded.History).To(HaveLen(2))
		Expect(loaded.History[1].Text).To(Equal("isolate the cyclic imports first"))
		Expect(loaded.Branches).To(HaveLen(1))
		Expect(loaded.Branches[0].ID).To(Equal("alt"))
		Expect(loaded.Branches[0].Thoughts).To(HaveLen(1))
		Expect(loaded.DeadEnds).To(HaveLen(1))
	})

	It("replaces the previous snapshot on save", func() {
		first := sampleSnapshot()
		Expect(driver.Save(ctx, first)).To(Succeed())

		second := sampleSnapshot()
		second.Goal = "a different goal entirely"
		Expect(driver.Save(ctx, second)).To(Succeed())

		loaded, err := driver.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Goal).To(Equal("a different goal entirely"))
	})

	It("leaves no temp files behind", func() {
		Expect(driver.Save(ctx, sampleSnapshot())).To(Succeed())

		entries, err := os.ReadDir(filepath.Dir(path))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Name()).To(Equal("session.json"))
	})

	It("deletes an expired snapshot and reports it absent", func() {
		Expect(driver.Save(ctx, sampleSnapshot())).To(Succeed())

		stale := time.Now().Add(-2 * time.Hour)
		Expect(os.Chtimes(path, stale, stale)).To(Succeed())

		snap, err := driver.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap).To(BeNil())

		_, statErr := os.Stat(path)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("keeps a snapshot younger than the TTL", func() {
		Expect(driver.Save(ctx, sampleSnapshot())).To(Succeed())

		recent := time.Now().Add(-30 * time.Minute)
		Expect(os.Chtimes(path, recent, recent)).To(Succeed())

		snap, err := driver.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap).NotTo(BeNil())
	})

	It("rejects a nil snapshot", func() {
		Expect(driver.Save(ctx, nil)).To(MatchError("cannot save nil snapshot"))
	})

	It("clears idempotently", func() {
		Expect(driver.Save(ctx, sampleSnapshot())).To(Succeed())
		Expect(driver.Clear(ctx)).To(Succeed())
		Expect(driver.Clear(ctx)).To(Succeed())

		snap, err := driver.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snap).To(BeNil())
	})

	It("errors on a corrupt snapshot file", func() {
		Expect(os.WriteFile(path, []byte("{not json"), 0o644)).To(Succeed())

		_, err := driver.Load(ctx)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("parsing snapshot"))
	})
})

var _ = Describe("BranchEntry", func() {
	It("serializes as a two-element pair", func() {
		entry := BranchEntry{
			ID:       "alt",
			Thoughts: []*thought.Thought{{Number: 3, Text: "branch thought"}},
		}

		data, err := json.Marshal(entry)
		Expect(err).NotTo(HaveOccurred())

		var raw []json.RawMessage
		Expect(json.Unmarshal(data, &raw)).To(Succeed())
		Expect(raw).To(HaveLen(2))

		var id string
		Expect(json.Unmarshal(raw[0], &id)).To(Succeed())
		Expect(id).To(Equal("alt"))
	})

	It("rejects malformed pairs", func() {
		var entry BranchEntry
		err := json.Unmarshal([]byte(`["alt"]`), &entry)
		Expect(err).To(MatchError("branch entry must have 2 elements, got 1"))
	})
})
