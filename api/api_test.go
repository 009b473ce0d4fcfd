package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/weft/pkg/session"
	"github.com/papercomputeco/weft/pkg/thought"
)

var _ = Describe("Server", func() {
	var (
		engine *session.Engine
		server *Server
	)

	BeforeEach(func() {
		engine = session.NewEngine(session.Config{Logger: zap.NewNop()})
		server = NewServer(Config{ListenAddr: ":0"}, engine, nil, zap.NewNop())
	})

	AfterEach(func() {
		engine.Close()
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal(`"pong"`))
		})
	})

	Describe("GET /session/stats", func() {
		It("reports the live session summary", func() {
			_, err := engine.SubmitThought(context.Background(), &thought.Input{
				ThoughtNumber: 1,
				Thought:       "sketch the failure modes of the retry loop",
			})
			Expect(err).NotTo(HaveOccurred())

			req, err := http.NewRequest(http.MethodGet, "/session/stats", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var stats session.Stats
			Expect(json.NewDecoder(resp.Body).Decode(&stats)).To(Succeed())
			Expect(stats.ThoughtCount).To(Equal(1))
			Expect(stats.SessionID).NotTo(BeEmpty())
			Expect(stats.LastNumber).To(Equal(1))
		})
	})

	Describe("MCP mount", func() {
		It("routes /mcp to the provided handler", func() {
			mounted := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			})
			server = NewServer(Config{ListenAddr: ":0"}, engine, mounted, zap.NewNop())

			req, err := http.NewRequest(http.MethodPost, "/mcp", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusTeapot))
		})

		It("serves 404 for /mcp when no handler is mounted", func() {
			req, err := http.NewRequest(http.MethodPost, "/mcp", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
