package console

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-logr/zapr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/assistant"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/conversation"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/executor"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"
)

// fakeBackend mocks /api/ai/ask and /api/ai/execute.
type fakeBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	answer   any
	result   any
	status   int
	executed [][]byte
	release  chan struct{}
	hold     chan struct{}
}

func newFakeBackend() *fakeBackend {
	fb := &fakeBackend{status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ai/ask", func(w http.ResponseWriter, _ *http.Request) {
		fb.mu.Lock()
		answer, hold := fb.answer, fb.hold
		fb.mu.Unlock()
		if hold != nil {
			<-hold
		}
		writeJSON(w, http.StatusOK, map[string]any{"response": answer})
	})
	mux.HandleFunc("/api/ai/execute", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.executed = append(fb.executed, body)
		result, status, release := fb.result, fb.status, fb.release
		fb.mu.Unlock()
		if release != nil {
			<-release
		}
		writeJSON(w, status, result)
	})
	fb.server = httptest.NewServer(mux)
	return fb
}

func (fb *fakeBackend) setAnswer(v any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.answer = v
}

func (fb *fakeBackend) setResult(status int, v any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.status = status
	fb.result = v
}

// blockExecute holds /ai/execute until the returned channel is closed.
func (fb *fakeBackend) blockExecute() chan struct{} {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.release = make(chan struct{})
	return fb.release
}

// blockAsk holds /ai/ask until the returned channel is closed.
func (fb *fakeBackend) blockAsk() chan struct{} {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.hold = make(chan struct{})
	return fb.hold
}

func (fb *fakeBackend) executions() [][]byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([][]byte(nil), fb.executed...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func texts(msgs []conversation.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

var _ = Describe("Session", func() {
	var (
		backend   *fakeBackend
		log       *conversation.Log
		session   *Session
		navigated []string
		scheduled []time.Duration
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = newFakeBackend()
		DeferCleanup(backend.server.Close)

		navigated = nil
		scheduled = nil
		log = conversation.NewLog(conversation.WithGreeting())
		logger := zapr.NewLogger(zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(GinkgoWriter),
			zapcore.DebugLevel,
		)))
		session = New(
			assistant.NewClient(api.NewClient(backend.server.URL+"/api")),
			log,
			WithLogger(logger),
			WithExecutorOptions(
				executor.WithNavigator(executor.NavigatorFunc(func(view string) {
					navigated = append(navigated, view)
				})),
				executor.WithScheduler(func(d time.Duration, f func()) {
					scheduled = append(scheduled, d)
					f()
				}),
			),
		)
	})

	It("starts with the greeting", func() {
		Expect(log.Len()).To(Equal(3))
		Expect(session.Pending()).To(BeEmpty())
	})

	Describe("Send", func() {
		It("rejects blank prompts without touching the log", func() {
			_, err := session.Send(ctx, "   \n")
			Expect(err).To(MatchError(ErrEmptyPrompt))
			Expect(log.Len()).To(Equal(3))
		})

		It("appends the prompt and an informational answer", func() {
			backend.setAnswer("You have two instances running.")

			msg, err := session.Send(ctx, "how many vms?")
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Text).To(Equal("You have two instances running."))
			Expect(msg.HasCommand()).To(BeFalse())

			msgs := log.Since(3)
			Expect(texts(msgs)).To(Equal([]string{"how many vms?", "You have two instances running."}))
			Expect(msgs[0].Role).To(Equal(conversation.RoleUser))
			Expect(log.Loading()).To(BeFalse())
			Expect(session.Pending()).To(BeEmpty())
		})

		It("turns an actionable answer into a pending proposal", func() {
			backend.setAnswer(`{"command":"create_cluster","explanation":"Create 2 VMs","parameters":{"gcp":{"machine_type":"e2-medium","count":2}}}`)

			msg, err := session.Send(ctx, "two vms on gcp")
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Text).To(Equal("📋 Create 2 VMs"))
			Expect(msg.Kind).To(Equal(conversation.KindProposal))

			p, ok := session.Proposal(msg.ID)
			Expect(ok).To(BeTrue())
			Expect(p.State()).To(Equal(executor.StateProposed))
			Expect(session.Pending()).To(ConsistOf(p))
		})

		It("does not propose non-whitelisted commands", func() {
			backend.setAnswer(`{"command":"list_instances","result":{"count":2}}`)

			msg, err := session.Send(ctx, "list")
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Text).To(Equal("{\n  \"count\": 2\n}"))
			_, ok := session.Proposal(msg.ID)
			Expect(ok).To(BeFalse())
		})

		It("apologizes when the assistant is unreachable", func() {
			backend.server.Close()

			msg, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Text).To(Equal(assistant.ErrorText))
			Expect(log.Len()).To(Equal(5))
			Expect(log.Loading()).To(BeFalse())
		})
	})

	Describe("Confirm", func() {
		var proposal conversation.Message
		const payload = `{"command":"create_cluster","explanation":"Create 2 VMs","parameters":{"gcp":{"count":2}},"extra":{"keep":true}}`

		BeforeEach(func() {
			backend.setAnswer(payload)
			var err error
			proposal, err = session.Send(ctx, "two vms")
			Expect(err).NotTo(HaveOccurred())
		})

		It("executes the original payload and reports success", func() {
			backend.setResult(http.StatusOK, map[string]any{"success": true, "explanation": "Cluster created"})
			before := log.Len()

			res, err := session.Confirm(ctx, proposal.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Success).To(BeTrue())

			Expect(backend.executions()).To(HaveLen(1))
			Expect(string(backend.executions()[0])).To(MatchJSON(payload))

			Expect(texts(log.Since(before))).To(Equal([]string{
				executor.PlaceholderText,
				"✅ Cluster created",
				executor.RedirectText,
			}))
			Expect(scheduled).To(Equal([]time.Duration{executor.DefaultRedirectDelay}))
			Expect(navigated).To(Equal([]string{executor.ViewClusters}))

			p, _ := session.Proposal(proposal.ID)
			Expect(p.State()).To(Equal(executor.StateSucceeded))
			Expect(session.Pending()).To(BeEmpty())
			Expect(log.Loading()).To(BeFalse())
		})

		It("reports a provider failure in the log", func() {
			backend.setResult(http.StatusOK, map[string]any{"success": false, "error": "quota exceeded"})
			before := log.Len()

			res, err := session.Confirm(ctx, proposal.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Success).To(BeFalse())
			Expect(texts(log.Since(before))).To(Equal([]string{executor.PlaceholderText, "❌ Error: quota exceeded"}))
			Expect(navigated).To(BeEmpty())
		})

		It("reports a failure envelope sent with an error status", func() {
			backend.setResult(http.StatusInternalServerError, map[string]any{"success": false, "error": "quota exceeded"})
			before := log.Len()

			res, err := session.Confirm(ctx, proposal.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Error).To(Equal("quota exceeded"))
			Expect(texts(log.Since(before))).To(Equal([]string{executor.PlaceholderText, "❌ Error: quota exceeded"}))
			p, _ := session.Proposal(proposal.ID)
			Expect(p.State()).To(Equal(executor.StateFailed))
		})

		It("reports a rejected call as exactly two messages", func() {
			backend.setResult(http.StatusBadGateway, map[string]any{"detail": "upstream down"})
			before := log.Len()

			_, err := session.Confirm(ctx, proposal.ID)
			Expect(err).NotTo(HaveOccurred())

			appended := log.Since(before)
			Expect(appended).To(HaveLen(2))
			Expect(appended[0].Text).To(Equal(executor.PlaceholderText))
			Expect(appended[1].Text).To(HavePrefix(executor.FailurePrefix))
			Expect(appended[1].Text).To(ContainSubstring("upstream down"))
			Expect(log.Loading()).To(BeFalse())
		})

		It("refuses to run a proposal twice", func() {
			backend.setResult(http.StatusOK, map[string]any{"success": true})
			_, err := session.Confirm(ctx, proposal.ID)
			Expect(err).NotTo(HaveOccurred())

			before := log.Len()
			_, err = session.Confirm(ctx, proposal.ID)
			Expect(err).To(MatchError(executor.ErrInvalidTransition))
			Expect(log.Len()).To(Equal(before))
			Expect(backend.executions()).To(HaveLen(1))
		})

		It("rejects unknown messages", func() {
			_, err := session.Confirm(ctx, "missing")
			Expect(err).To(MatchError(ErrNoProposal))
		})

		It("rejects a second confirmation while one is executing", func() {
			backend.setAnswer(`{"command":"delete_cluster","parameters":{"aws":{"name":"api"}}}`)
			second, err := session.Send(ctx, "delete api")
			Expect(err).NotTo(HaveOccurred())

			release := make(chan struct{})
			backend.mu.Lock()
			backend.release = release
			backend.mu.Unlock()
			backend.setResult(http.StatusOK, map[string]any{"success": true})

			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				_, err := session.Confirm(ctx, proposal.ID)
				Expect(err).NotTo(HaveOccurred())
			}()

			Eventually(session.Busy).Should(BeTrue())
			_, err = session.Confirm(ctx, second.ID)
			Expect(err).To(MatchError(executor.ErrBusy))

			p, _ := session.Proposal(second.ID)
			Expect(p.State()).To(Equal(executor.StateProposed))

			close(release)
			Eventually(done).Should(BeClosed())
			Expect(session.Busy()).To(BeFalse())
		})

		It("rejects a prompt while a command is executing", func() {
			release := backend.blockExecute()
			backend.setResult(http.StatusOK, map[string]any{"success": true})
			before := log.Len()

			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				_, err := session.Confirm(ctx, proposal.ID)
				Expect(err).NotTo(HaveOccurred())
			}()

			Eventually(func() int { return len(backend.executions()) }).Should(Equal(1))
			_, err := session.Send(ctx, "hello while executing")
			Expect(err).To(MatchError(executor.ErrBusy))
			Expect(log.Loading()).To(BeTrue())
			Expect(texts(log.Since(before))).To(Equal([]string{executor.PlaceholderText}))

			close(release)
			Eventually(done).Should(BeClosed())
			Expect(texts(log.Since(before))).To(Equal([]string{
				executor.PlaceholderText,
				executor.SuccessPrefix + executor.DefaultSuccessText,
				executor.RedirectText,
			}))
			Expect(log.Loading()).To(BeFalse())
			Expect(session.Busy()).To(BeFalse())
		})

		It("rejects a confirmation while a prompt is in flight", func() {
			hold := backend.blockAsk()
			backend.setAnswer("still thinking")

			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				_, err := session.Send(ctx, "status?")
				Expect(err).NotTo(HaveOccurred())
			}()

			Eventually(session.Busy).Should(BeTrue())
			_, err := session.Confirm(ctx, proposal.ID)
			Expect(err).To(MatchError(executor.ErrBusy))
			Expect(backend.executions()).To(BeEmpty())

			p, _ := session.Proposal(proposal.ID)
			Expect(p.State()).To(Equal(executor.StateProposed))

			close(hold)
			Eventually(done).Should(BeClosed())
			Expect(log.Loading()).To(BeFalse())
			Expect(session.Busy()).To(BeFalse())
		})
	})

	Describe("Cancel", func() {
		It("leaves the log untouched and closes the proposal", func() {
			backend.setAnswer(`{"command":"stop_cluster","parameters":{"gcp":{"name":"web"}}}`)
			msg, err := session.Send(ctx, "stop web")
			Expect(err).NotTo(HaveOccurred())
			before := log.Len()

			Expect(session.Cancel(msg.ID)).To(Succeed())
			Expect(log.Len()).To(Equal(before))
			Expect(session.Pending()).To(BeEmpty())

			_, err = session.Confirm(ctx, msg.ID)
			Expect(err).To(MatchError(executor.ErrInvalidTransition))
			Expect(backend.executions()).To(BeEmpty())
		})

		It("rejects unknown messages", func() {
			Expect(session.Cancel("missing")).To(MatchError(ErrNoProposal))
		})
	})
})
