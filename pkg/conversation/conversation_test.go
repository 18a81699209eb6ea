package conversation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/meridianclaims/payerkb/pkg/conversation"
	"github.com/meridianclaims/payerkb/pkg/kb"
)

func response(text, sessionID string, sources ...kb.Source) *kb.QueryResponse {
	return &kb.QueryResponse{
		Response:  text,
		Sources:   sources,
		SessionID: sessionID,
		QueryID:   1,
	}
}

func score(v float64) *float64 { return &v }

var _ = Describe("Conversation", func() {
	var conv *conversation.Conversation

	BeforeEach(func() {
		conv = conversation.New(zap.NewNop())
	})

	Describe("Submit", func() {
		It("appends exactly one user turn and returns a dispatch when idle", func() {
			d, ok := conv.Submit("What is Aetna's timely filing rule?")

			Expect(ok).To(BeTrue())
			Expect(d.Query).To(Equal("What is Aetna's timely filing rule?"))
			Expect(d.SessionID).To(Equal(conv.SessionID()))

			turns := conv.Turns()
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].Role).To(Equal(conversation.RoleUser))
			Expect(conv.State()).To(Equal(conversation.StateSending))
		})

		It("swallows empty input with no turn and no dispatch", func() {
			_, ok := conv.Submit("")
			Expect(ok).To(BeFalse())

			_, ok = conv.Submit("   \t\n  ")
			Expect(ok).To(BeFalse())

			Expect(conv.Turns()).To(BeEmpty())
			Expect(conv.State()).To(Equal(conversation.StateIdle))
		})

		It("trims surrounding whitespace from the query", func() {
			d, ok := conv.Submit("  hello  ")
			Expect(ok).To(BeTrue())
			Expect(d.Query).To(Equal("hello"))
			Expect(conv.Turns()[0].Text).To(Equal("hello"))
		})

		It("queues a second submit while a request is in flight", func() {
			_, ok := conv.Submit("first")
			Expect(ok).To(BeTrue())

			_, ok = conv.Submit("second")
			Expect(ok).To(BeFalse())
			Expect(conv.QueuedCount()).To(Equal(1))

			// The queued question's user turn appears once it is dispatched,
			// keeping each assistant turn adjacent to its own user turn.
			Expect(conv.Turns()).To(HaveLen(1))
		})
	})

	Describe("Resolve", func() {
		It("appends one assistant turn with normalized sources and returns to idle", func() {
			d, _ := conv.Submit("What is Aetna's timely filing rule?")

			_, more := conv.Resolve(d, response(
				"Aetna requires claims within 90 days.", "s1",
				kb.Source{RuleID: 1, PayerName: "Aetna", RuleType: "timely_filing", CombinedScore: score(0.92)},
			))

			Expect(more).To(BeFalse())
			turns := conv.Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[1].Role).To(Equal(conversation.RoleAssistant))
			Expect(turns[1].Text).To(Equal("Aetna requires claims within 90 days."))
			Expect(turns[1].Sources).To(HaveLen(1))
			Expect(turns[1].Sources[0].Percent).To(Equal(92))
			Expect(conv.State()).To(Equal(conversation.StateIdle))
		})

		It("sorts sources by display score before storing them", func() {
			d, _ := conv.Submit("claims deadlines")

			_, _ = conv.Resolve(d, response("answer", "s1",
				kb.Source{RuleID: 1, CombinedScore: score(0.7)},
				kb.Source{RuleID: 2, SimilarityScore: score(0.95)},
			))

			sources := conv.Turns()[1].Sources
			Expect(sources[0].RuleID).To(Equal(int64(2)))
			Expect(sources[1].RuleID).To(Equal(int64(1)))
		})

		It("adopts the server session id", func() {
			d, _ := conv.Submit("hello")
			_, _ = conv.Resolve(d, response("hi", "server-session"))
			Expect(string(conv.SessionID())).To(Equal("server-session"))
		})

		It("keeps the current session id when the server omits one", func() {
			before := conv.SessionID()
			d, _ := conv.Submit("hello")
			_, _ = conv.Resolve(d, response("hi", ""))
			Expect(conv.SessionID()).To(Equal(before))
		})

		It("dispatches the next queued question with its user turn in order", func() {
			d1, _ := conv.Submit("first")
			conv.Submit("second")

			d2, more := conv.Resolve(d1, response("answer one", "s1"))
			Expect(more).To(BeTrue())
			Expect(d2.Query).To(Equal("second"))
			Expect(d2.SessionID).To(Equal(conv.SessionID()))
			Expect(conv.State()).To(Equal(conversation.StateSending))

			turns := conv.Turns()
			Expect(turns).To(HaveLen(3))
			Expect(turns[0].Text).To(Equal("first"))
			Expect(turns[1].Text).To(Equal("answer one"))
			Expect(turns[2].Text).To(Equal("second"))

			_, more = conv.Resolve(d2, response("answer two", "s1"))
			Expect(more).To(BeFalse())
			Expect(conv.Turns()).To(HaveLen(4))
		})

		It("drains a deeper queue in FIFO order", func() {
			d, _ := conv.Submit("q1")
			conv.Submit("q2")
			conv.Submit("q3")

			d, more := conv.Resolve(d, response("a1", "s"))
			Expect(more).To(BeTrue())
			Expect(d.Query).To(Equal("q2"))

			d, more = conv.Resolve(d, response("a2", "s"))
			Expect(more).To(BeTrue())
			Expect(d.Query).To(Equal("q3"))

			_, more = conv.Resolve(d, response("a3", "s"))
			Expect(more).To(BeFalse())

			var texts []string
			for _, turn := range conv.Turns() {
				texts = append(texts, turn.Text)
			}
			Expect(texts).To(Equal([]string{"q1", "a1", "q2", "a2", "q3", "a3"}))
		})
	})

	Describe("Fail", func() {
		It("appends one apology turn with no sources and records the reason", func() {
			d, _ := conv.Submit("hello")

			_, more := conv.Fail(d, kb.ReasonNetwork)
			Expect(more).To(BeFalse())

			turns := conv.Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[1].Role).To(Equal(conversation.RoleAssistant))
			Expect(turns[1].Text).To(Equal(conversation.ApologyText))
			Expect(turns[1].Sources).To(BeEmpty())
			Expect(conv.State()).To(Equal(conversation.StateIdle))

			reason, logged := conv.LastFailure()
			Expect(logged).To(BeTrue())
			Expect(reason).To(Equal(kb.ReasonNetwork))
		})

		It("renders the same apology regardless of failure kind", func() {
			for _, reason := range []kb.FailureReason{kb.ReasonNetwork, kb.ReasonServerStatus, kb.ReasonBadPayload} {
				c := conversation.New(zap.NewNop())
				d, _ := c.Submit("hello")
				c.Fail(d, reason)
				Expect(c.Turns()[1].Text).To(Equal(conversation.ApologyText))
			}
		})

		It("still dispatches the next queued question after a failure", func() {
			d1, _ := conv.Submit("first")
			conv.Submit("second")

			d2, more := conv.Fail(d1, kb.ReasonServerStatus)
			Expect(more).To(BeTrue())
			Expect(d2.Query).To(Equal("second"))
		})
	})

	Describe("Clear", func() {
		It("empties turns and issues a distinct session id", func() {
			d, _ := conv.Submit("hello")
			conv.Resolve(d, response("hi", "s1"))
			before := conv.SessionID()

			conv.Clear()

			Expect(conv.Turns()).To(BeEmpty())
			Expect(conv.State()).To(Equal(conversation.StateIdle))
			Expect(conv.SessionID()).NotTo(Equal(before))

			_, logged := conv.LastFailure()
			Expect(logged).To(BeFalse())
		})

		It("discards a resolution that arrives after clearing", func() {
			d, _ := conv.Submit("hello")
			conv.Clear()
			fresh := conv.SessionID()

			next, more := conv.Resolve(d, response("late answer", "stale-session"))

			Expect(more).To(BeFalse())
			Expect(next).To(Equal(conversation.Dispatch{}))
			Expect(conv.Turns()).To(BeEmpty())
			Expect(conv.SessionID()).To(Equal(fresh))
		})

		It("discards a failure that arrives after clearing", func() {
			d, _ := conv.Submit("hello")
			conv.Clear()

			_, more := conv.Fail(d, kb.ReasonNetwork)
			Expect(more).To(BeFalse())
			Expect(conv.Turns()).To(BeEmpty())

			_, logged := conv.LastFailure()
			Expect(logged).To(BeFalse())
		})

		It("drops the pending queue", func() {
			conv.Submit("first")
			conv.Submit("second")
			conv.Clear()
			Expect(conv.QueuedCount()).To(BeZero())
		})
	})

	Describe("turn ids", func() {
		It("are monotonically increasing across roles", func() {
			d, _ := conv.Submit("one")
			conv.Resolve(d, response("two", "s"))
			d, _ = conv.Submit("three")
			conv.Fail(d, kb.ReasonNetwork)

			turns := conv.Turns()
			for i := 1; i < len(turns); i++ {
				Expect(turns[i].ID).To(BeNumerically(">", turns[i-1].ID))
			}
		})
	})
})
