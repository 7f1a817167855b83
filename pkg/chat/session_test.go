package chat_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/the-snesler/spacebot-sub001/pkg/chat"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeStreamer scripts the streaming response for one chat turn.
type fakeStreamer struct {
	respond func() (io.ReadCloser, error)
	onPost  func()
}

func (f *fakeStreamer) PostChatMessage(ctx context.Context, sessionID, content string) (io.ReadCloser, error) {
	if f.onPost != nil {
		f.onPost()
	}
	return f.respond()
}

func bodyOf(frames ...string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(strings.Join(frames, ""))), nil
	}
}

func userCount(messages []chat.Message) int {
	n := 0
	for _, m := range messages {
		if m.IsUser() {
			n++
		}
	}
	return n
}

func assistantMessages(messages []chat.Message) []chat.Message {
	var out []chat.Message
	for _, m := range messages {
		if m.IsAssistant() {
			out = append(out, m)
		}
	}
	return out
}

var _ = Describe("Session", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Send", func() {
		It("should echo the user message before any network response", func() {
			var atPost []chat.Message
			streamer := &fakeStreamer{respond: bodyOf("event: done\ndata: {\"Text\":\"ok\"}\n\n")}
			session := chat.NewSession(streamer, "web-1")
			streamer.onPost = func() {
				atPost = session.Messages()
			}

			Expect(session.Send(ctx, "hello")).To(Succeed())
			Expect(atPost).To(HaveLen(1))
			Expect(atPost[0].Role).To(Equal(chat.RoleUser))
			Expect(atPost[0].Content).To(Equal("hello"))
		})

		It("should upsert exactly one assistant message on a text frame", func() {
			streamer := &fakeStreamer{respond: bodyOf(
				"event: text\ndata: {\"Text\":\"hi there\"}\n\n",
				"event: done\ndata: {\"Text\":\"hi there\"}\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")

			Expect(session.Send(ctx, "hello")).To(Succeed())

			assistants := assistantMessages(session.Messages())
			Expect(assistants).To(HaveLen(1))
			Expect(assistants[0].Content).To(Equal("hi there"))
		})

		It("should accumulate stream chunks into one message", func() {
			streamer := &fakeStreamer{respond: bodyOf(
				"event: stream_chunk\ndata: {\"StreamChunk\":\"Hel\"}\n\n",
				"event: stream_chunk\ndata: {\"StreamChunk\":\"lo\"}\n\n",
				"event: done\ndata: {}\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")

			Expect(session.Send(ctx, "hi")).To(Succeed())

			assistants := assistantMessages(session.Messages())
			Expect(assistants).To(HaveLen(1))
			Expect(assistants[0].Content).To(Equal("Hello"))
		})

		It("should let a text frame reset accumulated chunks", func() {
			streamer := &fakeStreamer{respond: bodyOf(
				"event: stream_chunk\ndata: {\"StreamChunk\":\"old\"}\n\n",
				"event: text\ndata: {\"Text\":\"Hello\"}\n\n",
				"event: stream_chunk\ndata: {\"StreamChunk\":\" world\"}\n\n",
				"event: done\ndata: {}\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")

			Expect(session.Send(ctx, "hi")).To(Succeed())

			assistants := assistantMessages(session.Messages())
			Expect(assistants).To(HaveLen(1))
			Expect(assistants[0].Content).To(Equal("Hello world"))
		})

		It("should let the done frame supersede accumulated content", func() {
			streamer := &fakeStreamer{respond: bodyOf(
				"event: stream_chunk\ndata: {\"StreamChunk\":\"partial\"}\n\n",
				"event: done\ndata: {\"Text\":\"the full answer\"}\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")

			Expect(session.Send(ctx, "hi")).To(Succeed())

			assistants := assistantMessages(session.Messages())
			Expect(assistants).To(HaveLen(1))
			Expect(assistants[0].Content).To(Equal("the full answer"))
		})

		It("should track tool activity through its lifecycle", func() {
			var mu sync.Mutex
			var observed [][]chat.ToolActivity
			streamer := &fakeStreamer{respond: bodyOf(
				"event: tool_started\ndata: {\"tool\":\"search\"}\n\n",
				"event: tool_completed\ndata: {\"tool\":\"search\",\"result_preview\":\"3 hits\"}\n\n",
				"event: done\ndata: {\"Text\":\"found it\"}\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")
			session.OnUpdate(func() {
				mu.Lock()
				defer mu.Unlock()
				observed = append(observed, session.ToolActivity())
			})

			Expect(session.Send(ctx, "find")).To(Succeed())

			mu.Lock()
			defer mu.Unlock()
			Expect(observed).To(ContainElement([]chat.ToolActivity{{
				Tool:          "search",
				Status:        chat.ToolDone,
				ResultPreview: "3 hits",
			}}))
			// Tool activity is scoped to the turn and cleared afterwards.
			Expect(session.ToolActivity()).To(BeEmpty())
		})

		It("should surface an error frame as the turn error", func() {
			streamer := &fakeStreamer{respond: bodyOf(
				"event: stream_chunk\ndata: {\"StreamChunk\":\"partial out\"}\n\n",
				"event: error\ndata: {\"Error\":\"model exploded\"}\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")

			err := session.Send(ctx, "hi")
			Expect(err).To(MatchError("model exploded"))
			Expect(session.Err()).To(MatchError("model exploded"))

			// Partial assistant output stays visible; it reflects real output.
			assistants := assistantMessages(session.Messages())
			Expect(assistants).To(HaveLen(1))
			Expect(assistants[0].Content).To(Equal("partial out"))
		})

		It("should fail the turn on a request error but keep the user echo", func() {
			streamer := &fakeStreamer{respond: func() (io.ReadCloser, error) {
				return nil, errors.New("request failed with status 502")
			}}
			session := chat.NewSession(streamer, "web-1")

			err := session.Send(ctx, "hi")
			Expect(err).To(HaveOccurred())
			Expect(userCount(session.Messages())).To(Equal(1))
			Expect(session.IsStreaming()).To(BeFalse())
		})

		It("should swallow malformed payloads on non-terminal frames", func() {
			streamer := &fakeStreamer{respond: bodyOf(
				"event: tool_started\ndata: not json\n\n",
				"event: text\ndata: also not json\n\n",
				"event: done\ndata: {\"Text\":\"still fine\"}\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")

			Expect(session.Send(ctx, "hi")).To(Succeed())
			assistants := assistantMessages(session.Messages())
			Expect(assistants).To(HaveLen(1))
			Expect(assistants[0].Content).To(Equal("still fine"))
		})

		It("should treat an unparseable done frame as a terminal error", func() {
			streamer := &fakeStreamer{respond: bodyOf(
				"event: done\ndata: not json\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")

			err := session.Send(ctx, "hi")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("terminal frame"))
		})

		It("should treat a stream that ends without resolution as a failure", func() {
			streamer := &fakeStreamer{respond: bodyOf(
				"event: stream_chunk\ndata: {\"StreamChunk\":\"half an ans\"}\n\n",
			)}
			session := chat.NewSession(streamer, "web-1")

			err := session.Send(ctx, "hi")
			Expect(err).To(HaveOccurred())

			assistants := assistantMessages(session.Messages())
			Expect(assistants).To(HaveLen(1))
			Expect(assistants[0].Content).To(Equal("half an ans"))
		})

		It("should ignore a send while a turn is in flight", func() {
			pr, pw := io.Pipe()
			streamer := &fakeStreamer{respond: func() (io.ReadCloser, error) {
				return pr, nil
			}}
			session := chat.NewSession(streamer, "web-1")

			go session.Send(ctx, "first")
			Eventually(session.IsStreaming).Should(BeTrue())

			Expect(session.Send(ctx, "second")).To(Succeed())
			Expect(userCount(session.Messages())).To(Equal(1))

			io.WriteString(pw, "event: done\ndata: {\"Text\":\"ok\"}\n\n")
			pw.Close()
			Eventually(session.IsStreaming).Should(BeFalse())
		})
	})

	Describe("LoadHistory", func() {
		It("should seed the visible message list", func() {
			session := chat.NewSession(&fakeStreamer{}, "web-1")
			session.LoadHistory([]chat.Message{
				{ID: "m1", Role: chat.RoleUser, Content: "earlier"},
				{ID: "m2", Role: chat.RoleAssistant, Content: "reply"},
			})
			Expect(session.Messages()).To(HaveLen(2))
		})
	})
})
