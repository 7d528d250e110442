package events

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", func() {
	Context("write", func() {
		It("writes successfully", func() {
			w := newTestWriter()
			kp := NewEventProducer(w, WithOutputTopic("jobs"))

			err := kp.Write(context.TODO(), JobSubmittedKind, bytes.NewReader([]byte(`{"a":1}`)))
			Expect(err).To(BeNil())
			Eventually(w.Len).Should(Equal(1))

			err = kp.Write(context.TODO(), JobDispatchedKind, bytes.NewReader([]byte(`{"a":2}`)))
			Expect(err).To(BeNil())
			Eventually(w.Len).Should(Equal(2))

			msgs := w.Events()
			Expect(msgs[0].Type()).To(Equal(JobSubmittedKind))
			Expect(msgs[0].Source()).To(Equal(defaultSource))
			Expect(msgs[1].Type()).To(Equal(JobDispatchedKind))
			Expect(w.Topics()).To(ConsistOf("jobs", "jobs"))

			Expect(kp.Close()).To(Succeed())
			Expect(w.closed).To(BeTrue())
		})

		It("encodes job events", func() {
			w := newTestWriter()
			kp := NewEventProducer(w, WithSource("test"))

			code := 2
			err := kp.WriteJobEvent(context.TODO(), JobFailedKind, JobEvent{JobID: "42", Filename: "a.wav", ModelTier: "tiny", ExitCode: &code})
			Expect(err).To(BeNil())
			Eventually(w.Len).Should(Equal(1))

			e := w.Events()[0]
			Expect(e.Source()).To(Equal("test"))
			var got JobEvent
			Expect(json.Unmarshal(e.Data(), &got)).To(Succeed())
			Expect(got.JobID).To(Equal("42"))
			Expect(*got.ExitCode).To(Equal(2))

			Expect(kp.Close()).To(Succeed())
		})

		It("flushes pending events on close", func() {
			w := newTestWriter()
			kp := NewEventProducer(w)
			for i := 0; i < 20; i++ {
				Expect(kp.Write(context.TODO(), JobSucceededKind, bytes.NewReader([]byte("{}")))).To(Succeed())
			}
			Expect(kp.Close()).To(Succeed())
			Expect(w.Len()).To(Equal(20))
		})
	})
})

type testwriter struct {
	mu       sync.Mutex
	messages []cloudevents.Event
	topics   []string
	closed   bool
}

func newTestWriter() *testwriter {
	return &testwriter{}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, e)
	t.topics = append(t.topics, topic)
	return nil
}

func (t *testwriter) Close(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *testwriter) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *testwriter) Events() []cloudevents.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]cloudevents.Event(nil), t.messages...)
}

func (t *testwriter) Topics() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.topics...)
}
