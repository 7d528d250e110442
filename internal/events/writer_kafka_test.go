package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/IBM/sarama/mocks"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("kafka writer", func() {
	newEvent := func() cloudevents.Event {
		e := cloudevents.NewEvent()
		e.SetID("1")
		e.SetSource(defaultSource)
		e.SetType(JobSucceededKind)
		_ = e.SetData(*cloudevents.StringOfApplicationJSON(), []byte(`{"job_id":"42"}`))
		return e
	}

	It("sends structured cloudevents", func() {
		p := mocks.NewSyncProducer(GinkgoT(), nil)
		p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var decoded map[string]any
			if err := json.Unmarshal(val, &decoded); err != nil {
				return err
			}
			if decoded["type"] != JobSucceededKind {
				return errors.New("unexpected event type")
			}
			return nil
		})

		w := NewKafkaWriterFromProducer(p)
		Expect(w.Write(context.TODO(), defaultTopic, newEvent())).To(Succeed())
		Expect(w.Close(context.TODO())).To(Succeed())
	})

	It("returns broker errors", func() {
		p := mocks.NewSyncProducer(GinkgoT(), nil)
		p.ExpectSendMessageAndFail(errors.New("broker down"))

		w := NewKafkaWriterFromProducer(p)
		Expect(w.Write(context.TODO(), defaultTopic, newEvent())).To(MatchError("broker down"))
		Expect(w.Close(context.TODO())).To(Succeed())
	})

	It("requires brokers", func() {
		_, err := NewKafkaWriter(nil, "", "")
		Expect(err).NotTo(BeNil())
	})
})
