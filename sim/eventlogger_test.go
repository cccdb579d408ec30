package sim

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type namedHandler struct {
	name string
}

func (h namedHandler) Name() string {
	return h.name
}

func (h namedHandler) Handle(_ Event) error {
	return nil
}

var _ = Describe("EventLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *EventLogger
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = NewEventLogger(log.New(buf, "", 0))
	})

	It("should log events before they are handled", func() {
		evt := NewEventBase(1.5, namedHandler{name: "Net.AP"})

		logger.Func(HookCtx{Pos: HookPosBeforeEvent, Item: evt})
		logger.Func(HookCtx{Pos: HookPosAfterEvent, Item: evt})

		Expect(buf.String()).
			To(Equal("1.5000000000, *sim.EventBase -> Net.AP\n"))
	})

	It("should log events of unnamed handlers", func() {
		evt := NewEventBase(2, nil)

		logger.Func(HookCtx{Pos: HookPosBeforeEvent, Item: evt})

		Expect(buf.String()).To(Equal("2.0000000000, *sim.EventBase\n"))
	})
})
