package flowmon

import (
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wlanbench/app"
	"github.com/sarchlab/wlanbench/flowstats"
)

func udp(src, dst string) []byte {
	data, err := app.BuildUDPPacket(
		netip.MustParseAddrPort(src), netip.MustParseAddrPort(dst), 0, 100)
	Expect(err).NotTo(HaveOccurred())

	return data
}

var _ = Describe("Classifier", func() {
	var c *Classifier

	BeforeEach(func() {
		c = NewClassifier()
	})

	It("should assign ids in order of first appearance", func() {
		id1, t1 := c.Classify(udp("10.0.0.2:49153", "10.0.0.1:10"))
		id2, _ := c.Classify(udp("10.0.0.3:49153", "10.0.0.1:10"))
		id3, _ := c.Classify(udp("10.0.0.2:49153", "10.0.0.1:10"))

		Expect(id1).To(Equal(flowstats.FlowID(1)))
		Expect(id2).To(Equal(flowstats.FlowID(2)))
		Expect(id3).To(Equal(id1))
		Expect(t1).To(Equal(flowstats.FiveTuple{
			Source:          netip.MustParseAddr("10.0.0.2"),
			Destination:     netip.MustParseAddr("10.0.0.1"),
			SourcePort:      49153,
			DestinationPort: 10,
			Protocol:        17,
		}))
	})

	It("should tell directions apart", func() {
		id1, _ := c.Classify(udp("10.0.0.2:49153", "10.0.0.1:10"))
		id2, _ := c.Classify(udp("10.0.0.1:10", "10.0.0.2:49153"))

		Expect(id1).NotTo(Equal(id2))
	})

	It("should put non-IP packets in the control flow", func() {
		id, tuple := c.Classify(nil)
		Expect(id).To(Equal(flowstats.ControlFlowID))
		Expect(tuple).To(Equal(flowstats.FiveTuple{}))

		id, _ = c.Classify([]byte{0xde, 0xad})
		Expect(id).To(Equal(flowstats.ControlFlowID))
	})

	It("should find flows", func() {
		id, tuple := c.Classify(udp("10.0.0.2:49153", "10.0.0.1:10"))

		found, ok := c.FindFlow(id)
		Expect(ok).To(BeTrue())
		Expect(found).To(Equal(tuple))

		_, ok = c.FindFlow(42)
		Expect(ok).To(BeFalse())
	})
})
