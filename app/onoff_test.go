package app

import (
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/wireless"
)

var _ = Describe("OnOffApp", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.SerialEngine
		device   *MockNetDevice
		builder  OnOffBuilder
		dst      netip.AddrPort
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		device = NewMockNetDevice(mockCtrl)
		device.EXPECT().Address().
			Return(netip.MustParseAddr("10.0.0.2")).AnyTimes()
		dst = netip.MustParseAddrPort("10.0.0.1:10")

		builder = MakeOnOffBuilder().
			WithEngine(engine).
			WithDevice(device).
			WithRemote(dst).
			WithPacketSize(1400).
			WithDataRate("1Mbps").
			WithWindow(1.01, 3)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should send one packet per interval inside the window", func() {
		app, err := builder.Build("Net.STA[0].OnOff")
		Expect(err).NotTo(HaveOccurred())
		Expect(app.Interval()).To(BeNumerically("~", 0.0112, 1e-12))

		var times []sim.VTimeInSec
		device.EXPECT().Send(gomock.Any()).
			DoAndReturn(func(pkt wireless.Packet) bool {
				times = append(times, engine.CurrentTime())
				Expect(pkt.Size).To(Equal(1428))
				Expect(pkt.Destination).To(Equal(dst.Addr()))
				return true
			}).
			AnyTimes()

		app.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(times).To(HaveLen(177))
		Expect(times[0]).To(BeNumerically("~", 1.0212, 1e-9))
		Expect(times[len(times)-1]).To(BeNumerically("<", 3))
		Expect(app.PacketsSent()).To(Equal(uint64(177)))
	})

	It("should count rejected packets", func() {
		app, _ := builder.WithWindow(1, 1.05).Build("Net.STA[0].OnOff")
		device.EXPECT().Send(gomock.Any()).Return(false).Times(4)

		app.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(app.PacketsSent()).To(Equal(uint64(0)))
		Expect(app.PacketsRejected()).To(Equal(uint64(4)))
	})

	It("should send from the ephemeral port", func() {
		app, _ := builder.WithWindow(1, 1.02).Build("Net.STA[0].OnOff")
		device.EXPECT().Send(gomock.Any()).
			DoAndReturn(func(pkt wireless.Packet) bool {
				src, _, ok := UDPEndpoints(pkt.Data)
				Expect(ok).To(BeTrue())
				Expect(src.Port()).To(Equal(uint16(EphemeralPort)))
				return true
			})

		app.Start()
		Expect(engine.Run()).To(Succeed())
	})

	It("should reject malformed data rates", func() {
		_, err := builder.WithDataRate("fast").Build("Net.STA[0].OnOff")
		Expect(err).To(MatchError(ErrInvalidDataRate))
	})
})
