package wireless

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wlanbench/sim"
)

var _ = Describe("Standard", func() {
	It("should look up standards", func() {
		s, err := LookupStandard("80211n_2_4GHZ")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Slot).To(Equal(sim.VTimeInSec(9e-6)))
		Expect(s.CWMin).To(Equal(15))
		Expect(s.CWMax).To(Equal(1023))

		s, err = LookupStandard("WIFI_PHY_STANDARD_80211b")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("80211b"))
		Expect(s.CWMin).To(Equal(31))
	})

	It("should reject unknown standards", func() {
		_, err := LookupStandard("80211ax")
		Expect(err).To(MatchError(ErrUnknownStandard))
	})

	It("should list all standards", func() {
		Expect(StandardNames()).To(Equal([]string{
			"80211a", "80211b", "80211g", "80211n_2_4GHZ", "80211n_5GHZ",
		}))
	})

	DescribeTable("reference modes",
		func(standard, mode string, rate float64) {
			s, err := LookupStandard(standard)
			Expect(err).NotTo(HaveOccurred())

			m, err := s.Mode(mode)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.DataRate).To(BeNumerically("~", rate, 1))
		},
		Entry(nil, "80211a", "OfdmRate6Mbps", 6e6),
		Entry(nil, "80211a", "OfdmRate12Mbps", 12e6),
		Entry(nil, "80211b", "DsssRate5_5Mbps", 5.5e6),
		Entry(nil, "80211b", "DsssRate11Mbps", 11e6),
		Entry(nil, "80211g", "ErpOfdmRate6Mbps", 6e6),
		Entry(nil, "80211g", "ErpOfdmRate12Mbps", 12e6),
		Entry(nil, "80211n_2_4GHZ", "OfdmRate6_5MbpsBW20MHz", 6.5e6),
		Entry(nil, "80211n_2_4GHZ", "OfdmRate13MbpsBW20MHz", 13e6),
		Entry(nil, "80211n_5GHZ", "OfdmRate13_5MbpsBW40MHz", 13.5e6),
		Entry(nil, "80211n_5GHZ", "OfdmRate135MbpsBW40MHz", 135e6),
	)

	It("should reject modes of other standards", func() {
		s, _ := LookupStandard("80211a")

		_, err := s.Mode("DsssRate11Mbps")
		Expect(err).To(MatchError(ErrUnknownMode))
	})

	It("should compute DIFS", func() {
		s, _ := LookupStandard("80211a")
		Expect(s.DIFS()).To(BeNumerically("~", 34e-6, 1e-12))
	})

	It("should use the most robust mode as basic mode", func() {
		s, _ := LookupStandard("80211n_2_4GHZ")
		Expect(s.BasicMode().Name).To(Equal("DsssRate1Mbps"))

		s, _ = LookupStandard("80211a")
		Expect(s.BasicMode().Name).To(Equal("OfdmRate6Mbps"))
	})

	It("should compute OFDM frame durations", func() {
		s, _ := LookupStandard("80211n_2_4GHZ")
		m, _ := s.Mode("OfdmRate6_5MbpsBW20MHz")

		// 16 + 1464*8 + 6 bits over 26 bits per symbol is 452 symbols.
		Expect(s.FrameDuration(1464, m)).
			To(BeNumerically("~", 36e-6+452*4e-6, 1e-12))

		a, _ := LookupStandard("80211a")
		m6, _ := a.Mode("OfdmRate6Mbps")
		Expect(a.FrameDuration(14, m6)).
			To(BeNumerically("~", 20e-6+6*4e-6, 1e-12))
	})

	It("should compute DSSS frame durations", func() {
		s, _ := LookupStandard("80211b")
		m, _ := s.Mode("DsssRate11Mbps")

		Expect(s.FrameDuration(1100, m)).
			To(BeNumerically("~", 192e-6+800e-6, 1e-12))
	})

	It("should tell if a mode can be decoded", func() {
		s, _ := LookupStandard("80211n_2_4GHZ")
		m, _ := s.Mode("OfdmRate6_5MbpsBW20MHz")

		noise := NoiseFloor(20)
		Expect(m.Decodable(noise + 2)).To(BeTrue())
		Expect(m.Decodable(noise + 1.9)).To(BeFalse())
		Expect(m.SNR(noise + 10)).To(BeNumerically("~", 10, 1e-9))
		Expect(math.IsNaN(m.SNR(0))).To(BeFalse())
	})
})
