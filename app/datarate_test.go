package app

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseDataRate", func() {
	DescribeTable("valid rates",
		func(s string, bps float64) {
			r, err := ParseDataRate(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.BitsPerSecond()).To(BeNumerically("~", bps, 1e-6))
		},
		Entry("bare number", "9600", 9600.0),
		Entry("bps", "100bps", 100.0),
		Entry("kbps", "500kbps", 500e3),
		Entry("Kb/s", "64Kb/s", 64e3),
		Entry("Mbps", "1Mbps", 1e6),
		Entry("fraction", "5.5Mbps", 5.5e6),
		Entry("Gbps", "1Gbps", 1e9),
		Entry("bytes", "1000B/s", 8000.0),
		Entry("megabytes", "2MBps", 16e6),
		Entry("space", " 1 Mbps ", 1e6),
	)

	DescribeTable("invalid rates",
		func(s string) {
			_, err := ParseDataRate(s)
			Expect(err).To(MatchError(ErrInvalidDataRate))
		},
		Entry("empty", ""),
		Entry("no number", "Mbps"),
		Entry("unknown unit", "1Mbit"),
		Entry("zero", "0Mbps"),
		Entry("negative", "-1Mbps"),
	)

	It("should print rates", func() {
		Expect(DataRate(1e6).String()).To(Equal("1Mbps"))
		Expect(DataRate(5.5e6).String()).To(Equal("5.5Mbps"))
		Expect(DataRate(500e3).String()).To(Equal("500kbps"))
		Expect(DataRate(2e9).String()).To(Equal("2Gbps"))
		Expect(DataRate(10).String()).To(Equal("10bps"))
	})
})
