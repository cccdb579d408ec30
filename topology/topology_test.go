package topology

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	It("should place the access point at the origin", func() {
		topo, err := MakeBuilder().Build(12)

		Expect(err).NotTo(HaveOccurred())
		Expect(topo.AP.Role).To(Equal(AccessPoint))
		Expect(topo.AP.Position).To(Equal(Position{}))
		Expect(topo.AP.ID).To(Equal(12))
		Expect(topo.AP.Name).To(Equal("Net.AP"))
	})

	It("should place stations at the reference slots", func() {
		topo, err := MakeBuilder().Build(12)

		Expect(err).NotTo(HaveOccurred())
		Expect(topo.Stations).To(HaveLen(12))
		Expect(topo.Stations[0].Position).To(Equal(Position{X: 50, Y: 0}))
		Expect(topo.Stations[4].Position).To(Equal(Position{X: 40, Y: 30}))
		Expect(topo.Stations[11].Position).To(Equal(Position{X: 40, Y: -30}))
		Expect(topo.Stations[3].Name).To(Equal("Net.STA[3]"))

		for i, sta := range topo.Stations {
			Expect(sta.ID).To(Equal(i))
			Expect(sta.Index).To(Equal(i))
			Expect(sta.Role).To(Equal(Station))
			Expect(sta.Position.DistanceTo(topo.AP.Position)).
				To(BeNumerically("~", 50, 1e-9))
		}
	})

	It("should produce distinct station positions", func() {
		topo, err := MakeBuilder().Build(12)
		Expect(err).NotTo(HaveOccurred())

		seen := map[Position]bool{}
		for _, sta := range topo.Stations {
			Expect(seen).NotTo(HaveKey(sta.Position))
			seen[sta.Position] = true
		}
	})

	It("should be deterministic", func() {
		a, errA := MakeBuilder().Build(7)
		b, errB := MakeBuilder().Build(7)

		Expect(errA).NotTo(HaveOccurred())
		Expect(errB).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("should reject more stations than table slots", func() {
		_, err := MakeBuilder().Build(13)

		Expect(err).To(MatchError(ErrPlacementExhausted))
	})

	It("should reject a negative station count", func() {
		_, err := MakeBuilder().Build(-1)

		Expect(err).To(MatchError(ErrNegativeStationCount))
	})

	It("should build an empty network", func() {
		topo, err := MakeBuilder().Build(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(topo.Stations).To(BeEmpty())
		Expect(topo.Nodes()).To(HaveLen(1))
	})

	It("should reject stations on an empty table", func() {
		_, err := MakeBuilder().
			WithPlacement(NewTablePlacement(nil)).
			Build(1)

		Expect(err).To(MatchError(ErrPlacementExhausted))
	})

	It("should list nodes in id order", func() {
		topo, _ := MakeBuilder().Build(3)

		nodes := topo.Nodes()
		for i, n := range nodes {
			Expect(n.ID).To(Equal(i))
		}
		Expect(nodes[3].Role).To(Equal(AccessPoint))
	})

	Context("with ring placement", func() {
		It("should accept more than 12 stations", func() {
			topo, err := MakeBuilder().
				WithPlacement(RingPlacement{Radius: 50}).
				Build(16)

			Expect(err).NotTo(HaveOccurred())
			Expect(RingPlacement{}.Capacity()).To(Equal(Unlimited))
			Expect(topo.Stations).To(HaveLen(16))
			Expect(topo.Stations[0].Position).To(Equal(Position{X: 50, Y: 0}))
			Expect(topo.Stations[4].Position).To(Equal(Position{X: 0, Y: 50}))

			for _, sta := range topo.Stations {
				Expect(sta.Position.DistanceTo(Position{})).
					To(BeNumerically("~", 50, 1e-2))
			}
		})
	})
})

var _ = Describe("Role", func() {
	It("should print", func() {
		Expect(AccessPoint.String()).To(Equal("AP"))
		Expect(Station.String()).To(Equal("STA"))
	})
})
