package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/wlanbench/sim"
)

var _ = Describe("AverageTimeTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		t          *AverageTimeTracer
	)

	at := func(time sim.VTimeInSec) {
		timeTeller.EXPECT().CurrentTime().Return(time)
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		t = NewAverageTimeTracer(timeTeller, nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should average task durations", func() {
		at(1)
		t.StartTask(Task{ID: "1"})
		at(1.5)
		t.StartTask(Task{ID: "2"})
		at(2)
		t.EndTask(Task{ID: "1"})
		at(3.5)
		t.EndTask(Task{ID: "2"})

		Expect(t.TotalCount()).To(Equal(uint64(2)))
		Expect(t.AverageTime()).To(BeNumerically("~", 1.5, 1e-9))
	})

	It("should ignore unknown tasks", func() {
		at(2)
		t.EndTask(Task{ID: "x"})

		Expect(t.TotalCount()).To(Equal(uint64(0)))
		Expect(t.AverageTime()).To(Equal(sim.VTimeInSec(0)))
	})
})
