package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/wlanbench/sim"
)

var _ = Describe("Task API", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		domain   *sim.ComponentBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		domain = sim.NewComponentBase("Net.Medium")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should do nothing without hooks", func() {
		StartTask("1", "", domain, "frame", "data", nil)
		EndTask("1", domain)
	})

	It("should start a task at the domain", func() {
		CollectTrace(domain, tracer)

		tracer.EXPECT().StartTask(gomock.Any()).Do(func(task Task) {
			Expect(task.ID).To(Equal("1"))
			Expect(task.ParentID).To(Equal("0"))
			Expect(task.Kind).To(Equal("frame"))
			Expect(task.What).To(Equal("data"))
			Expect(task.Location).To(Equal("Net.Medium"))
		})

		StartTask("1", "0", domain, "frame", "data", nil)
	})

	It("should add steps and end tasks", func() {
		CollectTrace(domain, tracer)

		tracer.EXPECT().StepTask(gomock.Any()).Do(func(task Task) {
			Expect(task.Steps).To(HaveLen(1))
			Expect(task.Steps[0].What).To(Equal("retry"))
		})
		tracer.EXPECT().EndTask(Task{ID: "1"})

		AddTaskStep("1", domain, "retry")
		EndTask("1", domain)
	})

	It("should reject incomplete tasks", func() {
		CollectTrace(domain, tracer)

		Expect(func() {
			StartTask("", "", domain, "frame", "data", nil)
		}).To(Panic())
		Expect(func() {
			StartTask("1", "", domain, "", "data", nil)
		}).To(Panic())
		Expect(func() {
			StartTask("1", "", domain, "frame", "", nil)
		}).To(Panic())
	})

	It("should not attach the same tracer twice", func() {
		CollectTrace(domain, tracer)

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})

	It("should filter by kind", func() {
		f := KindFilter("frame")

		Expect(f(Task{Kind: "frame"})).To(BeTrue())
		Expect(f(Task{Kind: "beacon"})).To(BeFalse())
	})
})
