package analysis

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wlanbench/datarecording"
)

var _ = Describe("RecorderLogger", func() {
	It("should write entries into the perf table", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())

		recorder := datarecording.NewWithDB(db)
		defer recorder.Close()

		logger := NewRecorderLogger(recorder)
		logger.AddDataEntry(PerfAnalyzerEntry{
			StartTime: 0,
			EndTime:   1,
			Location:  "Net.STA[0].Queue",
			Metric:    "Level",
			Value:     0.5,
		})
		recorder.Flush()

		Expect(recorder.ListTables()).To(ContainElement("perf"))

		var (
			location string
			value    float64
		)

		err = db.QueryRow("SELECT Location, Value FROM perf").
			Scan(&location, &value)
		Expect(err).NotTo(HaveOccurred())
		Expect(location).To(Equal("Net.STA[0].Queue"))
		Expect(value).To(Equal(0.5))
	})
})
