package flowstats

import (
	"fmt"
	"io"
	"strconv"
)

// WriteReport prints one block per flow followed by the cumulative
// throughput line.
func WriteReport(w io.Writer, result AggregateResult) error {
	for _, f := range result.Flows {
		_, err := fmt.Fprintf(w,
			" Flow: %d (%s -> %s)\n"+
				" Tx Packets: %d\n"+
				" Tx Bytes: %d\n"+
				" TxOffered: %s Mbps\n"+
				" Rx Packets: %d\n"+
				" Rx Bytes: %d\n"+
				" Throughput: %s Mbps\n",
			f.ID, f.Tuple.Source, f.Tuple.Destination,
			f.Record.TxPackets,
			f.Record.TxBytes,
			formatRate(f.OfferedMbps),
			f.Record.RxPackets,
			f.Record.RxBytes,
			formatRate(f.ThroughputMbps),
		)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nCumulative Throughput is : %sMbps\n",
		formatRate(result.CumulativeThroughputMbps))

	return err
}

// formatRate prints six significant digits without trailing zeros.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
