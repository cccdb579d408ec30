// Command wlanbench compares the throughput of 802.11 standards in an
// infrastructure network of one access point and several stations.
package main

import "github.com/sarchlab/wlanbench/wlanbench/cmd"

func main() {
	cmd.Execute()
}
