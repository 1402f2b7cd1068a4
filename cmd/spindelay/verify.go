package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sarchlab/spindelay/delay"
)

var verifyCmd = &cobra.Command{
	Use: "verify",
	Short: "Measure the produced delays against the wall clock " +
		"and record the error table",
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// verificationPoints are the representative requests checked per
// primitive. Milliseconds cover the full 8-bit range including the
// 0-means-256 wraparound.
var verificationPoints = []struct {
	primitive string
	count     uint64
	nominal   time.Duration
	run       func()
}{
	{"quarter_us", 4, 1 * time.Microsecond,
		func() { delay.QuartersOfMicroseconds(4) }},
	{"quarter_us", 400, 100 * time.Microsecond,
		func() { delay.QuartersOfMicroseconds(400) }},
	{"quarter_us", 40000, 10 * time.Millisecond,
		func() { delay.QuartersOfMicroseconds(40000) }},
	{"whole_ms", 1, 1 * time.Millisecond,
		func() { delay.WholeMilliseconds(1) }},
	{"whole_ms", 10, 10 * time.Millisecond,
		func() { delay.WholeMilliseconds(10) }},
	{"whole_ms", 100, 100 * time.Millisecond,
		func() { delay.WholeMilliseconds(100) }},
	{"whole_ms", 255, 255 * time.Millisecond,
		func() { delay.WholeMilliseconds(255) }},
	{"whole_ms", 0, 256 * time.Millisecond,
		func() { delay.WholeMilliseconds(0) }},
	{"tenth_s", 1, 100 * time.Millisecond,
		func() { delay.TenthsOfSeconds(1) }},
	{"tenth_s", 2, 200 * time.Millisecond,
		func() { delay.TenthsOfSeconds(2) }},
}

func runVerify(cmd *cobra.Command, _ []string) error {
	runID := xid.New().String()

	dbPath, _ := cmd.Flags().GetString("db")
	recorder := openRecorder(dbPath)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRIMITIVE\tCOUNT\tNOMINAL\tMEASURED\tERROR")

	for _, point := range verificationPoints {
		start := time.Now()
		point.run()
		measured := time.Since(start)

		row := newVerificationRow(
			runID, point.primitive, point.count, point.nominal, measured)
		recorder.InsertData(verificationTable, row)

		fmt.Fprintf(w, "%s\t%d\t%v\t%v\t%+.2f%%\n",
			point.primitive, point.count, point.nominal, measured,
			row.ErrorPct)
	}

	recorder.Flush()

	return w.Flush()
}
