package lib

import (
	"fmt"
)

// Reporting turns pipeline snapshots into human-readable output. All of it
// runs on the coordinator side, on copies fetched over comm channels.

// PrintTcpCounters prints both sides of a pipeline's event counters.
func PrintTcpCounters(pipeline PipelineId, clientSide, serverSide *TcpCounter) {
	fmt.Printf("\n\n")
	fmt.Printf("%s: client side %s\n", pipeline, clientSide)
	fmt.Printf("%s: server side %s\n", pipeline, serverSide)
}

// PrintRecords prints a fetched record snapshot in uid order.
func PrintRecords(pipeline PipelineId, records []ConRecord) {
	fmt.Printf("%s: %d connection records\n", pipeline, len(records))
	for i := range records {
		fmt.Printf("%6d: %s\n", i, records[i].String())
	}
}

// PrintRxTxStats prints sampled rx/tx packet counts with cycle deltas
// between samples.
func PrintRxTxStats(pipeline PipelineId, stats []RxTxStats) {
	if len(stats) == 0 {
		return
	}
	fmt.Printf("\n\n")
	fmt.Printf("%s: rx/tx packets over time\n", pipeline)
	fmt.Printf("      %24s %24s %8s %8s\n", "cycles", "delta cycles", "rx", "tx")
	fmt.Printf("%4d: %24d %24s %8d %8d\n", 0, stats[0].Stamp, "-", stats[0].Rx, stats[0].Tx)
	for i := 1; i < len(stats); i++ {
		prev, next := stats[i-1], stats[i]
		fmt.Printf("%4d: %24d %24d %8d %8d\n",
			i, next.Stamp, next.Stamp-prev.Stamp, next.Rx-prev.Rx, next.Tx-prev.Tx)
	}
}

// PrintTimeStamps prints a pipeline's start/stop stamps as wall time.
func PrintTimeStamps(pipeline PipelineId, system *SystemData, start, stop uint64) {
	fmt.Printf("%s: ran for %v (%d cycles)\n",
		pipeline, system.CyclesToDuration(stop-start), stop-start)
}

// SortRecordsByUid orders a store's valid records for reporting.
func SortRecordsByUid(store *RecordStore) {
	store.SortBy(func(a, b *ConRecord) bool {
		return a.Uid() < b.Uid()
	})
}
