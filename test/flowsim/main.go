// flowsim drives one tracker pipeline without a NIC: it plays both ends of
// a batch of TCP flows, feeds the server side through the frame demuxer and
// then fetches counters, record snapshots and metrics the way the engine's
// coordinator core would.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/pktworks/flowtrack/config"
	"github.com/pktworks/flowtrack/lib"
)

var (
	configFile = flag.String("config", "", "engine config file (yaml); defaults apply when empty")
	flowCount  = flag.Int("flows", 64, "number of flows to simulate")
	debug      = flag.Bool("debug", false, "enable debug logging")
)

// flowExtra is the cold per-flow data kept in the client store's parallel
// array, off the hot record cache lines.
type flowExtra struct {
	serverPort uint16
	attempts   uint16
}

func (f *flowExtra) Reset() {
	*f = flowExtra{}
}

func (f *flowExtra) String() string {
	return fmt.Sprintf("(srv %d, attempts %d)", f.serverPort, f.attempts)
}

func main() {
	flag.Parse()
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.ReadConfig(*configFile)
		if err != nil {
			log.Fatalf("cannot load config: %v", err)
		}
	}
	if cfg.CpuClockHz != 0 {
		lib.SetCpuClock(cfg.CpuClockHz)
	}
	system := &lib.SystemData{CpuClock: lib.CpuClock()}

	registry := prometheus.NewRegistry()
	metrics := lib.NewMetrics(registry)

	pipeline := lib.PipelineId{Core: 1, PortId: 0, Rxq: 0}
	messages := make(chan lib.Message, 16)

	go runPipeline(pipeline, cfg, *flowCount, metrics, messages)

	var commands chan lib.Message
	for msg := range messages {
		switch msg.Kind {
		case lib.MsgChannel:
			commands = msg.Reply
			commands <- lib.Message{Kind: lib.MsgFetchCounters}
			commands <- lib.Message{Kind: lib.MsgFetchCRecords}
		case lib.MsgTask:
			log.Debugf("%s announced task %v (%s)", msg.Pipeline, msg.Task, msg.TaskId)
		case lib.MsgCounter:
			lib.PrintTcpCounters(msg.Pipeline, &msg.ClientCounter, &msg.ServerCounter)
			lib.PrintRxTxStats(msg.Pipeline, msg.RxTx)
			metrics.AddPayloadPackets(msg.Pipeline, "sent", msg.ClientCounter.Get(lib.SentPayload))
			metrics.AddPayloadPackets(msg.Pipeline, "recv", msg.ServerCounter.Get(lib.RecvPayload))
		case lib.MsgCRecords:
			if cfg.DetailedRecords {
				lib.PrintRecords(msg.Pipeline, msg.ClientRecords)
				lib.PrintRecords(msg.Pipeline, msg.ServerRecords)
			} else {
				fmt.Printf("%s: fetched %d client and %d server records\n",
					msg.Pipeline, len(msg.ClientRecords), len(msg.ServerRecords))
			}
			commands <- lib.Message{Kind: lib.MsgExit}
		case lib.MsgTimeStamps:
			lib.PrintTimeStamps(msg.Pipeline, system, msg.StartStamp, msg.StopStamp)
		case lib.MsgExit:
			printMetrics(registry)
			return
		}
	}
}

func runPipeline(pipeline lib.PipelineId, cfg *config.Config, flows int, metrics *lib.Metrics, messages chan lib.Message) {
	start := lib.Cycles()

	clientStore := lib.NewStore64[*flowExtra](cfg.StoreCapacity, func() *flowExtra { return &flowExtra{} })
	serverStore := lib.NewRecordStore(cfg.StoreCapacity)
	index := lib.NewSock2Index()
	pool := lib.NewPayloadPool(fmt.Sprintf("%s: ", pipeline), cfg.PayloadPoolSize, cfg.ChunkLength)

	var clientCounter, serverCounter lib.TcpCounter
	demuxer := lib.NewDemuxer(serverStore, index, pool, &serverCounter)

	clientObserver := metrics.NewStoreObserver(pipeline, lib.TcpRoleClient)
	serverObserver := metrics.NewStoreObserver(pipeline, lib.TcpRoleServer)

	commands := make(chan lib.Message, 4)
	messages <- lib.Message{Kind: lib.MsgChannel, Pipeline: pipeline, Reply: commands}
	messages <- lib.NewTaskMessage(pipeline, lib.TaskIngress)

	_, ipNet, err := net.ParseCIDR(cfg.EngineNet)
	if err != nil {
		log.Fatalf("invalid engine_net %q: %v", cfg.EngineNet, err)
	}
	target, err := lib.DeriveSteeringTarget(lib.SteeringPort, ipNet, 0xFFC0, int(pipeline.Core))
	if err != nil {
		log.Fatalf("cannot derive steering target: %v", err)
	}
	serverIP := target.DstIP.To4()
	serverSock := lib.SockAddr{
		IP:   uint32(serverIP[0])<<24 | uint32(serverIP[1])<<16 | uint32(serverIP[2])<<8 | uint32(serverIP[3]),
		Port: target.PortBase,
	}
	clientIP := net.IPv4(10, 0, byte(pipeline.Core), 2)

	ports := lib.ShufflePorts(cfg.PortRangeFirst, cfg.PortRangeLast)
	var rxtx []lib.RxTxStats
	var rx, tx uint64

	for i := 0; i < flows; i++ {
		clientPort := ports[i%len(ports)]
		clientSock := lib.SockAddr{IP: ipToU32(clientIP), Port: clientPort}

		// client side opens
		slot := clientStore.GetNextSlot()
		rec := clientStore.Get(slot)
		rec.Init(lib.TcpRoleClient, clientPort, serverSock)
		client := lib.NewConnHandle(clientStore, slot)
		extra := clientStore.GetPayload(slot)
		(*extra).Reset()
		(*extra).serverPort = serverSock.Port
		(*extra).attempts = 1

		client.PushState(lib.TcpSynSent)
		clientCounter.Inc(lib.SentSyn)
		tx++

		// server side sees the SYN through the demuxer
		syn := buildFrame(clientSock, serverSock, true, nil)
		seg := demuxer.DemuxFrame(syn)
		rx++
		if !seg.Admitted {
			log.Fatalf("flow %d: SYN was not admitted", i)
		}
		server := seg.Handle
		server.SetUid(client.Uid())
		server.SetServerState(lib.TcpSynSent)

		// handshake completes on both sides
		client.ConEstablished()
		server.ConEstablished()
		clientCounter.Inc(lib.RecvSynAck)
		serverCounter.Inc(lib.SentSynAck)

		// one payload segment client -> server
		data := buildFrame(clientSock, serverSock, false, []byte("ping"))
		seg = demuxer.DemuxFrame(data)
		rx++
		if seg.Payload() != nil {
			seg.ReturnChunk(pool)
		}
		client.IncrementSentPayload()
		clientCounter.Inc(lib.SentPayload)
		tx++

		// teardown
		client.PushState(lib.TcpFinWait)
		client.SetReleaseCause(lib.CauseActiveClose)
		server.PushState(lib.TcpLastAck)
		server.SetReleaseCause(lib.CausePassiveClose)
		if _, ok := index.Remove(clientSock); !ok {
			log.Fatalf("flow %d: socket missing from index at teardown", i)
		}
		client.Release()
		server.Release()

		if i%16 == 0 {
			rxtx = append(rxtx, lib.RxTxStats{Stamp: lib.Cycles(), Rx: rx, Tx: tx})
		}
	}

	clientObserver.Observe(clientStore)
	serverObserver.Observe(serverStore)
	messages <- lib.Message{Kind: lib.MsgTimeStamps, Pipeline: pipeline, StartStamp: start, StopStamp: lib.Cycles()}

	for cmd := range commands {
		switch cmd.Kind {
		case lib.MsgFetchCounters:
			messages <- lib.Message{
				Kind:          lib.MsgCounter,
				Pipeline:      pipeline,
				ClientCounter: clientCounter,
				ServerCounter: serverCounter,
				RxTx:          rxtx,
			}
		case lib.MsgFetchCRecords:
			lib.SortRecordsByUid(serverStore)
			messages <- lib.Message{
				Kind:          lib.MsgCRecords,
				Pipeline:      pipeline,
				ClientRecords: clientStore.Snapshot(),
				ServerRecords: serverStore.Snapshot(),
			}
		case lib.MsgExit:
			messages <- lib.Message{Kind: lib.MsgExit, Pipeline: pipeline}
			return
		}
	}
}

func ipToU32(ip net.IP) uint32 {
	v4 := ip.To4()
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

func u32ToIP(ip uint32) net.IP {
	return net.IPv4(byte(ip>>24), byte(ip>>16), byte(ip>>8), byte(ip))
}

// buildFrame serializes an Ethernet/IPv4/TCP frame from src to dst.
func buildFrame(src, dst lib.SockAddr, syn bool, payload []byte) []byte {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    u32ToIP(src.IP),
		DstIP:    u32ToIP(dst.IP),
	}
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(src.Port),
		DstPort: layers.TCPPort(dst.Port),
		SYN:     syn,
		ACK:     false,
		Window:  64240,
	}
	if len(payload) > 0 {
		tcp.PSH = true
		tcp.ACK = true
	}
	tcp.SetNetworkLayerForChecksum(ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(payload)); err != nil {
		log.Fatalf("cannot serialize frame: %v", err)
	}
	return buf.Bytes()
}

func printMetrics(registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot gather metrics: %v\n", err)
		return
	}
	fmt.Printf("\n\n")
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			labels := ""
			for _, l := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", l.GetName(), l.GetValue())
			}
			fmt.Printf("%s%s = %v\n", fam.GetName(), labels, m.GetCounter().GetValue())
		}
	}
}
