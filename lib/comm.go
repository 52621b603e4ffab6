package lib

import (
	"fmt"

	"github.com/google/uuid"
)

// PipelineId identifies one pipeline: a core working one rx queue of one
// port.
type PipelineId struct {
	Core   uint16
	PortId uint16
	Rxq    uint16
}

func (p PipelineId) String() string {
	return fmt.Sprintf("<c%d, p%d, rx%d>", p.Core, p.PortId, p.Rxq)
}

// TaskType classifies the tasks a pipeline announces to the coordinator.
type TaskType uint8

const (
	TaskIngress TaskType = iota
	TaskEgress
	TaskTimer
)

// RxTxStats is one sampled point of the rx/tx packet counters.
type RxTxStats struct {
	Stamp uint64 // cycle stamp of the sample
	Rx    uint64
	Tx    uint64
}

// MessageKind discriminates the cross-core messages.
type MessageKind uint8

const (
	// pipeline -> coordinator
	MsgChannel MessageKind = iota
	MsgStartEngine
	MsgTask
	MsgCounter
	MsgCRecords
	MsgTimeStamps
	// coordinator -> pipeline
	MsgFetchCounters
	MsgFetchCRecords
	MsgStartGenerator
	// both directions
	MsgExit
)

// Message is the unit of cross-core coordination. Counters and record
// snapshots are copied in, never shared live: a pipeline fills the message
// from its own stores and the receiver owns the copy.
type Message struct {
	Kind     MessageKind
	Pipeline PipelineId

	// MsgChannel, MsgStartEngine
	Reply chan Message

	// MsgTask
	TaskId uuid.UUID
	Task   TaskType

	// MsgCounter
	ClientCounter TcpCounter
	ServerCounter TcpCounter
	RxTx          []RxTxStats

	// MsgCRecords
	ClientRecords []ConRecord
	ServerRecords []ConRecord

	// MsgTimeStamps
	StartStamp uint64
	StopStamp  uint64
}

// NewTaskMessage announces a pipeline task with a fresh identity.
func NewTaskMessage(pipeline PipelineId, task TaskType) Message {
	return Message{
		Kind:     MsgTask,
		Pipeline: pipeline,
		TaskId:   uuid.New(),
		Task:     task,
	}
}
