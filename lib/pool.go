package lib

import (
	"fmt"

	rp "github.com/Clouded-Sabre/ringpool/lib"
	log "github.com/sirupsen/logrus"
)

// defaultChunkLength accommodates the largest TCP segment payload.
const defaultChunkLength = 65536

// Payload is one pre-allocated payload chunk leased from the ring pool by
// the demux path, so segment payloads never allocate per packet.
type Payload struct {
	buf    []byte
	length int
}

// NewPayload is the ring pool element factory. The optional parameter is
// the chunk buffer length.
func NewPayload(params ...interface{}) rp.DataInterface {
	length := defaultChunkLength
	if len(params) == 1 {
		l, ok := params[0].(int)
		if !ok || l <= 0 {
			log.Println("NewPayload: buffer length must be a positive int")
			return nil
		}
		length = l
	}
	return &Payload{
		buf: make([]byte, length),
	}
}

// Reset clears the chunk for reuse.
func (p *Payload) Reset() {
	p.length = 0
}

// PrintContent dumps the chunk, for pool debugging.
func (p *Payload) PrintContent() {
	fmt.Println("Content:", string(p.buf[:p.length]))
}

// Copy fills the chunk from src.
func (p *Payload) Copy(src []byte) error {
	if len(src) > len(p.buf) {
		return fmt.Errorf("Payload.Copy: source (%d bytes) exceeds chunk length (%d)", len(src), len(p.buf))
	}
	if len(src) == 0 {
		return fmt.Errorf("Payload.Copy: source is empty")
	}
	copy(p.buf, src)
	p.length = len(src)
	return nil
}

// GetSlice returns the filled part of the chunk.
func (p *Payload) GetSlice() []byte {
	return p.buf[:p.length]
}

// NewPayloadPool builds the pre-allocated chunk pool for one pipeline's
// demux path.
func NewPayloadPool(name string, size, chunkLength int) *rp.RingPool {
	return rp.NewRingPool(name, size, NewPayload, chunkLength)
}
