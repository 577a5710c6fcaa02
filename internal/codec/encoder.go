package codec

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/u-blox/infinite-iot-sub000/internal/data"
)

const maxReportIndex = (1 << 31) - 1

// Encoder streams queued records into size-bounded datagrams. A single
// Prepare call takes a snapshot cursor over the queue's current logical
// order; repeated Encode calls consume it until exhausted, exactly as
// spec.md §4.3 describes.
type Encoder struct {
	mu sync.Mutex

	queue  *data.Queue
	name   string
	maxNameLen int
	protocolVersion int

	snapshot []data.Handle
	pos      int
	prepared bool

	index     int32
	lastIndex int32
	haveLast  bool
}

// NewEncoder creates an encoder over queue.
func NewEncoder(queue *data.Queue, protocolVersion, maxNameLen int) *Encoder {
	return &Encoder{queue: queue, protocolVersion: protocolVersion, maxNameLen: maxNameLen}
}

// Prepare sorts the queue and takes a snapshot cursor over it for a new
// encode session.
func (e *Encoder) Prepare() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.queue.Sort()
	e.snapshot = e.queue.Snapshot()
	e.pos = 0
	e.prepared = true
}

// LastIndex returns the index of the last successfully-encoded report.
func (e *Encoder) LastIndex() (int32, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastIndex, e.haveLast
}

// Ack releases all records from the queue head up to (but not
// including) the encoder's current cursor position, returning the
// action references the caller must clear.
func (e *Encoder) Ack() []data.ActionRef {
	e.mu.Lock()
	toFree := append([]data.Handle(nil), e.snapshot[:e.pos]...)
	e.mu.Unlock()

	var refs []data.ActionRef
	for _, h := range toFree {
		refs = append(refs, e.queue.Free(h)...)
	}
	return refs
}

// Encode writes the next datagram into buf (name becomes the codec's
// "n" field) and returns the bytes actually written plus status flags.
// Records with requires-ack remain queued; others are freed eagerly.
func (e *Encoder) Encode(name string, buf []byte) (EncodeFlags, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.prepared || e.pos >= len(e.snapshot) {
		return 0, 0
	}

	var out bytes.Buffer
	ackOffset := -1

	fmt.Fprintf(&out, `{"v":%d,"n":"%s","i":%d,"a":`, e.protocolVersion, name, e.index)
	ackOffset = out.Len()
	out.WriteString(`0,"r":[`)

	closer := `]}`

	if out.Len()+len(closer) > len(buf) {
		return FlagNotEnoughRoomForHeader, 0
	}

	needsAck := false
	emitted := 0
	var toFree []data.Handle

	for e.pos < len(e.snapshot) {
		h := e.snapshot[e.pos]
		rec, ok := e.queue.Get(h)
		if !ok {
			// Already reclaimed since the snapshot was taken; skip.
			e.pos++
			continue
		}

		recStart := out.Len()
		if emitted > 0 {
			out.WriteByte(',')
		}
		formatted, err := formatRecord(rec)
		if err != nil {
			// Malformed contents never reach here in practice; skip
			// defensively rather than corrupt the stream.
			e.pos++
			continue
		}
		out.WriteString(formatted)

		if out.Len()+len(closer) > len(buf) {
			out.Truncate(recStart)
			break
		}

		emitted++
		e.pos++
		if rec.Flags&data.FlagRequiresAck != 0 {
			needsAck = true
		} else {
			toFree = append(toFree, h)
		}
	}

	if emitted == 0 {
		if e.pos >= len(e.snapshot) {
			// Every remaining snapshot entry was skipped: nothing to send.
			return 0, 0
		}
		return FlagNotEnoughRoomForEvenOneData, 0
	}

	out.WriteString(closer)

	if needsAck {
		b := out.Bytes()
		b[ackOffset] = '1'
	}

	n := copy(buf, out.Bytes())

	e.lastIndex = e.index
	e.haveLast = true
	if e.index >= maxReportIndex {
		e.index = 0
	} else {
		e.index++
	}

	for _, h := range toFree {
		e.queue.Free(h)
	}

	flags := EncodeFlags(0)
	if needsAck {
		flags |= FlagNeedsAck
	}
	return flags, n
}

// sanitizeBLEName strips characters that would break the JSON string
// grammar from a BLE device name. It is unexported and nothing calls it:
// formatPayload writes a ble record's Dev field verbatim.
func sanitizeBLEName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return -1
		}
		return r
	}, s)
}
