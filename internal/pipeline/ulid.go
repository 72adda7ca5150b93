package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 26 Crockford Base32 characters, 48-bit millisecond
// timestamp followed by randomness, so they sort by creation time. Generated
// locally to avoid pulling in a dependency for one identifier.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewID returns a fresh job id.
func NewID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	// Sequence in bytes 6-7 keeps ids unique within the same millisecond.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeBase32(b)
}

// encodeBase32 encodes 128 bits as 26 Crockford characters. 26×5 = 130 bits,
// so the first character carries only the top 3 bits.
func encodeBase32(b [16]byte) string {
	var out [26]byte
	bitIdx := -2
	for i := range out {
		var v byte
		for j := 0; j < 5; j++ {
			pos := bitIdx + j
			v <<= 1
			if pos >= 0 && b[pos/8]&(1<<(7-pos%8)) != 0 {
				v |= 1
			}
		}
		out[i] = crockford[v]
		bitIdx += 5
	}
	return string(out[:])
}
