package store

import (
	"encoding/binary"
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// ErrInvalidID is returned when a row cannot be keyed by its id
var ErrInvalidID = errors.New("row id must not be negative")

// Rows are stored as CBOR using Core Deterministic Encoding, so the same
// record always produces the same bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}

	// Unknown fields are ignored so older binaries can read newer rows.
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// idKey encodes an id as 8 big-endian bytes so cursor order equals id order.
func idKey(id int) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}

func keyID(k []byte) int {
	return int(binary.BigEndian.Uint64(k))
}

func int64Bytes(v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

func bytesInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
