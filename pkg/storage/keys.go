package storage

import (
	"encoding/binary"

	"github.com/rostra-dev/rostra/pkg/types"
)

// Composite keys are encoded big-endian so bbolt's byte-lexicographic
// cursor order matches numeric order, giving ordered scans for free.

func authorTimeKey(author types.AuthorID, ts uint64, id types.EventID) []byte {
	buf := make([]byte, 32+8+16)
	copy(buf[0:32], author[:])
	binary.BigEndian.PutUint64(buf[32:40], ts)
	copy(buf[40:56], id[:])
	return buf
}

func headKey(author types.AuthorID, id types.EventID) []byte {
	buf := make([]byte, 32+16)
	copy(buf[0:32], author[:])
	copy(buf[32:48], id[:])
	return buf
}

func contentMissingKey(nextAttempt uint64, id types.EventID) []byte {
	buf := make([]byte, 8+16)
	binary.BigEndian.PutUint64(buf[0:8], nextAttempt)
	copy(buf[8:24], id[:])
	return buf
}

func notificationKey(recipient types.AuthorID, ts uint64, seq uint64) []byte {
	buf := make([]byte, 32+8+8)
	copy(buf[0:32], recipient[:])
	binary.BigEndian.PutUint64(buf[32:40], ts)
	binary.BigEndian.PutUint64(buf[40:48], seq)
	return buf
}

func timelineNetworkKey(ts uint64, id types.EventID) []byte {
	buf := make([]byte, 8+16)
	binary.BigEndian.PutUint64(buf[0:8], ts)
	copy(buf[8:24], id[:])
	return buf
}

func followKey(author, followee types.AuthorID) []byte {
	buf := make([]byte, 32+32)
	copy(buf[0:32], author[:])
	copy(buf[32:64], followee[:])
	return buf
}

func eventIDFromTail(key []byte) types.EventID {
	var id types.EventID
	copy(id[:], key[len(key)-16:])
	return id
}
