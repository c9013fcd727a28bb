// Package vocab builds and serves the frequency-ranked word table.
//
// The table is a chained hash with move-to-front on access. Buckets are
// indices into a single node arena and keys live in one shared byte buffer,
// so collision chains are relinked by three index assignments with no
// pointer chasing.
package vocab

import "bytes"

// Table geometry and hash parameters.
const (
	// TableSize is the bucket count (2^20).
	TableSize = 1 << 20

	// hashSeed seeds the bitwise hash.
	hashSeed = 1159241

	// nilNode marks an empty bucket or chain end.
	nilNode = int32(-1)
)

type node struct {
	keyOff int64
	val    int64
	next   int32
	keyLen int32
}

// Table maps token bytes to a 64-bit value: occurrence counts while
// building a vocabulary, frequency ranks while consuming one.
type Table struct {
	buckets []int32
	nodes   []node
	keys    []byte
}

// NewTable returns an empty table with all buckets unoccupied.
func NewTable() *Table {
	buckets := make([]int32, TableSize)
	for i := range buckets {
		buckets[i] = nilNode
	}

	return &Table{buckets: buckets}
}

// bucketFor computes the bucket index for word using the bitwise hash:
// h ← seed; h ^= (h<<5) + c + (h>>2) per byte.
func bucketFor(word []byte) uint32 {
	h := uint32(hashSeed)

	for _, c := range word {
		h ^= (h << 5) + uint32(c) + (h >> 2)
	}

	return (h & 0x7fffffff) % TableSize
}

// key returns the stored key bytes of node i.
func (t *Table) key(i int32) []byte {
	n := t.nodes[i]

	return t.keys[n.keyOff : n.keyOff+int64(n.keyLen)]
}

// find walks the chain for word and returns the matching node index, its
// predecessor in the chain, and the bucket. Either index may be nilNode.
func (t *Table) find(word []byte) (idx, prev int32, bucket uint32) {
	bucket = bucketFor(word)
	prev = nilNode

	for idx = t.buckets[bucket]; idx != nilNode; prev, idx = idx, t.nodes[idx].next {
		if bytes.Equal(t.key(idx), word) {
			return idx, prev, bucket
		}
	}

	return nilNode, nilNode, bucket
}

// moveToFront relinks node idx (with chain predecessor prev) to the head of
// its bucket. No-op when idx is already the head.
func (t *Table) moveToFront(idx, prev int32, bucket uint32) {
	if prev == nilNode {
		return
	}

	t.nodes[prev].next = t.nodes[idx].next
	t.nodes[idx].next = t.buckets[bucket]
	t.buckets[bucket] = idx
}

// insertHead appends a node for word to the arena and links it at the head
// of its bucket.
func (t *Table) insertHead(word []byte, val int64, bucket uint32) {
	keyOff := int64(len(t.keys))
	t.keys = append(t.keys, word...)

	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{
		keyOff: keyOff,
		keyLen: int32(len(word)),
		val:    val,
		next:   t.buckets[bucket],
	})
	t.buckets[bucket] = idx
}

// Incr adds one to word's count, inserting it with count 1 when absent.
// Accessed words move to the front of their collision chain.
func (t *Table) Incr(word []byte) {
	idx, prev, bucket := t.find(word)
	if idx == nilNode {
		t.insertHead(word, 1, bucket)

		return
	}

	t.nodes[idx].val++
	t.moveToFront(idx, prev, bucket)
}

// Insert stores word with the given value. It reports whether word was
// already present, in which case the existing value is kept.
func (t *Table) Insert(word []byte, val int64) (duplicate bool) {
	idx, _, bucket := t.find(word)
	if idx != nilNode {
		return true
	}

	t.insertHead(word, val, bucket)

	return false
}

// Get returns word's value. Accessed words move to the front of their
// collision chain.
func (t *Table) Get(word []byte) (int64, bool) {
	idx, prev, bucket := t.find(word)
	if idx == nilNode {
		return 0, false
	}

	t.moveToFront(idx, prev, bucket)

	return t.nodes[idx].val, true
}

// Len returns the number of distinct words stored.
func (t *Table) Len() int {
	return len(t.nodes)
}

// Entry is one word with its associated count.
type Entry struct {
	Word  string
	Count int64
}

// Entries migrates the table into a dense array in arena order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.nodes))
	for i := range t.nodes {
		out[i] = Entry{Word: string(t.key(int32(i))), Count: t.nodes[i].val}
	}

	return out
}
