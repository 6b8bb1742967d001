package metaindex

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// NodeType distinguishes the four kinds of MetaIndexNode, per
// spec.md §3.
type NodeType byte

const (
	InternalDevice NodeType = iota
	LeafDevice
	InternalMeasurement
	LeafMeasurement
)

// Entry is one child of a MetaIndexNode: a sort key (device id string or
// measurement name) paired with the byte offset of the region it points
// to.
type Entry struct {
	Key    string
	Offset int64
}

// Node is a MetaIndexNode: an ordered list of children plus the
// exclusive upper bound of the last child's byte region.
type Node struct {
	Type      NodeType
	Children  []Entry
	EndOffset int64
}

// Serialize appends the on-disk form of a Node to out: {nodeType byte,
// childCount uvarint, children..., endOffset i64}.
func (n Node) Serialize(out []byte) []byte {
	out = append(out, byte(n.Type))
	out = format.AppendUvarint(out, uint64(len(n.Children)))
	for _, c := range n.Children {
		out = format.AppendString(out, c.Key)
		out = appendInt64(out, c.Offset)
	}

	return appendInt64(out, n.EndOffset)
}

// DeserializeNode reads one Node as written by Node.Serialize: {nodeType
// byte, childCount uvarint, children..., endOffset i64}. Unlike most of
// this module's wire records, a Node carries no overall length prefix —
// its end is implicit in childCount, so data only needs to contain at
// least the node's own bytes, not be trimmed to them exactly.
func DeserializeNode(data []byte) (Node, int, error) {
	if len(data) < 1 {
		return Node{}, 0, errs.New(errs.KindCorrupted, "truncated meta index node type")
	}
	nodeType := NodeType(data[0])
	n := 1

	childCount, m := binary.Uvarint(data[n:])
	if m <= 0 {
		return Node{}, 0, errs.New(errs.KindCorrupted, "truncated meta index node child count")
	}
	n += m

	children := make([]Entry, 0, childCount)
	for i := uint64(0); i < childCount; i++ {
		key, kn, err := format.ReadString(data[n:])
		if err != nil {
			return Node{}, 0, errs.Wrap(errs.KindCorrupted, "truncated meta index node key", err)
		}
		n += kn
		if n+8 > len(data) {
			return Node{}, 0, errs.New(errs.KindCorrupted, "truncated meta index node child offset")
		}
		children = append(children, Entry{Key: key, Offset: readInt64LE(data[n:])})
		n += 8
	}

	if n+8 > len(data) {
		return Node{}, 0, errs.New(errs.KindCorrupted, "truncated meta index node end offset")
	}
	endOffset := readInt64LE(data[n:])
	n += 8

	return Node{Type: nodeType, Children: children, EndOffset: endOffset}, n, nil
}

func readInt64LE(data []byte) int64 {
	var v int64
	for i := 0; i < 8; i++ {
		v |= int64(data[i]) << (8 * i)
	}

	return v
}

// BuildLeafNodes chunks an ordered sequence of (key, offset) pairs into
// leaf nodes of at most maxDegree children each. endOffset is the byte
// position just past the last pair's region (the position the caller is
// about to write the first node to).
func BuildLeafNodes(nodeType NodeType, entries []Entry, maxDegree int, tailEndOffset int64) []Node {
	if len(entries) == 0 {
		return nil
	}

	var nodes []Node
	for i := 0; i < len(entries); i += maxDegree {
		end := i + maxDegree
		if end > len(entries) {
			end = len(entries)
		}
		nodeEnd := tailEndOffset
		if end < len(entries) {
			nodeEnd = entries[end].Offset
		}
		nodes = append(nodes, Node{
			Type:      nodeType,
			Children:  entries[i:end],
			EndOffset: nodeEnd,
		})
	}

	return nodes
}

// BuildInternalLevel groups a level of node offsets into the next level
// up, recursing via the caller until a single root remains. offsets[i]
// is where nodes[i] will be (or was) written; firstKeys[i] is nodes[i]'s
// first child's key, used as the internal entry's sort key.
func BuildInternalLevel(nodeType NodeType, firstKeys []string, offsets []int64, maxDegree int, tailEndOffset int64) []Node {
	if len(offsets) <= 1 {
		return nil
	}

	var nodes []Node
	for i := 0; i < len(offsets); i += maxDegree {
		end := i + maxDegree
		if end > len(offsets) {
			end = len(offsets)
		}
		entries := make([]Entry, 0, end-i)
		for j := i; j < end; j++ {
			entries = append(entries, Entry{Key: firstKeys[j], Offset: offsets[j]})
		}
		nodeEnd := tailEndOffset
		if end < len(offsets) {
			nodeEnd = offsets[end]
		}
		nodes = append(nodes, Node{Type: nodeType, Children: entries, EndOffset: nodeEnd})
	}

	return nodes
}

// BinarySearchEntries returns the index of the largest child whose key
// is <= target (lower-bound on the complement), matching the reader's
// descent rule. exact additionally requires an exact key match,
// returning (-1, false) otherwise.
func BinarySearchEntries(children []Entry, target string, exact bool) (int, bool) {
	lo, hi := 0, len(children)
	for lo < hi {
		mid := (lo + hi) / 2
		if children[mid].Key <= target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	idx := lo - 1
	if idx < 0 {
		return -1, false
	}
	if exact && children[idx].Key != target {
		return -1, false
	}

	return idx, true
}
