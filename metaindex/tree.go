package metaindex

import "github.com/tsfile-go/tsfile/errs"

// Tree is the serialized, depth-first (children-before-parent) byte
// form of one bottom-up MetaIndexNode tree, plus the offset and node
// value of its single root — the footer embeds a copy of RootNode
// directly rather than pointing at RootOffset, so a reader never has
// to make an extra hop just to find a table's or device's root.
type Tree struct {
	Bytes      []byte
	RootOffset int64
	RootNode   Node
}

// BuildTree assembles leaf and successive internal levels from leafType/
// internalType via BuildLeafNodes/BuildInternalLevel, writing each level
// depth-first so every node's children precede it in Bytes, per
// spec.md §4.6 step 3. leafEntries must already be sorted by key and
// reference byte offsets into payload data written immediately before
// treeStart. maxDegree bounds the fan-out of every node.
//
// Every node's EndOffset is the exclusive upper bound of its last
// child's byte region: for leaf nodes, that's a payload offset; for a
// node at the top of its level (including the final root), it's the
// position where the tree's next level — or, for the root, whatever
// follows the tree entirely — begins. Since EndOffset is a fixed-width
// trailer that never affects a node's serialized length, each level is
// built once with that value unknown, then the last node's trailer is
// patched in place once the level's total size is known.
func BuildTree(leafType, internalType NodeType, leafEntries []Entry, maxDegree int, treeStart int64) (Tree, error) {
	if len(leafEntries) == 0 {
		return Tree{}, errs.New(errs.KindInvalidArg, "metaindex: cannot build a tree with no entries")
	}

	var out []byte
	base := treeStart
	level := leafEntries
	nodeType := leafType
	var levelNodes []Node

	for {
		if nodeType == leafType {
			levelNodes = BuildLeafNodes(nodeType, level, maxDegree, 0)
		} else {
			firstKeys := make([]string, len(level))
			offsets := make([]int64, len(level))
			for i, e := range level {
				firstKeys[i] = e.Key
				offsets[i] = e.Offset
			}
			levelNodes = BuildInternalLevel(nodeType, firstKeys, offsets, maxDegree, 0)
		}

		next := make([]Entry, 0, len(levelNodes))
		nodeOffsets := make([]int64, len(levelNodes))
		for i, n := range levelNodes {
			nodeOffset := base + int64(len(out))
			nodeOffsets[i] = nodeOffset
			out = n.Serialize(out)
			next = append(next, Entry{Key: n.Children[0].Key, Offset: nodeOffset})
		}

		nextLevelStart := base + int64(len(out))
		putInt64LE(out[len(out)-8:], nextLevelStart)
		levelNodes[len(levelNodes)-1].EndOffset = nextLevelStart

		level = next
		if len(level) <= 1 {
			break
		}
		nodeType = internalType
	}

	root := levelNodes[0]

	return Tree{Bytes: out, RootOffset: level[0].Offset, RootNode: root}, nil
}

func putInt64LE(b []byte, v int64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i)) //nolint:gosec
	}
}
