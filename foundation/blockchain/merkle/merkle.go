// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides an implementation of a merkle tree for committing
// an ordered list of transactions to a single root hash.
package merkle

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Digest() signature.Digest
	Equals(other T) bool
}

// =============================================================================

// Root reduces an ordered list of digests to a single root digest. Adjacent
// digests are paired left to right and when a level has an odd count the last
// digest is paired with itself. An empty list produces the zero hash.
func Root(hashes []signature.Digest) signature.Digest {
	if len(hashes) == 0 {
		return signature.ZeroHash
	}

	level := make([]signature.Digest, len(hashes))
	copy(level, hashes)

	for len(level) > 1 {
		next := make([]signature.Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := i + 1
			if right == len(level) {
				right = i
			}
			next = append(next, HashPair(level[i], level[right]))
		}
		level = next
	}

	return level[0]
}

// HashPair returns the digest of the canonical encoding of the pair.
func HashPair(left, right signature.Digest) signature.Digest {
	return signature.Hash([2]signature.Digest{left, right})
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root       *Node[T]
	Leafs      []*Node[T]
	MerkleRoot signature.Digest
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface. A tree with no
// values has no root node and a zero merkle root.
func NewTree[T Hashable[T]](values []T) *Tree[T] {
	var t Tree[T]
	t.Generate(values)

	return &t
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) {
	t.Root = nil
	t.Leafs = nil
	t.MerkleRoot = signature.ZeroHash

	if len(values) == 0 {
		return
	}

	leafs := make([]*Node[T], len(values))
	for i, value := range values {
		leafs[i] = &Node[T]{
			Hash:  value.Digest(),
			Value: value,
			leaf:  true,
			Tree:  t,
		}
	}

	root := buildIntermediate(leafs, t)

	t.Root = root
	t.Leafs = leafs
	t.MerkleRoot = root.Hash
}

// Rebuild is a helper function that will rebuild the tree reusing only the
// data that it currently holds in the leaves.
func (t *Tree[T]) Rebuild() {
	t.Generate(t.Values())
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree. An order of 0 means the proof
// hash is the left side of the pair, 1 means it is the right side.
//
// Starting with the digest of the value, each step computes
//
//	HashPair(proof[i], current)  when order[i] == 0
//	HashPair(current, proof[i])  when order[i] == 1
//
// and the final result should match the merkle root.
func (t *Tree[T]) Proof(data T) ([]signature.Digest, []int64, error) {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		var merkleProof []signature.Digest
		var order []int64
		nodeParent := node.Parent

		for nodeParent != nil {
			if nodeParent.Left == node {
				merkleProof = append(merkleProof, nodeParent.Right.Hash)
				order = append(order, 1)
			} else {
				merkleProof = append(merkleProof, nodeParent.Left.Hash)
				order = append(order, 0)
			}
			node = nodeParent
			nodeParent = nodeParent.Parent
		}

		return merkleProof, order, nil
	}

	return nil, nil, errors.New("unable to find data in tree")
}

// VerifyProof checks a proof produced by Proof against a merkle root.
func VerifyProof(root, hash signature.Digest, proof []signature.Digest, order []int64) bool {
	if len(proof) != len(order) {
		return false
	}

	for i, p := range proof {
		switch order[i] {
		case 0:
			hash = HashPair(p, hash)
		default:
			hash = HashPair(hash, p)
		}
	}

	return hash == root
}

// Verify validates the hashes at each level of the tree and returns an error
// if the resulting hash at the root of the tree doesn't match the merkle root.
func (t *Tree[T]) Verify() error {
	if t.Root == nil {
		if !t.MerkleRoot.IsZero() {
			return errors.New("empty tree has a non zero root")
		}
		return nil
	}

	if t.Root.verify() != t.MerkleRoot {
		return errors.New("root hash invalid")
	}

	return nil
}

// VerifyData indicates whether a given piece of data is in the tree and if the
// hashes are valid for that data.
func (t *Tree[T]) VerifyData(data T) error {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		currentParent := node.Parent
		for currentParent != nil {
			h := HashPair(currentParent.Left.CalculateHash(), currentParent.Right.CalculateHash())
			if h != currentParent.Hash {
				return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
			}

			currentParent = currentParent.Parent
		}

		return nil
	}

	return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
}

// Values returns the values stored in the tree in leaf order.
func (t *Tree[T]) Values() []T {
	values := make([]T, len(t.Leafs))
	for i, l := range t.Leafs {
		values[i] = l.Value
	}

	return values
}

// RootHex converts the merkle root hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return t.MerkleRoot.Hex()
}

// String returns a string representation of the tree. Only leaf nodes are
// included in the output.
func (t *Tree[T]) String() string {
	s := ""

	for _, l := range t.Leafs {
		s += fmt.Sprint(l)
		s += "\n"
	}

	return s
}

// MarshalText implements the TextMarshaler interface and produces a panic
// if anyone tries to marshal the Merkle tree. Use the Values function to
// return a slice that can be marshaled.
func (t *Tree[T]) MarshalText() (text []byte, err error) {
	panic("do not marshal the merkle tree, use Values")
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   signature.Digest
	Value  T
	leaf   bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() signature.Digest {
	if n.leaf {
		return n.Value.Digest()
	}

	return HashPair(n.Left.verify(), n.Right.verify())
}

// CalculateHash is a helper function that calculates the hash of the node.
func (n *Node[T]) CalculateHash() signature.Digest {
	if n.leaf {
		return n.Value.Digest()
	}

	return HashPair(n.Left.Hash, n.Right.Hash)
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %s %v", n.leaf, n.Hash, n.Value)
}

// =============================================================================

// buildIntermediate is a helper function that for a given list of nodes,
// constructs the next level of the tree until a single root node remains.
// An odd node at the end of a level is paired with itself.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) *Node[T] {
	if len(nl) == 1 {
		return nl[0]
	}

	nodes := make([]*Node[T], 0, (len(nl)+1)/2)
	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		if right == len(nl) {
			right = i
		}

		n := Node[T]{
			Left:  nl[left],
			Right: nl[right],
			Hash:  HashPair(nl[left].Hash, nl[right].Hash),
			Tree:  t,
		}

		nodes = append(nodes, &n)
		nl[left].Parent = &n
		nl[right].Parent = &n
	}

	return buildIntermediate(nodes, t)
}
