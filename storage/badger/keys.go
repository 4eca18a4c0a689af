package badger

import (
	"fmt"

	"github.com/lattice-works/semdex/core"
)

// Key prefixes for different data types
const (
	documentPrefix = "docrec"
	documentIDSeq  = "docrecseq"

	indexFilePrefix  = "idxfile"
	indexFileIDSeq   = "idxfileseq"
	indexChunkPrefix = "idxchunk"
	indexChunkIDSeq  = "idxchunkseq"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeIndexFileKey generates a key for a file-registry row by ID.
func makeIndexFileKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d", indexFilePrefix, id))
}

// makeIndexChunkKey generates a key for a stored chunk object by ID.
func makeIndexChunkKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d", indexChunkPrefix, id))
}
