// Package snapshot serializes and restores heap state as CBOR-encoded
// records, optionally zstd-compressed.
package snapshot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/chazu/maggie/pkg/heap"
)

// cborEncMode is the canonical, deterministic CBOR encoding used for
// every snapshot: same heap state always produces the same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// regionRecord holds one region's full backing bytes, addressed by
// integer keys to keep the wire format compact and stable across field
// reordering.
type regionRecord struct {
	Index   int    `cbor:"1,keyasint"`
	Content []byte `cbor:"2,keyasint"`
}

// Snapshot is the CBOR wire form of a heap's live state: the
// allocator's region ordering plus each live region's raw bytes.
type Snapshot struct {
	Order   []int          `cbor:"1,keyasint"`
	Regions []regionRecord `cbor:"2,keyasint"`
}

// Capture builds a Snapshot of every region currently reachable from
// order (typically Allocator.Order()).
func Capture(h *heap.Heap, order []int) (*Snapshot, error) {
	s := &Snapshot{Order: append([]int(nil), order...)}
	seen := make(map[int]bool)
	for _, idx := range order {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		content, fault := h.RegionContent(idx)
		if fault != nil {
			return nil, fault
		}
		s.Regions = append(s.Regions, regionRecord{Index: idx, Content: content})
	}
	return s, nil
}

// Marshal encodes a Snapshot to canonical CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal decodes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &s, nil
}

// Restore loads a Snapshot's regions into h and returns the allocator
// region ordering it captured.
func Restore(h *heap.Heap, s *Snapshot) ([]int, error) {
	for _, rec := range s.Regions {
		if _, fault := h.LoadRegionContent(rec.Index, rec.Content); fault != nil {
			return nil, fault
		}
	}
	return append([]int(nil), s.Order...), nil
}

// WriteCompressed CBOR-encodes s and writes it to w through a zstd
// encoder, so on-disk snapshots stay small despite regions being
// mostly zero-padded.
func WriteCompressed(w io.Writer, s *Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("snapshot: creating zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("snapshot: writing compressed payload: %w", err)
	}
	return enc.Close()
}

// ReadCompressed reads a zstd-compressed CBOR snapshot from r.
func ReadCompressed(r io.Reader) (*Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: creating zstd reader: %w", err)
	}
	defer dec.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, dec); err != nil {
		return nil, fmt.Errorf("snapshot: decompressing payload: %w", err)
	}
	return Unmarshal(buf.Bytes())
}

// MarshalCompressed is the []byte-oriented counterpart to
// WriteCompressed, for callers (like the region archive) that store a
// payload rather than stream to an io.Writer.
func MarshalCompressed(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCompressed(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalCompressed is the []byte-oriented counterpart to
// ReadCompressed.
func UnmarshalCompressed(data []byte) (*Snapshot, error) {
	return ReadCompressed(bytes.NewReader(data))
}
