package heap

// GCStats summarizes one MinorGC invocation, for callers that want to
// record cycle telemetry.
type GCStats struct {
	RegionsPaired   int
	RegionsReleased int
	BytesReclaimed  int64
}

// MinorGC performs one relocating collection over the allocator's
// young regions: regions are classified into a lessThan40 bucket
// (occupancy under 40%) and a lessThan60 bucket (40-60% occupancy),
// each lessThan40 region is paired with the lessThan60 region at the
// same bucket index, each pair's live bytes are compacted into a
// single fresh region, every remaining live pointer is rewritten to
// the new addresses, and the vacated regions are returned to the
// allocator's free pool. Buckets of unequal size leave the excess
// entries unpaired for this cycle.
//
// All compaction copies complete before any pointer is rewritten, so
// the rewrite pass never observes a partially-relocated region.
func MinorGC(a *Allocator) *Fault {
	_, f := MinorGCWithStats(a)
	return f
}

// MinorGCWithStats runs MinorGC and reports how many regions were
// paired, how many were released back to the free pool, and how many
// bytes of region space that represents.
func MinorGCWithStats(a *Allocator) (GCStats, *Fault) {
	h := a.heap
	order := a.Order()

	type rebaseEntry struct {
		newBase Address
		extra   uint32
	}

	var lessThan40, lessThan60 []int
	for _, idx := range order {
		r, f := h.RegionAt(idx)
		if f != nil {
			return GCStats{}, f
		}
		switch occ := r.Occupancy(); {
		case occ < lessThan40Threshold:
			lessThan40 = append(lessThan40, idx)
		case occ < youngOccupancyThreshold:
			lessThan60 = append(lessThan60, idx)
		}
	}

	pairCount := len(lessThan40)
	if len(lessThan60) < pairCount {
		pairCount = len(lessThan60)
	}

	rebase := make(map[int]rebaseEntry)
	pairTarget := make(map[int]int)
	mergedSecond := make(map[int]bool)
	var freed []int
	pairsFormed := 0

	for i := 0; i < pairCount; i++ {
		idxA, idxB := lessThan40[i], lessThan60[i]
		rA, f := h.RegionAt(idxA)
		if f != nil {
			return GCStats{}, f
		}
		rB, f := h.RegionAt(idxB)
		if f != nil {
			return GCStats{}, f
		}
		if uint64(rA.payloadLen())+uint64(rB.payloadLen()) > RegionSize-regionHeaderSize {
			continue
		}

		target, targetIdx, f := a.claimRegion()
		if f != nil {
			return GCStats{}, f
		}
		target.counter = regionHeaderSize
		target.writeCounter()

		rA.contentCloneTo(target, regionHeaderSize)
		rB.contentCloneTo(target, regionHeaderSize+rA.payloadLen())
		target.counter = regionHeaderSize + rA.payloadLen() + rB.payloadLen()
		target.writeCounter()

		rebase[idxA] = rebaseEntry{newBase: target.base, extra: 0}
		rebase[idxB] = rebaseEntry{newBase: target.base, extra: rA.payloadLen()}
		pairTarget[idxA] = targetIdx
		pairTarget[idxB] = targetIdx
		mergedSecond[idxB] = true
		freed = append(freed, idxA, idxB)
		pairsFormed++

		a.tracer.Printf("gc: compacted regions %d+%d into %d (%d+%d live bytes)", idxA, idxB, targetIdx, rA.payloadLen(), rB.payloadLen())
	}

	if len(rebase) == 0 {
		a.tracer.Printf("gc: no eligible pairs found, nothing collected")
		return GCStats{}, nil
	}

	newOrder := make([]int, 0, len(order))
	for _, idx := range order {
		if t, ok := pairTarget[idx]; ok {
			if mergedSecond[idx] {
				continue
			}
			newOrder = append(newOrder, t)
			continue
		}
		newOrder = append(newOrder, idx)
	}
	a.SetOrder(newOrder)

	translate := func(addr Address) Address {
		if addr == NullAddress {
			return addr
		}
		idx, _ := regionIndex(addr)
		e, ok := rebase[idx]
		if !ok {
			return addr
		}
		oldBase := Address(idx) * RegionSize
		relOffset := addr - oldBase - regionHeaderSize
		return e.newBase + regionHeaderSize + Address(e.extra) + relOffset
	}

	rewriteChunkSlots := func(m *Mono) *Fault {
		r := m.region
		n, f := r.ReadU8(m.beginOffset + chunkLengthOff)
		if f != nil {
			return f
		}
		for i := uint8(0); i < n; i++ {
			slotOff := m.beginOffset + chunkSlotsOff + offset(i)*chunkSlotSize
			old, f := r.ReadAddress(slotOff)
			if f != nil {
				return f
			}
			if old == NullAddress {
				continue
			}
			if f := r.WriteAddress(slotOff, translate(old)); f != nil {
				return f
			}
		}
		nextOff := m.beginOffset + chunkNextOff
		oldNext, f := r.ReadAddress(nextOff)
		if f != nil {
			return f
		}
		if oldNext != NullAddress {
			if f := r.WriteAddress(nextOff, translate(oldNext)); f != nil {
				return f
			}
		}
		return nil
	}

	for _, idx := range newOrder {
		r, f := h.RegionAt(idx)
		if f != nil {
			return GCStats{}, f
		}
		if f := r.Traverse(func(m *Mono) *Fault {
			switch m.Kind() {
			case MonoAddress:
				old, f := m.ReadAddress()
				if f != nil {
					return f
				}
				if old == NullAddress {
					return nil
				}
				return m.WriteAddress(translate(old))
			case MonoChunkS8:
				return rewriteChunkSlots(m)
			case MonoArrayS8:
				chunkMono, f := r.monoAt(MonoChunkS8, m.beginOffset+arrayEmbeddedChunkOff)
				if f != nil {
					return f
				}
				return rewriteChunkSlots(chunkMono)
			default:
				return nil
			}
		}); f != nil {
			return GCStats{}, f
		}
	}

	var bytesReclaimed int64
	for _, idx := range freed {
		r, f := h.RegionAt(idx)
		if f != nil {
			return GCStats{}, f
		}
		bytesReclaimed += int64(r.payloadLen())
		if _, f := h.ResetRegion(idx); f != nil {
			return GCStats{}, f
		}
	}
	a.releaseRegions(freed)

	a.tracer.Printf("gc: cycle complete, released %d regions", len(freed))
	return GCStats{
		RegionsPaired:   pairsFormed,
		RegionsReleased: len(freed),
		BytesReclaimed:  bytesReclaimed,
	}, nil
}

// lessThan40Threshold and youngOccupancyThreshold split the young
// generation into two candidate buckets: regions below 40% occupied
// and regions between 40% and 60% occupied. Regions at or above
// youngOccupancyThreshold are considered too full to be worth pairing.
const (
	lessThan40Threshold     = 0.4
	youngOccupancyThreshold = 0.6
)
