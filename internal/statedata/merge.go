package statedata

// Merge overlays persisted records onto the static ones, producing one view
// per static record. Persisted records are matched by their stateCode; the
// first match wins.
func Merge(static []Record, persisted []Record) []Record {
	byCode := make(map[string]Record, len(persisted))
	for _, p := range persisted {
		code, ok := p[StoreKey].(string)
		if !ok {
			continue
		}
		if _, seen := byCode[code]; !seen {
			byCode[code] = p
		}
	}
	out := make([]Record, 0, len(static))
	for _, s := range static {
		out = append(out, MergeOne(s, byCode[s.Code()]))
	}
	return out
}

// MergeOne overlays a single persisted record (which may be nil) onto a
// static record. The static code always wins.
func MergeOne(static, overlay Record) Record {
	merged := static.Clone()
	for k, v := range overlay {
		if k == CodeKey {
			continue
		}
		merged[k] = v
	}
	delete(merged, StoreKey)
	return merged
}

var nonContiguous = map[string]bool{"AK": true, "HI": true}

// FilterContiguous keeps the contiguous states when contig is true and only
// Alaska and Hawaii when it is false.
func FilterContiguous(records []Record, contig bool) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if nonContiguous[r.Code()] == !contig {
			out = append(out, r)
		}
	}
	return out
}
