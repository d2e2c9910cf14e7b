package frames

// Dedupe filters an ordered frame sequence down to visually distinct frames
// in a single streaming pass. The first frame is always kept and becomes the
// reference; each subsequent frame is compared by hamming distance to the
// most recently KEPT frame, not to all previously kept frames. A frame is
// kept (and replaces the reference) when its distance from the reference is
// at least threshold.
//
// Comparing against the last kept frame only is an intentional O(n) policy:
// it detects sustained scene changes cheaply, at the cost of never
// re-admitting a frame similar to an intermediate discarded one. The source
// stream is coarsely sampled, so near-duplicate bursts are short.
func Dedupe(input []*Frame, hasher Hasher, threshold int) ([]*Frame, error) {
	if len(input) == 0 {
		return nil, nil
	}

	kept := make([]*Frame, 0, len(input))
	kept = append(kept, input[0])
	reference, err := input[0].HashWith(hasher)
	if err != nil {
		return nil, err
	}

	for _, frame := range input[1:] {
		h, err := frame.HashWith(hasher)
		if err != nil {
			return nil, err
		}
		if reference.Distance(h) >= threshold {
			kept = append(kept, frame)
			reference = h
		}
	}
	return kept, nil
}
