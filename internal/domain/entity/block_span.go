package entity

import "fmt"

// BlockSpan is an inclusive range of block numbers
type BlockSpan struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// SingleBlockSpan returns the span covering only the given block
func SingleBlockSpan(number uint64) BlockSpan {
	return BlockSpan{Start: number, End: number}
}

// Len returns the number of blocks in the span
func (s BlockSpan) Len() int {
	if s.End < s.Start {
		return 0
	}
	return int(s.End-s.Start) + 1
}

// Numbers returns every block number in the span in ascending order
func (s BlockSpan) Numbers() []uint64 {
	numbers := make([]uint64, s.Len())
	for i := range numbers {
		numbers[i] = s.Start + uint64(i)
	}
	return numbers
}

func (s BlockSpan) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d", s.Start)
	}
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}
