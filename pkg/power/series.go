package power

// Totals holds the total-mode series built from a snapshot list.
type Totals struct {
	Blocks      []uint64
	BlockTimes  []string
	SelfPowers  []int64
	TotalPowers []int64
}

// BuildTotals reduces each snapshot to its scaled self and total power.
func BuildTotals(snapshots []Snapshot) Totals {
	t := Totals{
		Blocks:      make([]uint64, 0, len(snapshots)),
		BlockTimes:  make([]string, 0, len(snapshots)),
		SelfPowers:  make([]int64, 0, len(snapshots)),
		TotalPowers: make([]int64, 0, len(snapshots)),
	}
	for _, s := range snapshots {
		t.Blocks = append(t.Blocks, s.BlockNumber)
		t.BlockTimes = append(t.BlockTimes, s.BlockTime)
		t.SelfPowers = append(t.SelfPowers, s.SelfPower())
		t.TotalPowers = append(t.TotalPowers, s.TotalPower())
	}
	return t
}

// PowerMap maps sub-entity ids to fixed-length power series and remembers the
// order in which ids were first seen.
type PowerMap struct {
	length int
	order  []string
	series map[string][]int64
}

// NewPowerMap creates an empty map whose series all have the given length.
func NewPowerMap(length int) *PowerMap {
	return &PowerMap{length: length, series: make(map[string][]int64)}
}

// Set writes value at index for id, allocating a zeroed series the first time id is seen.
func (m *PowerMap) Set(id string, index int, value int64) {
	s, ok := m.series[id]
	if !ok {
		s = make([]int64, m.length)
		m.series[id] = s
		m.order = append(m.order, id)
	}
	s[index] = value
}

// Series returns the series stored for id.
func (m *PowerMap) Series(id string) ([]int64, bool) {
	s, ok := m.series[id]
	return s, ok
}

// IDs returns the ids in first-seen order.
func (m *PowerMap) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len is the number of distinct sub-entities.
func (m *PowerMap) Len() int { return len(m.order) }

// Breakdown holds the breakdown-mode series built from a snapshot list.
type Breakdown struct {
	Blocks     []uint64
	BlockTimes []string
	SelfPowers []int64
	Powers     *PowerMap
}

// BuildBreakdown spreads the sub-entries of each snapshot over per-entity series.
// The n-th snapshot found writes slot n regardless of which window it came from, so
// slots at or beyond len(snapshots) stay zero until Merge truncates them.
func BuildBreakdown(snapshots []Snapshot, datapoints int) Breakdown {
	b := Breakdown{
		Blocks:     make([]uint64, 0, len(snapshots)),
		BlockTimes: make([]string, 0, len(snapshots)),
		SelfPowers: make([]int64, 0, len(snapshots)),
		Powers:     NewPowerMap(datapoints),
	}
	for blockCounter, s := range snapshots {
		b.Blocks = append(b.Blocks, s.BlockNumber)
		b.BlockTimes = append(b.BlockTimes, s.BlockTime)
		b.SelfPowers = append(b.SelfPowers, s.SelfPower())
		for _, e := range s.SubEntries {
			b.Powers.Set(e.ID, blockCounter, scale(e.RawPower))
		}
	}
	return b
}
