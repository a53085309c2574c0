package power

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NoProxyAccount is the sentinel proxy id an account carries when it votes for itself.
const NoProxyAccount = "1.2.5"

// powerPrecision scales raw on-chain amounts to whole display units.
const powerPrecision = 100000

// Entity filter fields understood by SnapshotSource implementations.
const (
	FieldAccount = "account"
	FieldVoteID  = "vote_id"
)

// EntityFilter selects the subject whose snapshots are fetched.
type EntityFilter struct {
	Field string
	Value string
}

// SubEntry is the raw power one sub-entity (proxy, voter) contributes to a snapshot's subject.
type SubEntry struct {
	ID       string `json:"id"`
	RawPower int64  `json:"raw_power"`
}

// Snapshot is the newest stake/vote record found for one sampling window.
// SelfStake and Proxy are only populated for account snapshots.
type Snapshot struct {
	BlockNumber uint64     `json:"block_number"`
	BlockTime   string     `json:"block_time"`
	SubEntries  []SubEntry `json:"sub_entries"`
	SelfStake   int64      `json:"self_stake,omitempty"`
	Proxy       string     `json:"proxy,omitempty"`
}

// SelfPower returns the scaled self stake when the account has no proxy set, else zero.
func (s Snapshot) SelfPower() int64 {
	if s.Proxy == NoProxyAccount {
		return scale(s.SelfStake)
	}
	return 0
}

// TotalPower sums the scaled sub-entry powers. Each entry is truncated before summing.
func (s Snapshot) TotalPower() int64 {
	var total int64
	for _, e := range s.SubEntries {
		total += scale(e.RawPower)
	}
	return total
}

func scale(raw int64) int64 {
	return raw / powerPrecision
}

// Account is the result of resolving an account id or name.
type Account struct {
	ID   string
	Name string
}

// Worker is a registered worker proposal and the vote target its supporters vote for.
type Worker struct {
	ID           string
	Name         string
	VoteTargetID string
}

// LabeledSeries is one entry of a breakdown. It encodes as the JSON pair [label, [values...]].
type LabeledSeries struct {
	Label  string
	Series []int64
}

func (l LabeledSeries) MarshalJSON() ([]byte, error) {
	series := l.Series
	if series == nil {
		series = []int64{}
	}
	return json.Marshal([]any{l.Label, series})
}

func (l *LabeledSeries) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("labeled series: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &l.Label); err != nil {
		return fmt.Errorf("labeled series label: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(pair[1]), []byte("null")) {
		l.Series = []int64{}
		return nil
	}
	return json.Unmarshal(pair[1], &l.Series)
}
