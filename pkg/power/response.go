package power

import "encoding/json"

// AccountPower is the power history of one account. Exactly one of TotalPowers
// (total mode) and ProxyPowers (breakdown mode) is encoded.
type AccountPower struct {
	Account     string
	Name        string
	Mode        Mode
	Blocks      []uint64
	BlockTime   []string
	SelfPowers  []int64
	TotalPowers []int64
	ProxyPowers []LabeledSeries
}

type accountPowerBase struct {
	Account    string   `json:"account"`
	Name       string   `json:"name"`
	Blocks     []uint64 `json:"blocks"`
	BlockTime  []string `json:"block_time"`
	SelfPowers []int64  `json:"self_powers"`
}

func (p AccountPower) MarshalJSON() ([]byte, error) {
	base := accountPowerBase{
		Account:    p.Account,
		Name:       p.Name,
		Blocks:     nonNil(p.Blocks),
		BlockTime:  nonNil(p.BlockTime),
		SelfPowers: nonNil(p.SelfPowers),
	}
	if p.Mode == ModeBreakdown {
		return json.Marshal(struct {
			accountPowerBase
			ProxyPowers []LabeledSeries `json:"proxy_powers"`
		}{base, nonNil(p.ProxyPowers)})
	}
	return json.Marshal(struct {
		accountPowerBase
		TotalPowers []int64 `json:"total_powers"`
	}{base, nonNil(p.TotalPowers)})
}

// VoteableVotes is the vote history of one worker. Exactly one of TotalVotes
// (total mode) and VotedBy (breakdown mode) is encoded.
type VoteableVotes struct {
	ID         string
	VoteID     string
	Name       string
	Mode       Mode
	Blocks     []uint64
	BlockTime  []string
	TotalVotes []int64
	VotedBy    []LabeledSeries
}

type voteableVotesBase struct {
	ID        string   `json:"id"`
	VoteID    string   `json:"vote_id"`
	Name      string   `json:"name"`
	Blocks    []uint64 `json:"blocks"`
	BlockTime []string `json:"block_time"`
}

func (v VoteableVotes) MarshalJSON() ([]byte, error) {
	base := voteableVotesBase{
		ID:        v.ID,
		VoteID:    v.VoteID,
		Name:      v.Name,
		Blocks:    nonNil(v.Blocks),
		BlockTime: nonNil(v.BlockTime),
	}
	if v.Mode == ModeBreakdown {
		return json.Marshal(struct {
			voteableVotesBase
			VotedBy []LabeledSeries `json:"voted_by"`
		}{base, nonNil(v.VotedBy)})
	}
	return json.Marshal(struct {
		voteableVotesBase
		TotalVotes []int64 `json:"total_votes"`
	}{base, nonNil(v.TotalVotes)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
