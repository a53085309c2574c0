package power

import (
	"fmt"
	"strings"
)

// Request defaults and bounds.
const (
	DefaultFromDate      = "2019-01-01"
	DefaultToDate        = "2020-01-01"
	DefaultDatapoints    = 50
	MaxDatapoints        = 700
	DefaultMergeBelowPct = 5
	MinMergeBelowPct     = 2
)

// Mode selects the response shape.
type Mode string

const (
	// ModeTotal returns one aggregate series.
	ModeTotal Mode = "total"
	// ModeBreakdown returns one series per contributing sub-entity.
	ModeBreakdown Mode = "breakdown"
)

// ParseMode accepts "total" and the breakdown aliases used by the explorer front-end:
// "proxy" for account power and "voters" for voteable votes. An empty mode is total.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "total":
		return ModeTotal, nil
	case "proxy", "voters", "breakdown":
		return ModeBreakdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Request holds the parameters shared by both entry points. Subject is an account id or
// name for account power, a worker id for voteable votes.
type Request struct {
	FromDate      string
	ToDate        string
	Subject       string
	Datapoints    int
	Mode          string
	MergeBelowPct int
}

// NewRequest returns a request for subject with every other parameter at its default.
func NewRequest(subject string) Request {
	return Request{
		FromDate:      DefaultFromDate,
		ToDate:        DefaultToDate,
		Subject:       subject,
		Datapoints:    DefaultDatapoints,
		Mode:          string(ModeTotal),
		MergeBelowPct: DefaultMergeBelowPct,
	}
}

// normalized fills empty dates and clamps datapoints to [1, MaxDatapoints] and the merge
// percentage to at least MinMergeBelowPct.
func (r Request) normalized() Request {
	if r.FromDate == "" {
		r.FromDate = DefaultFromDate
	}
	if r.ToDate == "" {
		r.ToDate = DefaultToDate
	}
	if r.Datapoints > MaxDatapoints {
		r.Datapoints = MaxDatapoints
	}
	if r.Datapoints < 1 {
		r.Datapoints = 1
	}
	if r.MergeBelowPct < MinMergeBelowPct {
		r.MergeBelowPct = MinMergeBelowPct
	}
	return r
}
