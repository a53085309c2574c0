package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/canopy-network/powerx/pkg/power"
)

type parseError struct {
	msg string
}

func (e *parseError) Error() string { return e.msg }

var (
	errInvalidDatapoints = &parseError{msg: "invalid datapoints, must be an integer"}
	errInvalidGroupPct   = &parseError{msg: "invalid grouplessthan, must be an integer"}
)

// parsePowerRequest reads the query parameters shared by both endpoints. subjectParam names
// the parameter carrying the account or worker id. Absent parameters keep their defaults,
// range clamping is left to the service.
func parsePowerRequest(r *http.Request, subjectParam string) (power.Request, error) {
	qs := r.URL.Query()

	subject := strings.TrimSpace(qs.Get(subjectParam))
	if subject == "" {
		return power.Request{}, &parseError{msg: "missing " + subjectParam}
	}

	req := power.NewRequest(subject)
	if v := qs.Get("from_date"); v != "" {
		req.FromDate = v
	}
	if v := qs.Get("to_date"); v != "" {
		req.ToDate = v
	}
	if v := qs.Get("type"); v != "" {
		req.Mode = v
	}
	if v := qs.Get("datapoints"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return power.Request{}, errInvalidDatapoints
		}
		req.Datapoints = n
	}
	if v := qs.Get("grouplessthan"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return power.Request{}, errInvalidGroupPct
		}
		req.MergeBelowPct = n
	}

	return req, nil
}
