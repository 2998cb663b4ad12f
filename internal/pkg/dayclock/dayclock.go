// Package dayclock resolves "today" in the single configured time zone. Claim
// keys, ledger TTLs and next_claim_at must all come from the same zone or a
// user near a zone boundary could claim twice or stay locked out.
package dayclock

import "time"

const BucketLayout = "2006-01-02"

type Clock struct {
	loc *time.Location
}

func New(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	return &Clock{loc}, nil
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Bucket truncates t to its calendar date in the clock's zone.
func (c *Clock) Bucket(t time.Time) string {
	return t.In(c.loc).Format(BucketLayout)
}

// NextMidnight returns the start of the day after t in the clock's zone.
func (c *Clock) NextMidnight(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, c.loc)
}

// UntilMidnight is the claim-ledger TTL: the entry must expire exactly when
// the day bucket rolls over.
func (c *Clock) UntilMidnight(t time.Time) time.Duration {
	return c.NextMidnight(t).Sub(t)
}
