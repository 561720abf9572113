package assistant

import "time"

// PollPolicy bounds how a job is polled. The interval grows by Backoff after every poll,
// capped at MaxInterval; MaxWait caps the whole wait.
type PollPolicy struct {
	Interval      time.Duration
	MaxInterval   time.Duration
	Backoff       float64
	MaxWait       time.Duration
	MaxPollErrors int
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:      time.Second,
		MaxInterval:   5 * time.Second,
		Backoff:       1.0,
		MaxWait:       2 * time.Minute,
		MaxPollErrors: 3,
	}
}

func (p PollPolicy) withDefaults() PollPolicy {
	d := DefaultPollPolicy()
	if p.Interval <= 0 {
		p.Interval = d.Interval
	}
	if p.MaxInterval < p.Interval {
		p.MaxInterval = p.Interval
	}
	if p.Backoff < 1 {
		p.Backoff = d.Backoff
	}
	if p.MaxWait <= 0 {
		p.MaxWait = d.MaxWait
	}
	if p.MaxPollErrors < 0 {
		p.MaxPollErrors = 0
	}
	return p
}

func (p PollPolicy) next(cur time.Duration) time.Duration {
	n := time.Duration(float64(cur) * p.Backoff)
	if n > p.MaxInterval {
		return p.MaxInterval
	}
	return n
}
