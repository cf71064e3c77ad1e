package relay

import "fmt"

// Policy decides what happens when a bounded queue is full.
type Policy uint8

const (
	// PolicyBlock makes producers wait until the worker frees a slot.
	PolicyBlock Policy = iota
	// PolicyDropOldest evicts the oldest queued record to admit the new one.
	PolicyDropOldest
	// PolicyDropNewest rejects the incoming record and keeps the queue as is.
	PolicyDropNewest
)

func (p Policy) String() string {
	switch p {
	case PolicyBlock:
		return "block"
	case PolicyDropOldest:
		return "drop_oldest"
	case PolicyDropNewest:
		return "drop_newest"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy maps a policy name to its value. Accepts the String() forms
// plus hyphenated spellings.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "block", "":
		return PolicyBlock, nil
	case "drop_oldest", "drop-oldest":
		return PolicyDropOldest, nil
	case "drop_newest", "drop-newest":
		return PolicyDropNewest, nil
	default:
		return PolicyBlock, fmt.Errorf("unknown overflow policy %q", s)
	}
}
