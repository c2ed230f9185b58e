package ingest

import "fmt"

// Origin tells the ingester where a payload came from.
type Origin int

const (
	// LIVE payloads were just captured and are authoritative.
	LIVE Origin = iota
	// REPLAY payloads were read back from disk and may be stale.
	REPLAY
)

func (o Origin) String() string {
	switch o {
	case LIVE:
		return "live"
	case REPLAY:
		return "replay"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// ParseOrigin accepts "live" or "replay", an empty string means live.
func ParseOrigin(value string) (Origin, error) {
	switch value {
	case "", "live":
		return LIVE, nil
	case "replay":
		return REPLAY, nil
	default:
		return LIVE, fmt.Errorf("unknown origin '%s', expected live or replay", value)
	}
}
