package board

import "fmt"

type Status int8

const (
	Ongoing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("Status(%d)", int8(s))
	}
}

// Over reports whether the game has reached a terminal status.
func (s Status) Over() bool {
	return s == Won || s == Lost
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ongoing":
		*s = Ongoing
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}
