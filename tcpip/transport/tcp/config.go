package tcp

import "github.com/pkg/errors"

// Config is the only configuration the transmission control core
// recognizes. Everything else (MTU, congestion control, keepalive timers)
// belongs to the enclosing stack.
type Config struct {
	// TSClockFrequency is the tick rate, in Hz, of the Timestamp option
	// clock.
	TSClockFrequency float64
}

// NewConfig validates freq and returns a ready-to-use Config.
func NewConfig(freq float64) (Config, error) {
	if freq <= 0 {
		return Config{}, errors.Errorf("tcp: timestamp clock frequency must be positive, got %v", freq)
	}
	return Config{TSClockFrequency: freq}, nil
}
