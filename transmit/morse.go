package transmit

import (
	"time"

	"github.com/Alia5/viashift/line"
)

// DefaultMorse spells "OK".
const DefaultMorse = "---   -.-"

// Morse flashes pattern on out without clocking it, so a receiver never
// takes it for data. '-' is three dits on, '.' one dit on, ' ' one dit off;
// every symbol is followed by one dit off.
func Morse(out line.Output, pattern string, dit time.Duration, sleep func(time.Duration)) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	var fe firstError
	for _, c := range pattern {
		switch c {
		case ' ':
			fe.keep(out.Set(false))
			sleep(dit)
		default:
			fe.keep(out.Set(true))
			if c == '-' {
				sleep(3 * dit)
			} else {
				sleep(dit)
			}
			fe.keep(out.Set(false))
		}
		sleep(dit)
	}
	fe.keep(out.Set(false))
	return fe.err
}
