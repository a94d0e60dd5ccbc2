package midi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-markov/debug"
)

// ScanTimeout bounds a port listing; CoreMIDI can hang
const ScanTimeout = 3 * time.Second

var (
	ErrScanTimeout = errors.New("MIDI port scan timed out")
	ErrNoPort      = errors.New("no matching MIDI output port")
)

// OutPorts lists the output ports, giving up after ScanTimeout
func OutPorts(ctx context.Context) ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	ctx, cancel := context.WithTimeout(ctx, ScanTimeout)
	defer cancel()

	select {
	case outs := <-ch:
		return outs, nil
	case <-ctx.Done():
		// User needs to run: sudo killall coreaudiod midiserver
		debug.Log("midi", "port scan gave up: %v", ctx.Err())
		return nil, ErrScanTimeout
	}
}

// PortNames returns the display name of each port
func PortNames(ports []drivers.Out) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}

// MatchPort picks a port by name: an exact match wins, then the first
// case-insensitive substring match. An empty name selects the first port.
func MatchPort(names []string, want string) (int, error) {
	if len(names) == 0 {
		return -1, ErrNoPort
	}
	if want == "" {
		return 0, nil
	}
	for i, n := range names {
		if n == want {
			return i, nil
		}
	}
	lower := strings.ToLower(want)
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrNoPort, want)
}

// Output is an open MIDI output port
type Output struct {
	name string
	port drivers.Out
	send func(msg gomidi.Message) error
}

// OpenOutput opens the output port matching name (see MatchPort)
func OpenOutput(ctx context.Context, name string) (*Output, error) {
	ports, err := OutPorts(ctx)
	if err != nil {
		return nil, err
	}
	i, err := MatchPort(PortNames(ports), name)
	if err != nil {
		return nil, err
	}

	send, err := gomidi.SendTo(ports[i])
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", ports[i].String(), err)
	}
	debug.Log("midi", "opened output %s", ports[i].String())
	return &Output{name: ports[i].String(), port: ports[i], send: send}, nil
}

// Name returns the port name
func (o *Output) Name() string {
	return o.name
}

// Send writes one message to the port
func (o *Output) Send(msg gomidi.Message) error {
	return o.send(msg)
}

// Close closes the port
func (o *Output) Close() error {
	return o.port.Close()
}

// CloseDriver releases the MIDI driver; call once on exit
func CloseDriver() {
	gomidi.CloseDriver()
}
