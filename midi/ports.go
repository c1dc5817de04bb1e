package midi

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// InPortNames returns the names of all MIDI input ports
func InPortNames() []string {
	var names []string
	for _, p := range gomidi.GetInPorts() {
		names = append(names, p.String())
	}
	return names
}

// OutPortNames returns the names of all MIDI output ports
func OutPortNames() []string {
	var names []string
	for _, p := range gomidi.GetOutPorts() {
		names = append(names, p.String())
	}
	return names
}

// FindInPort returns the first input port whose name contains name
// (case-insensitive)
func FindInPort(name string) (drivers.In, error) {
	for _, p := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", name)
}

// FindOutPort returns the first output port whose name contains name
// (case-insensitive)
func FindOutPort(name string) (drivers.Out, error) {
	for _, p := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output port matching %q", name)
}

// OpenSender opens an output port and returns a raw-bytes send function
func OpenSender(port drivers.Out) (func([]byte) error, error) {
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", port.String(), err)
	}
	return func(b []byte) error {
		return send(gomidi.Message(b))
	}, nil
}

// Listen opens an input port and delivers each raw message to fn.
// The returned stop function closes the listener.
func Listen(port drivers.In, fn func(msg []byte)) (func(), error) {
	stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
		fn([]byte(msg))
	})
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", port.String(), err)
	}
	return stop, nil
}

// CloseDriver releases the MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}
