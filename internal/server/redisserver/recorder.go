package redisserver

import "time"

// Recorder receives server events for metrics.
type Recorder interface {
	// ObserveCommand records one dispatched command. command is a lowercase
	// supported name or "unknown"; result is "ok" or an error class.
	ObserveCommand(command, result string, d time.Duration)
	ConnectionOpened()
	ConnectionClosed()
	ProtocolError()
}

type nopRecorder struct{}

func (nopRecorder) ObserveCommand(string, string, time.Duration) {}
func (nopRecorder) ConnectionOpened()                            {}
func (nopRecorder) ConnectionClosed()                            {}
func (nopRecorder) ProtocolError()                               {}
