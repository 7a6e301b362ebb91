// Package eventfilelogger provides an easy way to write logs describing bag
// events to a specific file.
package eventfilelogger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Parkreiner/randombag"
	"github.com/Parkreiner/randombag/subscriptions"
)

type logWriteResult struct {
	bytesWritten int
	err          error
}

type loggerRequest struct {
	content    []byte
	resultChan chan<- logWriteResult
}

// EventLogger handles logs of two types:
//  1. Automatic logs in response to every bag event
//  2. Arbitrary content written through the Write method
//
// Once instantiated, the logger will automatically start logging any events
// it is subscribed to. All writes go through a single goroutine, so lines from
// the two sources never interleave. The logger can be disposed by calling the
// Close method.
type EventLogger struct {
	file         *os.File
	loggerChan   chan loggerRequest
	disposedChan <-chan struct{}
}

var _ io.WriteCloser = &EventLogger{}

// Init is used to instantiate an EventLogger via the New function.
type Init struct {
	Subscriber subscriptions.Subscriber
	OutputPath string
	// EventTypes limits which events get logged. Nil or empty means all of
	// them.
	EventTypes []randombag.EventType
}

// New instantiates an EventLogger and automatically subscribes it to events.
// The output file is created if it doesn't exist, and appended to if it does.
func New(init Init) (*EventLogger, error) {
	file, err := os.OpenFile(init.OutputPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open %q: %w", init.OutputPath, err)
	}

	eventsChan, unsub, err := init.Subscriber.Subscribe(init.EventTypes)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("unable to subscribe to events: %w", err)
	}

	loggerChan := make(chan loggerRequest)
	disposedChan := make(chan struct{})
	logger := &EventLogger{
		file:         file,
		loggerChan:   loggerChan,
		disposedChan: disposedChan,
	}

	go func() {
		defer close(disposedChan)
		defer unsub()

		for {
			select {
			case req, ok := <-loggerChan:
				if !ok {
					// Flush whatever events already made it through before
					// shutting down.
					unsub()
					if eventsChan != nil {
						for event := range eventsChan {
							_ = logger.writeEvent(event)
						}
					}
					_ = logger.file.Close()
					return
				}
				b, err := logger.file.Write(req.content)
				req.resultChan <- logWriteResult{
					bytesWritten: b,
					err:          err,
				}
			case event, ok := <-eventsChan:
				if !ok {
					// The subscriber went away; keep serving Write calls
					// until Close.
					eventsChan = nil
					continue
				}
				_ = logger.writeEvent(event)
			}
		}
	}()

	return logger, nil
}

// FormatEvent renders an event as a single log line, newline included.
func FormatEvent(event randombag.Event) string {
	return fmt.Sprintf(
		"%s [type %s] [bag %s] [id %s] [pool %d] [pending %d] %s\n",
		event.Created.UTC().Format(time.RFC3339Nano),
		event.Type,
		event.BagID,
		event.ID,
		event.PoolSize,
		event.Pending,
		event.Message,
	)
}

func (efl *EventLogger) writeEvent(event randombag.Event) error {
	logLine := FormatEvent(event)
	if _, err := efl.file.WriteString(logLine); err != nil {
		return fmt.Errorf("unable to write log %q: %w", logLine, err)
	}
	return nil
}

// Write appends content to the log file as-is.
func (efl *EventLogger) Write(content []byte) (int, error) {
	select {
	case <-efl.disposedChan:
		return 0, errors.New("logger is closed")
	default:
	}

	resultChan := make(chan logWriteResult)
	select {
	case efl.loggerChan <- loggerRequest{
		content:    content,
		resultChan: resultChan,
	}:
	case <-efl.disposedChan:
		return 0, errors.New("logger is closed")
	}

	result := <-resultChan
	return result.bytesWritten, result.err
}

// Close terminates an EventLogger, rendering it so that it can no longer
// receive logs. It also ends its subscription and closes the file. This
// function is safe to call multiple times; calling it more than once results
// in a no-op. It must not be called concurrently with Write.
func (efl *EventLogger) Close() error {
	select {
	case <-efl.disposedChan:
		return nil
	default:
	}

	close(efl.loggerChan)
	<-efl.disposedChan
	return nil
}
