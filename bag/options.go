package bag

import (
	"github.com/Parkreiner/randombag"
	"github.com/Parkreiner/randombag/shuffler"
	"github.com/google/uuid"
)

type options struct {
	id     uuid.UUID
	source shuffler.Source
	sinks  []randombag.EventSink
}

// Option configures a Bag at construction time.
type Option func(*options)

// WithSource makes the bag draw its shuffles from src. Each bag should get its
// own source, since shufflers aren't safe for concurrent use.
func WithSource(src shuffler.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithSeed is shorthand for WithSource(shuffler.New(seed)).
func WithSeed(seed int64) Option {
	return WithSource(shuffler.New(seed))
}

// WithEventSink registers a sink that gets told about every change to the
// bag's state. It can be passed more than once; sinks are called in the order
// they were registered.
func WithEventSink(sink randombag.EventSink) Option {
	return func(o *options) {
		if sink != nil {
			o.sinks = append(o.sinks, sink)
		}
	}
}

// WithID overrides the randomly generated bag ID.
func WithID(id uuid.UUID) Option {
	return func(o *options) {
		o.id = id
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	if o.source == nil {
		o.source = shuffler.NewFromTime()
	}
	return o
}
