package trend

import "github.com/raykavin/atradx/pkg/core"

// Emitter receives regime transitions. Notify is called at most once per
// candle and only when the regime changes; its outcome is not observed.
type Emitter interface {
	Notify(signal core.Signal)
}

// EmitterFunc adapts a function to the Emitter interface
type EmitterFunc func(signal core.Signal)

// Notify implements Emitter
func (f EmitterFunc) Notify(signal core.Signal) { f(signal) }

// MultiEmitter forwards every signal to each emitter in order
type MultiEmitter []Emitter

// Notify implements Emitter
func (m MultiEmitter) Notify(signal core.Signal) {
	for _, emitter := range m {
		if emitter != nil {
			emitter.Notify(signal)
		}
	}
}

type discard struct{}

func (discard) Notify(core.Signal) {}

// Discard is an Emitter that drops every signal
var Discard Emitter = discard{}
