package trend

import "github.com/raykavin/atradx/pkg/core"

// Transition describes a regime change decided by the Machine
type Transition struct {
	From core.Regime
	To   core.Regime
	// Stop is the level that was breached, zero for the initial decision
	Stop float64
}

// Machine holds the trend regime and its trailing stop
type Machine struct {
	regime core.Regime
	stop   Stop
}

// NewMachine returns a machine in RegimeNone
func NewMachine() *Machine {
	return &Machine{regime: core.RegimeNone}
}

// Regime returns the current regime
func (m *Machine) Regime() core.Regime { return m.regime }

// Stop returns the current stop level. It is meaningless in RegimeNone.
func (m *Machine) Stop() float64 { return m.stop.Level() }

// NewTrend reports whether the stop will be reseeded on the next evaluation
func (m *Machine) NewTrend() bool { return m.stop.NewTrend() }

// Evaluate advances the machine by one candle. Without a regime it makes
// the initial decision from the directional indicators. Otherwise it
// trails the stop and flips the regime when price crosses it. The returned
// transition is nil when the regime did not change.
func (m *Machine) Evaluate(price float64, window *Window, snap Snapshot, mult Multipliers) *Transition {
	switch m.regime {
	case core.RegimeNone:
		if snap.PlusDI > snap.MinusDI {
			return m.enter(core.RegimeBull, 0)
		}
		return m.enter(core.RegimeBear, 0)

	case core.RegimeBull:
		m.stop.Trail(core.RegimeBull, window, snap.ATR, snap.ADX, mult)
		if price <= m.stop.Level() {
			return m.enter(core.RegimeBear, m.stop.Level())
		}

	case core.RegimeBear:
		m.stop.Trail(core.RegimeBear, window, snap.ATR, snap.ADX, mult)
		if price >= m.stop.Level() {
			return m.enter(core.RegimeBull, m.stop.Level())
		}
	}

	return nil
}

// enter switches to regime, a no-op when it is already current
func (m *Machine) enter(regime core.Regime, breached float64) *Transition {
	if m.regime == regime {
		return nil
	}

	transition := &Transition{From: m.regime, To: regime, Stop: breached}
	m.regime = regime
	m.stop.Reset()
	return transition
}
