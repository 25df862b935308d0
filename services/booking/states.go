package booking

import "fmt"

// SagaState tracks where a checkout run stands. Terminal failure states are
// represented by the CheckoutResult itself; the machine only tracks the
// forward path.
type SagaState string

const (
	StateDraft             SagaState = "draft"
	StateValidating        SagaState = "validating"
	StateIdle              SagaState = "idle" // COD branch, no payment step
	StateAwaitingIntent    SagaState = "awaiting_intent"
	StateAwaitingGateway   SagaState = "awaiting_gateway_callback"
	StateVerifying         SagaState = "verifying"
	StateCreatingBooking   SagaState = "creating_booking"
	StateConfirmedTerminal SagaState = "confirmed"
)

// forward lists the legal forward edges of the saga.
var forward = map[SagaState][]SagaState{
	StateDraft:           {StateValidating},
	StateValidating:      {StateIdle, StateAwaitingIntent},
	StateIdle:            {StateCreatingBooking},
	StateAwaitingIntent:  {StateAwaitingGateway},
	StateAwaitingGateway: {StateAwaitingGateway, StateVerifying},
	StateVerifying:       {StateCreatingBooking},
	StateCreatingBooking: {StateConfirmedTerminal},
}

// sagaMachine enforces the forward path and the no-re-entry rule: no state
// except the gateway wait may be entered twice.
type sagaMachine struct {
	current SagaState
	visited map[SagaState]bool
}

func newSagaMachine() *sagaMachine {
	return &sagaMachine{
		current: StateDraft,
		visited: map[SagaState]bool{StateDraft: true},
	}
}

func (m *sagaMachine) to(next SagaState) error {
	if m.visited[next] && next != StateAwaitingGateway {
		return fmt.Errorf("saga state %s must not be re-entered", next)
	}
	for _, legal := range forward[m.current] {
		if legal == next {
			m.current = next
			m.visited[next] = true
			return nil
		}
	}
	return fmt.Errorf("illegal saga transition %s -> %s", m.current, next)
}
