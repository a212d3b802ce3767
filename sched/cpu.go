package sched

// CPU is the boundary between the scheduler and real interrupt-mask and
// halt instructions: the scheduler never touches hardware itself, only
// calls through this interface.
type CPU interface {
	DisableInterrupts()
	EnableInterrupts()
	// Halt suspends the calling goroutine until an interrupt (here: a
	// call to Scheduler.Tick or UpdateThread from elsewhere) makes a
	// thread runnable again.
	Halt()
}

// NullCPU is a CPU that does nothing on Disable/Enable and returns
// immediately from Halt, suitable for a single-goroutine simulation driven
// entirely by explicit Tick/UpdateThread calls (cmd/kernsim, tests).
type NullCPU struct{}

func (NullCPU) DisableInterrupts() {}
func (NullCPU) EnableInterrupts()  {}
func (NullCPU) Halt()              {}
