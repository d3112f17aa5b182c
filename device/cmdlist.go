package device

import (
	"errors"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// listState is the recording state of a CommandList.
type listState int

const (
	listInitial listState = iota
	listRecording
	listExecutable
	listInvalid
)

// ErrInvalidState is returned when a CommandList method is called
// from a recording state that does not permit it (e.g. calling
// EndPass with no block open, or Begin before a prior recording has
// ended).
var ErrInvalidState = errors.New("device: command list in invalid state for this call")

// CommandList wraps a driver.CmdBuffer with the state machine implied
// by its documented call order (Begin, then one or more BeginPass/
// BeginWork/BeginBlit...End blocks, then End). It exists so that
// programmer errors in call ordering are caught as a Go error instead
// of being handed to the driver, where a Vulkan backend would execute
// immediately and an OpenGL backend would only discover the mistake
// when replaying the deferred command stream at submit time.
type CommandList struct {
	object
	cb    driver.CmdBuffer
	state listState
	// inBlock is set while inside BeginPass/BeginWork/BeginBlit,
	// cleared by the matching End call.
	inBlock bool
	// pool is the CommandPool this list was allocated from. It is
	// always set: CommandPool.NewCommandList is the only constructor.
	pool *CommandPool
}

// Driver returns the underlying driver.CmdBuffer, for passing to
// GPU.Commit.
func (l *CommandList) Driver() driver.CmdBuffer { return l.cb }

// Begin prepares the command list for recording.
func (l *CommandList) Begin() error {
	if l.state == listRecording {
		return ErrInvalidState
	}
	if err := l.cb.Begin(); err != nil {
		l.state = listInvalid
		return err
	}
	l.state = listRecording
	l.inBlock = false
	return nil
}

// BeginPass begins a render pass block.
func (l *CommandList) BeginPass(pass *Pass, fb *Framebuf, clear []driver.ClearValue) error {
	if l.state != listRecording || l.inBlock {
		return ErrInvalidState
	}
	l.cb.BeginPass(pass.pass, fb.fb, clear)
	l.inBlock = true
	return nil
}

// NextSubpass advances to the next subpass of the current render pass.
func (l *CommandList) NextSubpass() error {
	if l.state != listRecording || !l.inBlock {
		return ErrInvalidState
	}
	l.cb.NextSubpass()
	return nil
}

// EndPass ends the current render pass block.
func (l *CommandList) EndPass() error {
	if l.state != listRecording || !l.inBlock {
		return ErrInvalidState
	}
	l.cb.EndPass()
	l.inBlock = false
	return nil
}

// BeginWork begins a compute work block.
func (l *CommandList) BeginWork(wait bool) error {
	if l.state != listRecording || l.inBlock {
		return ErrInvalidState
	}
	l.cb.BeginWork(wait)
	l.inBlock = true
	return nil
}

// EndWork ends the current compute work block.
func (l *CommandList) EndWork() error {
	if l.state != listRecording || !l.inBlock {
		return ErrInvalidState
	}
	l.cb.EndWork()
	l.inBlock = false
	return nil
}

// BeginBlit begins a data transfer block.
func (l *CommandList) BeginBlit(wait bool) error {
	if l.state != listRecording || l.inBlock {
		return ErrInvalidState
	}
	l.cb.BeginBlit(wait)
	l.inBlock = true
	return nil
}

// EndBlit ends the current data transfer block.
func (l *CommandList) EndBlit() error {
	if l.state != listRecording || !l.inBlock {
		return ErrInvalidState
	}
	l.cb.EndBlit()
	l.inBlock = false
	return nil
}

// End ends recording and prepares the command list for submission.
func (l *CommandList) End() error {
	if l.state != listRecording || l.inBlock {
		return ErrInvalidState
	}
	if err := l.cb.End(); err != nil {
		l.state = listInvalid
		return err
	}
	l.state = listExecutable
	return nil
}

// Reset discards all recorded commands, returning the list to its
// initial state. It requires the owning pool's
// CommandPoolConfig.Resettable flag and returns ErrInvalidState
// without it; the pool's own Reset requires the same flag.
func (l *CommandList) Reset() error {
	if l.pool != nil && !l.pool.cfg.Resettable {
		return ErrInvalidState
	}
	if err := l.cb.Reset(); err != nil {
		l.state = listInvalid
		return err
	}
	l.state = listInitial
	l.inBlock = false
	return nil
}
