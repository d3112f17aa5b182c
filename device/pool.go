package device

import "errors"

// ErrPoolExhausted is returned by CommandPool.NewCommandList once the
// pool has allocated CommandPoolConfig.MaxLists lists.
var ErrPoolExhausted = errors.New("device: command pool exhausted")

// DefaultPoolCapacity is the number of CommandLists a CommandPool may
// allocate when CommandPoolConfig.MaxLists is left at zero.
const DefaultPoolCapacity = 16

// CommandPoolConfig configures a CommandPool.
type CommandPoolConfig struct {
	// MaxLists bounds how many CommandLists this pool may allocate
	// over its lifetime. Zero selects DefaultPoolCapacity.
	MaxLists int
	// Transient hints that lists from this pool are recorded once
	// and submitted shortly after, the way a transient Vulkan command
	// pool lets the driver pick a lighter-weight allocation strategy.
	// It carries no enforced behavior at this layer; it is reported
	// back by Transient() for callers that branch on it.
	Transient bool
	// Resettable allows individual CommandLists allocated from this
	// pool to call their own Reset, mirroring
	// VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT, and also
	// allows the pool's own Reset (which reclaims every list at once).
	// Without it, both return ErrInvalidState.
	Resettable bool
}

// CommandPool allocates CommandLists and, if resettable, reclaims
// them in bulk. A pool is single-threaded: NewCommandList's internal
// allocation counter is a plain int, not atomic, matching the
// single-host-thread contract the whole device package operates
// under.
type CommandPool struct {
	object
	d     *Device
	cfg   CommandPoolConfig
	slots *arena
	count int
	lists []*CommandList
}

// NewCommandPool creates a CommandPool.
func (d *Device) NewCommandPool(cfg CommandPoolConfig) (*CommandPool, error) {
	if cfg.MaxLists <= 0 {
		cfg.MaxLists = DefaultPoolCapacity
	}
	slots, err := newArena(cfg.MaxLists)
	if err != nil {
		return nil, err
	}
	return &CommandPool{
		object: d.newObject(kindCmdPool),
		d:      d,
		cfg:    cfg,
		slots:  slots,
	}, nil
}

// Transient reports whether the pool was created with the transient
// hint.
func (p *CommandPool) Transient() bool { return p.cfg.Transient }

// Resettable reports whether lists from this pool may reset
// themselves individually.
func (p *CommandPool) Resettable() bool { return p.cfg.Resettable }

// NewCommandList allocates a new CommandList from the pool.
func (p *CommandPool) NewCommandList() (*CommandList, error) {
	if p.count >= p.cfg.MaxLists {
		return nil, ErrPoolExhausted
	}
	cb, err := p.d.gpu.NewCmdBuffer()
	if err != nil {
		return nil, err
	}
	l := &CommandList{
		object: p.d.newObject(kindCmdList),
		cb:     cb,
		state:  listInitial,
		pool:   p,
	}
	p.slots.bytes()[p.count] = byte(listInitial)
	p.count++
	p.lists = append(p.lists, l)
	return l, nil
}

// Reset reclaims every CommandList this pool has allocated in one
// call, returning each to the Initial state. It requires
// CommandPoolConfig.Resettable.
func (p *CommandPool) Reset() error {
	if !p.cfg.Resettable {
		return ErrInvalidState
	}
	for _, l := range p.lists {
		if err := l.cb.Reset(); err != nil {
			l.state = listInvalid
			continue
		}
		l.state = listInitial
		l.inBlock = false
	}
	for i := range p.slots.bytes()[:p.count] {
		p.slots.bytes()[i] = byte(listInitial)
	}
	return nil
}

// DestroyCommandPool destroys every CommandList the pool allocated and
// releases the pool's own scratch storage.
func (d *Device) DestroyCommandPool(p *CommandPool) {
	for _, l := range p.lists {
		d.forget(l.object)
		l.cb.Destroy()
	}
	p.lists = nil
	p.slots.free()
	d.forget(p.object)
}
