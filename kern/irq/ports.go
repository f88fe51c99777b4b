package irq

// PortWrite is one recorded OutB.
type PortWrite struct {
	Port  uint16
	Value uint8
}

// maxWriteLog bounds the OutB history kept by SimPorts.
const maxWriteLog = 1024

// SimPorts emulates port I/O for hosted runs. InB returns the value last
// latched on a port; OutB is recorded and also latched. Only the most recent
// writes are kept.
type SimPorts struct {
	latch  map[uint16]uint8
	writes []PortWrite
}

// NewSimPorts returns ports with nothing latched.
func NewSimPorts() *SimPorts {
	return &SimPorts{latch: make(map[uint16]uint8)}
}

// Latch sets the value the next InB on port returns.
func (p *SimPorts) Latch(port uint16, v uint8) { p.latch[port] = v }

func (p *SimPorts) InB(port uint16) uint8 { return p.latch[port] }

func (p *SimPorts) OutB(port uint16, v uint8) {
	p.latch[port] = v
	if len(p.writes) >= maxWriteLog {
		p.writes = append(p.writes[:0], p.writes[len(p.writes)-maxWriteLog/2:]...)
	}
	p.writes = append(p.writes, PortWrite{Port: port, Value: v})
}

// Writes returns the recorded writes and clears the log.
func (p *SimPorts) Writes() []PortWrite {
	w := p.writes
	p.writes = nil
	return w
}
