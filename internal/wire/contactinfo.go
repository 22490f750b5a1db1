package wire

import "net"

const (
	sockAddrTagV4 uint32 = 0
	sockAddrTagV6 uint32 = 1
)

// DefaultSocketAddr returns the zero-value socket address (0.0.0.0:0) used
// to fill unset ContactInfo service endpoints.
func DefaultSocketAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4zero, Port: 0}
}

func encodeSocketAddr(e *encoder, addr *net.UDPAddr) {
	if addr == nil {
		addr = DefaultSocketAddr()
	}
	if ip4 := addr.IP.To4(); ip4 != nil {
		e.writeTag(sockAddrTagV4)
		e.writeRaw(ip4)
		e.writeU16(uint16(addr.Port))
		return
	}
	e.writeTag(sockAddrTagV6)
	ip16 := addr.IP.To16()
	if ip16 == nil {
		ip16 = make([]byte, 16)
	}
	e.writeRaw(ip16)
	e.writeU16(uint16(addr.Port))
	e.writeU32(0) // flow info
	e.writeU32(0) // scope id
}

func decodeSocketAddr(d *decoder) (*net.UDPAddr, error) {
	tag, err := d.readTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case sockAddrTagV4:
		ip, err := d.readRaw(4)
		if err != nil {
			return nil, err
		}
		port, err := d.readU16()
		if err != nil {
			return nil, err
		}
		return &net.UDPAddr{IP: net.IPv4(ip[0], ip[1], ip[2], ip[3]), Port: int(port)}, nil
	case sockAddrTagV6:
		ip, err := d.readRaw(16)
		if err != nil {
			return nil, err
		}
		port, err := d.readU16()
		if err != nil {
			return nil, err
		}
		if _, err := d.readU32(); err != nil { // flow info
			return nil, err
		}
		if _, err := d.readU32(); err != nil { // scope id
			return nil, err
		}
		return &net.UDPAddr{IP: net.IP(ip), Port: int(port)}, nil
	default:
		return nil, decodeErrorf("unknown socket address tag %d", tag)
	}
}

// ContactInfo is the legacy peer descriptor: an identity public key, ten
// service socket addresses, a wallclock and a shred version.
type ContactInfo struct {
	ID           [32]byte
	Gossip       *net.UDPAddr
	TVU          *net.UDPAddr
	TVUForwards  *net.UDPAddr
	Repair       *net.UDPAddr
	TPU          *net.UDPAddr
	TPUForwards  *net.UDPAddr
	TPUVote      *net.UDPAddr
	RPC          *net.UDPAddr
	RPCPubSub    *net.UDPAddr
	ServeRepair  *net.UDPAddr
	Wallclock    uint64
	ShredVersion uint16
}

// NewContactInfo builds a ContactInfo with every service address defaulted
// to 0.0.0.0:0 except gossip.
func NewContactInfo(id [32]byte, gossip *net.UDPAddr, wallclock uint64, shredVersion uint16) *ContactInfo {
	return &ContactInfo{
		ID:           id,
		Gossip:       gossip,
		TVU:          DefaultSocketAddr(),
		TVUForwards:  DefaultSocketAddr(),
		Repair:       DefaultSocketAddr(),
		TPU:          DefaultSocketAddr(),
		TPUForwards:  DefaultSocketAddr(),
		TPUVote:      DefaultSocketAddr(),
		RPC:          DefaultSocketAddr(),
		RPCPubSub:    DefaultSocketAddr(),
		ServeRepair:  DefaultSocketAddr(),
		Wallclock:    wallclock,
		ShredVersion: shredVersion,
	}
}

func (c *ContactInfo) encode(e *encoder) {
	e.writeRaw(c.ID[:])
	for _, a := range []*net.UDPAddr{
		c.Gossip, c.TVU, c.TVUForwards, c.Repair, c.TPU,
		c.TPUForwards, c.TPUVote, c.RPC, c.RPCPubSub, c.ServeRepair,
	} {
		encodeSocketAddr(e, a)
	}
	e.writeU64(c.Wallclock)
	e.writeU16(c.ShredVersion)
}

func decodeContactInfo(d *decoder) (*ContactInfo, error) {
	c := &ContactInfo{}
	id, err := d.readRaw(32)
	if err != nil {
		return nil, err
	}
	copy(c.ID[:], id)

	addrs := make([]**net.UDPAddr, 10)
	addrs[0], addrs[1], addrs[2], addrs[3], addrs[4] = &c.Gossip, &c.TVU, &c.TVUForwards, &c.Repair, &c.TPU
	addrs[5], addrs[6], addrs[7], addrs[8], addrs[9] = &c.TPUForwards, &c.TPUVote, &c.RPC, &c.RPCPubSub, &c.ServeRepair
	for _, slot := range addrs {
		a, err := decodeSocketAddr(d)
		if err != nil {
			return nil, err
		}
		*slot = a
	}

	c.Wallclock, err = d.readU64()
	if err != nil {
		return nil, err
	}
	c.ShredVersion, err = d.readU16()
	if err != nil {
		return nil, err
	}
	return c, nil
}
