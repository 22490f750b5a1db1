package gossipnet

import (
	"fmt"
	"net"
)

// Conn wraps the single net.UDPConn the pipeline's receiver and sender
// stages share; UDP sockets support concurrent reads and writes from
// separate goroutines, so no further locking is needed here.
type Conn struct {
	udp        *net.UDPConn
	entrypoint *net.UDPAddr
}

// Connect opens a UDP socket bound to bindAddr (zero value selects an
// ephemeral local port on all interfaces) and records entrypoint as the
// default destination for the handshake.
func Connect(entrypoint, bindAddr *net.UDPAddr) (*Conn, error) {
	if entrypoint == nil {
		return nil, inputErrorf("nil entrypoint address")
	}
	udp, err := net.ListenUDP("udp", bindAddr)
	if err != nil {
		return nil, ioErrorf(err, fmt.Sprintf("listen udp on %v", bindAddr))
	}
	return &Conn{udp: udp, entrypoint: entrypoint}, nil
}

// LocalAddr returns the socket's bound local address.
func (c *Conn) LocalAddr() *net.UDPAddr { return c.udp.LocalAddr().(*net.UDPAddr) }

// Entrypoint returns the configured entrypoint address.
func (c *Conn) Entrypoint() *net.UDPAddr { return c.entrypoint }

// Close releases the underlying socket.
func (c *Conn) Close() error { return c.udp.Close() }
