package source

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/pion/rtp"
	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// RTPMulticast pulls offset-127 IQ payloads out of an RTP multicast
// stream — the network front end for an SDR whose tuner front end
// publishes raw samples over the wire, the way the reference receiver's
// audio multicast path does for PCM. ReadBlock assembles payload bytes
// across as many RTP packets as needed to fill the caller's buffer.
type RTPMulticast struct {
	conn *net.UDPConn

	mu      sync.Mutex
	pending []byte
}

// NewRTPMulticast joins addr on iface (nil selects the default
// interface) and returns a Sample reading its RTP payload stream.
func NewRTPMulticast(addr *net.UDPAddr, iface *net.Interface) (*RTPMulticast, error) {
	conn, err := joinMulticast(addr, iface)
	if err != nil {
		return nil, fmt.Errorf("source: rtp multicast join %s: %w", addr, err)
	}
	return &RTPMulticast{conn: conn}, nil
}

func joinMulticast(addr *net.UDPAddr, iface *net.Interface) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
					sockErr = fmt.Errorf("SO_REUSEPORT: %w", err)
					return
				}
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					sockErr = fmt.Errorf("SO_REUSEADDR: %w", err)
					return
				}
			}); err != nil {
				return err
			}
			return sockErr
		},
	}

	conn, err := lc.ListenPacket(context.Background(), "udp4", addr.String())
	if err != nil {
		return nil, err
	}
	udpConn := conn.(*net.UDPConn)

	if err := udpConn.SetReadBuffer(1024 * 1024); err != nil {
		udpConn.Close()
		return nil, err
	}

	p := ipv4.NewPacketConn(udpConn)
	if err := p.JoinGroup(iface, addr); err != nil {
		udpConn.Close()
		return nil, err
	}
	return udpConn, nil
}

// ReadBlock fills out with RTP payload bytes, issuing as many reads as
// needed, and returns the number of bytes filled.
func (m *RTPMulticast) ReadBlock(out []byte) (int, error) {
	buf := make([]byte, 65536)
	filled := 0

	m.mu.Lock()
	if n := copy(out, m.pending); n > 0 {
		filled = n
		m.pending = m.pending[n:]
	}
	m.mu.Unlock()

	for filled < len(out) {
		n, _, err := m.conn.ReadFromUDP(buf)
		if err != nil {
			return filled, err
		}
		if n < 12 {
			continue // too small to be a valid RTP header
		}

		var packet rtp.Packet
		if err := packet.Unmarshal(buf[:n]); err != nil {
			continue
		}

		take := copy(out[filled:], packet.Payload)
		filled += take

		if take < len(packet.Payload) {
			m.mu.Lock()
			m.pending = append(m.pending, packet.Payload[take:]...)
			m.mu.Unlock()
		}
	}

	return filled, nil
}

// Close releases the multicast socket.
func (m *RTPMulticast) Close() error {
	return m.conn.Close()
}
