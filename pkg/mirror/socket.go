package mirror

import (
	"fmt"
	"math"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"

	"github.com/pitchsim/pitchsim/pkg/sim"
)

// Fixed protocol ports.
const (
	EnginePort   = 34254
	RendererPort = 45243
)

// ReturnMessage collects whatever the renderer sent since the last drain.
type ReturnMessage struct {
	GameState *GameState
	Speed     *float32
	Paused    *bool
}

// Socket mirrors arena state to a renderer over UDP. Safe for use from one
// goroutine at a time per method; the mutex protects connect/close races.
type Socket struct {
	mu   deadlock.Mutex
	conn *net.UDPConn

	remote    *net.UDPAddr
	connected bool

	limiter *rate.Limiter
}

// NewSocket binds the engine port. The renderer is assumed local.
func NewSocket() (*Socket, error) {
	local := &net.UDPAddr{IP: net.IPv4zero, Port: EnginePort}
	conn, err := net.ListenUDP("udp4", local)
	if err != nil {
		return nil, fmt.Errorf("binding engine port: %w", err)
	}
	return &Socket{
		conn:   conn,
		remote: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: RendererPort},
	}, nil
}

// Connect announces the engine to the renderer.
func (s *Socket) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sendTag(PacketConnection); err != nil {
		return err
	}
	s.connected = true
	return nil
}

func (s *Socket) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Close sends Quit and releases the socket.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	if s.connected {
		if err := s.sendTag(PacketQuit); err != nil {
			log.Warn().Err(err).Msg("mirror quit packet failed")
		}
	}
	err := s.conn.Close()
	s.conn = nil
	s.connected = false
	return err
}

func (s *Socket) sendTag(t PacketType) error {
	_, err := s.conn.WriteToUDP([]byte{byte(t)}, s.remote)
	return err
}

// SendGameState streams one snapshot: the tag datagram, then the payload
// datagram.
func (s *Socket) SendGameState(gs *GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	if err := s.sendTag(PacketGameState); err != nil {
		return err
	}
	payload := gs.ToBytes()
	n, err := s.conn.WriteToUDP(payload, s.remote)
	if err != nil {
		return err
	}
	if n != len(payload) {
		log.Warn().Int("sent", n).Int("want", len(payload)).Msg("short mirror write")
	}
	return nil
}

// SendArenaState snapshots and streams the arena, paced at its tick rate.
func (s *Socket) SendArenaState(a *sim.Arena) error {
	s.mu.Lock()
	if s.limiter == nil {
		s.limiter = rate.NewLimiter(rate.Limit(a.TickRate()), 1)
	}
	allowed := s.limiter.Allow()
	s.mu.Unlock()
	if !allowed {
		return nil
	}
	gs := FromArena(a)
	return s.SendGameState(&gs)
}

// SendPaused reports pause state to the renderer.
func (s *Socket) SendPaused(paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	if err := s.sendTag(PacketPaused); err != nil {
		return err
	}
	b := byte(0)
	if paused {
		b = 1
	}
	_, err := s.conn.WriteToUDP([]byte{b}, s.remote)
	return err
}

// SendSpeed reports the game speed multiplier.
func (s *Socket) SendSpeed(speed float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	if err := s.sendTag(PacketSpeed); err != nil {
		return err
	}
	var buf [4]byte
	bits := math.Float32bits(speed)
	buf[0] = byte(bits)
	buf[1] = byte(bits >> 8)
	buf[2] = byte(bits >> 16)
	buf[3] = byte(bits >> 24)
	_, err := s.conn.WriteToUDP(buf[:], s.remote)
	return err
}

// ReceiveMessages drains pending renderer datagrams without blocking.
func (s *Socket) ReceiveMessages() ReturnMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result ReturnMessage
	if s.conn == nil || !s.connected {
		return result
	}

	buf := make([]byte, 1<<16)
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return result
		}
		if n == 0 {
			continue
		}

		switch PacketType(buf[0]) {
		case PacketGameState:
			// the payload follows in its own datagram
			_ = s.conn.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
			n, _, err = s.conn.ReadFromUDP(buf)
			if err != nil {
				return result
			}
			gs, err := FromBytes(buf[:n])
			if err != nil {
				log.Warn().Err(err).Msg("bad mirror game state")
				continue
			}
			result.GameState = &gs

		case PacketSpeed:
			_ = s.conn.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
			n, _, err = s.conn.ReadFromUDP(buf)
			if err != nil || n < 4 {
				return result
			}
			speed := math.Float32frombits(uint32(buf[0]) |
				uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24)
			result.Speed = &speed

		case PacketPaused:
			_ = s.conn.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
			n, _, err = s.conn.ReadFromUDP(buf)
			if err != nil || n < 1 {
				return result
			}
			paused := buf[0] != 0
			result.Paused = &paused

		case PacketQuit:
			s.connected = false
			return result
		}
	}
}
