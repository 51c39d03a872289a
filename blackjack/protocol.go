package blackjack

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"unicode/utf8"
)

const MagicCookie uint32 = 0xabcddcba

type MessageType uint8

const (
	MsgOffer   MessageType = 0x02
	MsgRequest MessageType = 0x03
	MsgPayload MessageType = 0x04
)

func (t MessageType) String() string {
	switch t {
	case MsgOffer:
		return "OFFER"
	case MsgRequest:
		return "REQUEST"
	case MsgPayload:
		return "PAYLOAD"
	default:
		return "INVALID"
	}
}

const (
	NameLen    = 32
	HeaderSize = 4 + 1

	OfferSize         = HeaderSize + 2 + NameLen // 39
	RequestSize       = HeaderSize + 1 + NameLen // 38
	ClientPayloadSize = HeaderSize + 5           // 10
	ServerPayloadSize = HeaderSize + 1 + 2 + 1   // 9
)

var (
	_ encoding.BinaryMarshaler   = Offer{}
	_ encoding.BinaryUnmarshaler = (*Offer)(nil)
	_ encoding.BinaryMarshaler   = Request{}
	_ encoding.BinaryUnmarshaler = (*Request)(nil)
	_ encoding.BinaryMarshaler   = ClientPayload{}
	_ encoding.BinaryUnmarshaler = (*ClientPayload)(nil)
	_ encoding.BinaryMarshaler   = ServerPayload{}
	_ encoding.BinaryUnmarshaler = (*ServerPayload)(nil)
)

// Offer is broadcast over UDP to advertise the game's TCP endpoint.
type Offer struct {
	TCPPort    uint16
	ServerName string
}

func (o Offer) MarshalBinary() ([]byte, error) {
	buf := newFrame(OfferSize, MsgOffer)
	binary.BigEndian.PutUint16(buf[5:7], o.TCPPort)
	putName(buf[7:], o.ServerName)
	return buf, nil
}

func (o *Offer) UnmarshalBinary(data []byte) error {
	if err := checkFrame("offer", data, OfferSize, MsgOffer); err != nil {
		return err
	}
	o.TCPPort = binary.BigEndian.Uint16(data[5:7])
	o.ServerName = readName(data[7:])
	return nil
}

// Request opens a session: the number of rounds to play and the client's name.
type Request struct {
	Rounds     int
	ClientName string
}

func (r Request) MarshalBinary() ([]byte, error) {
	if r.Rounds < 1 || r.Rounds > 255 {
		return nil, &ValidationError{Field: "rounds", Value: r.Rounds}
	}
	buf := newFrame(RequestSize, MsgRequest)
	buf[5] = byte(r.Rounds)
	putName(buf[6:], r.ClientName)
	return buf, nil
}

func (r *Request) UnmarshalBinary(data []byte) error {
	if err := checkFrame("request", data, RequestSize, MsgRequest); err != nil {
		return err
	}
	if data[5] == 0 {
		return &ValidationError{Field: "rounds", Value: 0}
	}
	r.Rounds = int(data[5])
	r.ClientName = readName(data[6:])
	return nil
}

// Decision is the client's five byte move. "Hittt" is padded on purpose.
type Decision string

const (
	DecisionHit   Decision = "Hittt"
	DecisionStand Decision = "Stand"
)

func (d Decision) String() string {
	switch d {
	case DecisionHit:
		return "HIT"
	case DecisionStand:
		return "STAND"
	default:
		return "UNKNOWN(" + string(d) + ")"
	}
}

type ClientPayload struct {
	Decision Decision
}

func (p ClientPayload) MarshalBinary() ([]byte, error) {
	if p.Decision != DecisionHit && p.Decision != DecisionStand {
		return nil, &ValidationError{Field: "decision", Value: string(p.Decision)}
	}
	buf := newFrame(ClientPayloadSize, MsgPayload)
	copy(buf[5:], p.Decision)
	return buf, nil
}

// UnmarshalBinary accepts any five byte token; interpreting unknown tokens is
// left to the session.
func (p *ClientPayload) UnmarshalBinary(data []byte) error {
	if err := checkFrame("client payload", data, ClientPayloadSize, MsgPayload); err != nil {
		return err
	}
	p.Decision = Decision(data[5:10])
	return nil
}

// ServerPayload carries one card and the round result. Every server to client
// message after the handshake is one of these.
type ServerPayload struct {
	Result Result
	Card   Card
}

func (p ServerPayload) MarshalBinary() ([]byte, error) {
	if !p.Result.valid() {
		return nil, &ValidationError{Field: "result", Value: p.Result}
	}
	if err := p.Card.validate(); err != nil {
		return nil, err
	}
	buf := newFrame(ServerPayloadSize, MsgPayload)
	buf[5] = byte(p.Result)
	binary.BigEndian.PutUint16(buf[6:8], uint16(p.Card.Rank))
	buf[8] = byte(p.Card.Suit)
	return buf, nil
}

func (p *ServerPayload) UnmarshalBinary(data []byte) error {
	if err := checkFrame("server payload", data, ServerPayloadSize, MsgPayload); err != nil {
		return err
	}
	res := Result(data[5])
	if !res.valid() {
		return &ValidationError{Field: "result", Value: res}
	}
	rank := binary.BigEndian.Uint16(data[6:8])
	if rank < uint16(Ace) || rank > uint16(King) {
		return &ValidationError{Field: "rank", Value: rank}
	}
	card := Card{Rank: Rank(rank), Suit: Suit(data[8])}
	if err := card.validate(); err != nil {
		return err
	}
	p.Result = res
	p.Card = card
	return nil
}

func DecodeOffer(data []byte) (Offer, error) {
	var o Offer
	err := o.UnmarshalBinary(data)
	return o, err
}

func DecodeRequest(data []byte) (Request, error) {
	var r Request
	err := r.UnmarshalBinary(data)
	return r, err
}

func DecodeClientPayload(data []byte) (ClientPayload, error) {
	var p ClientPayload
	err := p.UnmarshalBinary(data)
	return p, err
}

func DecodeServerPayload(data []byte) (ServerPayload, error) {
	var p ServerPayload
	err := p.UnmarshalBinary(data)
	return p, err
}

func newFrame(size int, t MessageType) []byte {
	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = byte(t)
	return buf
}

// checkFrame validates length, cookie and type, in that order.
func checkFrame(msg string, data []byte, size int, t MessageType) error {
	if len(data) != size {
		return &ProtocolError{Message: msg, Check: CheckLength, Got: uint64(len(data)), Want: uint64(size)}
	}
	if cookie := binary.BigEndian.Uint32(data[0:4]); cookie != MagicCookie {
		return &ProtocolError{Message: msg, Check: CheckCookie, Got: uint64(cookie), Want: uint64(MagicCookie)}
	}
	if MessageType(data[4]) != t {
		return &ProtocolError{Message: msg, Check: CheckType, Got: uint64(data[4]), Want: uint64(t)}
	}
	return nil
}

// putName writes name into the zeroed NameLen byte field dst, truncating on a
// rune boundary.
func putName(dst []byte, name string) {
	b := []byte(name)
	if len(b) > NameLen {
		n := NameLen
		for n > 0 && !utf8.RuneStart(b[n]) {
			n--
		}
		b = b[:n]
	}
	copy(dst[:NameLen], b)
}

func readName(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(bytes.ToValidUTF8(raw, []byte("\uFFFD")))
}
