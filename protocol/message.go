// Package protocol frames scene payloads for transport between the
// authoring side and the viewer side of the bridge.
//
// Every message is a fixed 32-byte big-endian header followed by the
// payload. The header carries the message type, flags, a monotonically
// increasing sequence number, the session id and the payload length.
// Payloads are opaque to the framing layer; Set messages carry a
// serialized scene, validated by the scene's own content hash.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/scenebridge/scenebridge/scene"
)

// MessageType identifies the kind of payload a message carries.
type MessageType uint32

const (
	// MessageSet delivers a full or partial scene snapshot.
	MessageSet MessageType = iota + 1
	// MessageDelete names entities removed since the last snapshot.
	MessageDelete
	// MessageFence marks a synchronization point; the receiver replies
	// with the same fence id once everything before it is applied.
	MessageFence
	// MessageQuery requests state from the peer.
	MessageQuery
	// MessageText carries a free-form diagnostic string.
	MessageText
)

// String returns the string representation of MessageType.
func (t MessageType) String() string {
	switch t {
	case MessageSet:
		return "set"
	case MessageDelete:
		return "delete"
	case MessageFence:
		return "fence"
	case MessageQuery:
		return "query"
	case MessageText:
		return "text"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// Message flags.
const (
	// FlagPartial marks a Set payload as a stripped delta that must be
	// merged onto the receiver's previous full snapshot.
	FlagPartial uint32 = 1 << iota
)

// HeaderSize is the fixed wire size of a message header.
const HeaderSize = 32

// DefaultMaxPayloadSize bounds accepted payloads when the codec is not
// configured otherwise.
const DefaultMaxPayloadSize = 512 * 1024 * 1024

// Framing errors.
var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrPayloadTooLarge    = errors.New("payload exceeds size limit")
	ErrShortHeader        = errors.New("short message header")
)

// Header is the fixed-size prefix of every message.
type Header struct {
	Type       MessageType
	Flags      uint32
	Sequence   uint32
	Session    uuid.UUID
	PayloadLen uint32
}

// Message is a framed unit of transport.
type Message struct {
	Header
	Payload []byte
}

// NewSetMessage serializes sc and frames it as a Set message. Partial
// marks the payload as a stripped delta.
func NewSetMessage(session uuid.UUID, sequence uint32, sc *scene.Scene, partial bool) (*Message, error) {
	var buf bytes.Buffer
	if err := sc.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("frame scene: %w", err)
	}
	var flags uint32
	if partial {
		flags |= FlagPartial
	}
	return &Message{
		Header: Header{
			Type:       MessageSet,
			Flags:      flags,
			Sequence:   sequence,
			Session:    session,
			PayloadLen: uint32(buf.Len()),
		},
		Payload: buf.Bytes(),
	}, nil
}

// NewTextMessage frames a diagnostic string.
func NewTextMessage(session uuid.UUID, sequence uint32, text string) *Message {
	return &Message{
		Header: Header{
			Type:       MessageText,
			Sequence:   sequence,
			Session:    session,
			PayloadLen: uint32(len(text)),
		},
		Payload: []byte(text),
	}
}

// NewFenceMessage frames a synchronization fence.
func NewFenceMessage(session uuid.UUID, sequence uint32) *Message {
	return &Message{
		Header: Header{
			Type:     MessageFence,
			Sequence: sequence,
			Session:  session,
		},
	}
}

// Scene deserializes the payload of a Set message.
func (m *Message) Scene() (*scene.Scene, error) {
	if m.Type != MessageSet {
		return nil, fmt.Errorf("scene payload on %s message", m.Type)
	}
	sc := scene.NewScene()
	if err := sc.Deserialize(bytes.NewReader(m.Payload)); err != nil {
		return nil, err
	}
	return sc, nil
}

// Partial reports whether a Set payload is a stripped delta.
func (m *Message) Partial() bool {
	return m.Flags&FlagPartial != 0
}

// Codec encodes and decodes framed messages on a stream.
type Codec struct {
	maxPayloadSize int
}

// NewCodec creates a codec with the default payload limit.
func NewCodec() *Codec {
	return &Codec{maxPayloadSize: DefaultMaxPayloadSize}
}

// SetMaxPayloadSize bounds the payload size Decode will accept.
func (c *Codec) SetMaxPayloadSize(n int) *Codec {
	c.maxPayloadSize = n
	return c
}

// Encode writes the framed message to w.
func (c *Codec) Encode(w io.Writer, m *Message) error {
	if len(m.Payload) > c.maxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(m.Payload))
	}

	var hdr [HeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(m.Type))
	binary.BigEndian.PutUint32(hdr[4:8], m.Flags)
	binary.BigEndian.PutUint32(hdr[8:12], m.Sequence)
	copy(hdr[12:28], m.Session[:])
	binary.BigEndian.PutUint32(hdr[28:32], uint32(len(m.Payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(m.Payload) > 0 {
		if _, err := w.Write(m.Payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}
	return nil
}

// Decode reads one framed message from r.
func (c *Codec) Decode(r io.Reader) (*Message, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, ErrShortHeader
		}
		return nil, err
	}

	m := &Message{}
	m.Type = MessageType(binary.BigEndian.Uint32(hdr[0:4]))
	m.Flags = binary.BigEndian.Uint32(hdr[4:8])
	m.Sequence = binary.BigEndian.Uint32(hdr[8:12])
	copy(m.Session[:], hdr[12:28])
	m.PayloadLen = binary.BigEndian.Uint32(hdr[28:32])

	switch m.Type {
	case MessageSet, MessageDelete, MessageFence, MessageQuery, MessageText:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, uint32(m.Type))
	}
	if int(m.PayloadLen) > c.maxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, m.PayloadLen)
	}

	if m.PayloadLen > 0 {
		m.Payload = make([]byte, m.PayloadLen)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
	}
	return m, nil
}
