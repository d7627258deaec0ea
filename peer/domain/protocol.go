package domain

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// バイトオーダー: リトルエンディアン
var byteOrder = binary.LittleEndian

const (
	ProtocolVersion   = 1
	HeaderSize        = 9
	PayloadHeaderSize = 2
)

// Header はメッセージヘッダー (9バイト)
//
//	version    u8  (1)
//	seq        u16 (2)
//	length     u16 (2)  - ペイロードヘッダー + ペイロード長
//	timestamp  u32 (4)
//
// 送信元アドレスはリンク確立時のhelloで確定するためヘッダーには含めない。
type Header struct {
	Version   uint8
	Seq       uint16
	Length    uint16
	Timestamp uint32
}

// DataType はメッセージの種別
type DataType uint8

const (
	DataTypeReplication DataType = 1
	DataTypeControl     DataType = 2
)

// ReplicationSubType はゲーム状態複製メッセージのサブタイプ
type ReplicationSubType uint8

const (
	ReplicationSubTypePlayerState    ReplicationSubType = 1
	ReplicationSubTypeBulletShot     ReplicationSubType = 2
	ReplicationSubTypeBulletCollided ReplicationSubType = 3
	ReplicationSubTypeKill           ReplicationSubType = 4
)

func (s ReplicationSubType) String() string {
	switch s {
	case ReplicationSubTypePlayerState:
		return "player-state"
	case ReplicationSubTypeBulletShot:
		return "bullet-shot"
	case ReplicationSubTypeBulletCollided:
		return "bullet-collided"
	case ReplicationSubTypeKill:
		return "kill"
	default:
		return "unknown"
	}
}

// ControlSubType はリンク制御メッセージのサブタイプ
type ControlSubType uint8

const (
	ControlSubTypeHello   ControlSubType = 1
	ControlSubTypeMembers ControlSubType = 2
	ControlSubTypeLeave   ControlSubType = 3
	ControlSubTypePing    ControlSubType = 4
	ControlSubTypePong    ControlSubType = 5
)

// PayloadHeader はペイロードヘッダー (2バイト)
//
//	datatype  u8 (1)
//	subtype   u8 (1)
type PayloadHeader struct {
	DataType DataType
	SubType  uint8
}

var (
	ErrInvalidHeaderSize      = errors.New("invalid header size")
	ErrInvalidPayloadSize     = errors.New("invalid payload size")
	ErrUnsupportedVersion     = errors.New("unsupported protocol version")
	ErrInvalidStringSize      = errors.New("invalid string size")
	ErrPlayerStatePayloadSize = errors.New("invalid player-state payload size")
	ErrBulletShotPayloadSize  = errors.New("invalid bullet-shot payload size")
)

// ParseHeader はバイト列からHeaderをパースする
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrInvalidHeaderSize
	}

	return &Header{
		Version:   data[0],
		Seq:       byteOrder.Uint16(data[1:3]),
		Length:    byteOrder.Uint16(data[3:5]),
		Timestamp: byteOrder.Uint32(data[5:9]),
	}, nil
}

// Encode はHeaderをバイト列にエンコードする
func (h *Header) Encode() []byte {
	data := make([]byte, HeaderSize)
	data[0] = h.Version
	byteOrder.PutUint16(data[1:3], h.Seq)
	byteOrder.PutUint16(data[3:5], h.Length)
	byteOrder.PutUint32(data[5:9], h.Timestamp)
	return data
}

// ParsePayloadHeader はバイト列からPayloadHeaderをパースする
func ParsePayloadHeader(data []byte) (*PayloadHeader, error) {
	if len(data) < PayloadHeaderSize {
		return nil, ErrInvalidPayloadSize
	}

	return &PayloadHeader{
		DataType: DataType(data[0]),
		SubType:  data[1],
	}, nil
}

// Encode はPayloadHeaderをバイト列にエンコードする
func (p *PayloadHeader) Encode() []byte {
	data := make([]byte, PayloadHeaderSize)
	data[0] = byte(p.DataType)
	data[1] = p.SubType
	return data
}

// EncodeMessage はヘッダー・ペイロードヘッダー・ペイロードを1つのメッセージにまとめる
func EncodeMessage(seq uint16, dataType DataType, subType uint8, payload []byte) []byte {
	header := Header{
		Version:   ProtocolVersion,
		Seq:       seq,
		Length:    uint16(PayloadHeaderSize + len(payload)),
		Timestamp: uint32(time.Now().UnixMilli() & 0xFFFFFFFF),
	}
	payloadHeader := PayloadHeader{
		DataType: dataType,
		SubType:  subType,
	}

	data := make([]byte, 0, HeaderSize+PayloadHeaderSize+len(payload))
	data = append(data, header.Encode()...)
	data = append(data, payloadHeader.Encode()...)
	data = append(data, payload...)
	return data
}

// DecodeMessage はメッセージを分解し、ペイロード部分を返す
func DecodeMessage(data []byte) (*Header, *PayloadHeader, []byte, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, nil, nil, err
	}
	if header.Version != ProtocolVersion {
		return nil, nil, nil, ErrUnsupportedVersion
	}
	if int(header.Length) < PayloadHeaderSize || len(data) < HeaderSize+int(header.Length) {
		return nil, nil, nil, ErrInvalidPayloadSize
	}

	body := data[HeaderSize : HeaderSize+int(header.Length)]
	payloadHeader, err := ParsePayloadHeader(body)
	if err != nil {
		return nil, nil, nil, err
	}
	return header, payloadHeader, body[PayloadHeaderSize:], nil
}

// EncodeControlMessage はペイロードを持たない制御メッセージをエンコードする
func EncodeControlMessage(subType ControlSubType) []byte {
	return EncodeMessage(0, DataTypeControl, uint8(subType), nil)
}

const vector2Size = 16 // 2 * float64

func putVector2(buf []byte, v Vector2) {
	byteOrder.PutUint64(buf[0:8], math.Float64bits(v.X))
	byteOrder.PutUint64(buf[8:16], math.Float64bits(v.Y))
}

func readVector2(buf []byte) Vector2 {
	return Vector2{
		X: math.Float64frombits(byteOrder.Uint64(buf[0:8])),
		Y: math.Float64frombits(byteOrder.Uint64(buf[8:16])),
	}
}

func putFloat64(buf []byte, f float64) {
	byteOrder.PutUint64(buf, math.Float64bits(f))
}

func readFloat64(buf []byte) float64 {
	return math.Float64frombits(byteOrder.Uint64(buf))
}

// appendString は u16 の長さ接頭辞付きで文字列を追加する
func appendString(buf []byte, s string) []byte {
	if len(s) > math.MaxUint16 {
		s = s[:math.MaxUint16]
	}
	buf = byteOrder.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// readString は長さ接頭辞付き文字列を読み、消費したバイト数を返す
func readString(data []byte) (string, int, error) {
	if len(data) < 2 {
		return "", 0, ErrInvalidStringSize
	}
	n := int(byteOrder.Uint16(data[0:2]))
	if len(data) < 2+n {
		return "", 0, ErrInvalidStringSize
	}
	return string(data[2 : 2+n]), 2 + n, nil
}
