package domain

import "errors"

var (
	ErrInvalidHelloPayload   = errors.New("invalid hello payload")
	ErrInvalidMembersPayload = errors.New("invalid members payload")
)

// HelloPayload はリンク確立時に最初に送る自己紹介 (可変長)
//
//	address    u16 len + bytes
//	listenURL  u16 len + bytes - 他ピアが接続するためのURL (空なら受け付けない)
type HelloPayload struct {
	Address   PeerAddress
	ListenURL string
}

// ParseHelloPayload はバイト列からHelloPayloadをパースする
func ParseHelloPayload(data []byte) (*HelloPayload, error) {
	address, n, err := readString(data)
	if err != nil || address == "" {
		return nil, ErrInvalidHelloPayload
	}
	listenURL, _, err := readString(data[n:])
	if err != nil {
		return nil, ErrInvalidHelloPayload
	}

	return &HelloPayload{
		Address:   PeerAddress(address),
		ListenURL: listenURL,
	}, nil
}

// Encode はHelloPayloadをバイト列にエンコードする
func (h *HelloPayload) Encode() []byte {
	data := make([]byte, 0, 4+len(h.Address)+len(h.ListenURL))
	data = appendString(data, string(h.Address))
	data = appendString(data, h.ListenURL)
	return data
}

// MembersPayload は既知メンバーの接続先一覧 (可変長)
//
//	count  u16 (2)
//	urls   (u16 len + bytes) * count
type MembersPayload struct {
	URLs []string
}

// ParseMembersPayload はバイト列からMembersPayloadをパースする
func ParseMembersPayload(data []byte) (*MembersPayload, error) {
	if len(data) < 2 {
		return nil, ErrInvalidMembersPayload
	}
	count := int(byteOrder.Uint16(data[0:2]))
	data = data[2:]

	urls := make([]string, 0, count)
	for i := 0; i < count; i++ {
		url, n, err := readString(data)
		if err != nil {
			return nil, ErrInvalidMembersPayload
		}
		urls = append(urls, url)
		data = data[n:]
	}

	return &MembersPayload{URLs: urls}, nil
}

// Encode はMembersPayloadをバイト列にエンコードする
func (m *MembersPayload) Encode() []byte {
	data := make([]byte, 0, 2+len(m.URLs)*32)
	data = byteOrder.AppendUint16(data, uint16(len(m.URLs)))
	for _, url := range m.URLs {
		data = appendString(data, url)
	}
	return data
}

// EncodeHelloMessage はhelloメッセージをエンコードする
func EncodeHelloMessage(address PeerAddress, listenURL string) []byte {
	payload := HelloPayload{Address: address, ListenURL: listenURL}
	return EncodeMessage(0, DataTypeControl, uint8(ControlSubTypeHello), payload.Encode())
}

// EncodeMembersMessage はメンバー一覧メッセージをエンコードする
func EncodeMembersMessage(urls []string) []byte {
	payload := MembersPayload{URLs: urls}
	return EncodeMessage(0, DataTypeControl, uint8(ControlSubTypeMembers), payload.Encode())
}
