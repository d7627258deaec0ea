package domain

// Key は論理キーを表すキーコード文字列です。
type Key string

const (
	KeyForward     Key = "w"
	KeyBack        Key = "s"
	KeyLeft        Key = "a"
	KeyRight       Key = "d"
	KeyAfterburner Key = " "
	KeyEngine      Key = "e"
	KeyRCS         Key = "r"
	KeyGyro        Key = "g"
	KeyShield      Key = "h"
	KeyCameraMode  Key = "tab"
)

// KeyState はtickごとのキー状態です。
//
//	Pressed  押下に遷移したtickのみ
//	Held     押下中の全tick (Pressedのtickを含む)
//	Released 離したtickのみ
type KeyState uint8

const (
	KeyIdle KeyState = iota
	KeyPressed
	KeyHeld
	KeyReleased
)

// IsDown はそのtickでキーが押されているかを返します。
func (s KeyState) IsDown() bool {
	return s == KeyPressed || s == KeyHeld
}

func (s KeyState) String() string {
	switch s {
	case KeyIdle:
		return "idle"
	case KeyPressed:
		return "pressed"
	case KeyHeld:
		return "held"
	case KeyReleased:
		return "released"
	default:
		return "unknown"
	}
}

// InputState はシミュレーションが読む正規化済みの入力です。
// マウス座標は入力面のローカル座標(スクリーン座標)です。
type InputState interface {
	Key(k Key) KeyState
	MousePosition() Vector2
	MouseHeld() bool
}

// Controls はキーのレベル入力からtick単位のエッジ状態を作る InputState 実装です。
// 単一ゴルーチンから使うこと。
type Controls struct {
	down   map[Key]bool
	prev   map[Key]bool
	states map[Key]KeyState

	mouse     Vector2
	mouseDown bool
}

var _ InputState = (*Controls)(nil)

func NewControls() *Controls {
	return &Controls{
		down:   make(map[Key]bool),
		prev:   make(map[Key]bool),
		states: make(map[Key]KeyState),
	}
}

// SetKey はキーの物理的な押下状態を記録します。反映は次の Advance です。
func (c *Controls) SetKey(k Key, down bool) {
	c.down[k] = down
}

func (c *Controls) SetMouse(position Vector2, held bool) {
	c.mouse = position
	c.mouseDown = held
}

// Advance は前tickとの差分から各キーの状態を確定します。tickの先頭で1回呼びます。
func (c *Controls) Advance() {
	clear(c.states)
	for k, now := range c.down {
		was := c.prev[k]
		switch {
		case now && !was:
			c.states[k] = KeyPressed
		case now && was:
			c.states[k] = KeyHeld
		case !now && was:
			c.states[k] = KeyReleased
		}
	}
	clear(c.prev)
	for k, now := range c.down {
		if now {
			c.prev[k] = true
		}
	}
}

func (c *Controls) Key(k Key) KeyState {
	return c.states[k]
}

func (c *Controls) MousePosition() Vector2 {
	return c.mouse
}

func (c *Controls) MouseHeld() bool {
	return c.mouseDown
}
