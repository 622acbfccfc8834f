package player

import "github.com/charmbracelet/bubbles/key"

// keyMap горячие клавиши экрана песни
type keyMap struct {
	PlayPause key.Binding
	Stop      key.Binding
	Back      key.Binding
	Forward   key.Binding
	SingerUp  key.Binding
	SingerDn  key.Binding
	SegPrev   key.Binding
	SegNext   key.Binding
	Toggle    key.Binding
	Solo      key.Binding
	Clear     key.Binding
	Default   key.Binding
	Shuffle1  key.Binding
	Shuffle2  key.Binding
	Shuffle3  key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	Narrow    key.Binding
	Widen     key.Binding
	Jump      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("пробел", "пауза")),
		Stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "стоп")),
		Back:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-5с")),
		Forward:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5с")),
		SingerUp:  key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "исполнитель")),
		SingerDn:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "исполнитель")),
		SegPrev:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "пред. отрезок")),
		SegNext:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "след. отрезок")),
		Toggle:    key.NewBinding(key.WithKeys("enter", "x"), key.WithHelp("x", "вкл/выкл")),
		Solo:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "соло")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "очистить")),
		Default:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "исходный")),
		Shuffle1:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "shuffle 1")),
		Shuffle2:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "shuffle 2")),
		Shuffle3:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "shuffle 3")),
		PanLeft:   key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "окно влево")),
		PanRight:  key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "окно вправо")),
		Narrow:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "уже")),
		Widen:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "шире")),
		Jump:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "перейти")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "справка")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "назад")),
	}
}

// ShortHelp реализует help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Stop, k.Toggle, k.Shuffle1, k.Jump, k.Help, k.Quit}
}

// FullHelp реализует help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Stop, k.Back, k.Forward, k.Jump},
		{k.SingerUp, k.SingerDn, k.SegPrev, k.SegNext, k.Toggle, k.Solo},
		{k.Clear, k.Default, k.Shuffle1, k.Shuffle2, k.Shuffle3},
		{k.PanLeft, k.PanRight, k.Narrow, k.Widen, k.Help, k.Quit},
	}
}
