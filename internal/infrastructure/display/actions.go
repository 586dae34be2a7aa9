package display

import "opd-scanner/internal/domain/entity"

// ActionKind действие пользователя в окне предпросмотра
type ActionKind int

const (
	ActionScan ActionKind = iota + 1
	ActionQuit
)

// Action нажатие клавиши, переведённое в команду
type Action struct {
	Kind ActionKind
	Pain entity.PainLevel
}

// keyState текущий уровень боли, выбранный клавишами
type keyState struct {
	pain entity.PainLevel
}

// handleKey переводит код клавиши в действие. Цифры задают боль 0..9,
// m задаёт 10, s или пробел запускают сканирование, q или Esc выход.
func (k *keyState) handleKey(key int) (Action, bool) {
	switch {
	case key >= '0' && key <= '9':
		k.pain = entity.PainLevel(key - '0')
	case key == 'm' || key == 'M':
		k.pain = entity.MaxPain
	case key == 's' || key == 'S' || key == ' ':
		return Action{Kind: ActionScan, Pain: k.pain}, true
	case key == 'q' || key == 'Q' || key == 27:
		return Action{Kind: ActionQuit}, true
	}
	return Action{}, false
}
