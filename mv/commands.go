package mv

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/globalmac/rgsskit/marshal"
)

// buttonNames — таблица клавиш условной ветви: числовые идентификаторы
// кнопок движка перекодируются в имена целевого диалекта. Пустые слоты
// редактор никогда не порождает.
var buttonNames = [19]string{
	2: "down", 4: "left", 6: "right", 8: "up",
	11: "shift", 12: "cancel", 13: "ok",
	17: "pageup", 18: "pagedown",
}

// triggerKeys — клавиши X/Y/Z, уходящие в скриптовую ветвь.
var triggerKeys = map[int]string{14: "A", 15: "S", 16: "D"}

// scriptSubs — подстановки переводчика скриптовых фрагментов,
// применяются в перечисленном порядке. Подстановка текстовая и может
// сработать на подстроке ("end" внутри идентификатора) — набор сохранён
// как есть ради совместимости перекодированных игр.
var scriptSubs = [...][2]string{
	{"$game_actors[", "$gameActors._data["},
	{".change_equip_by_id(", ".changeEquipById("},
	{"$game_variables[", "$gameVariables._data["},
	{"$game_switches[", "$gameSwitches._data["},
	{"$game_self_switches[", "$gameSelfSwitches._data["},
	{"$game_player.", "$gamePlayer."},
	{"$game_temp.", "$gameTemp."},
	{"Input.press?(:CTRL)", "Input.isPressed('control')"},
	{"else", "} else {"},
	{"end", "}"},
	{"= nil", "= null"},
	{"fps_mode_change(2)", "Graphics.showFps()"},
	{"fps_mode_change(1)", "Graphics.hideFps()"},
	{"Window_Base.new(", "new Window_Base("},
	{".draw_text(", ".drawText("},
	{"SceneManager.scene.log_window.add_text(", "SceneManager._scene._logWindow.addText("},
	{"wait(", "// wait("},
	{"adv_pcture_number(", "// adv_pcture_number("},
}

var ifRe = regexp.MustCompile(`^if\s+(.*)$`)

func translateScript(s string) string {
	for _, sub := range scriptSubs {
		s = strings.ReplaceAll(s, sub[0], sub[1])
	}
	return ifRe.ReplaceAllString(s, "if ($1) {")
}

// rewriteList перекодирует список событийных команд из диалекта VX Ace
// в диалект MV/MZ. Команды, которым в целевом движке нет места,
// выбрасываются из списка.
func rewriteList(list []*marshal.Node) []obj {
	out := make([]obj, 0, len(list))
	for _, cmd := range list {
		code := getInt(cmd, "@code", 0)
		indent := getInt(cmd, "@indent", 0)
		params := coerceParams(getArr(cmd, "@parameters"))

		switch code {
		case 102: // Show Choices
			var choices []any
			if len(params) > 0 {
				if c, ok := params[0].([]any); ok {
					choices = c
				}
			}
			cancel := 0
			if len(params) > 1 {
				cancel = toInt(params[1]) - 1
				if cancel == 4 {
					cancel = -2
				}
			}
			params = []any{choices, cancel, 0, 2, 0}

		case 104: // Input Number
			params = padParams(params, 2)
			params[1] = 2

		case 108, 408: // Comment
			logrus.WithField("params", params).Debug("комментарий события")

		case 111: // Conditional Branch
			if len(params) >= 2 && toInt(params[0]) == 11 {
				key := toInt(params[1])
				if letter, ok := triggerKeys[key]; ok {
					params = []any{12, fmt.Sprintf("Input.isTriggered('%s')", letter)}
				} else if key >= 0 && key < len(buttonNames) {
					params[1] = buttonNames[key]
				}
			}

		case 122: // Control Variables
			if len(params) >= 5 && toInt(params[3]) == 4 {
				logrus.WithField("script", params[4]).Debug("скриптовый операнд переменной")
			}

		case 223: // Tint Screen
			if len(params) == 3 {
				params[0] = []any{0, 0, 0, 0}
			}

		case 224: // Flash Screen
			if len(params) == 0 {
				continue
			}
			if len(params) == 3 {
				params[0] = []any{255, 255, 255, 255}
			}

		case 231: // Show Picture
			if len(params) >= 10 && toInt(params[9]) == 2 {
				code = 355
				params = []any{fmt.Sprintf("$gameScreen.showPicture(%d, %s, %d, %s, %s, %d, %d, %d, %d)",
					toInt(params[0]), strconv.Quote(toAnyStr(params[1])), toInt(params[2]),
					pictureCoord(params[3], params[4]), pictureCoord(params[3], params[5]),
					toInt(params[6]), toInt(params[7]), toInt(params[8]), toInt(params[9]))}
			}

		case 232: // Move Picture
			params = padParams(params, 2)
			params[1] = 0
			if len(params) >= 11 && toInt(params[9]) == 2 {
				script := fmt.Sprintf("$gameScreen.movePicture(%d, %d, %s, %s, %d, %d, %d, %d, %d)",
					toInt(params[0]), toInt(params[2]),
					pictureCoord(params[3], params[4]), pictureCoord(params[3], params[5]),
					toInt(params[6]), toInt(params[7]), toInt(params[8]), toInt(params[9]),
					toInt(params[10]))
				if len(params) >= 12 && truthy(params[11]) {
					script += fmt.Sprintf("; this.wait(%d)", toInt(params[10]))
				}
				code = 355
				params = []any{script}
			}

		case 285: // Get Location Info
			if len(params) >= 2 && toInt(params[1]) == 5 {
				params[1] = 6
			}

		case 302: // Shop Processing
			params = padParams(params, 4)
			if params[3] == nil {
				params[3] = 0
			}

		case 319: // Change Equipment
			if len(params) >= 2 {
				params[1] = toInt(params[1]) + 1
			}

		case 322: // Change Actor Graphic
			params = padParams(params, 6)
			params[4] = 0
			params[5] = ""

		case 355, 655: // Script
			if len(params) >= 1 {
				if s, ok := params[0].(string); ok {
					params[0] = translateScript(s)
				}
			}

		case 505:
			// Маршрутные подкоманды уже перекодированы коэрцией
			// параметров (projectMoveCommand, включая 43→45).
		}

		out = append(out, obj{"code": code, "indent": indent, "parameters": params})
	}
	return out
}

// pictureCoord выбирает между литеральной координатой и чтением из
// игровой переменной в зависимости от способа задания.
func pictureCoord(designation, v any) string {
	if toInt(designation) == 1 {
		return fmt.Sprintf("$gameVariables.value(%d)", toInt(v))
	}
	return strconv.Itoa(toInt(v))
}

// projectMoveRoute проецирует маршрут перемещения вместе с вложенными
// командами.
func projectMoveRoute(mr *marshal.Node) obj {
	list := []obj{}
	for _, mc := range getArr(mr, "@list") {
		list = append(list, projectMoveCommand(mc))
	}
	return obj{
		"list":      list,
		"repeat":    getBool(mr, "@repeat", true),
		"skippable": getBool(mr, "@skippable", false),
		"wait":      getBool(mr, "@wait", false),
	}
}

// projectMoveCommand перекодирует команду маршрута. Смена режима
// смешивания (43) со значением 2 не существует в целевом движке и
// заменяется скриптовой командой. indent у маршрутных команд всегда null.
func projectMoveCommand(mc *marshal.Node) obj {
	code := getInt(mc, "@code", 0)
	params := coerceParams(getArr(mc, "@parameters"))
	if code == 43 && len(params) > 0 && toInt(params[0]) == 2 {
		return obj{"code": 45, "parameters": []any{"this.setBlendMode(2);"}, "indent": nil}
	}
	return obj{"code": code, "parameters": params, "indent": nil}
}

// coerceParams приводит параметры команды к JSON-представимым значениям:
// байтовые строки декодируются с потерями, символы схлопываются в имя,
// типизированные объекты маршрутов и аудио проецируются рекурсивно.
func coerceParams(list []*marshal.Node) []any {
	out := make([]any, 0, len(list))
	for _, p := range list {
		out = append(out, coerceParam(p))
	}
	return out
}

func coerceParam(n *marshal.Node) any {
	switch {
	case n.IsNil():
		return nil
	case n.Kind == marshal.Bool:
		return n.BoolVal
	case n.Kind == marshal.Int:
		return int(n.IntVal)
	case n.Kind == marshal.Float:
		return n.FloatVal
	case n.Kind == marshal.Bytes:
		return toStr(n)
	case n.Kind == marshal.Symbol:
		return n.Sym
	case n.Kind == marshal.Array:
		return coerceParams(n.Elems)
	case n.Kind == marshal.Hash:
		out := obj{}
		for _, p := range n.Pairs {
			out[hashKey(p.Key)] = coerceParam(p.Value)
		}
		return out
	case n.Kind == marshal.UserDef:
		// Таблицы и цвета в параметрах встречаются у экранных команд.
		if n.Class == "Table" {
			return decodeTable(n.Raw).ints()
		}
		return colorValues(n)
	case n.Kind == marshal.Object:
		switch n.Class {
		case "RPG::MoveRoute":
			return projectMoveRoute(n)
		case "RPG::MoveCommand":
			return projectMoveCommand(n)
		case "RPG::SE", "RPG::ME", "RPG::BGM", "RPG::BGS", "RPG::AudioFile":
			return getAudio(n)
		}
		out := obj{}
		for name, v := range n.Attrs {
			out[strings.TrimPrefix(name, "@")] = coerceParam(v)
		}
		return out
	}
	return nil
}

func hashKey(n *marshal.Node) string {
	switch n.Kind {
	case marshal.Int:
		return strconv.FormatInt(n.IntVal, 10)
	case marshal.Bytes, marshal.Symbol:
		return toStr(n)
	}
	return fmt.Sprint(coerceParam(n))
}

func padParams(params []any, n int) []any {
	for len(params) < n {
		params = append(params, nil)
	}
	return params
}

func toInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

func toAnyStr(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x != 0
	case float64:
		return x != 0
	}
	return false
}
