package mv

import "github.com/globalmac/rgsskit/marshal"

// Общие помощники проекции: трейты, эффекты, урон, аудио и таблицы
// параметров используются сразу несколькими видами сущностей.

func getTraits(features []*marshal.Node) []obj {
	out := make([]obj, 0, len(features))
	for _, f := range features {
		out = append(out, obj{
			"code":   getInt(f, "@code", 0),
			"dataId": getInt(f, "@data_id", 0),
			"value":  num(attr(f, "@value")),
		})
	}
	return out
}

func getEffects(effects []*marshal.Node) []obj {
	out := make([]obj, 0, len(effects))
	for _, e := range effects {
		out = append(out, obj{
			"code":   getInt(e, "@code", 0),
			"dataId": getInt(e, "@data_id", 0),
			"value1": num(attr(e, "@value1")),
			"value2": num(attr(e, "@value2")),
		})
	}
	return out
}

func getLearnings(learnings []*marshal.Node) []obj {
	out := make([]obj, 0, len(learnings))
	for _, l := range learnings {
		out = append(out, obj{
			"level":   getInt(l, "@level", 1),
			"skillId": getInt(l, "@skill_id", 1),
			"note":    getStr(l, "@note", ""),
		})
	}
	return out
}

func getDamage(dmg *marshal.Node) obj {
	if dmg.IsNil() {
		return obj{"critical": false, "elementId": 0, "formula": "0", "type": 0, "variance": 20}
	}
	return obj{
		"critical":  getBool(dmg, "@critical", false),
		"elementId": getInt(dmg, "@element_id", 0),
		"formula":   getStr(dmg, "@formula", ""),
		"type":      getInt(dmg, "@type", 0),
		"variance":  getInt(dmg, "@variance", 0),
	}
}

// getAudio проецирует RPG::BGM/BGS/ME/SE в аудиоблок целевой схемы.
func getAudio(a *marshal.Node) obj {
	return obj{
		"name":   getStr(a, "@name", ""),
		"pan":    getInt(a, "@pan", 0),
		"pitch":  getInt(a, "@pitch", 100),
		"volume": getInt(a, "@volume", 100),
	}
}

// getParams раскладывает таблицу 8 параметров × n уровней, хранящуюся
// вперемешку по уровням: группа p собирается из каждого восьмого
// элемента со смещением p. Пустая таблица даёт восемь диапазонов
// [500..600).
func getParams(t *table) [][]int {
	if t == nil || len(t.flags) == 0 {
		out := make([][]int, 8)
		for p := range out {
			row := make([]int, 100)
			for l := range row {
				row[l] = 500 + l
			}
			out[p] = row
		}
		return out
	}

	out := make([][]int, 8)
	for p := 0; p < 8; p++ {
		var row []int
		for i := p; i < len(t.flags); i += 8 {
			row = append(row, int(t.flags[i]))
		}
		out[p] = row
	}
	return out
}

// flatParams снимает одномерную таблицу параметров экипировки или врага.
// def возвращается и при отсутствии таблицы, и как добивка короткой.
func flatParams(t *table, def []int) []int {
	out := make([]int, len(def))
	copy(out, def)
	if t == nil {
		return out
	}
	for i := 0; i < len(out) && i < len(t.flags); i++ {
		out[i] = int(t.flags[i])
	}
	return out
}

// equipSlots приводит @equips к пяти целочисленным слотам: в исходных
// данных это либо таблица, либо массив.
func equipSlots(n *marshal.Node) []int {
	out := []int{0, 0, 0, 0, 0}
	if v := attr(n, "@equips"); v != nil {
		switch v.Kind {
		case marshal.UserDef:
			for i, f := range decodeTable(v.Raw).flags {
				if i < len(out) {
					out[i] = int(f)
				}
			}
		case marshal.Array:
			for i, e := range v.Elems {
				if i < len(out) {
					out[i] = int(asInt(e))
				}
			}
		}
	}
	return out
}

func asInt(n *marshal.Node) int64 {
	switch {
	case n == nil:
		return 0
	case n.Kind == marshal.Int:
		return n.IntVal
	case n.Kind == marshal.Float:
		return int64(n.FloatVal)
	}
	return 0
}
