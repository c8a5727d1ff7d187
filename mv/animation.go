package mv

import "github.com/globalmac/rgsskit/marshal"

func projectAnimation(n *marshal.Node) obj {
	frameMax := getInt(n, "@frame_max", 1)
	src := getArr(n, "@frames")

	frames := make([]any, 0, frameMax)
	for i := 0; i < frameMax && i < len(src); i++ {
		frames = append(frames, projectFrame(src[i]))
	}

	timings := []obj{}
	for _, t := range getArr(n, "@timings") {
		flash := colorValues(attr(t, "@flash_color"))
		color := make([]int, len(flash))
		for i, v := range flash {
			color[i] = int(v)
		}
		tm := obj{
			"flashColor":    color,
			"flashDuration": getInt(t, "@flash_duration", 5),
			"flashScope":    getInt(t, "@flash_scope", 0),
			"frame":         getInt(t, "@frame", 0),
			"se":            nil,
		}
		// Звуковой эффект с пустым именем подавляется.
		if se := attr(t, "@se"); getStr(se, "@name", "") != "" {
			tm["se"] = getAudio(se)
		}
		timings = append(timings, tm)
	}

	return obj{
		"id":             getInt(n, "@id", 0),
		"animation1Hue":  getInt(n, "@animation1_hue", 0),
		"animation1Name": getStr(n, "@animation1_name", ""),
		"animation2Hue":  getInt(n, "@animation2_hue", 0),
		"animation2Name": getStr(n, "@animation2_name", ""),
		"frames":         frames,
		"name":           getStr(n, "@name", ""),
		"position":       getInt(n, "@position", 1),
		"timings":        timings,
	}
}

// projectFrame раскладывает cell_data кадра: ячейка i собирается из
// каждого cell_max-го элемента со смещением i, значения трактуются как
// знаковые 16-битные.
func projectFrame(f *marshal.Node) [][]int {
	cellMax := getInt(f, "@cell_max", 0)
	t := getTable(f, "@cell_data")
	if cellMax <= 0 || t == nil || len(t.flags) == 0 {
		return [][]int{}
	}

	cells := make([][]int, 0, cellMax)
	for i := 0; i < cellMax; i++ {
		var cell []int
		for j := i; j < len(t.flags); j += cellMax {
			cell = append(cell, int(int16(t.flags[j])))
		}
		cells = append(cells, cell)
	}
	return cells
}
