package mv

import "github.com/globalmac/rgsskit/marshal"

func projectMap(n *marshal.Node) obj {
	w := getInt(n, "@width", 0)
	h := getInt(n, "@height", 0)

	encounters := []obj{}
	for _, e := range getArr(n, "@encounter_list") {
		encounters = append(encounters, obj{
			"regionSet": intArr(e, "@region_set"),
			"troopId":   getInt(e, "@troop_id", 1),
			"weight":    getInt(e, "@weight", 10),
		})
	}

	data, events := projectMapBody(n, w, h)

	return obj{
		"autoplayBgm":      getBool(n, "@autoplay_bgm", false),
		"autoplayBgs":      getBool(n, "@autoplay_bgs", false),
		"battleback1Name":  getStr(n, "@battleback1_name", ""),
		"battleback2Name":  getStr(n, "@battleback2_name", ""),
		"bgm":              getAudio(attr(n, "@bgm")),
		"bgs":              getAudio(attr(n, "@bgs")),
		"disableDashing":   getBool(n, "@disable_dashing", false),
		"displayName":      getStr(n, "@display_name", ""),
		"encounterList":    encounters,
		"encounterStep":    getInt(n, "@encounter_step", 30),
		"height":           h,
		"note":             getStr(n, "@note", ""),
		"parallaxLoopX":    getBool(n, "@parallax_loop_x", false),
		"parallaxLoopY":    getBool(n, "@parallax_loop_y", false),
		"parallaxName":     getStr(n, "@parallax_name", ""),
		"parallaxShow":     getBool(n, "@parallax_show", false),
		"parallaxSx":       getInt(n, "@parallax_sx", 0),
		"parallaxSy":       getInt(n, "@parallax_sy", 0),
		"scrollType":       getInt(n, "@scroll_type", 0),
		"specifyBattleback": getBool(n, "@specify_battleback", false),
		"tilesetId":        getInt(n, "@tileset_id", 1),
		"width":            w,
		"data":             data,
		"events":           events,
	}
}

// projectMapBody синтезирует шесть слоёв целевой укладки и делит события
// на тайловые (уходят в верхние слои) и обычные (уходят в events).
func projectMapBody(n *marshal.Node, w, h int) ([]int, []any) {
	t := getTable(n, "@data")
	cells := w * h

	slab := func(z int) []int {
		out := make([]int, cells)
		if t == nil {
			return out
		}
		for i := 0; i < cells; i++ {
			if z*cells+i < len(t.flags) {
				out[i] = int(t.flags[z*cells+i])
			}
		}
		return out
	}

	upperTile := make([]int, cells)
	upperGraphic := make([]int, cells)

	maxID := 0
	type placed struct {
		id int
		ev *marshal.Node
	}
	var regular []placed

	if evs := attr(n, "@events"); evs != nil && evs.Kind == marshal.Hash {
		for _, p := range evs.Pairs {
			id := int(asInt(p.Key))
			ev := p.Value
			if id <= 0 || ev.IsNil() {
				continue
			}
			if tid, ok := tileEventID(ev); ok {
				x := getInt(ev, "@x", 0)
				y := getInt(ev, "@y", 0)
				if x >= 0 && x < w && y >= 0 && y < h {
					// Первое тайловое событие клетки занимает слой
					// тайлов, наложившееся — слой графики.
					if upperTile[y*w+x] == 0 {
						upperTile[y*w+x] = tid
					} else {
						upperGraphic[y*w+x] = tid
					}
				}
				continue
			}
			regular = append(regular, placed{id: id, ev: ev})
			if id > maxID {
				maxID = id
			}
		}
	}

	l3 := slab(3)
	region := make([]int, cells)
	for i, v := range l3 {
		region[i] = v >> 8
	}

	data := make([]int, 0, cells*6)
	data = append(data, slab(0)...)
	data = append(data, slab(1)...)
	data = append(data, upperTile...)
	data = append(data, upperGraphic...)
	data = append(data, l3...)
	data = append(data, region...)

	events := make([]any, maxID+1)
	for _, p := range regular {
		events[p.id] = projectEvent(p.id, p.ev)
	}
	return data, events
}

// tileEventID распознаёт тайловое событие: одна страница, ненулевой
// тайл графики и ни одного включённого флага условий.
func tileEventID(ev *marshal.Node) (int, bool) {
	pages := getArr(ev, "@pages")
	if len(pages) != 1 {
		return 0, false
	}
	p := pages[0]
	tid := getInt(attr(p, "@graphic"), "@tile_id", 0)
	if tid == 0 {
		return 0, false
	}
	cond := attr(p, "@condition")
	for _, flag := range []string{
		"@switch1_valid", "@switch2_valid", "@variable_valid",
		"@self_switch_valid", "@item_valid", "@actor_valid",
	} {
		if getBool(cond, flag, false) {
			return 0, false
		}
	}
	return tid, true
}

func projectEvent(id int, ev *marshal.Node) obj {
	pages := []obj{}
	for _, p := range getArr(ev, "@pages") {
		pages = append(pages, projectPage(p))
	}
	if len(pages) == 0 {
		pages = append(pages, projectPage(nil))
	}
	return obj{
		"id":    id,
		"name":  getStr(ev, "@name", ""),
		"note":  "",
		"pages": pages,
		"x":     getInt(ev, "@x", 0),
		"y":     getInt(ev, "@y", 0),
	}
}

// projectPage проецирует страницу события; отсутствующие блоки условий
// и графики заполняются значениями схемы по умолчанию.
func projectPage(p *marshal.Node) obj {
	cond := attr(p, "@condition")
	g := attr(p, "@graphic")
	return obj{
		"conditions": obj{
			"actorId":         getInt(cond, "@actor_id", 1),
			"actorValid":      getBool(cond, "@actor_valid", false),
			"itemId":          getInt(cond, "@item_id", 1),
			"itemValid":       getBool(cond, "@item_valid", false),
			"selfSwitchCh":    getStr(cond, "@self_switch_ch", "A"),
			"selfSwitchValid": getBool(cond, "@self_switch_valid", false),
			"switch1Id":       getInt(cond, "@switch1_id", 1),
			"switch1Valid":    getBool(cond, "@switch1_valid", false),
			"switch2Id":       getInt(cond, "@switch2_id", 1),
			"switch2Valid":    getBool(cond, "@switch2_valid", false),
			"variableId":      getInt(cond, "@variable_id", 1),
			"variableValid":   getBool(cond, "@variable_valid", false),
			"variableValue":   getInt(cond, "@variable_value", 0),
		},
		"directionFix": getBool(p, "@direction_fix", false),
		"image": obj{
			"characterIndex": getInt(g, "@character_index", 0),
			"characterName":  getStr(g, "@character_name", ""),
			"direction":      getInt(g, "@direction", 2),
			"pattern":        getInt(g, "@pattern", 1),
			"tileId":         getInt(g, "@tile_id", 0),
		},
		"list":          rewriteList(getArr(p, "@list")),
		"moveFrequency": getInt(p, "@move_frequency", 3),
		"moveRoute":     projectMoveRoute(attr(p, "@move_route")),
		"moveSpeed":     getInt(p, "@move_speed", 3),
		"moveType":      getInt(p, "@move_type", 0),
		"priorityType":  getInt(p, "@priority_type", 0),
		"stepAnime":     getBool(p, "@step_anime", false),
		"through":       getBool(p, "@through", false),
		"trigger":       getInt(p, "@trigger", 0),
		"walkAnime":     getBool(p, "@walk_anime", true),
	}
}
