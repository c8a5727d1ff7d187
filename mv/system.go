package mv

import "github.com/globalmac/rgsskit/marshal"

// attackMotions — фиксированная таблица целевой схемы: тип замаха на
// каждый из двенадцати типов оружия плюс безоружный.
var attackMotions = func() []obj {
	types := []int{0, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 0, 0}
	out := make([]obj, len(types))
	for i, t := range types {
		out[i] = obj{"type": t, "weaponImageId": i}
	}
	return out
}()

func projectSystem(n *marshal.Node) obj {
	terms := attr(n, "@terms")

	basic := []string{"", "Lv", "HP", "MP", "TP"}
	basic = append(basic, strArr(terms, "@basic")...)

	sounds := []obj{}
	for _, s := range getArr(n, "@sounds") {
		sounds = append(sounds, getAudio(s))
	}

	battlers := []obj{}
	for _, b := range getArr(n, "@test_battlers") {
		battlers = append(battlers, obj{
			"actorId": getInt(b, "@actor_id", 1),
			"equips":  equipSlots(b),
			"level":   getInt(b, "@level", 1),
		})
	}

	tone := colorValues(attr(n, "@window_tone"))
	windowTone := make([]int, len(tone))
	for i, v := range tone {
		windowTone[i] = int(v)
	}

	return obj{
		"airship":          vehicle(attr(n, "@airship")),
		"armorTypes":       strArr(n, "@armor_types"),
		"attackMotions":    attackMotions,
		"battleBgm":        getAudio(attr(n, "@battle_bgm")),
		"battleback1Name":  getStr(n, "@battleback1_name", ""),
		"battleback2Name":  getStr(n, "@battleback2_name", ""),
		"battlerHue":       getInt(n, "@battler_hue", 0),
		"battlerName":      getStr(n, "@battler_name", ""),
		"boat":             vehicle(attr(n, "@boat")),
		"currencyUnit":     getStr(n, "@currency_unit", ""),
		"defeatMe":         obj{"name": "Defeat1", "pan": 0, "pitch": 100, "volume": 90},
		"editMapId":        getInt(n, "@edit_map_id", 1),
		"elements":         strArr(n, "@elements"),
		"equipTypes":       strArr(terms, "@etypes"),
		"gameTitle":        getStr(n, "@game_title", ""),
		"gameoverMe":       getAudio(attr(n, "@gameover_me")),
		"locale":           "en_US",
		"magicSkills":      []int{1},
		"menuCommands":     []bool{true, true, true, true, true, true},
		"optDisplayTp":     getBool(n, "@opt_display_tp", true),
		"optDrawTitle":     getBool(n, "@opt_draw_title", true),
		"optExtraExp":      getBool(n, "@opt_extra_exp", false),
		"optFloorDeath":    getBool(n, "@opt_floor_death", false),
		"optFollowers":     getBool(n, "@opt_followers", true),
		"optSideView":      false,
		"optSlipDeath":     getBool(n, "@opt_slip_death", false),
		"optTransparent":   getBool(n, "@opt_transparent", false),
		"partyMembers":     intArr(n, "@party_members"),
		"ship":             vehicle(attr(n, "@ship")),
		"skillTypes":       strArr(n, "@skill_types"),
		"sounds":           sounds,
		"startMapId":       getInt(n, "@start_map_id", 1),
		"startX":           getInt(n, "@start_x", 0),
		"startY":           getInt(n, "@start_y", 0),
		"switches":         strArr(n, "@switches"),
		"terms": obj{
			"basic":    basic,
			"commands": strArr(terms, "@commands"),
			"params":   strArr(terms, "@params"),
			"messages": obj{},
		},
		"testBattlers": battlers,
		"testTroopId":  getInt(n, "@test_troop_id", 1),
		"title1Name":   getStr(n, "@title1_name", ""),
		"title2Name":   getStr(n, "@title2_name", ""),
		"titleBgm":     getAudio(attr(n, "@title_bgm")),
		"variables":    strArr(n, "@variables"),
		"versionId":    getInt(n, "@version_id", 0),
		"victoryMe":    getAudio(attr(n, "@battle_end_me")),
		"weaponTypes":  strArr(n, "@weapon_types"),
		"windowTone":   windowTone,
	}
}

func vehicle(v *marshal.Node) obj {
	return obj{
		"bgm":            getAudio(attr(v, "@bgm")),
		"characterIndex": getInt(v, "@character_index", 0),
		"characterName":  getStr(v, "@character_name", ""),
		"startMapId":     getInt(v, "@start_map_id", 0),
		"startX":         getInt(v, "@start_x", 0),
		"startY":         getInt(v, "@start_y", 0),
	}
}

// strArr проецирует массив строк; nil-элементы дают пустые строки.
func strArr(n *marshal.Node, name string) []string {
	out := []string{}
	for _, e := range getArr(n, name) {
		out = append(out, toStr(e))
	}
	return out
}

func intArr(n *marshal.Node, name string) []int {
	out := []int{}
	for _, e := range getArr(n, name) {
		out = append(out, int(asInt(e)))
	}
	return out
}
