package mv

import (
	"sort"

	"github.com/globalmac/rgsskit/marshal"
)

// Проекторы сущностей: чистые функции из типизированного объекта
// исходного дерева в словарь целевой схемы. Отсутствующий атрибут даёт
// документированное значение по умолчанию, а не пропуск ключа.

func projectActor(n *marshal.Node) obj {
	return obj{
		"id":             getInt(n, "@id", 0),
		"battlerName":    getStr(n, "@battler_name", ""),
		"characterIndex": getInt(n, "@character_hue", 0),
		"characterName":  getStr(n, "@character_name", ""),
		"classId":        getInt(n, "@class_id", 0),
		"equips":         equipSlots(n),
		"faceIndex":      getInt(n, "@face_index", 0),
		"faceName":       getStr(n, "@battler_name", ""),
		"traits":         getTraits(getArr(n, "@features")),
		"initialLevel":   getInt(n, "@initial_level", 1),
		"maxLevel":       getInt(n, "@final_level", 99),
		"name":           getStr(n, "@name", ""),
		"nickname":       getStr(n, "@nickname", ""),
		"note":           getStr(n, "@note", ""),
		"profile":        getStr(n, "@description", ""),
	}
}

func projectClass(n *marshal.Node) obj {
	exp := []int{30, 20, 30, 30}
	if v := getArr(n, "@exp_params"); len(v) > 0 {
		exp = exp[:0]
		for _, e := range v {
			exp = append(exp, int(asInt(e)))
		}
	}
	return obj{
		"id":        getInt(n, "@id", 0),
		"expParams": exp,
		"traits":    getTraits(getArr(n, "@features")),
		"learnings": getLearnings(getArr(n, "@learnings")),
		"name":      getStr(n, "@name", ""),
		"note":      getStr(n, "@note", ""),
		"params":    getParams(getTable(n, "@params")),
	}
}

func projectSkill(n *marshal.Node) obj {
	return obj{
		"id":               getInt(n, "@id", 0),
		"animationId":      getInt(n, "@animation_id", 0),
		"damage":           getDamage(attr(n, "@damage")),
		"description":      getStr(n, "@description", ""),
		"effects":          getEffects(getArr(n, "@effects")),
		"hitType":          getInt(n, "@hit_type", 0),
		"iconIndex":        getInt(n, "@icon_index", 0),
		"message1":         getStr(n, "@message1", ""),
		"message2":         getStr(n, "@message2", ""),
		"mpCost":           getInt(n, "@mp_cost", 0),
		"name":             getStr(n, "@name", ""),
		"note":             getStr(n, "@note", ""),
		"occasion":         getInt(n, "@occasion", 0),
		"repeats":          getInt(n, "@repeats", 1),
		"requiredWtypeId1": getInt(n, "@required_wtype_id1", 0),
		"requiredWtypeId2": getInt(n, "@required_wtype_id2", 0),
		"scope":            getInt(n, "@scope", 0),
		"speed":            getInt(n, "@speed", 0),
		"stypeId":          getInt(n, "@stype_id", 0),
		"successRate":      getInt(n, "@success_rate", 100),
		"tpCost":           getInt(n, "@tp_cost", 0),
		"tpGain":           getInt(n, "@tp_gain", 0),
	}
}

func projectItem(n *marshal.Node) obj {
	return obj{
		"id":          getInt(n, "@id", 0),
		"animationId": getInt(n, "@animation_id", 0),
		"consumable":  getBool(n, "@consumable", true),
		"damage":      getDamage(attr(n, "@damage")),
		"description": getStr(n, "@description", ""),
		"effects":     getEffects(getArr(n, "@effects")),
		"hitType":     getInt(n, "@hit_type", 0),
		"iconIndex":   getInt(n, "@icon_index", 0),
		"itypeId":     getInt(n, "@itype_id", 1),
		"name":        getStr(n, "@name", ""),
		"note":        getStr(n, "@note", ""),
		"occasion":    getInt(n, "@occasion", 0),
		"price":       getInt(n, "@price", 0),
		"repeats":     getInt(n, "@repeats", 1),
		"scope":       getInt(n, "@scope", 0),
		"speed":       getInt(n, "@speed", 0),
		"successRate": getInt(n, "@success_rate", 100),
		"tpGain":      getInt(n, "@tp_gain", 0),
	}
}

func projectWeapon(n *marshal.Node) obj {
	return obj{
		"id":          getInt(n, "@id", 0),
		"animationId": getInt(n, "@animation_id", 0),
		"description": getStr(n, "@description", ""),
		// Слот экипировки оружия в целевой схеме фиксирован.
		"etypeId":   1,
		"traits":    getTraits(getArr(n, "@features")),
		"iconIndex": getInt(n, "@icon_index", 0),
		"name":      getStr(n, "@name", ""),
		"note":      getStr(n, "@note", ""),
		"params":    flatParams(getTable(n, "@params"), []int{0, 0, 10, 0, 0, 0, 0, 0}),
		"price":     getInt(n, "@price", 500),
		"wtypeId":   getInt(n, "@wtype_id", 0),
	}
}

func projectArmor(n *marshal.Node) obj {
	return obj{
		"id":          getInt(n, "@id", 0),
		"atypeId":     getInt(n, "@atype_id", 0),
		"description": getStr(n, "@description", ""),
		"etypeId":     getInt(n, "@etype_id", 2),
		"traits":      getTraits(getArr(n, "@features")),
		"iconIndex":   getInt(n, "@icon_index", 0),
		"name":        getStr(n, "@name", ""),
		"note":        getStr(n, "@note", ""),
		"params":      flatParams(getTable(n, "@params"), []int{0, 0, 0, 10, 0, 0, 0, 0}),
		"price":       getInt(n, "@price", 500),
	}
}

func projectEnemy(n *marshal.Node) obj {
	actions := []obj{}
	for _, a := range getArr(n, "@actions") {
		actions = append(actions, obj{
			"conditionParam1": num(attr(a, "@condition_param1")),
			"conditionParam2": num(attr(a, "@condition_param2")),
			"conditionType":   getInt(a, "@condition_type", 0),
			"rating":          getInt(a, "@rating", 5),
			"skillId":         getInt(a, "@skill_id", 1),
		})
	}
	drops := []obj{}
	for _, d := range getArr(n, "@drop_items") {
		drops = append(drops, obj{
			"dataId":      getInt(d, "@data_id", 1),
			"denominator": getInt(d, "@denominator", 1),
			"kind":        getInt(d, "@kind", 0),
		})
	}
	return obj{
		"id":          getInt(n, "@id", 0),
		"actions":     actions,
		"battlerHue":  getInt(n, "@battler_hue", 0),
		"battlerName": getStr(n, "@battler_name", ""),
		"dropItems":   drops,
		"exp":         getInt(n, "@exp", 0),
		"traits":      getTraits(getArr(n, "@features")),
		"gold":        getInt(n, "@gold", 0),
		"name":        getStr(n, "@name", ""),
		"note":        getStr(n, "@note", ""),
		"params":      flatParams(getTable(n, "@params"), []int{100, 0, 10, 10, 10, 10, 10, 10}),
	}
}

func projectTroop(n *marshal.Node) obj {
	members := []obj{}
	for _, m := range getArr(n, "@members") {
		members = append(members, obj{
			"enemyId": getInt(m, "@enemy_id", 1),
			"x":       getInt(m, "@x", 0),
			"y":       getInt(m, "@y", 0),
			"hidden":  getBool(m, "@hidden", false),
		})
	}
	pages := []obj{}
	for _, p := range getArr(n, "@pages") {
		cond := attr(p, "@condition")
		pages = append(pages, obj{
			"conditions": obj{
				"actorHp":    getInt(cond, "@actor_hp", 50),
				"actorId":    getInt(cond, "@actor_id", 1),
				"actorValid": getBool(cond, "@actor_valid", false),
				"enemyHp":    getInt(cond, "@enemy_hp", 50),
				"enemyIndex": getInt(cond, "@enemy_index", 0),
				"enemyValid": getBool(cond, "@enemy_valid", false),
				"switchId":   getInt(cond, "@switch_id", 1),
				"switchValid": getBool(cond, "@switch_valid", false),
				"turnA":      getInt(cond, "@turn_a", 0),
				"turnB":      getInt(cond, "@turn_b", 0),
				"turnEnding": getBool(cond, "@turn_ending", false),
				"turnValid":  getBool(cond, "@turn_valid", false),
			},
			"list": rewriteList(getArr(p, "@list")),
			"span": getInt(p, "@span", 0),
		})
	}
	return obj{
		"id":      getInt(n, "@id", 0),
		"members": members,
		"name":    getStr(n, "@name", ""),
		"pages":   pages,
	}
}

func projectState(n *marshal.Node) obj {
	return obj{
		"id":                getInt(n, "@id", 0),
		"autoRemovalTiming": getInt(n, "@auto_removal_timing", 0),
		"chanceByDamage":    getInt(n, "@chance_by_damage", 100),
		"iconIndex":         getInt(n, "@icon_index", 0),
		"maxTurns":          getInt(n, "@max_turns", 1),
		"message1":          getStr(n, "@message1", ""),
		"message2":          getStr(n, "@message2", ""),
		"message3":          getStr(n, "@message3", ""),
		"message4":          getStr(n, "@message4", ""),
		"minTurns":          getInt(n, "@min_turns", 1),
		"motion":            0,
		"overlay":           0,
		"priority":          getInt(n, "@priority", 50),
		"removeAtBattleEnd": getBool(n, "@remove_at_battle_end", false),
		"removeByDamage":    getBool(n, "@remove_by_damage", false),
		"removeByRestriction": getBool(n, "@remove_by_restriction", false),
		"removeByWalking":   getBool(n, "@remove_by_walking", false),
		"restriction":       getInt(n, "@restriction", 0),
		"stepsToRemove":     getInt(n, "@steps_to_remove", 100),
		"traits":            getTraits(getArr(n, "@features")),
		"name":              getStr(n, "@name", ""),
		"note":              getStr(n, "@note", ""),
	}
}

func projectTileset(n *marshal.Node) obj {
	names := []string{}
	for _, t := range getArr(n, "@tileset_names") {
		names = append(names, toStr(t))
	}
	flags := []int{}
	if t := getTable(n, "@flags"); t != nil {
		flags = t.ints()
	}
	return obj{
		"id":           getInt(n, "@id", 0),
		"flags":        flags,
		"mode":         getInt(n, "@mode", 1),
		"name":         getStr(n, "@name", ""),
		"note":         getStr(n, "@note", ""),
		"tilesetNames": names,
	}
}

func projectCommonEvent(n *marshal.Node) obj {
	return obj{
		"id":       getInt(n, "@id", 0),
		"list":     rewriteList(getArr(n, "@list")),
		"name":     getStr(n, "@name", ""),
		"switchId": getInt(n, "@switch_id", 1),
		"trigger":  getInt(n, "@trigger", 0),
	}
}

// projectMapInfos строит из отображения id→инфо плотный 1-индексный
// массив: дыры заполняются null, id инъецируется в каждый объект.
func projectMapInfos(root *marshal.Node) []any {
	type info struct {
		id   int
		node *marshal.Node
	}
	var infos []info
	maxID := 0
	if root != nil && root.Kind == marshal.Hash {
		for _, p := range root.Pairs {
			id := int(asInt(p.Key))
			if id <= 0 {
				continue
			}
			infos = append(infos, info{id: id, node: p.Value})
			if id > maxID {
				maxID = id
			}
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].id < infos[j].id })

	out := make([]any, maxID+1)
	for _, in := range infos {
		out[in.id] = obj{
			"id":       in.id,
			"expanded": getBool(in.node, "@expanded", false),
			"name":     getStr(in.node, "@name", ""),
			"order":    getInt(in.node, "@order", 0),
			"parentId": getInt(in.node, "@parent_id", 0),
			"scrollX":  getInt(in.node, "@scroll_x", 0),
			"scrollY":  getInt(in.node, "@scroll_y", 0),
		}
	}
	return out
}
