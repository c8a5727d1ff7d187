// Package mv проецирует дерево значений игровых данных VX Ace в семейство
// JSON-документов схемы MV/MZ: переименование атрибутов, перекодировка
// опкодов событийных команд и перевод встроенных скриптовых фрагментов.
package mv

import (
	"strings"

	"github.com/globalmac/rgsskit/marshal"
)

// obj — проецируемый словарь целевого документа. Порядок ключей в
// выходном JSON не нормируется.
type obj = map[string]any

// attr достаёт атрибут типизированного объекта; для всего остального nil.
func attr(n *marshal.Node, name string) *marshal.Node {
	if n == nil || n.Kind != marshal.Object {
		return nil
	}
	return n.Attrs[name]
}

// getInt возвращает числовой атрибут либо значение схемы по умолчанию.
func getInt(n *marshal.Node, name string, def int) int {
	v := attr(n, name)
	switch {
	case v == nil:
		return def
	case v.Kind == marshal.Int:
		return int(v.IntVal)
	case v.Kind == marshal.Float:
		return int(v.FloatVal)
	}
	return def
}

func getBool(n *marshal.Node, name string, def bool) bool {
	v := attr(n, name)
	if v == nil || v.Kind != marshal.Bool {
		return def
	}
	return v.BoolVal
}

func getStr(n *marshal.Node, name, def string) string {
	v := attr(n, name)
	if v == nil {
		return def
	}
	return toStr(v)
}

// getArr возвращает элементы атрибута-массива; отсутствие — пустой срез.
func getArr(n *marshal.Node, name string) []*marshal.Node {
	v := attr(n, name)
	if v == nil || v.Kind != marshal.Array {
		return nil
	}
	return v.Elems
}

// toStr приводит узел к строке так, как это делает проектор: байтовые
// строки декодируются с заменой некорректного UTF-8, символы
// схлопываются в имя, nil — в пустую строку.
func toStr(n *marshal.Node) string {
	switch {
	case n.IsNil():
		return ""
	case n.Kind == marshal.Bytes:
		return strings.ToValidUTF8(string(n.BytesVal), "�")
	case n.Kind == marshal.Symbol:
		return n.Sym
	}
	return ""
}

// num возвращает число узла, сохраняя целочисленность.
func num(n *marshal.Node) any {
	switch {
	case n == nil:
		return 0
	case n.Kind == marshal.Int:
		return int(n.IntVal)
	case n.Kind == marshal.Float:
		return n.FloatVal
	}
	return 0
}
