// Package marshal читает дампы сериализации Ruby Marshal 4.8 (файлы
// rvdata2) и отдаёт их как помеченное дерево значений. Регистр классов
// не нужен: имя класса хранится прямо в узле, инстанцирование остаётся
// за потребителем.
package marshal

// Kind — тег варианта узла дерева значений.
type Kind int

const (
	Nil Kind = iota
	Bool
	Int
	Float
	Bytes
	Symbol
	Array
	Hash
	Object  // типизированный объект: класс + атрибуты @имя
	UserDef // пользовательский блоб: класс + сырые байты
)

// Node — один узел дерева. Заполнено только поле своего Kind.
// Ссылки на объекты в дампе разрешаются в общие указатели, поэтому
// дерево на деле может быть графом.
type Node struct {
	Kind Kind

	BoolVal  bool
	IntVal   int64
	FloatVal float64
	BytesVal []byte
	Sym      string

	Elems []*Node
	Pairs []Pair

	Class string
	Attrs map[string]*Node
	Raw   []byte
}

// Pair — пара хэша; ключи бывают и числами, и строками, и символами.
type Pair struct {
	Key, Value *Node
}

// IsNil сообщает, пустой ли узел (nil-указатель тоже считается пустым).
func (n *Node) IsNil() bool {
	return n == nil || n.Kind == Nil
}
