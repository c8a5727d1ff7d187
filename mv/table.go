package mv

import (
	"encoding/binary"
	"math"

	"github.com/globalmac/rgsskit/marshal"
)

// tableHeader — заголовок блоба Table: размерность и три измерения,
// затем общее число элементов, затем сами значения u16 LE.
const tableHeader = 0x14

// table — распакованный пользовательский блоб Table: плоский вектор
// u16-значений. Ранг (1-D/2-D/3-D) подразумевается потребителем.
type table struct {
	flags []uint16
}

// getTable достаёт и декодирует атрибут-таблицу; отсутствие — nil.
func getTable(n *marshal.Node, name string) *table {
	v := attr(n, name)
	if v == nil || v.Kind != marshal.UserDef {
		return nil
	}
	return decodeTable(v.Raw)
}

func decodeTable(raw []byte) *table {
	if len(raw) < tableHeader {
		return &table{}
	}
	flags := make([]uint16, (len(raw)-tableHeader)/2)
	for i := range flags {
		flags[i] = binary.LittleEndian.Uint16(raw[tableHeader+2*i:])
	}
	return &table{flags: flags}
}

// ints отдаёт значения как целые без знаковой интерпретации.
func (t *table) ints() []int {
	out := make([]int, len(t.flags))
	for i, f := range t.flags {
		out[i] = int(f)
	}
	return out
}

// colorValues декодирует блоб Color/Tone: четыре little-endian double.
func colorValues(n *marshal.Node) []float64 {
	if n == nil || n.Kind != marshal.UserDef || len(n.Raw) < 32 {
		return []float64{0, 0, 0, 0}
	}
	out := make([]float64, 4)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(n.Raw[8*i:]))
	}
	return out
}
