// Package rgssad читает и пишет игровые контейнеры RGSSAD/RGSS2A/RGSS3A
// (версии 1–3). Содержимое обфусцировано потоковым шифром на базе
// линейного конгруэнтного генератора, применяемым по 32-битным словам.
package rgssad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/edsrzf/mmap-go"
	art "github.com/plar/go-adaptive-radix-tree/v2"
	"github.com/sirupsen/logrus"
)

// FileMagic — сигнатура всех трёх версий контейнера.
const FileMagic = "RGSSAD\x00"

// maxNameLen — санитарный предел длины имени записи.
const maxNameLen = 4096

// Ошибки разбора архива.
var (
	ErrHeaderMismatch     = errors.New("input file header mismatch")
	ErrUnsupportedVersion = errors.New("not supported version (must be 1-3)")
	ErrTruncated          = errors.New("unexpected end of archive")
	ErrNameLength         = errors.New("entry name length out of range")
)

// EntryMeta описывает расположение зашифрованного тела записи.
type EntryMeta struct {
	Offset uint64 // первый байт тела внутри файла архива
	Magic  uint32 // стартовое состояние шифра для этой записи
	Size   uint32 // длина тела в байтах
}

// Entry — файл внутри архива. Имя хранится с разделителем '/',
// в сериализованном виде формат использует '\'.
type Entry struct {
	Name string
	Meta EntryMeta
}

// Archive — открытый на чтение контейнер. Файл отображается в память
// целиком; извлечение каждой записи независимо и не двигает чужое
// состояние шифра.
type Archive struct {
	Version int
	// Magic — состояние потока после разбора всех заголовков (v1/v2)
	// либо постоянный ключ индекса (v3).
	Magic uint32

	entries []Entry
	index   art.Tree
	mdata   mmap.MMap
}

// Open открывает архив и разбирает его индекс. Открытие транзакционно:
// при любой ошибке отображение освобождается и значение не возвращается.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}

	a, err := parse(m)
	if err != nil {
		_ = m.Unmap()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"version": a.Version,
		"entries": len(a.entries),
	}).Debug("архив открыт")
	return a, nil
}

func parse(m mmap.MMap) (*Archive, error) {
	if len(m) < 8 || string(m[:7]) != FileMagic {
		return nil, ErrHeaderMismatch
	}

	a := &Archive{Version: int(m[7]), mdata: m}
	var err error
	switch a.Version {
	case 1, 2:
		err = a.parseLegacy(m)
	case 3:
		err = a.parseTable(m)
	default:
		err = ErrUnsupportedVersion
	}
	if err != nil {
		return nil, err
	}

	a.index = art.New()
	for i, e := range a.entries {
		a.index.Insert(art.Key(e.Name), i)
	}
	return a, nil
}

// parseLegacy разбирает последовательный формат v1/v2: записи идут подряд,
// заголовок каждой зашифрован продолжением того же ключевого потока.
func (a *Archive) parseLegacy(m []byte) error {
	magic := uint32(initialMagic)
	pos := 8

	for {
		// Чистый конец архива — EOF ровно на границе записи.
		if pos == len(m) {
			break
		}
		if pos+4 > len(m) {
			return fmt.Errorf("%w: длина имени", ErrTruncated)
		}
		var key uint32
		key, magic = advanceMagic(magic)
		nameLen := binary.LittleEndian.Uint32(m[pos:]) ^ key
		pos += 4

		if nameLen > maxNameLen {
			return fmt.Errorf("%w: %d", ErrNameLength, nameLen)
		}
		if pos+int(nameLen) > len(m) {
			return fmt.Errorf("%w: имя записи", ErrTruncated)
		}
		name := make([]byte, nameLen)
		for i := range name {
			key, magic = advanceMagic(magic)
			name[i] = m[pos+i] ^ byte(key)
		}
		pos += int(nameLen)

		if pos+4 > len(m) {
			return fmt.Errorf("%w: размер записи", ErrTruncated)
		}
		key, magic = advanceMagic(magic)
		size := binary.LittleEndian.Uint32(m[pos:]) ^ key
		pos += 4

		if uint64(pos)+uint64(size) > uint64(len(m)) {
			return fmt.Errorf("%w: тело записи %q", ErrTruncated, decodeName(name))
		}
		// Состояние после разбора заголовка и есть ключ тела записи.
		a.entries = append(a.entries, Entry{
			Name: decodeName(name),
			Meta: EntryMeta{Offset: uint64(pos), Magic: magic, Size: size},
		})
		pos += int(size)
	}

	a.Magic = magic
	return nil
}

// parseTable разбирает индекс v3: таблица записей перед всеми телами,
// каждое поле XOR-ится одним и тем же ключом без продвижения.
// Нулевое смещение после XOR завершает таблицу.
func (a *Archive) parseTable(m []byte) error {
	if len(m) < 12 {
		return fmt.Errorf("%w: ключ заголовка", ErrTruncated)
	}
	key := headerKey(binary.LittleEndian.Uint32(m[8:]))
	pos := 12

	for {
		if pos+4 > len(m) {
			return fmt.Errorf("%w: терминатор индекса", ErrTruncated)
		}
		offset := binary.LittleEndian.Uint32(m[pos:]) ^ key
		pos += 4
		if offset == 0 {
			break
		}

		if pos+12 > len(m) {
			return fmt.Errorf("%w: запись индекса", ErrTruncated)
		}
		size := binary.LittleEndian.Uint32(m[pos:]) ^ key
		seed := binary.LittleEndian.Uint32(m[pos+4:]) ^ key
		nameLen := binary.LittleEndian.Uint32(m[pos+8:]) ^ key
		pos += 12

		if nameLen > maxNameLen {
			return fmt.Errorf("%w: %d", ErrNameLength, nameLen)
		}
		if pos+int(nameLen) > len(m) {
			return fmt.Errorf("%w: имя записи", ErrTruncated)
		}
		name := make([]byte, nameLen)
		for i := range name {
			name[i] = m[pos+i] ^ byte(key>>((i%4)*8))
		}
		pos += int(nameLen)

		if uint64(offset)+uint64(size) > uint64(len(m)) {
			return fmt.Errorf("%w: тело записи %q", ErrTruncated, decodeName(name))
		}
		a.entries = append(a.entries, Entry{
			Name: decodeName(name),
			Meta: EntryMeta{Offset: uint64(offset), Magic: seed, Size: size},
		})
	}

	a.Magic = key
	return nil
}

// Close освобождает отображение файла.
func (a *Archive) Close() error {
	return a.mdata.Unmap()
}

// Entries возвращает записи в порядке их следования в контейнере.
func (a *Archive) Entries() []Entry {
	return a.entries
}

// Find ищет запись по точному имени через радикс-индекс.
func (a *Archive) Find(name string) (Entry, bool) {
	v, ok := a.index.Search(art.Key(name))
	if !ok {
		return Entry{}, false
	}
	return a.entries[v.(int)], true
}

// Prefix перебирает записи, имена которых начинаются с prefix,
// в лексикографическом порядке. Возврат false из cb прерывает обход.
func (a *Archive) Prefix(prefix string, cb func(Entry) bool) {
	a.index.ForEachPrefix(art.Key(prefix), func(n art.Node) bool {
		i, ok := n.Value().(int)
		if !ok {
			return true
		}
		return cb(a.entries[i])
	})
}

// Extract расшифровывает тело записи в w. Каждая запись независима:
// своё смещение, своё стартовое состояние шифра.
func (a *Archive) Extract(e Entry, w io.Writer) error {
	end := e.Meta.Offset + uint64(e.Meta.Size)
	if end > uint64(len(a.mdata)) {
		return fmt.Errorf("%w: тело записи %q", ErrTruncated, e.Name)
	}
	var c coder
	return c.copy(w, bytes.NewReader(a.mdata[e.Meta.Offset:end]), e.Meta.Magic, e.Meta.Size)
}

// ExtractTo пишет все записи, чьи имена находит filter, в dir,
// создавая промежуточные каталоги. progress вызывается перед каждой
// записью. Ошибка одной записи прерывает обход, уже извлечённые
// файлы остаются.
func (a *Archive) ExtractTo(dir string, filter *regexp.Regexp, progress func(name string)) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var c coder
	for _, e := range a.entries {
		if !filter.MatchString(e.Name) {
			continue
		}
		if progress != nil {
			progress(e.Name)
		}
		path := filepath.Join(dir, filepath.FromSlash(e.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		end := e.Meta.Offset + uint64(e.Meta.Size)
		err = c.copy(f, bytes.NewReader(a.mdata[e.Meta.Offset:end]), e.Meta.Magic, e.Meta.Size)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("извлечение %q: %w", e.Name, err)
		}
	}
	return nil
}

// decodeName приводит имя к внутреннему виду: '/' вместо '\',
// некорректный UTF-8 заменяется, но не роняет разбор.
func decodeName(b []byte) string {
	s := strings.ReplaceAll(string(b), `\`, "/")
	return strings.ToValidUTF8(s, "�")
}
