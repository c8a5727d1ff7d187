package rgssad

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	art "github.com/plar/go-adaptive-radix-tree/v2"
	"github.com/sirupsen/logrus"
)

// ErrNotADirectory возвращается, когда источник упаковки — не каталог.
var ErrNotADirectory = errors.New("source is not a directory")

// packEntry — файл, отобранный для упаковки.
type packEntry struct {
	name string // путь относительно корня, разделитель '/'
	size uint32
}

// CollectDir обходит каталог и складывает обычные файлы в ART-дерево:
// ключ — относительный путь с '/', значение — размер файла. Дерево
// задаёт детерминированный порядок записей будущего архива.
func CollectDir(root string) (art.Tree, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotADirectory
	}

	tree := art.New()
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		tree.Insert(art.Key(filepath.ToSlash(rel)), fi.Size())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Pack сериализует дерево файлов в архив указанной версии. Запись
// делается по мере готовности: ошибка посередине оставляет на диске
// частичный архив, о чём сообщает возвращённая ошибка.
func Pack(path string, version int, root string, tree art.Tree, progress func(name string)) error {
	if version < 1 || version > 3 {
		return ErrUnsupportedVersion
	}

	entries := make([]packEntry, 0, tree.Size())
	var flatten error
	tree.ForEach(func(n art.Node) bool {
		size, _ := n.Value().(int64)
		if size < 0 || size > math.MaxUint32 {
			flatten = fmt.Errorf("файл %q не помещается в формат", n.Key())
			return false
		}
		entries = append(entries, packEntry{name: string(n.Key()), size: uint32(size)})
		return true
	}, art.TraverseLeaf)
	if flatten != nil {
		return flatten
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)

	if _, err := bw.WriteString(FileMagic); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(version)); err != nil {
		return err
	}

	switch version {
	case 1, 2:
		err = writeLegacy(bw, root, entries, progress)
	case 3:
		err = writeTable(bw, root, entries, progress)
	}
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"version": version,
		"entries": len(entries),
	}).Debug("архив записан")
	return bw.Flush()
}

// writeLegacy пишет последовательный формат v1/v2: один ключевой поток
// на весь архив, заголовок и тело каждой записи продолжают его.
func writeLegacy(bw *bufio.Writer, root string, entries []packEntry, progress func(string)) error {
	magic := uint32(initialMagic)
	var c coder
	var key uint32

	for _, e := range entries {
		if progress != nil {
			progress(e.name)
		}
		name := []byte(strings.ReplaceAll(e.name, "/", `\`))

		key, magic = advanceMagic(magic)
		wu32(bw, uint32(len(name))^key)
		for i := range name {
			key, magic = advanceMagic(magic)
			name[i] ^= byte(key)
		}
		if _, err := bw.Write(name); err != nil {
			return err
		}
		key, magic = advanceMagic(magic)
		wu32(bw, e.size^key)

		// Тело шифруется состоянием, оставшимся после заголовка.
		if err := streamFile(&c, bw, root, e, magic); err != nil {
			return err
		}
	}
	return nil
}

// writeTable пишет формат v3 в две фазы: сначала полная таблица индекса
// с заранее рассчитанными смещениями, затем тела записей. Сырое слово
// заголовка пишем нулевым, на чтении допустимо любое.
func writeTable(bw *bufio.Writer, root string, entries []packEntry, progress func(string)) error {
	off := uint64(8 + 4)
	for _, e := range entries {
		off += 16 + uint64(len(e.name))
	}
	off += 4 // терминатор индекса

	offsets := make([]uint64, len(entries))
	for i, e := range entries {
		offsets[i] = off
		off += uint64(e.size)
	}
	if off > math.MaxUint32 {
		return fmt.Errorf("архив не помещается в формат: %d байт", off)
	}

	wu32(bw, 0)
	key := headerKey(0)

	for i, e := range entries {
		name := []byte(strings.ReplaceAll(e.name, "/", `\`))
		wu32(bw, uint32(offsets[i])^key)
		wu32(bw, e.size^key)
		wu32(bw, uint32(initialMagic)^key)
		wu32(bw, uint32(len(name))^key)
		for j := range name {
			name[j] ^= byte(key >> ((j % 4) * 8))
		}
		if _, err := bw.Write(name); err != nil {
			return err
		}
	}
	wu32(bw, 0^key)

	var c coder
	for _, e := range entries {
		if progress != nil {
			progress(e.name)
		}
		if err := streamFile(&c, bw, root, e, initialMagic); err != nil {
			return err
		}
	}
	return nil
}

func streamFile(c *coder, bw *bufio.Writer, root string, e packEntry, magic uint32) error {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(e.name)))
	if err != nil {
		return err
	}
	err = c.copy(bw, f, magic, e.size)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("упаковка %q: %w", e.name, err)
	}
	return nil
}

func wu32(bw *bufio.Writer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, _ = bw.Write(b[:])
}
