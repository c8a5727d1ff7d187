package rgssad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// writeTree раскладывает файлы по временному каталогу.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func packDir(t *testing.T, src, out string, version int) {
	t.Helper()
	tree, err := CollectDir(src)
	if err != nil {
		t.Fatalf("CollectDir: %v", err)
	}
	if err := Pack(out, version, src, tree, nil); err != nil {
		t.Fatalf("Pack v%d: %v", version, err)
	}
}

func TestRoundTrip(t *testing.T) {
	files := map[string]string{
		"Data/Actors.rvdata2": "actors-payload",
		"Data/System.rvdata2": "sys",
		"Graphics/pic.png":    string([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8}),
		"readme.txt":          "привет, мир",
	}

	for _, version := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("v%d", version), func(t *testing.T) {
			tmpDir := t.TempDir()
			src := filepath.Join(tmpDir, "src")
			writeTree(t, src, files)

			arc := filepath.Join(tmpDir, "game.rgssad")
			packDir(t, src, arc, version)

			a, err := Open(arc)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer a.Close()

			if a.Version != version {
				t.Errorf("версия %d, ожидалась %d", a.Version, version)
			}
			if len(a.Entries()) != len(files) {
				t.Fatalf("записей %d, ожидалось %d", len(a.Entries()), len(files))
			}

			for _, e := range a.Entries() {
				want, ok := files[e.Name]
				if !ok {
					t.Fatalf("лишняя запись %q", e.Name)
				}
				var buf bytes.Buffer
				if err := a.Extract(e, &buf); err != nil {
					t.Fatalf("Extract %q: %v", e.Name, err)
				}
				if buf.String() != want {
					t.Errorf("содержимое %q не совпало: %q", e.Name, buf.String())
				}
			}

			// Извлечение на диск и побайтовое сравнение дерева.
			outDir := filepath.Join(tmpDir, "out")
			if err := a.ExtractTo(outDir, regexp.MustCompile(`.*`), nil); err != nil {
				t.Fatalf("ExtractTo: %v", err)
			}
			for name, want := range files {
				got, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(name)))
				if err != nil {
					t.Fatalf("чтение извлечённого %q: %v", name, err)
				}
				if string(got) != want {
					t.Errorf("файл %q не совпал после распаковки", name)
				}
			}
		})
	}
}

func TestLegacyLayout(t *testing.T) {
	// Один файл "a/b.txt" с содержимым "hello": 8 байт заголовка,
	// слово длины имени, 7 байт имени ("a\b.txt"), слово размера,
	// 5 байт тела. Первое слово на диске — 7 ^ 0xDEADCAFE.
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src")
	writeTree(t, src, map[string]string{"a/b.txt": "hello"})

	arc := filepath.Join(tmpDir, "one.rgssad")
	packDir(t, src, arc, 1)

	data, err := os.ReadFile(arc)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 8+4+7+4+5 {
		t.Fatalf("размер архива %d, ожидалось 28", len(data))
	}
	if string(data[:7]) != FileMagic || data[7] != 1 {
		t.Error("неверный заголовок")
	}
	if got := binary.LittleEndian.Uint32(data[8:12]); got != 7^uint32(0xDEADCAFE) {
		t.Errorf("зашифрованная длина имени %#x, ожидалось %#x", got, 7^uint32(0xDEADCAFE))
	}

	a, err := Open(arc)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	e := a.Entries()[0]
	if e.Name != "a/b.txt" {
		t.Errorf("имя %q, ожидалось a/b.txt", e.Name)
	}
	if e.Meta.Offset != 23 || e.Meta.Size != 5 {
		t.Errorf("метаданные записи: offset=%d size=%d", e.Meta.Offset, e.Meta.Size)
	}
}

func TestEmptyTableArchive(t *testing.T) {
	// Пустой v3: заголовок, сырое слово ключа и зашифрованный
	// терминатор — 16 байт, ноль записей при чтении.
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "empty")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}

	arc := filepath.Join(tmpDir, "empty.rgss3a")
	packDir(t, src, arc, 3)

	data, err := os.ReadFile(arc)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 16 {
		t.Fatalf("размер пустого архива %d, ожидалось 16", len(data))
	}

	a, err := Open(arc)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if len(a.Entries()) != 0 {
		t.Errorf("ожидался пустой индекс, получено %d записей", len(a.Entries()))
	}
}

func TestTableIndexCount(t *testing.T) {
	// Сколько записей записано — столько и прочитано, не больше.
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src")
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("dir%d/file%d.bin", i%3, i)] = fmt.Sprintf("payload-%d", i)
	}
	writeTree(t, src, files)

	arc := filepath.Join(tmpDir, "many.rgss3a")
	packDir(t, src, arc, 3)

	a, err := Open(arc)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if len(a.Entries()) != 20 {
		t.Errorf("записей %d, ожидалось 20", len(a.Entries()))
	}
}

func TestFindAndPrefix(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src")
	writeTree(t, src, map[string]string{
		"Data/Map001.rvdata2": "m1",
		"Data/Map002.rvdata2": "m2",
		"Audio/BGM/town.ogg":  "ogg",
	})

	arc := filepath.Join(tmpDir, "find.rgssad")
	packDir(t, src, arc, 1)

	a, err := Open(arc)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	e, ok := a.Find("Data/Map002.rvdata2")
	if !ok {
		t.Fatal("запись не найдена по имени")
	}
	var buf bytes.Buffer
	if err := a.Extract(e, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "m2" {
		t.Errorf("Find вернул не ту запись: %q", buf.String())
	}

	if _, ok := a.Find("Data/Map003.rvdata2"); ok {
		t.Error("Find нашёл несуществующую запись")
	}

	var names []string
	a.Prefix("Data/", func(e Entry) bool {
		names = append(names, e.Name)
		return true
	})
	if len(names) != 2 {
		t.Errorf("префиксный обход вернул %v", names)
	}

	// Остановка обхода по false.
	count := 0
	a.Prefix("Data/", func(Entry) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("обход не остановился: %d", count)
	}
}

func TestOpenErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("HeaderMismatch", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.bin")
		os.WriteFile(path, []byte("NOTRGSS_"), 0o644)
		_, err := Open(path)
		if !errors.Is(err, ErrHeaderMismatch) {
			t.Errorf("ожидался ErrHeaderMismatch, получено %v", err)
		}
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		path := filepath.Join(tmpDir, "ver.bin")
		os.WriteFile(path, []byte("RGSSAD\x00\x09"), 0o644)
		_, err := Open(path)
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("ожидался ErrUnsupportedVersion, получено %v", err)
		}
	})

	t.Run("TruncatedName", func(t *testing.T) {
		// Длина имени обещает больше байт, чем осталось в файле.
		var buf bytes.Buffer
		buf.WriteString("RGSSAD\x00\x01")
		var w [4]byte
		binary.LittleEndian.PutUint32(w[:], 100^uint32(0xDEADCAFE))
		buf.Write(w[:])
		buf.WriteString("xx")
		path := filepath.Join(tmpDir, "trunc.bin")
		os.WriteFile(path, buf.Bytes(), 0o644)
		_, err := Open(path)
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("ожидался ErrTruncated, получено %v", err)
		}
	})

	t.Run("NameLength", func(t *testing.T) {
		var buf bytes.Buffer
		buf.WriteString("RGSSAD\x00\x01")
		var w [4]byte
		binary.LittleEndian.PutUint32(w[:], 1_000_000^uint32(0xDEADCAFE))
		buf.Write(w[:])
		path := filepath.Join(tmpDir, "name.bin")
		os.WriteFile(path, buf.Bytes(), 0o644)
		_, err := Open(path)
		if !errors.Is(err, ErrNameLength) {
			t.Errorf("ожидался ErrNameLength, получено %v", err)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := Open(filepath.Join(tmpDir, "no-such-file")); err == nil {
			t.Error("ожидалась ошибка для несуществующего файла")
		}
	})
}

func TestPackErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := CollectDir(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("ожидалась ошибка для несуществующего каталога")
	}

	file := filepath.Join(tmpDir, "plain.txt")
	os.WriteFile(file, []byte("x"), 0o644)
	if _, err := CollectDir(file); !errors.Is(err, ErrNotADirectory) {
		t.Errorf("ожидался ErrNotADirectory, получено %v", err)
	}

	tree, _ := CollectDir(tmpDir)
	if err := Pack(filepath.Join(tmpDir, "a.bin"), 9, tmpDir, tree, nil); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("ожидался ErrUnsupportedVersion, получено %v", err)
	}
}
