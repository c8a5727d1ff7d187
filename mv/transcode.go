package mv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/globalmac/rgsskit/marshal"
)

// datasets — сущности с массивной укладкой: индекс 0 всегда null,
// дальше объекты по их 1-индексным id.
var datasets = map[string]func(*marshal.Node) obj{
	"Actors":       projectActor,
	"Classes":      projectClass,
	"Skills":       projectSkill,
	"Items":        projectItem,
	"Weapons":      projectWeapon,
	"Armors":       projectArmor,
	"Enemies":      projectEnemy,
	"Troops":       projectTroop,
	"States":       projectState,
	"Animations":   projectAnimation,
	"Tilesets":     projectTileset,
	"CommonEvents": projectCommonEvent,
}

var mapNameRe = regexp.MustCompile(`^Map\d+$`)

// TranscodeDir перекодирует все распознанные файлы <Entity>.rvdata2 в
// каталоге в <Entity>.json. Сбой одной сущности не трогает остальные;
// итоговая ошибка сообщает, сколько сущностей не удалось.
func TranscodeDir(dir string) error {
	des, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var done, failed int
	for _, de := range des {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".rvdata2") {
			continue
		}
		entity := strings.TrimSuffix(name, ".rvdata2")
		ok, err := TranscodeEntity(dir, entity)
		if err != nil {
			failed++
			logrus.WithError(err).WithField("entity", entity).Error("сущность не перекодирована")
			continue
		}
		if ok {
			done++
		}
	}

	logrus.WithFields(logrus.Fields{"done": done, "failed": failed}).Debug("перекодировка завершена")
	if failed > 0 {
		return fmt.Errorf("не перекодировано сущностей: %d", failed)
	}
	return nil
}

// TranscodeEntity перекодирует одну сущность. Возвращает false без
// ошибки, если имя не относится к известным данным.
func TranscodeEntity(dir, entity string) (bool, error) {
	var project func(*marshal.Node) any
	switch {
	case entity == "System":
		project = func(root *marshal.Node) any { return projectSystem(root) }
	case entity == "MapInfos":
		project = func(root *marshal.Node) any { return projectMapInfos(root) }
	case mapNameRe.MatchString(entity):
		project = func(root *marshal.Node) any { return projectMap(root) }
	default:
		pr, known := datasets[entity]
		if !known {
			return false, nil
		}
		project = func(root *marshal.Node) any { return projectDataset(root, pr) }
	}

	root, err := loadDump(filepath.Join(dir, entity+".rvdata2"))
	if err != nil {
		return false, err
	}
	doc := project(root)
	if err := writeJSON(filepath.Join(dir, entity+".json"), doc); err != nil {
		return false, err
	}
	return true, nil
}

// projectDataset укладывает массив сущностей: первый элемент исходного
// дампа (всегда nil) сохраняет null на нулевом индексе.
func projectDataset(root *marshal.Node, project func(*marshal.Node) obj) []any {
	out := []any{nil}
	if root == nil || root.Kind != marshal.Array {
		return out
	}
	for _, el := range root.Elems[min(1, len(root.Elems)):] {
		if el.IsNil() {
			out = append(out, nil)
			continue
		}
		out = append(out, project(el))
	}
	return out
}

func loadDump(path string) (*marshal.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return marshal.Decode(f)
}

// writeJSON пишет документ в UTF-8 с отступом в два пробела, не трогая
// не-ASCII символы.
func writeJSON(path string, doc any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err = enc.Encode(doc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
