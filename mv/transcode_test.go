package mv

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weaponsDump собирает минимальный дамп Weapons.rvdata2 вручную:
// массив [nil, RPG::Weapon{@id: 1, @name: "Blade"}].
func weaponsDump() []byte {
	out := []byte{4, 8}
	out = append(out, '[', 2+5)
	out = append(out, '0')
	out = append(out, 'o')
	out = append(out, ':', 11+5)
	out = append(out, "RPG::Weapon"...)
	out = append(out, 2+5)
	out = append(out, ':', 3+5)
	out = append(out, "@id"...)
	out = append(out, 'i', 1+5)
	out = append(out, ':', 5+5)
	out = append(out, "@name"...)
	out = append(out, '"', 5+5)
	out = append(out, "Blade"...)
	return out
}

func TestTranscodeEntity(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Weapons.rvdata2"), weaponsDump(), 0o644))

	ok, err := TranscodeEntity(dir, "Weapons")
	require.NoError(t, err)
	require.True(t, ok)

	raw, err := os.ReadFile(filepath.Join(dir, "Weapons.json"))
	require.NoError(t, err)

	var doc []any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc, 2)
	assert.Nil(t, doc[0], "нулевой индекс всегда null")

	w := doc[1].(map[string]any)
	assert.Equal(t, "Blade", w["name"])
	assert.Equal(t, float64(1), w["etypeId"])
	assert.Equal(t, float64(500), w["price"])
	assert.Equal(t,
		[]any{float64(0), float64(0), float64(10), float64(0), float64(0), float64(0), float64(0), float64(0)},
		w["params"])
}

func TestTranscodeUnknownEntity(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Scripts.rvdata2"), []byte{4, 8, '0'}, 0o644))

	ok, err := TranscodeEntity(dir, "Scripts")
	require.NoError(t, err)
	assert.False(t, ok, "непризнанные данные пропускаются без ошибки")
}

func TestTranscodeDirIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Weapons.rvdata2"), weaponsDump(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Items.rvdata2"), []byte("мусор"), 0o644))

	err := TranscodeDir(dir)
	assert.Error(t, err, "битая сущность даёт итоговую ошибку")

	// Исправная сущность при этом перекодирована.
	_, statErr := os.Stat(filepath.Join(dir, "Weapons.json"))
	assert.NoError(t, statErr)
}

func TestWriteJSONPreservesUnicode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, writeJSON(path, obj{"name": "Алиса", "html": "<b> & </b>"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Алиса", "не-ASCII не экранируется")
	assert.Contains(t, string(raw), "<b> & </b>", "HTML-экранирование выключено")
	assert.Contains(t, string(raw), "\n  \"", "отступ в два пробела")
}
