package rgssad

// initialMagic — стартовое состояние потокового шифра для архивов v1/v2
// и для тел записей v3.
const initialMagic = 0xDEADCAFE

// advanceMagic возвращает текущий ключ и следующее состояние потока.
// Арифметика 32-битная с переполнением, как в оригинальном формате.
func advanceMagic(m uint32) (key, next uint32) {
	return m, m*7 + 3
}

// headerKey превращает сырое первое слово архива RGSS3A в ключ индекса.
// Выполняется ровно один раз, дальше ключ не продвигается.
func headerKey(raw uint32) uint32 {
	return raw*9 + 3
}
