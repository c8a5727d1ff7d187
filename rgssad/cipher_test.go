package rgssad

import (
	"bytes"
	"fmt"
	"testing"
)

func TestAdvanceMagic(t *testing.T) {
	// Детерминизм: одно и то же состояние всегда даёт одну цепочку.
	a, b := uint32(0xDEADCAFE), uint32(0xDEADCAFE)
	for i := 0; i < 100; i++ {
		ka, na := advanceMagic(a)
		kb, nb := advanceMagic(b)
		if ka != kb || na != nb {
			t.Fatalf("расхождение потока на шаге %d", i)
		}
		a, b = na, nb
	}

	key, next := advanceMagic(0xDEADCAFE)
	if key != 0xDEADCAFE {
		t.Errorf("advance должен вернуть текущее состояние, получено %#x", key)
	}
	base := uint32(0xDEADCAFE)
	if next != base*7+3 {
		t.Errorf("неверное следующее состояние: %#x", next)
	}
}

func TestHeaderKey(t *testing.T) {
	if got := headerKey(0); got != 3 {
		t.Errorf("headerKey(0) = %d, ожидалось 3", got)
	}
	// Переполнение 32 бит заворачивается.
	full := uint32(0xFFFFFFFF)
	if got := headerKey(0xFFFFFFFF); got != full*9+3 {
		t.Errorf("headerKey с переполнением: %#x", got)
	}
}

func TestTransformInvolutive(t *testing.T) {
	// Шифр обратен сам себе на любой длине, включая хвосты 1-3 байта.
	for _, n := range []int{0, 1, 2, 3, 4, 5, 7, 8, 13, 4096, 8191, 8192, 8193} {
		t.Run(fmt.Sprintf("len%d", n), func(t *testing.T) {
			src := make([]byte, n)
			for i := range src {
				src[i] = byte(i * 31)
			}
			buf := append([]byte(nil), src...)
			transform(buf, 0xDEADCAFE)
			if n > 0 && bytes.Equal(buf, src) {
				t.Error("шифротекст совпал с открытым текстом")
			}
			transform(buf, 0xDEADCAFE)
			if !bytes.Equal(buf, src) {
				t.Error("двойное преобразование не вернуло исходные данные")
			}
		})
	}
}

func TestTransformChunking(t *testing.T) {
	// Результат не зависит от разбиения, пока куски кратны 4.
	src := make([]byte, 1000)
	for i := range src {
		src[i] = byte(i)
	}

	whole := append([]byte(nil), src...)
	transform(whole, 42)

	split := append([]byte(nil), src...)
	magic := transform(split[:512], uint32(42))
	transform(split[512:], magic)

	if !bytes.Equal(whole, split) {
		t.Error("разбиение на куски изменило результат")
	}
}

func TestCoderCopy(t *testing.T) {
	src := make([]byte, 3*cipherChunk+5)
	for i := range src {
		src[i] = byte(i * 7)
	}

	var enc bytes.Buffer
	var c coder
	if err := c.copy(&enc, bytes.NewReader(src), 0xDEADCAFE, uint32(len(src))); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if enc.Len() != len(src) {
		t.Fatalf("длина шифротекста %d, ожидалось %d", enc.Len(), len(src))
	}

	var dec bytes.Buffer
	if err := c.copy(&dec, bytes.NewReader(enc.Bytes()), 0xDEADCAFE, uint32(len(src))); err != nil {
		t.Fatalf("обратное copy failed: %v", err)
	}
	if !bytes.Equal(dec.Bytes(), src) {
		t.Error("сквозное шифрование-расшифровка не сошлось")
	}

	// Усечённый источник — ошибка, а не тихий недочитанный хвост.
	if err := c.copy(&dec, bytes.NewReader(src[:10]), 0, 20); err == nil {
		t.Error("ожидалась ошибка на усечённом источнике")
	}
}
