package rgssad

import (
	"encoding/binary"
	"io"
)

// cipherChunk — размер буфера потокового копирования. Обязан быть кратен 4:
// границы кусков не должны разрывать 32-битные слова ключевого потока.
const cipherChunk = 8192

// transform XOR-ит буфер ключевым потоком и возвращает состояние после
// обработки всех выровненных слов. Хвост из 1–3 байт шифруется младшими
// байтами текущего (не продвинутого) состояния — так делает и декодер
// тела v1/v2, и декодер тела v3. XOR обратим сам по себе, поэтому одна
// и та же функция кодирует и декодирует.
func transform(b []byte, magic uint32) uint32 {
	aligned := len(b) &^ 3
	for i := 0; i < aligned; i += 4 {
		var key uint32
		key, magic = advanceMagic(magic)
		binary.LittleEndian.PutUint32(b[i:], binary.LittleEndian.Uint32(b[i:])^key)
	}
	for i := aligned; i < len(b); i++ {
		b[i] ^= byte(magic >> ((i % 4) * 8))
	}
	return magic
}

// coder копирует байты записи между потоками, прогоняя их через шифр.
// Буфер переиспользуется между записями.
type coder struct {
	buf [cipherChunk]byte
}

// copy переносит size байт из r в w, шифруя (или расшифровывая) их на лету
// начиная с состояния magic. Результат не зависит от разбиения на куски,
// пока куски кратны 4 — у нас это гарантировано размером буфера.
func (c *coder) copy(w io.Writer, r io.Reader, magic uint32, size uint32) error {
	remaining := int(size)
	for remaining > 0 {
		n := len(c.buf)
		if n > remaining {
			n = remaining
		}
		chunk := c.buf[:n]
		if _, err := io.ReadFull(r, chunk); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return ErrTruncated
			}
			return err
		}
		magic = transform(chunk, magic)
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
