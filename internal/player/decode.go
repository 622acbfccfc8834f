package player

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// Opener открывает аудиофайл по ссылке из описания песни
type Opener interface {
	OpenAudio(ctx context.Context, ref string) (io.ReadCloser, error)
}

// fetch загружает аудиофайл целиком и декодирует его в буфер
func fetch(ctx context.Context, opener Opener, ref string) (*beep.Buffer, error) {
	rc, err := opener.OpenAudio(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки %s: %w", ref, err)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", ref, err)
	}

	buf, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования %s: %w", ref, err)
	}
	return buf, nil
}

// decode определяет формат по содержимому: WAV начинается с "RIFF", остальное считаем MP3
func decode(raw []byte) (*beep.Buffer, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	if bytes.HasPrefix(raw, []byte("RIFF")) {
		streamer, format, err = wav.Decode(bytes.NewReader(raw))
	} else {
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(raw)))
	}
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

// resample приводит буфер к частоте rate
func resample(buf *beep.Buffer, rate beep.SampleRate, quality int) *beep.Buffer {
	format := buf.Format()
	if format.SampleRate == rate {
		return buf
	}
	old := format.SampleRate
	format.SampleRate = rate
	out := beep.NewBuffer(format)
	out.Append(beep.Resample(quality, old, rate, buf.Streamer(0, buf.Len())))
	return out
}
