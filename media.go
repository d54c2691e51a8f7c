// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package media

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	// DefFrameDur is a default duration of an audio frame.
	DefFrameDur = 20 * time.Millisecond
	// DefFramesPerSec is a default number of audio frames per second.
	DefFramesPerSec = int(time.Second / DefFrameDur)
)

type Frame interface {
	// Size of the frame in bytes.
	Size() int
	// CopyTo copies the frame content to the destination bytes slice.
	// It returns io.ErrShortBuffer is the buffer size is less than frame's Size.
	CopyTo(dst []byte) (int, error)
}

type Reader[T any] interface {
	ReadSample(buf T) (int, error)
}

type ReadCloser[T any] interface {
	Reader[T]
	Close() error
}

type Writer[T any] interface {
	String() string
	SampleRate() int
	WriteSample(sample T) error
}

type WriteCloser[T any] interface {
	Writer[T]
	Close() error
}

type writeCloser[T any] struct {
	Writer[T]
}

func (*writeCloser[T]) Close() error {
	return nil
}

func NopCloser[T any](w Writer[T]) WriteCloser[T] {
	return &writeCloser[T]{w}
}

type MultiWriter[T any] []WriteCloser[T]

func (s MultiWriter[T]) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "MultiWriter(%d,%d)", len(s), s.SampleRate())
	for i, w := range s {
		fmt.Fprintf(&buf, "; $%d-> %s", i+1, w.String())
	}
	return buf.String()
}

func (s MultiWriter[T]) SampleRate() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].SampleRate()
}

func (s MultiWriter[T]) WriteSample(sample T) error {
	var last error
	for _, w := range s {
		if err := w.WriteSample(sample); err != nil {
			last = err
		}
	}
	return last
}

func (s MultiWriter[T]) Close() error {
	var last error
	for _, w := range s {
		if err := w.Close(); err != nil {
			last = err
		}
	}
	return last
}

func NewFileWriter[T Frame](w io.WriteCloser, sampleRate int) WriteCloser[T] {
	return &fileWriter[T]{
		w:          w,
		bw:         bufio.NewWriter(w),
		sampleRate: sampleRate,
	}
}

type fileWriter[T Frame] struct {
	w          io.WriteCloser
	bw         *bufio.Writer
	sampleRate int
	buf        []byte
}

func (w *fileWriter[T]) String() string {
	return fmt.Sprintf("RawFile(%d)", w.sampleRate)
}

func (w *fileWriter[T]) SampleRate() int {
	return w.sampleRate
}

func (w *fileWriter[T]) WriteSample(sample T) error {
	if sz := sample.Size(); cap(w.buf) < sz {
		w.buf = make([]byte, sz)
	} else {
		w.buf = w.buf[:sz]
	}
	n, err := sample.CopyTo(w.buf)
	if err != nil {
		return err
	}
	_, err = w.bw.Write(w.buf[:n])
	return err
}

func (w *fileWriter[T]) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.w.Close()
		return err
	}
	if err := w.w.Close(); err != nil {
		return err
	}
	return nil
}

// FrameSample is a raw interleaved PCM16 block held as its encoded bytes:
// Size reports the byte length a mixed block occupies on the wire.
type FrameSample []byte

var _ Frame = FrameSample{}

func (s FrameSample) Size() int {
	return len(s)
}

func (s FrameSample) CopyTo(dst []byte) (int, error) {
	if len(dst) < len(s) {
		return 0, io.ErrShortBuffer
	}
	return copy(dst, s), nil
}

type sample interface {
	int8 | int16 | int32 | int64 | float32 | float64
}

// FullFrames wraps w so that WriteSample only ever forwards complete
// frameSize chunks, buffering any remainder until either enough samples
// accumulate or Close flushes the tail. ingest.VorbisFileSource uses it to
// cut a decoded file, whose length rarely lines up with the mixer's fixed
// block size, into block-sized buffers.
func FullFrames[T ~[]S, S sample](w WriteCloser[T], frameSize int) WriteCloser[T] {
	if frameSize <= 0 {
		panic("invalid frame size")
	}
	return &frameBuffer[T, S]{
		w:         w,
		frameSize: frameSize,
		buf:       make([]S, 0, frameSize),
	}
}

type frameBuffer[T ~[]S, S sample] struct {
	frameSize int
	mu        sync.Mutex
	w         WriteCloser[T]
	buf       []S
}

func (b *frameBuffer[T, S]) String() string {
	return fmt.Sprintf("FrameBuf(%d) -> %s", b.frameSize, b.w)
}

func (b *frameBuffer[T, S]) SampleRate() int {
	return b.w.SampleRate()
}

func (b *frameBuffer[T, S]) WriteSample(in T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, in...)
	return b.flush(false)
}

func (b *frameBuffer[T, S]) flush(force bool) error {
	it := b.buf
	defer func() {
		if len(it) == 0 {
			b.buf = b.buf[:0]
		} else if dn := len(b.buf) - len(it); dn > 0 {
			b.buf = slices.Delete(b.buf, 0, dn)
		}
	}()
	for len(it)/b.frameSize > 0 {
		frame := it[:b.frameSize]
		it = it[len(frame):]
		if err := b.w.WriteSample(frame); err != nil {
			return err
		}
	}
	if force && len(it) > 0 {
		if err := b.w.WriteSample(it); err != nil {
			return err
		}
		it = nil
	}
	return nil
}

func (b *frameBuffer[T, S]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.flush(true)
	err2 := b.w.Close()
	return errors.Join(err, err2)
}
