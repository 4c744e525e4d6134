package driftsquares

import (
	"context"
)

type drawCall struct {
	handle      BufferHandle
	vertexCount int
	vertices    []Point3
}

// recordingBackend captures every call so tests can assert on ordering.
type recordingBackend struct {
	calls    []string
	draws    []drawCall
	presents int
	buffers  map[BufferHandle][]Point3
	next     BufferHandle

	failCreateAt int // 1-based draw index that fails CreateVertexBuffer, 0 never
	failPresent  error
	maxFrames    int
	frames       int
	released     bool
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{buffers: make(map[BufferHandle][]Point3)}
}

func (r *recordingBackend) CreateVertexBuffer(vertices []Point3) (BufferHandle, error) {
	r.calls = append(r.calls, "create")
	if r.failCreateAt > 0 && len(r.draws)+1 == r.failCreateAt {
		return 0, errDeviceLost
	}
	r.next++
	r.buffers[r.next] = append([]Point3(nil), vertices...)
	return r.next, nil
}

func (r *recordingBackend) BindAndDraw(buf BufferHandle, vertexCount int) error {
	r.calls = append(r.calls, "draw")
	r.draws = append(r.draws, drawCall{handle: buf, vertexCount: vertexCount, vertices: r.buffers[buf]})
	return nil
}

func (r *recordingBackend) Present() error {
	r.calls = append(r.calls, "present")
	if r.failPresent != nil {
		return r.failPresent
	}
	r.presents++
	clear(r.buffers)
	return nil
}

func (r *recordingBackend) RunFrameLoop(ctx context.Context, onFrame func() error) error {
	for r.frames < r.maxFrames {
		if ctx.Err() != nil {
			return nil
		}
		if err := onFrame(); err != nil {
			return err
		}
		r.frames++
	}
	return nil
}

func (r *recordingBackend) Release() {
	r.released = true
}
