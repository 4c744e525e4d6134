package wgpubackend

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

var _ passCloser = (*wgpu.RenderPassEncoder)(nil)

type fakePass struct {
	calls  []string
	endErr error
}

func (p *fakePass) End() error {
	p.calls = append(p.calls, "end")
	return p.endErr
}

func (p *fakePass) Release() {
	p.calls = append(p.calls, "release")
}

func TestClosePass_AbortedFrameEndsBeforeRelease(t *testing.T) {
	pass := &fakePass{}
	assert.NoError(t, closePass(pass, false))
	assert.Equal(t, []string{"end", "release"}, pass.calls)
}

func TestClosePass_PresentedFrameOnlyReleases(t *testing.T) {
	pass := &fakePass{}
	assert.NoError(t, closePass(pass, true))
	assert.Equal(t, []string{"release"}, pass.calls)
}

func TestClosePass_EndErrorStillReleases(t *testing.T) {
	pass := &fakePass{endErr: errors.New("encoder invalid")}
	assert.EqualError(t, closePass(pass, false), "encoder invalid")
	assert.Equal(t, []string{"end", "release"}, pass.calls)
}
