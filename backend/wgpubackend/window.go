package wgpubackend

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type windowState struct {
	windowGlfw   *glfw.Window
	windowWidth  int
	windowHeight int
	windowTitle  string
}

// createWindowState must run on the main goroutine; GLFW is bound to the
// thread that initialized it.
func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*windowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window: %w", err)
	}

	return &windowState{
		windowGlfw:   win,
		windowWidth:  windowWidth,
		windowHeight: windowHeight,
		windowTitle:  windowTitle,
	}, nil
}

func (s *windowState) shouldClose() bool {
	return s.windowGlfw.ShouldClose()
}

func (s *windowState) release() {
	if s.windowGlfw != nil {
		s.windowGlfw.Destroy()
		s.windowGlfw = nil
	}
	glfw.Terminate()
}
