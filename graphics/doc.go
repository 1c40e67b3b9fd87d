// Package graphics defines the platform, context and device contracts the
// renderer is written against. Implementations live in glfwcontext, headless
// and gldevice; graphicstest provides recording fakes.
package graphics
