package capture

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <dlfcn.h>
#include <stdlib.h>

enum {
    CAPTURE_OK = 0,
    CAPTURE_NOT_READY = 1,
    CAPTURE_NO_SYMBOL = 2,
    CAPTURE_NO_MEMORY = 3,
    CAPTURE_NO_CONTEXT = 4,
};

typedef struct {
    void*  data;
    size_t size;
    int    width;
    int    height;
    int    status;
} FrameData;

// CGWindowListCreateImage is unavailable in the macOS 15 SDK headers but still
// present in the CoreGraphics dylib. Load it dynamically.
typedef CGImageRef (*CGWindowListCreateImageFunc)(
    CGRect screenBounds,
    uint32_t listOption,
    uint32_t windowID,
    uint32_t imageOption
);

static CGWindowListCreateImageFunc getCGWindowListCreateImage(void) {
    static CGWindowListCreateImageFunc fn = NULL;
    if (!fn) {
        fn = (CGWindowListCreateImageFunc)dlsym(RTLD_DEFAULT, "CGWindowListCreateImage");
    }
    return fn;
}

static int hasScreenRecordingPermission(void) {
    return CGPreflightScreenCaptureAccess() ? 1 : 0;
}

// captureDisplay draws the display into a BGRA buffer. Rows are packed at
// width*4 bytes; the allocation is rounded up to 64 bytes and the tail is
// left as padding.
static FrameData captureDisplay(CGDirectDisplayID displayID) {
    FrameData result = {0};

    CGWindowListCreateImageFunc fn = getCGWindowListCreateImage();
    if (!fn) {
        result.status = CAPTURE_NO_SYMBOL;
        return result;
    }

    CGRect bounds = CGDisplayBounds(displayID);
    // kCGWindowListOptionOnScreenOnly = 1, kCGNullWindowID = 0, kCGWindowImageDefault = 0
    CGImageRef image = fn(bounds, 1, 0, 0);
    if (!image) {
        result.status = CAPTURE_NOT_READY;
        return result;
    }

    result.width  = (int)CGImageGetWidth(image);
    result.height = (int)CGImageGetHeight(image);

    size_t bytesPerRow = (size_t)result.width * 4;
    size_t used = bytesPerRow * (size_t)result.height;
    result.size = (used + 63) & ~(size_t)63;
    result.data = calloc(1, result.size ? result.size : 1);
    if (!result.data) {
        CGImageRelease(image);
        result.size = 0;
        result.status = CAPTURE_NO_MEMORY;
        return result;
    }

    CGColorSpaceRef cs = CGColorSpaceCreateDeviceRGB();
    CGContextRef ctx = CGBitmapContextCreate(
        result.data,
        result.width,
        result.height,
        8,
        bytesPerRow,
        cs,
        kCGImageAlphaPremultipliedFirst | kCGBitmapByteOrder32Little
    );
    if (!ctx) {
        CGColorSpaceRelease(cs);
        CGImageRelease(image);
        free(result.data);
        result.data = NULL;
        result.size = 0;
        result.status = CAPTURE_NO_CONTEXT;
        return result;
    }
    CGContextDrawImage(ctx, CGRectMake(0, 0, result.width, result.height), image);
    CGContextRelease(ctx);
    CGColorSpaceRelease(cs);
    CGImageRelease(image);

    result.status = CAPTURE_OK;
    return result;
}

static void freeFrameData(void* data) {
    free(data);
}
*/
import "C"

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/junsooki/rdpcore/internal/pixel"
)

// CGBackend captures the main display through CoreGraphics.
type CGBackend struct{}

// NewBackend returns the platform capture backend.
func NewBackend() Backend {
	return CGBackend{}
}

func (CGBackend) Primary() (Display, error) {
	if C.hasScreenRecordingPermission() == 0 {
		return nil, fmt.Errorf("screen recording permission not granted")
	}
	id := C.CGMainDisplayID()
	if id == 0 {
		return nil, fmt.Errorf("no main display")
	}
	return cgDisplay{id: id}, nil
}

type cgDisplay struct {
	id C.CGDirectDisplayID
}

func (d cgDisplay) NewProducer() (Producer, error) {
	if C.CGDisplayIsActive(d.id) == 0 {
		return nil, fmt.Errorf("display %d is not active", uint32(d.id))
	}
	return &cgProducer{displayID: d.id}, nil
}

type cgProducer struct {
	displayID C.CGDirectDisplayID
}

func (p *cgProducer) Frame() (*Frame, error) {
	fd := C.captureDisplay(p.displayID)
	switch fd.status {
	case C.CAPTURE_OK:
	case C.CAPTURE_NOT_READY:
		return nil, ErrNotReady
	case C.CAPTURE_NO_SYMBOL:
		return nil, fmt.Errorf("CGWindowListCreateImage not found")
	default:
		return nil, fmt.Errorf("coregraphics capture failed (status %d)", int(fd.status))
	}
	defer C.freeFrameData(fd.data)

	byteLen := int(fd.size)
	pix := make([]byte, byteLen)
	copy(pix, unsafe.Slice((*byte)(fd.data), byteLen))

	return &Frame{
		Data:      pix,
		Width:     int(fd.width),
		Height:    int(fd.height),
		Layout:    pixel.BGRA,
		Timestamp: time.Now(),
	}, nil
}

func (p *cgProducer) Close() {}
