package decode

/*
#cgo pkg-config: gstreamer-1.0 gstreamer-allocators-1.0 gstreamer-video-1.0
#include <stdlib.h>
#include <gst/gst.h>
#include <gst/allocators/allocators.h>
#include <gst/video/video.h>

static int vp_buffer_n_memory(void *buf) {
	return (int)gst_buffer_n_memory((GstBuffer *)buf);
}

static int vp_dmabuf_fd(void *buf, int idx, gsize *size) {
	GstMemory *mem = gst_buffer_peek_memory((GstBuffer *)buf, idx);
	if (mem == NULL || !gst_is_dmabuf_memory(mem)) {
		return -1;
	}
	*size = gst_memory_get_sizes(mem, NULL, NULL);
	return gst_dmabuf_memory_get_fd(mem);
}

static int vp_video_meta(void *buf, int *n_planes, guint64 *offset, gint32 *stride) {
	GstVideoMeta *meta = gst_buffer_get_video_meta((GstBuffer *)buf);
	if (meta == NULL) {
		return 0;
	}
	*n_planes = (int)meta->n_planes;
	for (int i = 0; i < GST_VIDEO_MAX_PLANES; i++) {
		offset[i] = meta->offset[i];
		stride[i] = meta->stride[i];
	}
	return 1;
}

static int vp_raise_rank(const char *name, guint rank) {
	GstElementFactory *f = gst_element_factory_find(name);
	if (f == NULL) {
		return 0;
	}
	GstPluginFeature *feature = GST_PLUGIN_FEATURE(f);
	if (gst_plugin_feature_get_rank(feature) < rank) {
		gst_plugin_feature_set_rank(feature, rank);
	}
	gst_object_unref(f);
	return 1;
}

static int vp_has_factory(const char *name) {
	GstElementFactory *f = gst_element_factory_find(name);
	if (f == NULL) {
		return 0;
	}
	gst_object_unref(f);
	return 1;
}

static int vp_has_property(void *obj, const char *name) {
	return g_object_class_find_property(G_OBJECT_GET_CLASS(obj), name) != NULL;
}

static void vp_set_object(void *obj, const char *name, void *value) {
	g_object_set(obj, name, value, NULL);
}

static guint vp_rank_preferred(void) {
	return GST_RANK_PRIMARY + 512;
}
*/
import "C"

import (
	"unsafe"

	"github.com/matjam/vidpaper/internal/frame"
	"github.com/matjam/vidpaper/internal/media"
	"github.com/tinyzimmer/go-gst/gst"
)

// dmabufMemories lists the buffer's memories, or ok=false if any of them is
// not dmabuf-backed.
func dmabufMemories(buf *gst.Buffer) ([]media.Memory, bool) {
	ptr := buf.Unsafe()
	n := int(C.vp_buffer_n_memory(ptr))
	mems := make([]media.Memory, 0, n)
	for i := 0; i < n; i++ {
		var size C.gsize
		fd := int(C.vp_dmabuf_fd(ptr, C.int(i), &size))
		if fd < 0 {
			return nil, false
		}
		mems = append(mems, media.Memory{FD: fd, Size: int(size)})
	}
	return mems, true
}

func videoMeta(buf *gst.Buffer) *media.VideoMeta {
	var (
		n      C.int
		offset [frame.MaxPlanes]C.guint64
		stride [frame.MaxPlanes]C.gint32
	)
	if C.vp_video_meta(buf.Unsafe(), &n, &offset[0], &stride[0]) == 0 {
		return nil
	}
	meta := &media.VideoMeta{NPlanes: int(n)}
	for i := range offset {
		meta.Offset[i] = uint64(offset[i])
		meta.Stride[i] = int32(stride[i])
	}
	return meta
}

func raiseRank(name string) bool {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.vp_raise_rank(cname, C.vp_rank_preferred()) != 0
}

func hasFactory(name string) bool {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.vp_has_factory(cname) != 0
}

func hasProperty(el *gst.Element, name string) bool {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.vp_has_property(el.Unsafe(), cname) != 0
}

// setObject assigns an element-valued property such as playbin's video-sink.
func setObject(el *gst.Element, name string, value *gst.Element) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.vp_set_object(el.Unsafe(), cname, value.Unsafe())
}
