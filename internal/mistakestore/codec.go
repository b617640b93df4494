package mistakestore

import (
	"time"

	"github.com/dupimg/dupimg/internal/binstream"
	"github.com/dupimg/dupimg/pkg/api"
)

// writeImageInfo serializes one ImageInfo record, mirroring
// internal/cache/codec.go's writeImageData field order and primitive
// choices for the parts of ImageInfo that exist.
func writeImageInfo(w *binstream.Writer, info *api.ImageInfo) {
	w.WritePath(info.Path, false)
	w.WriteInt64(info.Size)
	w.WriteInt64(info.Time.UnixNano())
	w.WriteInt32(int32(info.Type))
	w.WriteInt32(int32(info.Width))
	w.WriteInt32(int32(info.Height))
	w.WriteFloat64(info.Blockiness)
	w.WriteFloat64(info.Blurring)
	w.WriteInt32(int32(info.Group))
	w.WriteInt32(int32(info.Links))
	w.WriteBool(info.Removed)
	w.WriteBool(info.Selected)
	w.WriteBool(info.DeletePath)
}

func readImageInfo(r *binstream.Reader) *api.ImageInfo {
	info := &api.ImageInfo{}
	info.Path, _ = r.ReadPath()
	info.Size = r.ReadInt64()
	info.Time = time.Unix(0, r.ReadInt64()).UTC()
	info.Type = api.ImageType(r.ReadInt32())
	info.Width = int(r.ReadInt32())
	info.Height = int(r.ReadInt32())
	info.Blockiness = r.ReadFloat64()
	info.Blurring = r.ReadFloat64()
	info.Group = int(r.ReadInt32())
	info.Links = int(r.ReadInt32())
	info.Removed = r.ReadBool()
	info.Selected = r.ReadBool()
	info.DeletePath = r.ReadBool()
	return info
}
