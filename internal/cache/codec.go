package cache

import (
	"time"

	"github.com/dupimg/dupimg/internal/binstream"
	"github.com/dupimg/dupimg/internal/imagedecode"
	"github.com/dupimg/dupimg/pkg/api"
)

func unixNanoToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// writeImageData serializes one ImageData record in the chunk payload
// order: FileInfo fields, CRC32, type/dimensions, defect scores, pixel
// pyramid, SSIM cache fields, EXIF summary, valid flag.
func writeImageData(w *binstream.Writer, d *api.ImageData) {
	w.WritePath(d.Path, false)
	w.WriteInt64(d.Size)
	w.WriteInt64(d.Time.UnixNano())
	w.WriteUint64(d.Hash)
	w.WriteInt32(int32(d.RootIdx))

	w.WriteUint32(d.CRC32)
	w.WriteInt32(int32(d.ImageType))
	w.WriteInt32(int32(d.Width))
	w.WriteInt32(int32(d.Height))
	w.WriteInt32(int32(d.Ratio))

	w.WriteInt32(int32(d.Defect))
	w.WriteFloat64(finiteOrSentinel(d.Blockiness))
	w.WriteFloat64(finiteOrSentinel(d.Blurring))

	writePyramid(w, d.PixelData)

	w.WriteBool(d.SSIMValid)
	w.WriteFloat64(d.SSIMAverage)
	w.WriteFloat64(d.SSIMVariance)

	hasEXIF := d.EXIF != nil
	w.WriteBool(hasEXIF)
	if hasEXIF {
		w.WriteString(d.EXIF.CameraModel)
		w.WriteInt32(int32(d.EXIF.Orientation))
	}

	w.WriteBool(d.Valid)
}

func readImageData(r *binstream.Reader) *api.ImageData {
	d := &api.ImageData{}
	d.Path, _ = r.ReadPath()
	d.Size = r.ReadInt64()
	d.Time = unixNanoToTime(r.ReadInt64())
	d.Hash = r.ReadUint64()
	d.RootIdx = int(r.ReadInt32())

	d.CRC32 = r.ReadUint32()
	d.ImageType = api.ImageType(r.ReadInt32())
	d.Width = int(r.ReadInt32())
	d.Height = int(r.ReadInt32())
	d.Ratio = int(r.ReadInt32())

	d.Defect = api.DefectKind(r.ReadInt32())
	d.Blockiness = r.ReadFloat64()
	d.Blurring = r.ReadFloat64()

	d.PixelData = readPyramid(r)

	d.SSIMValid = r.ReadBool()
	d.SSIMAverage = r.ReadFloat64()
	d.SSIMVariance = r.ReadFloat64()

	if r.ReadBool() {
		d.EXIF = &api.EXIFSummary{
			CameraModel: r.ReadString(),
			Orientation: int(r.ReadInt32()),
		}
	}

	d.Valid = r.ReadBool()
	return d
}

func writePyramid(w *binstream.Writer, p api.PixelPyramid) {
	w.WriteBool(p.Filled)
	if !p.Filled {
		return
	}
	w.WriteInt32(int32(len(p.Levels)))
	for i, level := range p.Levels {
		w.WriteInt32(int32(p.Sides[i]))
		for _, b := range level {
			w.WriteUint8(b)
		}
	}
}

func readPyramid(r *binstream.Reader) api.PixelPyramid {
	var p api.PixelPyramid
	p.Filled = r.ReadBool()
	if !p.Filled {
		return p
	}
	n := int(r.ReadInt32())
	p.Levels = make([][]byte, n)
	p.Sides = make([]int, n)
	for i := 0; i < n; i++ {
		side := int(r.ReadInt32())
		p.Sides[i] = side
		level := make([]byte, side*side)
		for j := range level {
			level[j] = r.ReadUint8()
		}
		p.Levels[i] = level
	}
	if n > 0 {
		p.Main = p.Levels[n-1]
		p.Fast = imagedecode.BuildPyramid(p.Main, p.Sides[n-1], p.Sides[n-1]).Fast
	}
	return p
}

// finiteOrSentinel is the identity: -Inf round-trips exactly through the
// IEEE-754 float64 wire encoding, so "not measured" needs no remapping.
func finiteOrSentinel(v float64) float64 { return v }
