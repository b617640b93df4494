// Package metadata extracts the informational EXIF summary spec §4.2
// carries on a fingerprint (camera model, orientation) without letting
// it influence comparison or defect classification. Grounded on the
// teacher's internal/metadata/exif_reader.go, trimmed down from the
// teacher's full CompleteMetadata/CameraInfo/GPSInfo model (no longer
// exposed anywhere in this engine) to the two fields api.EXIFSummary
// actually carries.
package metadata

import (
	"fmt"
	"os"
	"strings"

	"github.com/dupimg/dupimg/pkg/api"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/sirupsen/logrus"
)

// Reader extracts the EXIF summary from image files that carry one.
type Reader struct {
	logger *logrus.Logger
}

// NewReader returns an EXIF reader, registering manufacturer maker-note
// parsers once so orientation/model tags decode consistently.
func NewReader() *Reader {
	exif.RegisterParsers(mknote.All...)
	return &Reader{logger: logrus.New()}
}

// Read extracts the EXIF summary at path. A file with no EXIF segment
// is not an error: it returns (nil, nil).
func (r *Reader) Read(path string) (*api.EXIFSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open for exif: %w", err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		if strings.Contains(err.Error(), "no exif") || strings.Contains(err.Error(), "EOF") {
			return nil, nil
		}
		return nil, fmt.Errorf("decode exif: %w", err)
	}

	summary := &api.EXIFSummary{}

	if model, err := x.Get(exif.Model); err == nil {
		summary.CameraModel, _ = model.StringVal()
	}
	if make, err := x.Get(exif.Make); err == nil {
		if makeStr, err := make.StringVal(); err == nil && makeStr != "" {
			if summary.CameraModel != "" {
				summary.CameraModel = makeStr + " " + summary.CameraModel
			} else {
				summary.CameraModel = makeStr
			}
		}
	}
	if orientation, err := x.Get(exif.Orientation); err == nil {
		if v, err := orientation.Int(0); err == nil {
			summary.Orientation = v
		}
	}

	return summary, nil
}

// SupportedExtensions lists the formats that typically carry an EXIF
// segment, used to skip a doomed decode attempt on formats that never do.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".tiff", ".tif"}
}
