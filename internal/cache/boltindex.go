package cache

import (
	"encoding/binary"
	"os"

	"github.com/boltdb/bolt"
	"github.com/dupimg/dupimg/pkg/api"
)

var fingerprintsBucket = []byte("fingerprints")

// boltAccelerator is a purely-derived, in-process fast-path index over the
// cache's path->(size,time) lookup, rebuilt from the loaded chunks at Load
// time. It is never the source of truth and is discarded at the end of a
// run; the persistent source of truth is always the chunked binary format
// on disk. Grounded on internal/index/boltdb.go's bucket-per-concern
// layout, repurposed from a pluggable Store backend into an ancillary
// accelerator.
type boltAccelerator struct {
	db   *bolt.DB
	path string
}

// newBoltAccelerator builds a scratch BoltDB database in the OS temp
// directory and populates it from byPath. Failure to build the
// accelerator is non-fatal: the cache falls back to its in-memory map,
// which Lookup already consults directly.
func newBoltAccelerator(byPath map[string]*api.ImageData) *boltAccelerator {
	f, err := os.CreateTemp("", "dupimg-accel-*.db")
	if err != nil {
		return nil
	}
	dbPath := f.Name()
	f.Close()

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		os.Remove(dbPath)
		return nil
	}

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(fingerprintsBucket)
		if err != nil {
			return err
		}
		for path, d := range byPath {
			b.Put([]byte(path), encodeSizeTime(d.Size, d.Time.UnixNano()))
		}
		return nil
	})
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil
	}

	return &boltAccelerator{db: db, path: dbPath}
}

// Has reports whether path is present in the accelerator with the given
// size and modification time, without touching the main in-memory map.
func (a *boltAccelerator) Has(path string, size int64, unixNano int64) bool {
	if a == nil || a.db == nil {
		return false
	}
	found := false
	a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(fingerprintsBucket)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(path))
		if v == nil {
			return nil
		}
		gotSize, gotTime := decodeSizeTime(v)
		found = gotSize == size && gotTime == unixNano
		return nil
	})
	return found
}

// Close releases the scratch database and removes its backing file.
func (a *boltAccelerator) Close() {
	if a == nil || a.db == nil {
		return
	}
	a.db.Close()
	os.Remove(a.path)
}

func encodeSizeTime(size, unixNano int64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(size))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(unixNano))
	return buf
}

func decodeSizeTime(buf []byte) (int64, int64) {
	if len(buf) < 16 {
		return 0, 0
	}
	return int64(binary.LittleEndian.Uint64(buf[0:8])), int64(binary.LittleEndian.Uint64(buf[8:16]))
}

// Close releases the Store's accelerator database, if one was built.
func (s *Store) Close() error {
	if s.accel != nil {
		s.accel.Close()
	}
	return nil
}
