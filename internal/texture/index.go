package texture

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// extRank orders the formats an Index accepts; when two files share a stem
// the higher rank wins, preferring formats that carry alpha.
var extRank = map[string]int{
	".jpg":  1,
	".jpeg": 1,
	".bmp":  2,
	".tga":  3,
	".png":  4,
}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string
}

// BuildIndex scans dir recursively for texture files. A missing dir gives an
// empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logrus.WithError(err).WithField("path", path).Debug("texture index skipped entry")
			return nil
		}
		if !d.IsDir() {
			idx.add(path)
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("dir", dir).Warn("texture index walk failed")
	}
	return idx
}

func (idx *Index) add(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	rank, ok := extRank[ext]
	if !ok {
		return
	}
	stem := stemOf(path)
	if existing, exists := idx.entries[stem]; exists && extRank[strings.ToLower(filepath.Ext(existing))] >= rank {
		return
	}
	idx.entries[stem] = path
}

func stemOf(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ResolvePath returns the file for a texture name, ignoring any directory
// prefix, extension and case in the name.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	path, ok := idx.entries[stemOf(texName)]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
