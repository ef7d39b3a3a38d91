package metadata

import (
	"errors"
	"os"
)

var errNoVorbisComment = errors.New("metadata: no vorbis comment block")

func openForRead(path string) (*os.File, error) {
	return os.Open(path)
}
