package solve

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelscutari/dutrace/internal/config"
	"github.com/michaelscutari/dutrace/internal/fstree"
	"github.com/michaelscutari/dutrace/internal/transcript"
)

func TestFileSample(t *testing.T) {
	for _, memoize := range []bool{false, true} {
		opts := OptionsFromConfig(config.Default())
		opts.Memoize = memoize

		res, err := File("../transcript/testdata/sample.txt", opts, nil)
		require.NoError(t, err)

		assert.Equal(t, 23, res.Events)
		assert.Equal(t, int64(95437), res.Part1)
		assert.Equal(t, int64(24933642), res.Part2)
		assert.Equal(t, int64(8381165), res.Free.ToFree)

		var buf bytes.Buffer
		require.NoError(t, res.WriteAnswers(&buf))
		assert.Equal(t, "Part 1: 95437\nPart 2: 24933642\n", buf.String())
	}
}

func TestReaderSurfacesErrorKinds(t *testing.T) {
	opts := OptionsFromConfig(config.Default())

	_, err := Reader(strings.NewReader("$ cd /\nnot a line\n"), opts, nil)
	assert.True(t, errors.Is(err, transcript.ErrMalformedLine), "got %v", err)

	_, err = Reader(strings.NewReader("$ cd /\n$ cd ..\n"), opts, nil)
	assert.True(t, errors.Is(err, fstree.ErrRootEscape), "got %v", err)
}

func TestFileMissing(t *testing.T) {
	_, err := File("testdata/does-not-exist.txt", OptionsFromConfig(config.Default()), nil)
	assert.Error(t, err)
}
