package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"videoproc/encoder"
	"videoproc/internal/testvideo"
	"videoproc/processor"
	vptypes "videoproc/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFindVideos(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mov", "a.mp4", "c.mkv", "d.avi", "notes.txt", "e.MP4", "f.webm"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755))

	files, err := FindVideos(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.mov"),
		filepath.Join(dir, "c.mkv"),
		filepath.Join(dir, "d.avi"),
	}, files)
}

func TestFindVideosMissingDir(t *testing.T) {
	_, err := FindVideos(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrInputDir)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "processed_clip.avi", OutputName("/videos/clip.avi"))
}

func TestProcessDirMissingInput(t *testing.T) {
	_, err := ProcessDir(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir(), vptypes.OpGray, vptypes.Params{}, Options{})
	assert.ErrorIs(t, err, ErrInputDir)
}

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	key := "run/" + filepath.Base(localPath)
	f.keys = append(f.keys, key)
	return key, nil
}

func TestProcessDir(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	testvideo.Write(t, filepath.Join(in, "one.avi"), 4, 32, 24, 10)
	testvideo.Write(t, filepath.Join(in, "two.avi"), 3, 32, 24, 10)
	touch(t, filepath.Join(in, "broken.mp4"))

	up := &fakeUploader{}
	res, err := ProcessDir(context.Background(), in, out, vptypes.OpResize, vptypes.Params{Scale: 0.5}, Options{
		Parallel:  2,
		Upload:    up,
		Processor: []processor.Option{processor.WithEncoder(encoder.New("MJPG")), processor.WithProbe(false)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(in, "broken.mp4")}, res.Skipped)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{
		filepath.Join(out, "processed_one.avi"),
		filepath.Join(out, "processed_two.avi"),
	}, res.Processed)
	for _, p := range res.Processed {
		assert.FileExists(t, p)
	}
	assert.ElementsMatch(t, []string{"run/processed_one.avi", "run/processed_two.avi"}, up.keys)
}

func TestProcessDirUploadFailure(t *testing.T) {
	in := t.TempDir()
	testvideo.Write(t, filepath.Join(in, "one.avi"), 2, 16, 16, 10)

	res, err := ProcessDir(context.Background(), in, t.TempDir(), vptypes.OpGray, vptypes.Params{}, Options{
		Upload:    &fakeUploader{err: errors.New("bucket gone")},
		Processor: []processor.Option{processor.WithEncoder(encoder.New("MJPG")), processor.WithProbe(false)},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Processed)
	assert.Len(t, res.Failed, 1)
}
