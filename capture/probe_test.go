package capture

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"videoproc/internal/testvideo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeJSON = `{
  "streams": [
    {"codec_type": "audio", "codec_name": "aac", "avg_frame_rate": "0/0"},
    {"codec_type": "video", "codec_name": "h264", "width": 640, "height": 360,
     "nb_frames": "", "avg_frame_rate": "30000/1001", "r_frame_rate": "30000/1001", "duration": "10.010000"}
  ],
  "format": {"duration": "10.050000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe(probeJSON)
	require.NoError(t, err)

	assert.Equal(t, "h264", info.Codec)
	assert.Equal(t, 640, info.Width)
	assert.Equal(t, 360, info.Height)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.InDelta(t, 10.01, info.Duration, 0.001)
	assert.Equal(t, 300, info.FrameCount)
}

func TestParseProbeNbFramesAndFormatDuration(t *testing.T) {
	info, err := parseProbe(`{"streams":[{"codec_type":"video","nb_frames":"42","avg_frame_rate":"0/0","r_frame_rate":"25/1"}],"format":{"duration":"1.68"}}`)
	require.NoError(t, err)

	assert.Equal(t, 42, info.FrameCount)
	assert.Equal(t, 25.0, info.FPS)
	assert.Equal(t, 1.68, info.Duration)
}

func TestParseProbeNoVideoStream(t *testing.T) {
	_, err := parseProbe(`{"streams":[{"codec_type":"audio"}]}`)
	assert.Error(t, err)

	_, err = parseProbe(`not json`)
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 25.0, parseRate("25/1"))
	assert.Equal(t, 0.0, parseRate("0/0"))
	assert.Equal(t, 0.0, parseRate("1/0"))
	assert.Equal(t, 12.5, parseRate("12.5"))
	assert.Equal(t, 0.0, parseRate(""))
}

func TestProbeVideoFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
	path := filepath.Join(t.TempDir(), "clip.avi")
	testvideo.Write(t, path, 5, 64, 48, 10)

	info, err := Probe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 48, info.Height)
	assert.Equal(t, "mjpeg", info.Codec)
}
