package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	vptypes "videoproc/types"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// videoProbe 只关心视频流和容器时长
type videoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		NbFrames     string `json:"nb_frames"`      // 有些视频是字符串
		AvgFrameRate string `json:"avg_frame_rate"` // 例如 "30000/1001"
		RFrameRate   string `json:"r_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe 通过 ffprobe 读取视频信息
func Probe(ctx context.Context, path string) (vptypes.VideoInfo, error) {
	type result struct {
		out string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := ffmpeg.Probe(path)
		ch <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		return vptypes.VideoInfo{}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return vptypes.VideoInfo{}, fmt.Errorf("ffprobe error: %w", r.err)
		}
		return parseProbe(r.out)
	}
}

func parseProbe(probeStr string) (vptypes.VideoInfo, error) {
	var probe videoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return vptypes.VideoInfo{}, fmt.Errorf("json unmarshal error: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info := vptypes.VideoInfo{
			Width:  stream.Width,
			Height: stream.Height,
			Codec:  stream.CodecName,
		}
		info.FPS = parseRate(stream.AvgFrameRate)
		if info.FPS == 0 {
			info.FPS = parseRate(stream.RFrameRate)
		}
		info.Duration = parseFloat(stream.Duration)
		if info.Duration == 0 {
			info.Duration = parseFloat(probe.Format.Duration)
		}
		if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
			info.FrameCount = n
		} else if info.FPS > 0 && info.Duration > 0 {
			// nb_frames 缺失时用帧率 * 时长估算
			info.FrameCount = int(math.Round(info.FPS * info.Duration))
		}
		return info, nil
	}

	return vptypes.VideoInfo{}, fmt.Errorf("no video stream found")
}

// parseRate 解析 "num/den" 形式的帧率
func parseRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		return parseFloat(rate)
	}
	num, _ := strconv.ParseFloat(parts[0], 64)
	den, _ := strconv.ParseFloat(parts[1], 64)
	if den == 0 {
		return 0
	}
	return num / den
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
