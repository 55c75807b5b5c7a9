// Package media extracts still frames from session video via ffmpeg.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Sampler obtains a single still image from a video at a timestamp.
type Sampler interface {
	Frame(ctx context.Context, videoPath string, timestamp float64) ([]byte, error)
}

// FFmpegSampler shells out to ffmpeg for frame extraction. There is no
// in-process video decoder; ffmpeg is invoked once per frame with a
// bounded timeout.
type FFmpegSampler struct {
	binary  string
	timeout time.Duration
	dir     string
}

// NewFFmpegSampler creates a sampler using the given ffmpeg binary.
// Extracted frames pass through scratch files under dir (the system
// temp directory when empty); each call gets its own file, so
// concurrent sessions probing the same timestamp never collide.
func NewFFmpegSampler(binary string, timeout time.Duration, dir string) *FFmpegSampler {
	if binary == "" {
		binary = "ffmpeg"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &FFmpegSampler{binary: binary, timeout: timeout, dir: dir}
}

// Frame extracts one JPEG frame at the given timestamp. A decode
// failure or an out-of-range timestamp surfaces as an error; callers
// treat it as non-fatal and move to the next ladder offset.
func (s *FFmpegSampler) Frame(ctx context.Context, videoPath string, timestamp float64) ([]byte, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return nil, fmt.Errorf("create frames dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(s.dir, "frame_*.jpg")
	if err != nil {
		return nil, fmt.Errorf("create frame file: %w", err)
	}
	out := tmp.Name()
	tmp.Close()
	defer os.Remove(out)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// ffmpeg -ss <t> -i input -vframes 1 -q:v 2 -y output
	cmd := exec.CommandContext(ctxWithTimeout, s.binary,
		"-ss", strconv.FormatFloat(timestamp, 'f', 3, 64),
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		out,
	)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg at %.1fs: %w", timestamp, err)
	}

	frame, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read extracted frame: %w", err)
	}
	if len(frame) == 0 {
		// ffmpeg exits zero but writes nothing when seeking past the
		// end of the stream.
		return nil, fmt.Errorf("no frame at %.1fs (past end of video?)", timestamp)
	}

	return frame, nil
}
