package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// stubFFmpeg writes a fake ffmpeg that copies the input path into the
// output frame, so tests can tell which video a frame came from.
func stubFFmpeg(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func touchVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFrame_ConcurrentSameTimestampDifferentVideos(t *testing.T) {
	// Args: -ss <t> -i <video> -vframes 1 -q:v 2 -y <out>
	binary := stubFFmpeg(t, `printf 'frame-of:%s' "$4" > "${10}"`)

	dir := t.TempDir()
	videoA := touchVideo(t, dir, "a.mp4")
	videoB := touchVideo(t, dir, "b.mp4")

	sampler := NewFFmpegSampler(binary, 10*time.Second, "")

	var wg sync.WaitGroup
	frames := make([]string, 2)
	for i, video := range []string{videoA, videoB} {
		wg.Add(1)
		go func(i int, video string) {
			defer wg.Done()
			for n := 0; n < 10; n++ {
				frame, err := sampler.Frame(context.Background(), video, 30)
				if err != nil {
					t.Errorf("Frame failed for %s: %v", video, err)
					return
				}
				frames[i] = string(frame)
				if !strings.HasSuffix(frames[i], video) {
					t.Errorf("Frame for %s came from another video: %q", video, frames[i])
					return
				}
			}
		}(i, video)
	}
	wg.Wait()
}

func TestFrame_UsesConfiguredScratchDir(t *testing.T) {
	framesDir := filepath.Join(t.TempDir(), "frames")
	// Leave a breadcrumb proving the scratch file lived under framesDir.
	binary := stubFFmpeg(t, `printf '%s' "${10}" > "${10}"`)
	video := touchVideo(t, t.TempDir(), "session.mp4")

	sampler := NewFFmpegSampler(binary, 10*time.Second, framesDir)

	frame, err := sampler.Frame(context.Background(), video, 5)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if !strings.HasPrefix(string(frame), framesDir+string(os.PathSeparator)) {
		t.Errorf("Expected scratch file under %s, got %q", framesDir, frame)
	}
}

func TestFrame_EmptyOutputIsError(t *testing.T) {
	// ffmpeg exits zero but writes nothing when seeking past the end.
	binary := stubFFmpeg(t, `true`)
	video := touchVideo(t, t.TempDir(), "session.mp4")

	sampler := NewFFmpegSampler(binary, 10*time.Second, "")

	if _, err := sampler.Frame(context.Background(), video, 99999); err == nil {
		t.Error("Expected error for empty frame output")
	}
}

func TestFrame_MissingVideo(t *testing.T) {
	sampler := NewFFmpegSampler("ffmpeg", 10*time.Second, "")
	if _, err := sampler.Frame(context.Background(), "/nonexistent/video.mp4", 5); err == nil {
		t.Error("Expected error for missing video file")
	}
}
