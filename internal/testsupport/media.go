package testsupport

import (
	"fmt"
	"path/filepath"
	"testing"
)

// SampleSRT is a two-cue bilingual subtitle file.
const SampleSRT = `1
00:00:01,000 --> 00:00:03,500
Hello there
你好

2
00:00:12,000 --> 00:00:15,000
This is a much longer English line for the preview
这是一个更长的中文句子用于预览
`

// FFprobeScript returns a stub ffprobe body that prints JSON for the given
// geometry.
func FFprobeScript(width, height int, duration string) string {
	return fmt.Sprintf(`cat <<'JSON'
{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":%d,"height":%d,"duration":"%s"}],
 "format":{"filename":"in.mp4","duration":"%s","format_name":"mov,mp4"}}
JSON`, width, height, duration, duration)
}

// FFmpegScript returns a stub ffmpeg body that prints a duration banner and
// progress lines, then writes size bytes to the last argument.
func FFmpegScript(size int) string {
	return fmt.Sprintf(`for last; do :; done
printf 'Input #0, mov,mp4\n  Duration: 00:00:10.00, start: 0.000000\n' >&2
printf 'frame=  10 time=00:00:05.00 bitrate=1\rframe=  20 time=00:00:09.90 bitrate=1\r' >&2
head -c %d /dev/zero > "$last"
exit 0`, size)
}

// StubTools writes ffmpeg and ffprobe stubs into a temp bin directory and
// returns their paths.
func StubTools(t testing.TB, ffmpegBody, ffprobeBody string) (string, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "bin")
	return WriteScript(t, filepath.Join(dir, "ffmpeg"), ffmpegBody),
		WriteScript(t, filepath.Join(dir, "ffprobe"), ffprobeBody)
}
