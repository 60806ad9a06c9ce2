package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"vidserve/models"
)

// stderrTail caps how much encoder output an EncodeError carries.
const stderrTail = 4096

// EncodeH264 transcodes to H.264/AAC in an MP4 container optimized for
// progressive playback.
func EncodeH264(ctx context.Context, in, out string, p models.QualityProfile) error {
	return runFFmpeg(ctx, "h264", videoArgs(in, out, "libx264", p))
}

// EncodeHEVC transcodes to H.265/AAC. Better compression at the same
// quality factor, at the cost of slower encodes and narrower browser
// support.
func EncodeHEVC(ctx context.Context, in, out string, p models.QualityProfile) error {
	return runFFmpeg(ctx, "hevc", videoArgs(in, out, "libx265", p))
}

// videoArgs builds the ffmpeg argument list for one rendition. The
// bitrate cap uses maxrate with a 2x buffer; two threads so concurrent
// jobs do not starve the host; faststart moves the moov atom up front
// so playback can begin before the file is fully fetched.
func videoArgs(in, out, codec string, p models.QualityProfile) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", in,
		"-c:v", codec,
		"-crf", fmt.Sprint(p.CRF),
		"-maxrate", fmt.Sprintf("%dk", p.BitrateKbps),
		"-bufsize", fmt.Sprintf("%dk", 2*p.BitrateKbps),
		"-vf", fmt.Sprintf("scale=%d:%d", p.Width, p.Height),
		"-c:a", "aac",
		"-b:a", "128k",
		"-threads", "2",
		"-movflags", "+faststart",
		out,
	}
}

// runFFmpeg executes ffmpeg and wraps a non-zero exit into an
// EncodeError with the captured stderr tail.
func runFFmpeg(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w (%v)", ctx.Err(), err)
		}
		out := stderr.String()
		if len(out) > stderrTail {
			out = out[len(out)-stderrTail:]
		}
		return &EncodeError{Encoder: name, Output: out, Err: err}
	}
	return nil
}
