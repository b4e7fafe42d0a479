// Package ffmpeg wraps the ffmpeg command line for the three operations the
// exporter needs: stream-copy cutting of a sub-range from one part file,
// lossless concatenation of sub-segments into a single chapter file, and
// embedding chapter metadata into the finished segment.
//
// The wrapper treats ffmpeg as a black box. Every operation is a stream copy
// (-c copy), so no re-encoding happens and cuts land on frame boundaries,
// which is accurate enough for MP3 audiobook parts.
package ffmpeg
