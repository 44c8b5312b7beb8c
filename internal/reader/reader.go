// Package reader defines the log reader contract: given a single binary log
// file, produce per-channel statistics. The catalog core never decodes
// message payloads; it only consumes the structural facts below.
package reader

import "context"

// ChannelInfo summarizes one channel (topic) within a single log file.
// Timestamps are seconds since the Unix epoch.
type ChannelInfo struct {
	// Topic is the channel name, e.g. "/gps".
	Topic string
	// MessageType is the schema name of the channel's messages,
	// e.g. "sensor_msgs/msg/NavSatFix".
	MessageType string
	// Count is the number of messages observed on the channel.
	Count int64
	// StartTime is the timestamp of the earliest message.
	StartTime float64
	// EndTime is the timestamp of the latest message.
	EndTime float64
}

// Reader scans a single log file and reports per-channel statistics.
//
// Implementations must be safe for sequential reuse across files. A scan
// reads the whole file; there is no incremental or resumable mode.
type Reader interface {
	// ScanFile reads the file at path and returns one ChannelInfo per
	// distinct channel, in unspecified order. A file with no messages
	// yields an empty slice.
	ScanFile(ctx context.Context, path string) ([]ChannelInfo, error)
}
