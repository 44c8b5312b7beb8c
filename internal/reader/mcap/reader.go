// Package mcap implements the reader contract for MCAP container files
// using the official MCAP Go library.
package mcap

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"bagman/internal/reader"

	"github.com/foxglove/mcap/go/mcap"
)

// Reader scans MCAP files. The zero value is ready to use.
type Reader struct{}

var _ reader.Reader = (*Reader)(nil)

// New creates an MCAP file reader.
func New() *Reader {
	return &Reader{}
}

// ScanFile reads every message in the MCAP file at path and accumulates
// per-channel counts and time bounds. Message log times are nanoseconds in
// the container and are converted to float seconds here.
func (r *Reader) ScanFile(ctx context.Context, path string) ([]reader.ChannelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mcap file: %w", err)
	}
	defer f.Close()

	mr, err := mcap.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read mcap header: %w", err)
	}
	defer mr.Close()

	it, err := mr.Messages(mcap.UsingIndex(false))
	if err != nil {
		return nil, fmt.Errorf("iterate mcap messages: %w", err)
	}

	channels := make(map[string]*reader.ChannelInfo)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		schema, channel, message, err := it.NextInto(nil)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read mcap message: %w", err)
		}

		ts := float64(message.LogTime) / 1e9
		info, ok := channels[channel.Topic]
		if !ok {
			info = &reader.ChannelInfo{
				Topic:     channel.Topic,
				StartTime: ts,
				EndTime:   ts,
			}
			channels[channel.Topic] = info
		}
		if schema != nil {
			info.MessageType = schema.Name
		}
		info.Count++
		if ts < info.StartTime {
			info.StartTime = ts
		}
		if ts > info.EndTime {
			info.EndTime = ts
		}
	}

	out := make([]reader.ChannelInfo, 0, len(channels))
	for _, info := range channels {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out, nil
}
