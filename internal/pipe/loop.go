package pipe

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ytscribe/internal/model"
)

type Resolver interface {
	Resolve(ctx context.Context, videoID string) (string, error)
}

const maxLineBytes = 1 << 20

// Run serves the newline-delimited JSON protocol: one request object per
// input line, one response object per output line, flushed immediately so an
// embedding process can read replies as they happen. Malformed lines,
// including lines longer than the line cap, produce an error response on
// their own line; the loop itself only ends on end-of-input, a read failure,
// or ctx cancellation.
func Run(ctx context.Context, r io.Reader, w io.Writer, res Resolver, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	out := bufio.NewWriter(w)
	encoder := json.NewEncoder(out)
	respond := func(resp model.PipeResponse) {
		if err := encoder.Encode(resp); err != nil {
			logger.Error("encode response", "error", err)
			return
		}
		if err := out.Flush(); err != nil {
			logger.Error("flush response", "error", err)
		}
	}

	in := bufio.NewReaderSize(r, maxLineBytes)
	for {
		line, err := in.ReadSlice('\n')
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			// A line that outgrows the buffer cannot be a valid request.
			// Skip the rest of it and answer like any other malformed line.
			discardErr := discardLine(in)
			respond(model.PipeResponse{Error: "Invalid JSON input"})
			if discardErr != nil {
				if errors.Is(discardErr, io.EOF) {
					return nil
				}
				return fmt.Errorf("read input: %w", discardErr)
			}
			continue
		case errors.Is(err, io.EOF):
			if len(line) == 0 {
				return nil
			}
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		var req model.TranscriptRequest
		if err := json.Unmarshal(line, &req); err != nil {
			respond(model.PipeResponse{Error: "Invalid JSON input"})
			continue
		}
		if strings.TrimSpace(req.VideoID) == "" {
			respond(model.PipeResponse{Error: "No video_id provided"})
			continue
		}

		transcript, err := res.Resolve(ctx, req.VideoID)
		if err != nil {
			logger.Warn("resolve failed", "video_id", req.VideoID, "error", err)
			respond(model.PipeResponse{Error: err.Error()})
			continue
		}
		respond(model.PipeResponse{Transcript: &transcript})
	}
}

// discardLine consumes input up to and including the next newline.
func discardLine(in *bufio.Reader) error {
	for {
		_, err := in.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return err
	}
}
