package tapewriter

import "go.uber.org/zap"

// defaultChapterSizeLog2 yields a 1 MiB chapter.
const defaultChapterSizeLog2 = 20

type options struct {
	chapterSizeLog2 uint8
	logger          *zap.SugaredLogger
}

func defaultOptions() *options {
	return &options{
		chapterSizeLog2: defaultChapterSizeLog2,
		logger:          zap.NewNop().Sugar(),
	}
}

// Option configures a Writer at construction time.
type Option func(*options)

// WithChapterSizeLog2 sets the chapter size to 1<<log2 bytes. The
// value must leave room for the largest record a caller intends to
// write, since a single record must fit within chapter_size/4 bytes.
func WithChapterSizeLog2(log2 uint8) Option {
	return func(o *options) { o.chapterSizeLog2 = log2 }
}

// WithLogger directs the writer's diagnostic logging (I/O failures
// surfaced outside the hot path) through logger instead of discarding
// it.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
