package scan

import (
	"fmt"
	"regexp"
)

// NFS snapshot directories mirror the whole tree and would double every size.
var defaultExcludes = []*regexp.Regexp{
	regexp.MustCompile(`/\.snapshot(/|$)`),
}

// Options configures how a directory is recorded.
type Options struct {
	Xdev      bool // stay on the root's filesystem
	MaxErrors int  // unreadable directories tolerated, 0 = unlimited

	exclude []*regexp.Regexp
}

// DefaultOptions stays on one filesystem and skips NFS snapshots.
func DefaultOptions() *Options {
	return &Options{
		Xdev:    true,
		exclude: append([]*regexp.Regexp(nil), defaultExcludes...),
	}
}

// NewOptions compiles extra exclude patterns on top of the defaults.
func NewOptions(xdev bool, maxErrors int, excludes ...string) (*Options, error) {
	opts := DefaultOptions()
	opts.Xdev = xdev
	opts.MaxErrors = maxErrors
	for _, pattern := range excludes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		opts.exclude = append(opts.exclude, re)
	}
	return opts, nil
}

func (o *Options) excluded(path string) bool {
	for _, re := range o.exclude {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
