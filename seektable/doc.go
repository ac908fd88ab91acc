// SPDX-License-Identifier: EPL-2.0

// Package seektable builds FLAC seek tables.
//
// A seek point specification is a ';' separated list of entries:
//
//	X      a placeholder point
//	4096   a point at sample 4096
//	10x    10 points evenly spaced over the stream
//	2.5s   a point every 2.5 seconds
//
// Add expands the specification against the stream length, decodes every
// frame to find the frame that holds each target sample, and stores the
// result in the file's SEEKTABLE block. Each point names the first sample
// of its frame and the frame's byte offset from the first frame header.
//
//	report, err := seektable.Add("song.flac", seektable.WithSpec("10s;"))
package seektable
