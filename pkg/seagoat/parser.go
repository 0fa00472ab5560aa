// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package seagoat

import (
	"strconv"
	"strings"
)

// Hit is one line-ranged code excerpt returned by a search query.
// Code joins the captured source lines with "\n";
// EndLine-StartLine+1 equals the number of captured lines.
type Hit struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Code      string `json:"code"`
}

// parseSearchResults converts the raw "file:line:code" output of the
// seagoat CLI into hits, merging physically contiguous lines of the same
// file into a single hit.
//
// Each line is split on the first two colons only, so the code text may
// itself contain colons. Blank lines and lines whose line-number field is
// not an integer are skipped. A line extends the current hit iff it is in
// the same file and its line number is exactly EndLine+1; any gap or file
// change flushes the accumulator and starts a new hit. Hits are emitted
// in first-seen order.
func parseSearchResults(output string) []Hit {
	var (
		results []Hit
		current *Hit
	)

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 3 {
			continue
		}
		file, lineNumStr, code := parts[0], parts[1], parts[2]
		lineNum, err := strconv.Atoi(lineNumStr)
		if err != nil {
			continue
		}

		if current != nil && current.File == file && current.EndLine+1 == lineNum {
			current.EndLine = lineNum
			current.Code += "\n" + code
			continue
		}

		if current != nil {
			results = append(results, *current)
		}
		current = &Hit{
			File:      file,
			StartLine: lineNum,
			EndLine:   lineNum,
			Code:      code,
		}
	}

	if current != nil {
		results = append(results, *current)
	}
	return results
}
