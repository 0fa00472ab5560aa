// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package seagoat

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestParseSearchResults(t *testing.T) {
	testCases := []struct {
		name     string
		output   string
		expected []Hit
	}{
		{
			name:     "empty output",
			output:   "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			output:   "\n\n  \n",
			expected: nil,
		},
		{
			name:   "single line",
			output: "main.py:10:def main():",
			expected: []Hit{
				{File: "main.py", StartLine: 10, EndLine: 10, Code: "def main():"},
			},
		},
		{
			name:   "contiguous lines merge",
			output: "a.py:1:import os\na.py:2:import sys",
			expected: []Hit{
				{File: "a.py", StartLine: 1, EndLine: 2, Code: "import os\nimport sys"},
			},
		},
		{
			name:   "gap splits hits",
			output: "a.py:1:import os\na.py:5:def f():",
			expected: []Hit{
				{File: "a.py", StartLine: 1, EndLine: 1, Code: "import os"},
				{File: "a.py", StartLine: 5, EndLine: 5, Code: "def f():"},
			},
		},
		{
			name:   "file change splits hits even when contiguous",
			output: "a.py:1:import os\nb.py:2:import sys",
			expected: []Hit{
				{File: "a.py", StartLine: 1, EndLine: 1, Code: "import os"},
				{File: "b.py", StartLine: 2, EndLine: 2, Code: "import sys"},
			},
		},
		{
			name:   "colons in code are preserved",
			output: "conf.yaml:3:key: value: extra",
			expected: []Hit{
				{File: "conf.yaml", StartLine: 3, EndLine: 3, Code: "key: value: extra"},
			},
		},
		{
			name:   "empty code field",
			output: "a.py:7:",
			expected: []Hit{
				{File: "a.py", StartLine: 7, EndLine: 7, Code: ""},
			},
		},
		{
			name:   "non-integer line number is skipped",
			output: "a.py:1:import os\nwarning: something happened\na.py:2:import sys",
			expected: []Hit{
				{File: "a.py", StartLine: 1, EndLine: 2, Code: "import os\nimport sys"},
			},
		},
		{
			name:   "line with too few fields is skipped",
			output: "garbage\na.py:1:import os",
			expected: []Hit{
				{File: "a.py", StartLine: 1, EndLine: 1, Code: "import os"},
			},
		},
		{
			name:   "blank interior lines are skipped without splitting",
			output: "a.py:1:import os\n\na.py:2:import sys",
			expected: []Hit{
				{File: "a.py", StartLine: 1, EndLine: 2, Code: "import os\nimport sys"},
			},
		},
		{
			name:   "hits keep first-seen order",
			output: "b.py:9:x = 1\na.py:3:y = 2\nb.py:10:z = 3",
			expected: []Hit{
				{File: "b.py", StartLine: 9, EndLine: 9, Code: "x = 1"},
				{File: "a.py", StartLine: 3, EndLine: 3, Code: "y = 2"},
				{File: "b.py", StartLine: 10, EndLine: 10, Code: "z = 3"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.DeepEqual(t, parseSearchResults(tc.output), tc.expected)
		})
	}
}
