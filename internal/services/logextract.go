package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// LogExtractionResult carries either a line-range or a time-range extraction
// outcome. On failure Content holds the diagnostic text and LineCount is 0.
type LogExtractionResult struct {
	Success   bool   `json:"success"`
	Content   string `json:"content"`
	LineCount int    `json:"lineCount"`
	StartLine int    `json:"startLine,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// LogExtractor composes the executor and the transfer engine into log
// extraction operations. Nothing is parsed locally beyond the fixed result
// payload; the heavy lifting always happens on the remote host.
type LogExtractor struct {
	executor *Executor
	transfer *Transfer
}

func NewLogExtractor(executor *Executor, transfer *Transfer) *LogExtractor {
	return &LogExtractor{executor: executor, transfer: transfer}
}

// ExtractByLineRange returns the closed interval [startLine, endLine] of the
// remote file, or everything from startLine when endLine is 0. Remote
// failures fold into a failure result; only an unknown session id comes back
// as an error.
func (x *LogExtractor) ExtractByLineRange(sessionID, filePath string, startLine, endLine int) (*LogExtractionResult, error) {
	var cmd string
	if endLine > 0 {
		cmd = fmt.Sprintf("head -n %d %s | tail -n %d", endLine, shellQuote(filePath), endLine-startLine+1)
	} else {
		cmd = fmt.Sprintf("tail -n +%d %s", startLine, shellQuote(filePath))
	}

	fail := func(msg string) *LogExtractionResult {
		return &LogExtractionResult{Content: msg, StartLine: startLine, EndLine: endLine}
	}

	res, err := x.executor.Execute(sessionID, cmd)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return fail("log extraction failed: " + err.Error()), nil
	}
	if res.ExitCode != 0 {
		return fail("log extraction failed: " + strings.TrimSpace(res.Stderr)), nil
	}

	content := strings.TrimSuffix(res.Stdout, "\n")
	return &LogExtractionResult{
		Success:   true,
		Content:   content,
		LineCount: len(strings.Split(content, "\n")), // empty content counts as 1
		StartLine: startLine,
		EndLine:   endLine,
	}, nil
}

// timeRangeScript is the scanner uploaded to the remote host. Parameters are
// substituted as quoted literal values, never re-evaluated as code.
//
// Timestamps are assumed non-decreasing in file order: the scan stops at the
// first post-window timestamp once at least one line has matched, so
// out-of-order logs come back incomplete with no error signaled.
const timeRangeScript = `#!/bin/sh
FILE=@FILE@
PATTERN=@PATTERN@
TARGET=@TARGET@
RANGE_SECS=@RANGE@

target_epoch=$(date -d "$TARGET" +%s 2>/dev/null)
if [ -z "$target_epoch" ]; then
    echo "ERROR:invalid target time: $TARGET"
    exit 3
fi
win_start=$((target_epoch - RANGE_SECS))
win_end=$((target_epoch + RANGE_SECS))

buf=''
count=0
first_ts=''
last_ts=''
in_window=0

while IFS= read -r line || [ -n "$line" ]; do
    ts=$(printf '%s\n' "$line" | grep -oE "$PATTERN" | head -n 1)
    if [ -n "$ts" ]; then
        epoch=$(date -d "$ts" +%s 2>/dev/null)
        if [ -z "$epoch" ]; then
            # unparseable timestamp: skip without breaking the run
            continue
        fi
        if [ "$epoch" -ge "$win_start" ] && [ "$epoch" -le "$win_end" ]; then
            buf="${buf}${line}\n"
            count=$((count + 1))
            if [ -z "$first_ts" ]; then
                first_ts="$ts"
            fi
            last_ts="$ts"
            in_window=1
        elif [ "$epoch" -gt "$win_end" ] && [ "$count" -gt 0 ]; then
            break
        else
            in_window=0
        fi
    elif [ "$in_window" -eq 1 ]; then
        # no timestamp: continuation of the previous in-window line
        buf="${buf}${line}\n"
        count=$((count + 1))
    fi
done < "$FILE"

printf 'CONTENT:%s\n' "$buf"
printf 'COUNT:%s\n' "$count"
printf 'FIRST:%s\n' "$first_ts"
printf 'LAST:%s\n' "$last_ts"
`

func buildTimeRangeScript(filePath, timePattern, targetTime string, minutesRange int) string {
	return strings.NewReplacer(
		"@FILE@", shellQuote(filePath),
		"@PATTERN@", shellQuote(timePattern),
		"@TARGET@", shellQuote(targetTime),
		"@RANGE@", strconv.Itoa(minutesRange*60),
	).Replace(timeRangeScript)
}

// ExtractByTimeRange collects the lines of the remote file timestamped
// inside [targetTime - minutesRange, targetTime + minutesRange]. The scan
// runs as a generated script on the remote host: uploaded through the
// transfer engine, executed through the executor, and always removed
// afterwards. Every failure along the way folds into a failure result;
// only an unknown session id comes back as an error.
func (x *LogExtractor) ExtractByTimeRange(sessionID, filePath, targetTime, timePattern string, minutesRange int) (*LogExtractionResult, error) {
	fail := func(msg string) *LogExtractionResult {
		return &LogExtractionResult{Content: msg}
	}

	scriptPath := fmt.Sprintf("/tmp/.logscan_%s.sh", uuid.NewString())
	script := buildTimeRangeScript(filePath, timePattern, targetTime, minutesRange)

	if err := x.transfer.Upload(sessionID, script, scriptPath); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return fail("script upload failed: " + err.Error()), nil
	}
	// Best-effort removal, success or failure: leftover scanners must not
	// accumulate on the remote host.
	defer x.executor.Execute(sessionID, "rm -f "+shellQuote(scriptPath))

	res, err := x.executor.Execute(sessionID, fmt.Sprintf("chmod +x %s && %s", shellQuote(scriptPath), shellQuote(scriptPath)))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return fail("script execution failed: " + err.Error()), nil
	}
	if res.ExitCode != 0 {
		if msg, ok := strings.CutPrefix(strings.TrimSpace(res.Stdout), "ERROR:"); ok {
			return fail(msg), nil
		}
		return fail("script execution failed: " + strings.TrimSpace(res.Stderr)), nil
	}

	result, ok := parseTimeRangePayload(res.Stdout)
	if !ok {
		return fail("failed to parse extraction result"), nil
	}
	return result, nil
}

// parseTimeRangePayload decodes the scanner's KEY:value output. Collected
// lines travel as a single CONTENT line with literal \n separators, restored
// here.
func parseTimeRangePayload(stdout string) (*LogExtractionResult, bool) {
	var content, first, last string
	count := -1
	seenContent := false

	for _, line := range strings.Split(stdout, "\n") {
		switch {
		case strings.HasPrefix(line, "CONTENT:"):
			content = strings.TrimPrefix(line, "CONTENT:")
			seenContent = true
		case strings.HasPrefix(line, "COUNT:"):
			if n, err := strconv.Atoi(strings.TrimPrefix(line, "COUNT:")); err == nil {
				count = n
			}
		case strings.HasPrefix(line, "FIRST:"):
			first = strings.TrimPrefix(line, "FIRST:")
		case strings.HasPrefix(line, "LAST:"):
			last = strings.TrimPrefix(line, "LAST:")
		}
	}

	if !seenContent || count < 0 {
		return nil, false
	}

	content = strings.TrimSuffix(strings.ReplaceAll(content, `\n`, "\n"), "\n")
	return &LogExtractionResult{
		Success:   true,
		Content:   content,
		LineCount: count,
		StartTime: first,
		EndTime:   last,
	}, true
}

// shellQuote wraps s in single quotes so it reaches the remote shell as one
// literal word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
