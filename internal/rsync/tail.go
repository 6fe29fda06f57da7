package rsync

import "strings"

// tailBuffer 只保留最近 limit 行；\r 也按换行处理，兼容 rsync --progress 的原地刷新输出。
type tailBuffer struct {
	limit int
	lines []string
	cur   strings.Builder
}

func newTailBuffer(limit int) *tailBuffer {
	if limit < 1 {
		limit = 1
	}
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' || b == '\r' {
			t.flushLine()
			continue
		}
		t.cur.WriteByte(b)
	}
	return len(p), nil
}

func (t *tailBuffer) flushLine() {
	line := strings.TrimSpace(t.cur.String())
	t.cur.Reset()
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *tailBuffer) Lines() []string {
	t.flushLine()
	if len(t.lines) == 0 {
		return nil
	}
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}
