package executor

import (
	"bytes"
	"testing"
	"time"
)

func TestDefaultRunConfig(t *testing.T) {
	cfg := defaultRunConfig()
	if cfg.timeout != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", cfg.timeout)
	}

	WithTimeout(5 * time.Second)(&cfg)
	WithEnv("A", "1")(&cfg)
	if cfg.timeout != 5*time.Second || cfg.env["A"] != "1" {
		t.Errorf("options not applied: %+v", cfg)
	}
}

func TestParseMemoryLimit(t *testing.T) {
	tests := map[string]uint32{
		"16mb":  MemoryLimit16MB,
		"64MB":  MemoryLimit64MB,
		"256mb": MemoryLimit256MB,
		"1gb":   MemoryLimit1GB,
		"lots":  0,
	}
	for in, want := range tests {
		if got := ParseMemoryLimit(in); got != want {
			t.Errorf("ParseMemoryLimit(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestRunOutputForwards(t *testing.T) {
	var sink bytes.Buffer
	out := newRunOutput(&sink)
	out.Write([]byte("a"))
	out.Write([]byte("b"))

	if out.String() != "ab" || sink.String() != "ab" {
		t.Errorf("out=%q sink=%q", out.String(), sink.String())
	}
}
