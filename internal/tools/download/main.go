// Command download fetches the RustPython WASI binary the playground runs.
//
//	go run ./internal/tools/download <url> <output> [sha256]
package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caffeineduck/pyplay/internal/logger"
)

var wasmMagic = []byte{0x00, 'a', 's', 'm'}

var (
	errNotWASM  = errors.New("response is not a WebAssembly module")
	errChecksum = errors.New("checksum mismatch")
)

func main() {
	if len(os.Args) < 3 || len(os.Args) > 4 {
		fmt.Fprintln(os.Stderr, "usage: download <url> <output> [sha256]")
		os.Exit(1)
	}

	url, output := os.Args[1], os.Args[2]
	var sum string
	if len(os.Args) == 4 {
		sum = os.Args[3]
	}

	if _, err := os.Stat(output); err == nil {
		logger.Infof("%s already present", output)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	n, err := fetch(ctx, http.DefaultClient, url, output, sum)
	if err != nil {
		logger.Errorf("download failed: %v", err)
		os.Exit(1)
	}
	logger.Infof("wrote %s (%d bytes) in %v", output, n, time.Since(start).Round(time.Millisecond))
}

// fetch downloads url into output. The file appears only once the body is
// complete, starts with the wasm magic and matches sum when one is given.
func fetch(ctx context.Context, client *http.Client, url, output, sum string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s: %s", url, resp.Status)
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(output), ".download-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	head := &prefixWriter{limit: len(wasmMagic)}
	n, err := io.Copy(io.MultiWriter(tmp, hash, head), resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}

	if !bytes.Equal(head.buf, wasmMagic) {
		return 0, errNotWASM
	}
	if sum != "" {
		got := hex.EncodeToString(hash.Sum(nil))
		if !strings.EqualFold(got, sum) {
			return 0, fmt.Errorf("%w: got %s", errChecksum, got)
		}
	}
	return n, os.Rename(tmp.Name(), output)
}

// prefixWriter keeps the first limit bytes written to it.
type prefixWriter struct {
	limit int
	buf   []byte
}

func (p *prefixWriter) Write(b []byte) (int, error) {
	if room := p.limit - len(p.buf); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		p.buf = append(p.buf, b[:room]...)
	}
	return len(b), nil
}
