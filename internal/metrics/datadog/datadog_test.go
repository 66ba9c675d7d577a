package datadog

import (
	"net"
	"strings"
	"testing"
	"time"

	"newsingest/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("expected error for empty Addr")
	}
}

func TestLabelsToTags(t *testing.T) {
	got := labelsToTags(metrics.Labels{"step": "file", "job": "news", "status": "success"})
	want := "job:news,status:success,step:file"
	if strings.Join(got, ",") != want {
		t.Fatalf("tags = %v, want %s", got, want)
	}
	if labelsToTags(nil) != nil {
		t.Fatalf("nil labels should produce nil tags")
	}
}

func TestBackend_SendsOverUDP(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer conn.Close()

	b, err := NewBackend(Config{Addr: conn.LocalAddr().String(), Namespace: "news."})
	if err != nil {
		t.Fatalf("NewBackend error: %v", err)
	}
	b.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"outcome": "ingested"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1024)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read datagram: %v", err)
	}
	got := string(buf[:n])
	if !strings.Contains(got, "news."+metrics.FilesTotal+":1|c") || !strings.Contains(got, "outcome:ingested") {
		t.Fatalf("datagram = %q", got)
	}
}

func TestZeroBackendIsSafe(t *testing.T) {
	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
}
