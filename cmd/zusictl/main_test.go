package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/zusictl/internal/protocol"
	"github.com/danmuck/zusictl/internal/protocol/schema"
	"github.com/danmuck/zusictl/internal/testutil/testlog"
	"github.com/danmuck/zusictl/internal/testutil/zusitest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != version+"\n" {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zusictl.toml")
	if _, err := execute(t, "config", "init", "--output", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := execute(t, "config", "init", "--output", path); err == nil {
		t.Fatalf("expected init to refuse an existing file")
	}
	out, err := execute(t, "config", "validate", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "ok (address=127.0.0.1:1436") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zusictl.toml")
	if err := os.WriteFile(path, []byte(`handshake_timeout = "fast"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := execute(t, "config", "validate", path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadClientConfigUsesBuildVersion(t *testing.T) {
	cfg, err := loadClientConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.ClientVersion != version {
		t.Fatalf("expected client version %q, got %q", version, cfg.ClientVersion)
	}
}

func TestDumpPrintsEveryMessage(t *testing.T) {
	var stream bytes.Buffer
	hello := schema.HelloRequest("Fahrpult", "2.0")
	ack := zusitest.HelloAck(0, "3.5", "")
	for _, msg := range []protocol.Node{hello, ack} {
		if err := protocol.Encode(&stream, &msg); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "capture.bin")
	if err := os.WriteFile(path, stream.Bytes(), 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}

	out, err := execute(t, "dump", path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Count(out, "# message ") != 2 {
		t.Fatalf("expected two messages:\n%s", out)
	}
	if !strings.Contains(out, `as_str = "Fahrpult"`) || !strings.Contains(out, "Node, ID = 0x2 [") {
		t.Fatalf("unexpected dump output:\n%s", out)
	}
}

func TestDumpReportsTruncation(t *testing.T) {
	err := dump(bytes.NewReader([]byte{0, 0, 0, 0, 1}), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "message 0") {
		t.Fatalf("expected truncation error, got %v", err)
	}
}

func TestRunConnectWatchPrintsReadings(t *testing.T) {
	testlog.Start(t)
	host := &zusitest.Host{
		Version: "3.5.0.0",
		Data: []protocol.Node{
			zusitest.DataFTD(map[uint16]float32{0x0001: 16.5}, 0x0001),
		},
	}
	cfg, err := loadClientConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.Address = zusitest.Listen(t, host)
	cfg.CabDisplays = []uint16{0x0001}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	var out, capture bytes.Buffer
	if err := runConnect(ctx, cfg, watchOptions{enabled: true, capture: &capture}, &out); err != nil {
		t.Fatalf("connect: %v", err)
	}
	for _, want := range []string{"zusi 3.5.0.0", "cab_displays=1", "DATA_FTD 0x0001 16.5"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}

	recorded, err := protocol.Decode(&capture)
	if err != nil {
		t.Fatalf("decode capture: %v", err)
	}
	if !recorded.Equal(&host.Data[0]) {
		t.Fatalf("unexpected recorded message:\n%v", recorded)
	}
}

func TestRunConnectRejected(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadClientConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.Address = zusitest.Listen(t, &zusitest.Host{NeededDataResult: 2})
	err = runConnect(context.Background(), cfg, watchOptions{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "did not accept the NEEDED_DATA command (code=2)") {
		t.Fatalf("expected NEEDED_DATA rejection, got %v", err)
	}
}

func TestFormatReadingPadsIDs(t *testing.T) {
	tests := []struct {
		cmd  uint16
		r    schema.Reading
		want string
	}{
		{schema.CmdDataFTD, schema.Reading{ID: 0x0001, Value: protocol.NewAttributeFloat32(0x0001, 16.5)}, "DATA_FTD 0x0001 16.5"},
		{schema.CmdDataProg, schema.Reading{ID: 0x001B, Value: protocol.NewAttributeUint16(0x001B, 7)}, "DATA_PROG 0x001b [7 0]"},
		{schema.CmdDataOperation, schema.Reading{ID: 0x1234, Value: protocol.NewAttributeUint8(0x1234, 1)}, "DATA_OPERATION 0x1234 [1]"},
	}
	for _, tc := range tests {
		if got := formatReading(tc.cmd, tc.r); got != tc.want {
			t.Fatalf("formatReading=%q, want %q", got, tc.want)
		}
	}
}
