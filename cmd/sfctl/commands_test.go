package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/serialforce/internal/object"
	"github.com/danmuck/serialforce/internal/testutil/testlog"
)

const doc = `
title = "inventory"

[owner]
name = "ada"
tags = ["x", "y"]
`

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestEncodeInspectGetVerify(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.toml")
	out := filepath.Join(dir, "doc.sf")
	if err := os.WriteFile(in, []byte(doc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	if code, _, stderr := runCmd(t, "encode", "-in", in, "-out", out); code != 0 {
		t.Fatalf("encode: code=%d stderr=%s", code, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	var d object.SerialDictionary
	if err := object.Unmarshal(data, &d); err != nil || d.Len() != 2 {
		t.Fatalf("encoded envelope: len=%d err=%v", d.Len(), err)
	}

	code, stdout, stderr := runCmd(t, "inspect", "-in", out)
	if code != 0 {
		t.Fatalf("inspect: code=%d stderr=%s", code, stderr)
	}
	var tree map[string]any
	if err := json.Unmarshal([]byte(stdout), &tree); err != nil || tree["type"] != object.NameSerialDictionary {
		t.Fatalf("inspect output: %v %s", err, stdout)
	}

	code, stdout, _ = runCmd(t, "get", "-in", out, "-path", "owner.tags.1")
	if code != 0 || !strings.Contains(stdout, `"value": "y"`) {
		t.Fatalf("get: code=%d out=%s", code, stdout)
	}
	if code, _, _ := runCmd(t, "get", "-in", out, "-path", "owner.nope"); code != 1 {
		t.Fatalf("get missing key: code=%d", code)
	}

	code, stdout, _ = runCmd(t, "verify", "-in", out)
	if code != 0 || !strings.HasPrefix(stdout, "ok type=SerialDictionary") {
		t.Fatalf("verify: code=%d out=%s", code, stdout)
	}

	data[len(data)-1] ^= 0x01
	if err := os.WriteFile(out, data, 0o644); err != nil {
		t.Fatalf("corrupt envelope: %v", err)
	}
	code, _, stderr = runCmd(t, "verify", "-in", out)
	if code != 2 || !strings.Contains(stderr, "integrity") {
		t.Fatalf("verify corrupt: code=%d stderr=%s", code, stderr)
	}
}

func TestWrapText(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "note.txt")
	out := filepath.Join(dir, "note.sf")
	if err := os.WriteFile(in, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code, _, stderr := runCmd(t, "wrap", "-type", "Text", "-in", in, "-out", out); code != 0 {
		t.Fatalf("wrap: code=%d stderr=%s", code, stderr)
	}
	data, _ := os.ReadFile(out)
	text := &object.Text{}
	if err := object.Unmarshal(data, text); err != nil || text.Value != "hello" {
		t.Fatalf("wrapped text: %q err=%v", text.Value, err)
	}
	if code, _, _ := runCmd(t, "wrap", "-type", "Int32", "-in", in, "-out", out); code != 1 {
		t.Fatalf("expected unsupported type failure, code=%d", code)
	}
}

func TestConfigTemplateAndLimits(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sfctl.toml")
	if code, _, stderr := runCmd(t, "config", "-output", cfgPath); code != 0 {
		t.Fatalf("config: code=%d stderr=%s", code, stderr)
	}
	if code, _, _ := runCmd(t, "config", "-validate", cfgPath); code != 0 {
		t.Fatalf("validate: code=%d", code)
	}

	small := filepath.Join(dir, "small.toml")
	if err := os.WriteFile(small, []byte("max_envelope_bytes = 40\n"), 0o644); err != nil {
		t.Fatalf("write small config: %v", err)
	}
	big := filepath.Join(dir, "big.sf")
	if err := os.WriteFile(big, object.Marshal(object.NewByteBuffer(make([]byte, 16))), 0o644); err != nil {
		t.Fatalf("write envelope: %v", err)
	}
	code, _, stderr := runCmd(t, "inspect", "-in", big, "-config", small)
	if code != 1 || !strings.Contains(stderr, "size limit") {
		t.Fatalf("limit: code=%d stderr=%s", code, stderr)
	}
}

func TestUnknownCommand(t *testing.T) {
	testlog.Start(t)
	if code, _, stderr := runCmd(t, "explode"); code != 1 || !strings.Contains(stderr, "unknown command") {
		t.Fatalf("unknown command: code=%d stderr=%s", code, stderr)
	}
	if code, _, _ := runCmd(t); code != 1 {
		t.Fatalf("no command: code=%d", code)
	}
	if code, stdout, _ := runCmd(t, "help"); code != 0 || !strings.Contains(stdout, "usage") {
		t.Fatalf("help: code=%d", code)
	}
}
