package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestExecuteMissingRequiredFlags(t *testing.T) {
	viper.Reset()
	var out, errb bytes.Buffer
	code := Execute(context.Background(), []string{}, &out, &errb)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(errb.String(), "required") {
		t.Errorf("stderr should mention required flags, got %q", errb.String())
	}
}

func TestExecuteUnknownFlag(t *testing.T) {
	viper.Reset()
	var out, errb bytes.Buffer
	code := Execute(context.Background(), []string{"--bogus"}, &out, &errb)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestExecuteBadFormat(t *testing.T) {
	viper.Reset()
	var out, errb bytes.Buffer
	argv := []string{"-n", "nodes.csv", "-p", "profile.toml", "--format", "xml"}
	code := Execute(context.Background(), argv, &out, &errb)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(errb.String(), "unsupported detail format") {
		t.Errorf("stderr = %q, want format complaint", errb.String())
	}
}

func TestExecuteBadBlockKM(t *testing.T) {
	viper.Reset()
	var out, errb bytes.Buffer
	argv := []string{"-n", "nodes.csv", "-p", "profile.toml", "--block-km", "-1"}
	code := Execute(context.Background(), argv, &out, &errb)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestExecuteHelp(t *testing.T) {
	viper.Reset()
	var out, errb bytes.Buffer
	code := Execute(context.Background(), []string{"--help"}, &out, &errb)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "lcsample") {
		t.Errorf("help output should mention the command name")
	}
}
