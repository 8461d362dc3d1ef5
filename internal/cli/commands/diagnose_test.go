package commands

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/detector"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

func findResult(results []DiagnosticResult, prefix string) *DiagnosticResult {
	for i := range results {
		if strings.HasPrefix(results[i].Check, prefix) {
			return &results[i]
		}
	}
	return nil
}

func TestNewDiagnoseCommand(t *testing.T) {
	cmd := NewDiagnoseCommand()

	if cmd.Use != "diagnose [flags] <export>..." {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	for _, flag := range []string{"verbose", "config"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestCheckConfigExists_NotFound(t *testing.T) {
	result := checkConfigExists("/nonexistent/config.yaml")

	if result.Status != "error" {
		t.Errorf("Expected error status, got %s", result.Status)
	}
	if !strings.Contains(result.Message, "not found") {
		t.Errorf("Expected 'not found' in message, got: %s", result.Message)
	}
}

func TestCheckConfigExists_Empty(t *testing.T) {
	configPath := writeExport(t, "empty.yaml", "")

	result := checkConfigExists(configPath)

	if result.Status != "error" {
		t.Errorf("Expected error status, got %s", result.Status)
	}
	if !strings.Contains(result.Message, "empty") {
		t.Errorf("Expected 'empty' in message, got: %s", result.Message)
	}
}

func TestCheckConfigExists_Directory(t *testing.T) {
	result := checkConfigExists(t.TempDir())

	if result.Status != "error" {
		t.Errorf("Expected error status, got %s", result.Status)
	}
	if !strings.Contains(result.Message, "directory") {
		t.Errorf("Expected 'directory' in message, got: %s", result.Message)
	}
}

func TestCheckConfigExists_Success(t *testing.T) {
	configPath := writeExport(t, "config.yaml", "user: Alice\n")

	result := checkConfigExists(configPath)

	if result.Status != "ok" {
		t.Errorf("Expected ok status, got %s", result.Status)
	}
}

func TestCheckConfigParseable(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		wantStatus string
		wantHint   string
	}{
		{"valid yaml", "ok.yaml", "user: Alice\ntop_words: 5\n", "ok", ""},
		{"valid toml", "ok.toml", "user = \"Alice\"\n", "ok", ""},
		{"invalid yaml", "bad.yaml", "invalid: yaml: content: bad", "error", "YAML"},
		{"invalid toml", "bad.toml", "user = \n", "error", "TOML"},
		{"invalid values", "values.yaml", "top_words: 0\n", "error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeExport(t, tt.file, tt.content)

			cfg, result := checkConfigParseable(context.Background(), path)

			if result.Status != tt.wantStatus {
				t.Fatalf("Status = %s (%s), want %s", result.Status, result.Message, tt.wantStatus)
			}
			if tt.wantStatus == "ok" && cfg == nil {
				t.Error("Expected config to be returned")
			}
			if tt.wantHint != "" && (len(result.Suggests) == 0 || !strings.Contains(result.Suggests[0], tt.wantHint)) {
				t.Errorf("Suggests = %v, want a %s hint", result.Suggests, tt.wantHint)
			}
		})
	}
}

func TestCheckExportFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "chat.txt")
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(good, []byte(testExport), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.txt")

	files, results := checkExportFiles([]string{good, empty, missing})

	if len(files) != 1 || files[0] != good {
		t.Errorf("readable files = %v, want only %s", files, good)
	}
	statuses := map[string]string{}
	for _, r := range results {
		statuses[strings.TrimPrefix(r.Check, "Export: ")] = r.Status
	}
	if statuses[good] != "ok" || statuses[empty] != "warning" || statuses[missing] != "error" {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestCheckExportFiles_NoPatterns(t *testing.T) {
	files, results := checkExportFiles(nil)

	if len(files) != 0 {
		t.Errorf("files = %v, want none", files)
	}
	if len(results) != 1 || results[0].Status != "error" {
		t.Errorf("results = %+v, want one error", results)
	}
}

func TestCheckExport_Clean(t *testing.T) {
	export := writeExport(t, "chat.txt", testExport)

	records, results := checkExport(context.Background(), export, &DiagnoseOptions{})

	if len(records) != 4 {
		t.Errorf("got %d records, want 4", len(records))
	}
	for _, r := range results {
		if r.Status != "ok" {
			t.Errorf("%s: status %s (%s), want ok", r.Check, r.Status, r.Message)
		}
	}
	if g := findResult(results, "Grammar:"); g == nil || !strings.Contains(g.Message, "24h-2digit-year (4 messages)") {
		t.Errorf("grammar result = %+v", g)
	}
}

func TestCheckExport_InvalidUTF8(t *testing.T) {
	export := writeExport(t, "chat.txt", "01/02/23, 14:05 - Alice: caf\xe9\n")

	_, results := checkExport(context.Background(), export, &DiagnoseOptions{})

	enc := findResult(results, "Encoding:")
	if enc == nil || enc.Status != "warning" {
		t.Fatalf("encoding result = %+v, want warning", enc)
	}
	if !strings.Contains(enc.Message, "1 invalid UTF-8") {
		t.Errorf("Message = %q", enc.Message)
	}
}

func TestCheckExport_ZipWithoutChat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("photo.jpg")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte("not a chat"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	records, results := checkExport(context.Background(), path, &DiagnoseOptions{})

	if records != nil {
		t.Errorf("records = %v, want nil", records)
	}
	if len(results) != 1 || results[0].Status != "error" {
		t.Fatalf("results = %+v, want one error", results)
	}
	if len(results[0].Suggests) == 0 {
		t.Error("Expected a hint about the archive contents")
	}
}

func TestCheckExport_Unrecognized(t *testing.T) {
	export := writeExport(t, "notes.txt", "Dear diary\n")

	records, results := checkExport(context.Background(), export, &DiagnoseOptions{})

	if len(records) != 0 {
		t.Errorf("records = %v, want none", records)
	}
	g := findResult(results, "Grammar:")
	if g == nil || g.Status != "error" {
		t.Errorf("grammar result = %+v, want error", g)
	}
	if findResult(results, "Timestamps:") != nil {
		t.Error("timestamps should not be checked when no grammar matched")
	}
}

func TestCheckExport_SkippedTimestamps(t *testing.T) {
	export := writeExport(t, "chat.txt",
		"01/02/23, 14:05 - Alice: hi\n32/13/23, 14:06 - Bob: bad date\n")

	records, results := checkExport(context.Background(), export, &DiagnoseOptions{})

	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
	ts := findResult(results, "Timestamps:")
	if ts == nil || ts.Status != "warning" {
		t.Fatalf("timestamps result = %+v, want warning", ts)
	}
	if !strings.Contains(ts.Message, "1/2 message(s) skipped") {
		t.Errorf("Message = %q", ts.Message)
	}
	if len(ts.Details) != 1 || !strings.Contains(ts.Details[0], "32/13/23") {
		t.Errorf("Details = %v", ts.Details)
	}
}

func TestCheckGrammar_Competing(t *testing.T) {
	det := detector.New().Detect("01/02/23, 14:05 - Alice: hi\n[01/02/23, 2:06:00 PM] Bob: hello\n")

	result := checkGrammar("mixed.txt", det, &DiagnoseOptions{})

	if result.Status != "warning" {
		t.Errorf("Status = %s, want warning", result.Status)
	}
	if len(result.Details) != 1 || !strings.HasPrefix(result.Details[0], "bracketed-seconds: 1 matches") {
		t.Errorf("Details = %v", result.Details)
	}
}

func TestCheckTimestamps_AllSkipped(t *testing.T) {
	parsed := &parser.Result{
		Grammar: "24h-2digit-year",
		Skipped: []parser.SkippedRecord{{Index: 0, Timestamp: "32/13/23, 14:06 - "}},
	}

	result := checkTimestamps("chat.txt", parsed, &DiagnoseOptions{})

	if result.Status != "error" {
		t.Errorf("Status = %s, want error", result.Status)
	}
}

func TestCheckTimestamps_VerboseRange(t *testing.T) {
	parsed, err := parser.Parse(testExport)
	if err != nil {
		t.Fatal(err)
	}

	result := checkTimestamps("chat.txt", parsed, &DiagnoseOptions{Verbose: true})

	if result.Status != "ok" {
		t.Fatalf("Status = %s, want ok", result.Status)
	}
	want := []string{"First message: 2023-02-01 14:05", "Last message: 2023-02-02 09:15"}
	if len(result.Details) != 2 || result.Details[0] != want[0] || result.Details[1] != want[1] {
		t.Errorf("Details = %v, want %v", result.Details, want)
	}
}

func TestCheckSenders(t *testing.T) {
	parsed, err := parser.Parse(testExport)
	if err != nil {
		t.Fatal(err)
	}
	onlyNotices, err := parser.Parse("01/02/23, 14:05 - Alice created group \"Family\"\n")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		records    []parser.MessageRecord
		user       string
		wantStatus string
	}{
		{"overall", parsed.Records, config.DefaultUser, "ok"},
		{"known user", parsed.Records, "Bob", "ok"},
		{"unknown user", parsed.Records, "Mallory", "error"},
		{"notifications only", onlyNotices.Records, config.DefaultUser, "warning"},
		{"no records", nil, config.DefaultUser, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.User = tt.user

			result := checkSenders(tt.records, cfg, &DiagnoseOptions{})

			if result.Status != tt.wantStatus {
				t.Errorf("Status = %s (%s), want %s", result.Status, result.Message, tt.wantStatus)
			}
		})
	}
}

func TestCheckSenders_Message(t *testing.T) {
	parsed, err := parser.Parse(testExport)
	if err != nil {
		t.Fatal(err)
	}

	result := checkSenders(parsed.Records, config.DefaultConfig(), &DiagnoseOptions{Verbose: true})

	if result.Message != "2 sender(s) in 4 message(s)" {
		t.Errorf("Message = %q", result.Message)
	}
	if len(result.Details) != 3 {
		t.Errorf("Details = %v, want every sender including group_notification", result.Details)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long string", 10, "this is..."},
		{"", 5, ""},
	}

	for _, tt := range tests {
		got := truncate(tt.input, tt.maxLen)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestCheckWebhooks_NoWebhooks(t *testing.T) {
	cfg := config.DefaultConfig()

	if results := checkWebhooks(context.Background(), cfg, &DiagnoseOptions{}); len(results) != 0 {
		t.Errorf("Expected no results without verbose, got %d", len(results))
	}

	results := checkWebhooks(context.Background(), cfg, &DiagnoseOptions{Verbose: true})
	if len(results) != 1 || results[0].Status != "ok" {
		t.Errorf("Expected one ok result in verbose mode, got %+v", results)
	}
}

func TestCheckWebhooks_Validation(t *testing.T) {
	tests := []struct {
		name       string
		webhook    config.WebhookConfig
		wantStatus string
		wantDetail string
	}{
		{
			name:       "valid",
			webhook:    config.WebhookConfig{Name: "ok", URL: "https://example.com/hook", Trigger: config.WebhookTriggerOnData},
			wantStatus: "ok",
		},
		{
			name:       "missing url",
			webhook:    config.WebhookConfig{Name: "no-url"},
			wantStatus: "error",
			wantDetail: "Missing url",
		},
		{
			name:       "bad scheme",
			webhook:    config.WebhookConfig{Name: "ftp", URL: "ftp://example.com/hook"},
			wantStatus: "error",
			wantDetail: "scheme",
		},
		{
			name:       "no host",
			webhook:    config.WebhookConfig{Name: "nohost", URL: "https:///hook"},
			wantStatus: "error",
			wantDetail: "host",
		},
		{
			name:       "bad trigger",
			webhook:    config.WebhookConfig{Name: "trigger", URL: "https://example.com", Trigger: "on_issues"},
			wantStatus: "error",
			wantDetail: "on_data, always, or never",
		},
		{
			name:       "unresolved token",
			webhook:    config.WebhookConfig{Name: "token", URL: "https://example.com", Token: "${UNSET_TOKEN}"},
			wantStatus: "warning",
			wantDetail: "unresolved env var",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Webhooks: []config.WebhookConfig{tt.webhook}}

			results := checkWebhooks(context.Background(), cfg, &DiagnoseOptions{})

			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			r := results[0]
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", r.Status, tt.wantStatus)
			}
			if tt.wantDetail != "" && (len(r.Details) == 0 || !strings.Contains(r.Details[0], tt.wantDetail)) {
				t.Errorf("Details = %v, want %q", r.Details, tt.wantDetail)
			}
		})
	}
}

func TestCheckWebhooks_VerboseConnectivity(t *testing.T) {
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{Webhooks: []config.WebhookConfig{{
		Name:    "verbose-test",
		URL:     server.URL,
		Token:   "secret-token",
		Trigger: config.WebhookTriggerAlways,
		Timeout: 30 * time.Second,
	}}}

	results := checkWebhooks(context.Background(), cfg, &DiagnoseOptions{Verbose: true})

	if len(results) != 2 {
		t.Fatalf("got %d results, want config and connectivity", len(results))
	}
	if !strings.Contains(strings.Join(results[0].Details, "\n"), "Token: configured") {
		t.Errorf("Details = %v, want token note", results[0].Details)
	}
	conn := findResult(results, "Webhook Connectivity:")
	if conn == nil || conn.Status != "ok" || conn.Message != "Reachable (status 200)" {
		t.Errorf("connectivity = %+v", conn)
	}
	if method != http.MethodHead {
		t.Errorf("method = %s, want HEAD", method)
	}
}

func TestCheckWebhookConnectivity_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	result := checkWebhookConnectivity(context.Background(), config.WebhookConfig{URL: server.URL})

	if result.Status != "warning" || !strings.Contains(result.Message, "405") {
		t.Errorf("result = %+v", result)
	}
}

func TestPrintDiagnostics(t *testing.T) {
	results := []DiagnosticResult{
		{Check: "Test1", Status: "ok", Message: "All good", Details: []string{"hidden"}},
		{Check: "Test2", Status: "warning", Message: "Hmm", Details: []string{"detail1"}},
		{Check: "Test3", Status: "error", Message: "Bad", Suggests: []string{"Fix it"}},
	}

	var buf bytes.Buffer
	if err := printDiagnostics(&buf, results, &DiagnoseOptions{}); err != nil {
		t.Fatalf("printDiagnostics() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[PASS] Test1",
		"[WARN] Test2",
		"      - detail1",
		"[FAIL] Test3",
		"      Hint: Fix it",
		"Summary: 1 passed, 1 warnings, 1 errors",
		"Fix the errors above",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q", want)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("Details of passing checks should only show in verbose mode")
	}
}

func TestRunDiagnose_CleanExport(t *testing.T) {
	export := writeExport(t, "chat.txt", testExport)

	out, err := execute(t, NewDiagnoseCommand(), export)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	if !strings.Contains(out, "Summary: 5 passed, 0 warnings, 0 errors") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "Everything looks good!") {
		t.Errorf("Output missing success line:\n%s", out)
	}
}

func TestRunDiagnose_MissingConfig(t *testing.T) {
	export := writeExport(t, "chat.txt", testExport)

	out, err := execute(t, NewDiagnoseCommand(), "-c", "/nonexistent/config.yaml", export)
	if err != nil {
		t.Fatalf("diagnose should report, not fail: %v", err)
	}
	if !strings.Contains(out, "[FAIL] Config File") {
		t.Errorf("Output missing config failure:\n%s", out)
	}
	if strings.Contains(out, "Export:") {
		t.Error("exports should not be checked after a config failure")
	}
}

func TestRunDiagnose_UnknownConfiguredUser(t *testing.T) {
	export := writeExport(t, "chat.txt", testExport)
	cfgPath := writeExport(t, "chatlens.yaml", "user: Mallory\n")

	out, err := execute(t, NewDiagnoseCommand(), "-c", cfgPath, export)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	if !strings.Contains(out, `Configured user "Mallory" not found`) {
		t.Errorf("Output missing user failure:\n%s", out)
	}
}
